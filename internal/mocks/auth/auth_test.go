package auth

import (
	"context"
	"testing"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeVerifier_SubscribeAndEmit(t *testing.T) {
	v := NewFakeVerifier()
	var got []ports.SessionEvent
	unsub := v.Subscribe(func(ev ports.SessionEvent) { got = append(got, ev) })

	v.Emit(ports.SessionEvent{Kind: ports.SessionSignedIn, Session: &domainauth.Session{ID: "u1"}})
	unsub()
	v.Emit(ports.SessionEvent{Kind: ports.SessionSignedOut})

	require.Len(t, got, 1)
	assert.Equal(t, ports.SessionSignedIn, got[0].Kind)
	assert.Equal(t, 0, v.SubscriberCount())
}

func TestFakeVerifier_DefaultSignInFails(t *testing.T) {
	v := NewFakeVerifier()
	_, err := v.SignInWithPassword(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.Equal(t, 1, v.SignInCalls)
}

func TestMemorySlot(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySlot(nil)

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrSlotEmpty)

	require.NoError(t, s.Store(ctx, []byte(`{"id":"1"}`)))
	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(data))

	require.NoError(t, s.Remove(ctx))
	assert.False(t, s.Has())
}

func TestStaticTokenVerifier(t *testing.T) {
	v := StaticTokenVerifier{"tok": {Subject: "u1"}}
	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.Subject)

	_, err = v.Verify(context.Background(), "other")
	assert.Error(t, err)
}
