package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Allow(t *testing.T) {
	m := NewMemory(2, time.Minute, 2)
	fixed := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := m.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := m.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = m.Allow(ctx, "b")
	assert.True(t, ok)

	m.now = func() time.Time { return fixed.Add(30 * time.Second) }
	ok, _ = m.Allow(ctx, "a")
	assert.True(t, ok, "one token refills every 30s")
}

func TestMemory_SweepsIdleKeys(t *testing.T) {
	m := NewMemory(1, time.Second, 1)
	fixed := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, _ = m.Allow(ctx, "a")
	_, _ = m.Allow(ctx, "b")
	assert.Equal(t, 2, m.Len())

	m.now = func() time.Time { return fixed.Add(time.Minute) }
	_, _ = m.Allow(ctx, "c")
	assert.Equal(t, 1, m.Len())
}

func TestMemory_SweepIsThrottled(t *testing.T) {
	m := NewMemory(1, time.Second, 1) // idle is 10s, so at most one sweep per second
	fixed := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, _ = m.Allow(ctx, "old")
	require.Equal(t, fixed, m.lastSweep)

	m.now = func() time.Time { return fixed.Add(11 * time.Second) }
	_, _ = m.Allow(ctx, "a")
	assert.Equal(t, 1, m.Len(), "stale key swept")
	sweptAt := m.lastSweep

	m.now = func() time.Time { return fixed.Add(22*time.Second + 500*time.Millisecond) }
	_, _ = m.Allow(ctx, "b")
	assert.NotEqual(t, sweptAt, m.lastSweep)
	sweptAt = m.lastSweep
	assert.Equal(t, 1, m.Len(), "a idle for 11.5s is swept")

	m.now = func() time.Time { return fixed.Add(23 * time.Second) }
	_, _ = m.Allow(ctx, "c")
	assert.Equal(t, sweptAt, m.lastSweep, "no second sweep within idle/10")
	assert.Equal(t, 2, m.Len())
}
