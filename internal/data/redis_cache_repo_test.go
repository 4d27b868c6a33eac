package data

import (
	"context"
	"testing"
	"time"

	"github.com/jerseyretro/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRepo_SetGetDelete(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepo(client, "storefront:")
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "k1", []byte("v1"), time.Minute))
		got, err := repo.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)
		assert.True(t, mr.Exists("storefront:k1"))
		assert.Equal(t, time.Minute, mr.TTL("storefront:k1"))
	})

	t.Run("missing key", func(t *testing.T) {
		got, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "short", []byte("x"), time.Second))
		mr.FastForward(2 * time.Second)
		got, err := repo.Get(ctx, "short")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "k2", []byte("v2"), 0))
		existed, err := repo.Delete(ctx, "k2")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = repo.Delete(ctx, "k2")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("empty key", func(t *testing.T) {
		assert.Error(t, repo.Set(ctx, "", nil, 0))
		_, err := repo.Get(ctx, "")
		assert.Error(t, err)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}
