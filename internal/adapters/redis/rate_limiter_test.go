package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jerseyretro/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	limiter, err := NewRateLimiter(client, RateLimiterOptions{Prefix: "rl:", Limit: 2, Window: time.Minute})
	require.NoError(t, err)
	fixed := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "third request in the window is rejected")

	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted independently")

	keys := mr.Keys()
	require.Len(t, keys, 2)
	for _, k := range keys {
		ttl := mr.TTL(k)
		assert.Greater(t, ttl, time.Duration(0), k)
		assert.LessOrEqual(t, ttl, time.Minute, k)
	}

	limiter.now = func() time.Time { return fixed.Add(time.Minute) }
	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")
}

func TestRateLimiter_CounterAlwaysCarriesExpiry(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	limiter, err := NewRateLimiter(client, RateLimiterOptions{Prefix: "rl:", Limit: 5, Window: time.Minute})
	require.NoError(t, err)
	fixed := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return fixed }
	ctx := context.Background()

	key := "rl:10.0.0.9:" + strconv.FormatInt(fixed.UnixNano()/int64(time.Minute), 10)
	for i := 1; i <= 3; i++ {
		_, err := limiter.Allow(ctx, "10.0.0.9")
		require.NoError(t, err)
		got, err := mr.Get(key)
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i), got)
		assert.Greater(t, mr.TTL(key), time.Duration(0), "hit %d", i)
	}

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists(key), "counter expires with its window")
}

func TestRateLimiter_RedisDown(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	limiter, err := NewRateLimiter(client, RateLimiterOptions{Limit: 1})
	require.NoError(t, err)
	mr.Close()

	ok, err := limiter.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewRateLimiter_Validation(t *testing.T) {
	_, err := NewRateLimiter(nil, RateLimiterOptions{Limit: 1})
	assert.Error(t, err)

	client, _ := testutil.SetupTestRedis(t)
	_, err = NewRateLimiter(client, RateLimiterOptions{})
	assert.Error(t, err)
}
