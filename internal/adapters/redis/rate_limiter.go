// Package redis provides Redis-based adapters for the storefront.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/redis/go-redis/v9"
)

var _ ports.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window limiter shared by every server instance.
// Each key gets Limit requests per Window; the counter lives at prefix+key+":"+window index.
type RateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// RateLimiterOptions configures a RateLimiter.
type RateLimiterOptions struct {
	Prefix string
	Limit  int
	Window time.Duration
}

// NewRateLimiter creates a Redis fixed-window limiter.
func NewRateLimiter(client redis.UniversalClient, opts RateLimiterOptions) (*RateLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.Limit <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Prefix == "" {
		opts.Prefix = "ratelimit:"
	}
	return &RateLimiter{
		client: client,
		prefix: opts.Prefix,
		limit:  int64(opts.Limit),
		window: opts.Window,
		now:    time.Now,
	}, nil
}

// Allow increments the key's counter for the current window. Increment and
// expiry run in one MULTI/EXEC; a counter never exists without a TTL.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := l.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	}); err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	return incr.Val() <= l.limit, nil
}
