// Package ratelimit provides a process-local token bucket limiter used when Redis is not configured.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jerseyretro/storefront/internal/ports"
	"golang.org/x/time/rate"
)

var _ ports.RateLimiter = (*Memory)(nil)

// Memory keeps one token bucket per key.
type Memory struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	limiters  map[string]*entry
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemory allows perWindow requests per window with the given burst.
func NewMemory(perWindow int, window time.Duration, burst int) *Memory {
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = max(perWindow, 1)
	}
	return &Memory{
		limit:    rate.Limit(float64(perWindow) / window.Seconds()),
		burst:    burst,
		limiters: make(map[string]*entry),
		idle:     10 * window,
		now:      time.Now,
	}
}

// Allow consumes a token for key.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.limiters[key]
	if !ok {
		if now.Sub(m.lastSweep) >= m.idle/10 {
			m.sweep(now)
		}
		e = &entry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// sweep drops buckets not touched for the idle period. Allow runs it at most
// once per idle/10. Caller holds mu.
func (m *Memory) sweep(now time.Time) {
	m.lastSweep = now
	for k, e := range m.limiters {
		if now.Sub(e.lastSeen) > m.idle {
			delete(m.limiters, k)
		}
	}
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}
