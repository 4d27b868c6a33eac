package config

import "time"

// RateLimitConfig limits dev-login and signup per client IP.
type RateLimitConfig struct {
	Enabled   bool          `env:"RATE_LIMIT_ENABLED"    envDefault:"true"`
	PerWindow int           `env:"RATE_LIMIT_PER_WINDOW" envDefault:"10"`
	Window    time.Duration `env:"RATE_LIMIT_WINDOW"     envDefault:"1m"`
	// Burst applies to the in-memory limiter used when Redis is not configured.
	Burst int `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

// Sanitize clamps limiter values.
func (r *RateLimitConfig) Sanitize() {
	if r.PerWindow <= 0 {
		r.PerWindow = 10
	}
	if r.Window <= 0 {
		r.Window = time.Minute
	}
	if r.Burst <= 0 {
		r.Burst = 1
	}
}
