package httpx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/jerseyretro/storefront/internal/ports"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Limiter ports.RateLimiter
	// Route labels metrics and prefixes the per-client key.
	Route string
	// RetryAfter is advertised on 429 responses. Zero omits the header.
	RetryAfter time.Duration
	// TrustProxy keys clients by the first X-Forwarded-For entry.
	TrustProxy bool
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// RateLimit returns a middleware that limits requests per client IP.
// Limiter failures let the request through.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if cfg.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.Route + ":" + ClientIP(r, cfg.TrustProxy)
			allowed, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				cfg.Logger.WarnContext(r.Context(), "rate limiter unavailable", "route", cfg.Route, "error", err)
				allowed = true
			}
			cfg.Metrics.RateLimit(cfg.Route, allowed)
			if !allowed {
				if cfg.RetryAfter > 0 {
					secs := int(cfg.RetryAfter.Round(time.Second) / time.Second)
					w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				}
				WriteError(w, ErrorParams{Code: http.StatusTooManyRequests, Message: "Rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the caller's IP address.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
