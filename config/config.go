package config

import (
	"os"
	"strings"
)

// AppConfig is the storefront server configuration.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See the individual files for details:
//   - auth.go: auth provider, bootstrap admin and admin allow-list
//   - database.go: Postgres, Redis and cache
//   - http.go: HTTP server
//   - storage.go: product image object storage
//   - ratelimit.go: auth endpoint rate limiting
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP HTTPConfig

	Storage StorageConfig `envPrefix:"STORAGE_"`

	RateLimit RateLimitConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.Auth.Sanitize(c.IsDev)
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Storage.Sanitize()
	c.RateLimit.Sanitize()
	c.Observability.Sanitize()
}

// detectDevMode falls back to NODE_ENV when DEV is unset.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// BootstrapEnabled reports whether the dev-login route is served.
func (c *AppConfig) BootstrapEnabled() bool {
	return c.Auth.Bootstrap.Enabled || c.IsDev
}
