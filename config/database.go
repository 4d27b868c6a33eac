package config

import (
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"storefront"`
	Password string `env:"PASSWORD" envDefault:"storefront"`
	Name     string `env:"NAME"     envDefault:"storefront"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // 'require' in production
	// RunMigrationsOnStart applies embedded migrations during server startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	MaxOpenConns         int  `env:"MAX_OPEN_CONNS"          envDefault:"25"`
}

// RedisConfig contains Redis configuration. An empty URI disables Redis.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:""`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Enabled reports whether any Redis topology is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URI) != "" || r.UseSentinel || r.UseCluster
}

// CacheConfig controls the Redis-backed catalog cache.
type CacheConfig struct {
	Prefix        string        `env:"CACHE_PREFIX"         envDefault:"storefront:"`
	CategoriesTTL time.Duration `env:"CACHE_CATEGORIES_TTL" envDefault:"5m"`
}

// Sanitize clamps cache values.
func (c *CacheConfig) Sanitize() {
	if c.CategoriesTTL <= 0 {
		c.CategoriesTTL = 5 * time.Minute
	}
	if c.Prefix == "" {
		c.Prefix = "storefront:"
	}
}
