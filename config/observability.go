package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig controls logging and metrics.
type ObservabilityConfig struct {
	LogLevel       string `env:"LOG_LEVEL"                     envDefault:"info"`
	MetricsEnabled bool   `env:"OBSERVABILITY_METRICS_ENABLED" envDefault:"true"`
}

// Sanitize normalises the log level.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
}

// Level returns the slog level for LogLevel.
func (c ObservabilityConfig) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
