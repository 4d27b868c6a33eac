package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/jerseyretro/storefront/config"
	"github.com/joho/godotenv"
)

// InitLogger initializes the structured JSON logger and makes it the default.
func InitLogger(level slog.Level) *slog.Logger {
	return initLogger(os.Stdout, level)
}

func initLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads server configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := parseEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.Sanitize()
	return cfg, nil
}

// LoadClientConfig loads storefront-cli configuration from environment variables.
func LoadClientConfig() (config.ClientConfig, error) {
	var cfg config.ClientConfig
	if err := parseEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.Sanitize()
	return cfg, nil
}

func parseEnv(v any) error {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
