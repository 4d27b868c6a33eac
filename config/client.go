package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClientConfig configures storefront-cli.
type ClientConfig struct {
	ServerURL string `env:"STOREFRONT_SERVER_URL" envDefault:"http://localhost:8080"`
	// AuthURL defaults to ServerURL, which serves the provider paths in mock mode.
	AuthURL  string        `env:"STOREFRONT_AUTH_URL"`
	AnonKey  string        `env:"STOREFRONT_ANON_KEY"`
	StateDir string        `env:"STOREFRONT_STATE_DIR"`
	Timeout  time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"15s"`
	// BootstrapEmail is the only address allowed to fall back to dev-login.
	BootstrapEmail string `env:"AUTH_BOOTSTRAP_EMAIL" envDefault:"admin@jersey.com"`
}

// Sanitize fills derived defaults.
func (c *ClientConfig) Sanitize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	if c.AuthURL = strings.TrimRight(strings.TrimSpace(c.AuthURL), "/"); c.AuthURL == "" {
		c.AuthURL = c.ServerURL
	}
	if c.StateDir == "" {
		c.StateDir = defaultStateDir()
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront")
	}
	return filepath.Join(os.TempDir(), "storefront")
}
