package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication provider the server talks to.
type AuthMode string

const (
	// AuthModeGoTrue uses a hosted GoTrue-compatible provider.
	AuthModeGoTrue AuthMode = "gotrue"
	// AuthModeMock serves an in-memory provider from this process (development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "gotrue", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: gotrue, mock)", v)
	}
}

// GoTrueConfig points at the hosted auth provider.
type GoTrueConfig struct {
	URL        string `env:"URL"`
	AnonKey    string `env:"ANON_KEY"`
	ServiceKey string `env:"SERVICE_KEY"`
	// JWKSURL defaults to URL + /auth/v1/.well-known/jwks.json.
	JWKSURL  string `env:"JWKS_URL"`
	Issuer   string `env:"ISSUER"`
	Audience string `env:"AUDIENCE" envDefault:"authenticated"`
	// JWTSecret enables HS256 verification instead of JWKS.
	JWTSecret string `env:"JWT_SECRET"`
}

// DevAuthConfig controls the in-memory provider used when AUTH_MODE=mock.
type DevAuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"storefront-dev-secret"`
	Issuer    string        `env:"ISSUER"     envDefault:"storefront-dev"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
}

// BootstrapConfig holds the reserved administrator pair accepted by dev-login.
type BootstrapConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Email    string `env:"EMAIL"    envDefault:"admin@jersey.com"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
	Name     string `env:"NAME"     envDefault:"Admin Jersey"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	Mode AuthMode `env:"AUTH_MODE" envDefault:"gotrue"`

	GoTrue  GoTrueConfig  `envPrefix:"AUTH_"`
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	Bootstrap BootstrapConfig `envPrefix:"AUTH_BOOTSTRAP_"`

	// AdminEmails receive the admin role at signup.
	AdminEmails []string `env:"AUTH_ADMIN_EMAILS" envDefault:"admin@jersey.com;admin@example.com;admin@gmail.com" envSeparator:";"`
}

// Sanitize trims values and fills derived defaults.
func (a *AuthConfig) Sanitize(isDev bool) {
	a.GoTrue.URL = strings.TrimRight(strings.TrimSpace(a.GoTrue.URL), "/")
	if a.GoTrue.JWKSURL == "" && a.GoTrue.URL != "" {
		a.GoTrue.JWKSURL = authBase(a.GoTrue.URL) + "/.well-known/jwks.json"
	}
	if a.Mode == "" {
		a.Mode = AuthModeGoTrue
		if isDev {
			a.Mode = AuthModeMock
		}
	}
	if a.DevAuth.AccessTTL <= 0 {
		a.DevAuth.AccessTTL = time.Hour
	}
	a.Bootstrap.Email = strings.TrimSpace(a.Bootstrap.Email)

	emails := a.AdminEmails[:0]
	for _, e := range a.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	a.AdminEmails = emails
}

func authBase(url string) string {
	if strings.HasSuffix(url, "/auth/v1") {
		return url
	}
	return url + "/auth/v1"
}
