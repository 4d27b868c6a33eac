package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.IsDev {
		t.Fatal("expected production mode by default")
	}
	if cfg.Auth.Mode != AuthModeGoTrue {
		t.Fatalf("expected gotrue mode, got %q", cfg.Auth.Mode)
	}
	expectedBootstrap := BootstrapConfig{
		Enabled:  false,
		Email:    "admin@jersey.com",
		Password: "admin123",
		Name:     "Admin Jersey",
	}
	if cfg.Auth.Bootstrap != expectedBootstrap {
		t.Fatalf("unexpected bootstrap config: %#v", cfg.Auth.Bootstrap)
	}
	wantAdmins := []string{"admin@jersey.com", "admin@example.com", "admin@gmail.com"}
	if !reflect.DeepEqual(cfg.Auth.AdminEmails, wantAdmins) {
		t.Fatalf("unexpected admin emails: %v", cfg.Auth.AdminEmails)
	}
	if cfg.Storage.Bucket != "jersey-images" || cfg.Storage.Enabled() {
		t.Fatalf("unexpected storage config: %#v", cfg.Storage)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without a URI")
	}
	if cfg.Cache.CategoriesTTL != 5*time.Minute {
		t.Fatalf("unexpected categories ttl: %v", cfg.Cache.CategoriesTTL)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.HTTP.Addr)
	}
	if cfg.BootstrapEnabled() {
		t.Fatal("bootstrap must be off outside dev mode")
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "GoTrue")
	t.Setenv("AUTH_URL", "https://project.example.com/")
	t.Setenv("AUTH_ANON_KEY", "anon")
	t.Setenv("AUTH_SERVICE_KEY", "service")
	t.Setenv("AUTH_BOOTSTRAP_ENABLED", "true")
	t.Setenv("AUTH_BOOTSTRAP_EMAIL", " root@jersey.com ")
	t.Setenv("AUTH_ADMIN_EMAILS", "Boss@Jersey.com; ;ops@jersey.com")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expected := GoTrueConfig{
		URL:        "https://project.example.com",
		AnonKey:    "anon",
		ServiceKey: "service",
		JWKSURL:    "https://project.example.com/auth/v1/.well-known/jwks.json",
		Audience:   "authenticated",
	}
	if !reflect.DeepEqual(cfg.Auth.GoTrue, expected) {
		t.Fatalf("unexpected gotrue configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth.GoTrue)
	}
	if cfg.Auth.Bootstrap.Email != "root@jersey.com" {
		t.Fatalf("bootstrap email not trimmed: %q", cfg.Auth.Bootstrap.Email)
	}
	if !cfg.BootstrapEnabled() {
		t.Fatal("bootstrap should be enabled")
	}
	if !reflect.DeepEqual(cfg.Auth.AdminEmails, []string{"boss@jersey.com", "ops@jersey.com"}) {
		t.Fatalf("unexpected admin emails: %v", cfg.Auth.AdminEmails)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    AuthMode
		wantErr bool
	}{
		{input: "mock", want: AuthModeMock},
		{input: "GOTRUE", want: AuthModeGoTrue},
		{input: "oauth", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var m AuthMode
			err := m.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m != tt.want {
				t.Fatalf("got %q, want %q", m, tt.want)
			}
		})
	}
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if !cfg.IsDev || !cfg.BootstrapEnabled() {
		t.Fatalf("expected dev mode with bootstrap, got dev=%v", cfg.IsDev)
	}
}

func TestSanitize_Clamps(t *testing.T) {
	cfg := AppConfig{
		RateLimit:     RateLimitConfig{PerWindow: -1, Window: 0, Burst: 0},
		HTTP:          HTTPConfig{},
		Storage:       StorageConfig{Endpoint: " minio:9000 ", Bucket: " ", PublicURL: "http://cdn/"},
		Observability: ObservabilityConfig{LogLevel: "LOUD"},
	}
	cfg.Sanitize()

	if cfg.RateLimit.PerWindow != 10 || cfg.RateLimit.Window != time.Minute || cfg.RateLimit.Burst != 1 {
		t.Fatalf("rate limit not clamped: %#v", cfg.RateLimit)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Fatalf("http not defaulted: %#v", cfg.HTTP)
	}
	if cfg.Storage.Endpoint != "minio:9000" || cfg.Storage.Bucket != "jersey-images" || cfg.Storage.PublicURL != "http://cdn" {
		t.Fatalf("storage not sanitized: %#v", cfg.Storage)
	}
	if cfg.Observability.Level() != slog.LevelInfo {
		t.Fatalf("unexpected level %v", cfg.Observability.Level())
	}
	if cfg.Auth.Mode != AuthModeGoTrue {
		t.Fatalf("unexpected mode %q", cfg.Auth.Mode)
	}
}

func TestObservabilityConfig_Level(t *testing.T) {
	c := ObservabilityConfig{LogLevel: " Debug "}
	c.Sanitize()
	if c.Level() != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", c.Level())
	}
}

func TestClientConfig_Sanitize(t *testing.T) {
	t.Setenv("STOREFRONT_SERVER_URL", "http://shop.local:8080/")
	t.Setenv("STOREFRONT_STATE_DIR", "/tmp/sf")

	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.ServerURL != "http://shop.local:8080" || cfg.AuthURL != cfg.ServerURL {
		t.Fatalf("unexpected urls: %#v", cfg)
	}
	if cfg.StateDir != "/tmp/sf" || cfg.BootstrapEmail != "admin@jersey.com" {
		t.Fatalf("unexpected client config: %#v", cfg)
	}
}
