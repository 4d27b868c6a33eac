package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jerseyretro/storefront/config"
	"github.com/jerseyretro/storefront/internal/adapters/devauth"
	"github.com/jerseyretro/storefront/internal/adapters/gotrue"
	"github.com/jerseyretro/storefront/internal/adapters/oidc"
	"github.com/jerseyretro/storefront/internal/ports"
)

// AuthComponents are the provider-facing adapters selected by AUTH_MODE.
type AuthComponents struct {
	Verifier  ports.TokenVerifier
	Registrar ports.AccountRegistrar
	// Accounts is nil when no service key is configured.
	Accounts ports.AccountAdmin
	// DevProvider and DevHandler are set in mock mode only.
	DevProvider *devauth.Provider
	DevHandler  http.Handler
}

// AuthConfig contains configuration for BuildAuth.
type AuthConfig struct {
	Auth       config.AuthConfig
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// BuildAuth creates the token verifier, registrar and account admin for the configured mode.
func BuildAuth(ctx context.Context, cfg AuthConfig) (AuthComponents, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuth(cfg.Auth, logger)
	case config.AuthModeGoTrue, "":
		return buildGoTrueAuth(ctx, cfg, logger)
	default:
		return AuthComponents{}, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildDevAuth(auth config.AuthConfig, logger *slog.Logger) (AuthComponents, error) {
	secret := auth.DevAuth.JWTSecret
	if auth.GoTrue.JWTSecret != "" {
		secret = auth.GoTrue.JWTSecret
	}
	prov, err := devauth.NewProvider(devauth.Config{
		JWTSecret: secret,
		Issuer:    auth.DevAuth.Issuer,
		AccessTTL: auth.DevAuth.AccessTTL,
		Logger:    logger,
	})
	if err != nil {
		return AuthComponents{}, fmt.Errorf("create dev auth provider: %w", err)
	}
	logger.Warn("dev auth mode enabled; accounts live in memory", "issuer", auth.DevAuth.Issuer)
	return AuthComponents{
		Verifier:    prov.Verifier(),
		Registrar:   prov,
		Accounts:    prov,
		DevProvider: prov,
		DevHandler:  prov.Handler(),
	}, nil
}

func buildGoTrueAuth(ctx context.Context, cfg AuthConfig, logger *slog.Logger) (AuthComponents, error) {
	gt := cfg.Auth.GoTrue
	if gt.URL == "" {
		return AuthComponents{}, errors.New("AUTH_URL is required when AUTH_MODE=gotrue")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	verifier, err := buildVerifier(ctx, gt, httpClient)
	if err != nil {
		return AuthComponents{}, err
	}
	registrar, err := gotrue.NewRegistrar(gt.URL, gt.AnonKey, httpClient)
	if err != nil {
		return AuthComponents{}, fmt.Errorf("create registrar: %w", err)
	}
	out := AuthComponents{Verifier: verifier, Registrar: registrar}

	if gt.ServiceKey != "" {
		admin, adminErr := gotrue.NewAdmin(gt.URL, gt.ServiceKey, httpClient)
		if adminErr != nil {
			return AuthComponents{}, fmt.Errorf("create account admin: %w", adminErr)
		}
		out.Accounts = admin
	} else {
		logger.Info("AUTH_SERVICE_KEY not set; provider account administration disabled")
	}
	return out, nil
}

//nolint:ireturn // verifier kind depends on configuration.
func buildVerifier(ctx context.Context, gt config.GoTrueConfig, httpClient *http.Client) (ports.TokenVerifier, error) {
	if gt.JWTSecret != "" {
		v, err := oidc.NewHS256Verifier(oidc.HS256Config{
			Secret:   gt.JWTSecret,
			Issuer:   gt.Issuer,
			Audience: gt.Audience,
		})
		if err != nil {
			return nil, fmt.Errorf("create hs256 verifier: %w", err)
		}
		return v, nil
	}
	issuer := gt.Issuer
	if issuer == "" {
		issuer = strings.TrimSuffix(gt.JWKSURL, "/.well-known/jwks.json")
	}
	v, err := oidc.NewJWKSVerifier(ctx, oidc.JWKSConfig{
		Issuer:     issuer,
		JWKSURL:    gt.JWKSURL,
		Audience:   gt.Audience,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create jwks verifier: %w", err)
	}
	return v, nil
}
