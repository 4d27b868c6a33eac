package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
)

var _ ports.TokenVerifier = (*JWKSVerifier)(nil)

// JWKSConfig configures verification against the provider's published keys.
type JWKSConfig struct {
	Issuer     string
	JWKSURL    string
	Audience   string       // defaults to DefaultAudience
	HTTPClient *http.Client // optional
}

// JWKSVerifier verifies asymmetrically signed access tokens with go-oidc.
type JWKSVerifier struct {
	verifier *gooidc.IDTokenVerifier
}

// NewJWKSVerifier builds a verifier. Keys are fetched lazily and cached by go-oidc.
func NewJWKSVerifier(ctx context.Context, cfg JWKSConfig) (*JWKSVerifier, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.JWKSURL == "" {
		return nil, errors.New("jwks URL is required")
	}
	aud := cfg.Audience
	if aud == "" {
		aud = DefaultAudience
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	ctx = gooidc.ClientContext(ctx, httpClient)
	keys := gooidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	return &JWKSVerifier{
		verifier: gooidc.NewVerifier(cfg.Issuer, keys, &gooidc.Config{
			ClientID:             aud,
			SupportedSigningAlgs: []string{gooidc.RS256, gooidc.ES256},
		}),
	}, nil
}

// Verify checks signature, issuer, audience and expiry.
func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (domainauth.Principal, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var claims AccessClaims
	if err := tok.Claims(&claims); err != nil {
		return domainauth.Principal{}, fmt.Errorf("decode claims: %w", err)
	}
	claims.Subject = tok.Subject
	return claims.Principal()
}
