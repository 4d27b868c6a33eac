package oidc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
)

var _ ports.TokenVerifier = (*HS256Verifier)(nil)

// HS256Config configures shared-secret verification.
type HS256Config struct {
	Secret   string
	Issuer   string // optional
	Audience string // defaults to DefaultAudience
}

// HS256Verifier verifies tokens signed with the provider's JWT secret.
type HS256Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewHS256Verifier creates a verifier for the shared secret.
func NewHS256Verifier(cfg HS256Config) (*HS256Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	aud := cfg.Audience
	if aud == "" {
		aud = DefaultAudience
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(aud),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &HS256Verifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify parses and validates raw.
func (v *HS256Verifier) Verify(_ context.Context, raw string) (domainauth.Principal, error) {
	var claims AccessClaims
	if _, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return domainauth.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims.Principal()
}
