// Package oidc verifies provider-issued access tokens, either against a JWKS
// endpoint (asymmetric keys) or a shared HS256 secret.
package oidc

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
)

// DefaultAudience is the audience GoTrue stamps on user access tokens.
const DefaultAudience = "authenticated"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// AccessClaims is the GoTrue access token payload.
type AccessClaims struct {
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the domain principal.
func (c AccessClaims) Principal() (domainauth.Principal, error) {
	if c.Subject == "" {
		return domainauth.Principal{}, ErrInvalidToken
	}
	var exp time.Time
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	return domainauth.Principal{
		Subject: c.Subject,
		Email:   c.Email,
		Claims: domainauth.Claims{
			UserMetadata: domainauth.MetadataFromMap(c.UserMetadata),
			AppMetadata:  domainauth.MetadataFromMap(c.AppMetadata),
		},
		ExpiresAt: exp,
	}, nil
}
