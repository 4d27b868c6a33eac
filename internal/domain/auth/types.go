package auth

// Package auth contains domain-level types for sessions, claims, and role derivation.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and JSON payloads.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// RoleFromAdmin returns RoleAdmin when admin is true, RoleUser otherwise.
func RoleFromAdmin(admin bool) Role {
	if admin {
		return RoleAdmin
	}
	return RoleUser
}

// Origin tags where a session came from.
type Origin string

const (
	// OriginRemote sessions were issued and verified by the credential verifier.
	OriginRemote Origin = "remote"
	// OriginLocalFallback sessions were fabricated client-side after an admin bootstrap call.
	// They are never accepted as proof of identity by anything other than the client itself.
	OriginLocalFallback Origin = "local-fallback"
)

// Metadata is one layer of role/name metadata attached to a subject.
// An empty Role means the layer does not assert a role.
type Metadata struct {
	Name string `json:"name,omitempty"`
	Role Role   `json:"role,omitempty"`
}

// Claims holds the two independently sourced metadata layers.
// UserMetadata is self-reported at signup; AppMetadata is asserted by the provider only.
type Claims struct {
	UserMetadata Metadata `json:"user_metadata"`
	AppMetadata  Metadata `json:"app_metadata"`
}

// ResolvedRole returns the provider-asserted role, falling back to the
// self-reported role when the provider asserts none.
func (c Claims) ResolvedRole() Role {
	if r := normalizeRole(c.AppMetadata.Role); r != "" {
		return r
	}
	return normalizeRole(c.UserMetadata.Role)
}

// IsAdmin reports whether the claims resolve to the elevated-privilege role.
func IsAdmin(c Claims) bool {
	return c.ResolvedRole() == RoleAdmin
}

// IsAssertedAdmin reports whether the provider itself asserts the admin role.
// Self-reported metadata is settable by any account holder and is ignored.
func IsAssertedAdmin(c Claims) bool {
	return normalizeRole(c.AppMetadata.Role) == RoleAdmin
}

func normalizeRole(r Role) Role {
	return Role(strings.TrimSpace(string(r)))
}

// Session represents the currently authenticated actor.
// Token fields are only populated for remote sessions.
type Session struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Origin       Origin    `json:"origin,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	Claims
}

// IsFallback reports whether the session was fabricated locally.
func (s Session) IsFallback() bool { return s.Origin == OriginLocalFallback }

// DisplayName returns the best available human-readable name.
func (s Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.UserMetadata.Name != "" {
		return s.UserMetadata.Name
	}
	return s.Email
}

// Principal is the verified identity extracted from a remote access token on the server side.
type Principal struct {
	Subject   string
	Email     string
	Claims    Claims
	ExpiresAt time.Time
}

// IsAdmin reports whether the token itself proves the elevated role. Only the
// provider-asserted layer counts; see IsAssertedAdmin.
func (p Principal) IsAdmin() bool { return IsAssertedAdmin(p.Claims) }

// MetadataFromMap extracts the name and role keys from a free-form provider
// metadata object. Non-string values are ignored.
func MetadataFromMap(m map[string]any) Metadata {
	var md Metadata
	if s, ok := m["name"].(string); ok {
		md.Name = s
	}
	if s, ok := m["role"].(string); ok {
		md.Role = Role(s)
	}
	return md
}

// Map renders the metadata as a provider metadata object, omitting empty keys.
func (m Metadata) Map() map[string]any {
	out := map[string]any{}
	if m.Name != "" {
		out["name"] = m.Name
	}
	if m.Role != "" {
		out["role"] = string(m.Role)
	}
	return out
}
