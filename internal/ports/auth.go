package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service and internal/authclient.

import (
	"context"
	"errors"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
)

// ErrSlotEmpty is returned by Slot.Load when nothing is persisted.
var ErrSlotEmpty = errors.New("slot empty")

// SessionEventKind identifies a credential verifier change notification.
type SessionEventKind string

const (
	SessionSignedIn       SessionEventKind = "SIGNED_IN"
	SessionSignedOut      SessionEventKind = "SIGNED_OUT"
	SessionTokenRefreshed SessionEventKind = "TOKEN_REFRESHED"
)

// SessionEvent is delivered to verifier subscribers. Session is nil on sign-out.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *domainauth.Session
}

// CredentialVerifier is the client's view of the hosted auth provider.
type CredentialVerifier interface {
	// CurrentSession returns the persisted remote session, or nil when there is none.
	CurrentSession(ctx context.Context) (*domainauth.Session, error)
	// SignInWithPassword authenticates and returns the new remote session.
	SignInWithPassword(ctx context.Context, email, password string) (*domainauth.Session, error)
	// SignOut revokes the remote session.
	SignOut(ctx context.Context) error
	// Subscribe registers fn for change notifications and returns a func that removes it.
	// No event is replayed on subscription.
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
}

// BootstrapUser is the user record returned by the admin bootstrap endpoint.
type BootstrapUser struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	Name         string              `json:"name"`
	Role         domainauth.Role     `json:"role"`
	UserMetadata domainauth.Metadata `json:"user_metadata"`
}

// AdminBootstrapper calls the admin bootstrap endpoint.
type AdminBootstrapper interface {
	DevLogin(ctx context.Context, email, password string) (*BootstrapUser, error)
}

// SignupInput carries a signup request.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignupClient calls the signup endpoint.
type SignupClient interface {
	SignUp(ctx context.Context, in SignupInput) error
}

// Slot is a single named persistent value on the client.
type Slot interface {
	// Load returns ErrSlotEmpty when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, data []byte) error
	// Remove is a no-op when nothing is stored.
	Remove(ctx context.Context) error
}

// RegisterInput carries a provider account registration.
type RegisterInput struct {
	Email    string
	Password string
	Metadata domainauth.Metadata
}

// RegisteredAccount is the provider's answer to a registration. ID may be empty
// when the provider accepted the request without creating an identity.
type RegisteredAccount struct {
	ID    string
	Email string
}

// AccountRegistrar creates accounts at the hosted auth provider.
type AccountRegistrar interface {
	Register(ctx context.Context, in RegisterInput) (RegisteredAccount, error)
}

// AdminAccount is a provider account as seen through the service-role API.
type AdminAccount struct {
	ID     string
	Email  string
	Claims domainauth.Claims
}

// CreateAccountInput carries a service-role account creation.
type CreateAccountInput struct {
	Email        string
	Password     string
	EmailConfirm bool
	Claims       domainauth.Claims
}

// AccountAdmin manages provider accounts with elevated credentials.
type AccountAdmin interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (AdminAccount, error)
	FindAccountByEmail(ctx context.Context, email string) (*AdminAccount, error)
	UpdateClaims(ctx context.Context, id string, claims domainauth.Claims) (AdminAccount, error)
}

// TokenVerifier validates bearer access tokens on the server side.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.Principal, error)
}

// RoleMapper picks the role a newly registered account receives.
type RoleMapper interface {
	RoleFor(email string) domainauth.Role
}

// RateLimiter reports whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ProviderRejection is implemented by provider errors that carry the provider's own
// status code and message, so callers can relay them unchanged.
type ProviderRejection interface {
	error
	RejectionStatus() int
	RejectionMessage() string
}
