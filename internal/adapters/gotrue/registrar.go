package gotrue

import (
	"context"
	"net/http"

	"github.com/jerseyretro/storefront/internal/ports"
)

var _ ports.AccountRegistrar = (*Registrar)(nil)

// Registrar creates accounts through the public signup endpoint.
type Registrar struct {
	t transport
}

// NewRegistrar creates a Registrar authenticated with the anon key.
func NewRegistrar(url, anonKey string, client *http.Client) (*Registrar, error) {
	t, err := newTransport(url, anonKey, client)
	if err != nil {
		return nil, err
	}
	return &Registrar{t: t}, nil
}

// Register signs a new account up with self-reported metadata.
func (r *Registrar) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisteredAccount, error) {
	req := map[string]any{
		"email":    in.Email,
		"password": in.Password,
		"data":     in.Metadata.Map(),
	}
	// Depending on email confirmation settings the provider answers with
	// either a bare user or a session wrapping one.
	var out struct {
		wireUser
		User *wireUser `json:"user"`
	}
	if err := r.t.do(ctx, http.MethodPost, "/signup", "", req, &out); err != nil {
		return ports.RegisteredAccount{}, err
	}
	u := out.wireUser
	if out.User != nil && out.User.ID != "" {
		u = *out.User
	}
	return ports.RegisteredAccount{ID: u.ID, Email: u.Email}, nil
}
