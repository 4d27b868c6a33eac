package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
)

var _ ports.AccountAdmin = (*Admin)(nil)

const adminPageSize = 100

// Admin manages accounts with the service-role key.
type Admin struct {
	t transport
}

// NewAdmin creates an Admin. serviceKey is sent both as apikey and bearer token.
func NewAdmin(url, serviceKey string, client *http.Client) (*Admin, error) {
	if serviceKey == "" {
		return nil, errors.New("service role key is required")
	}
	t, err := newTransport(url, serviceKey, client)
	if err != nil {
		return nil, err
	}
	t.bearer = serviceKey
	return &Admin{t: t}, nil
}

// CreateAccount creates a confirmed or unconfirmed account with both metadata layers.
func (a *Admin) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (ports.AdminAccount, error) {
	req := map[string]any{
		"email":         in.Email,
		"password":      in.Password,
		"email_confirm": in.EmailConfirm,
		"user_metadata": in.Claims.UserMetadata.Map(),
		"app_metadata":  in.Claims.AppMetadata.Map(),
	}
	var out wireUser
	if err := a.t.do(ctx, http.MethodPost, "/admin/users", "", req, &out); err != nil {
		return ports.AdminAccount{}, err
	}
	return toAdminAccount(out), nil
}

// FindAccountByEmail pages through accounts looking for email. It returns nil when absent.
func (a *Admin) FindAccountByEmail(ctx context.Context, email string) (*ports.AdminAccount, error) {
	want := strings.ToLower(strings.TrimSpace(email))
	for page := 1; ; page++ {
		q := url.Values{"page": {fmt.Sprint(page)}, "per_page": {fmt.Sprint(adminPageSize)}}
		var out struct {
			Users []wireUser `json:"users"`
		}
		if err := a.t.do(ctx, http.MethodGet, "/admin/users?"+q.Encode(), "", nil, &out); err != nil {
			return nil, err
		}
		for _, u := range out.Users {
			if strings.ToLower(u.Email) == want {
				acct := toAdminAccount(u)
				return &acct, nil
			}
		}
		if len(out.Users) < adminPageSize {
			return nil, nil
		}
	}
}

// UpdateClaims replaces both metadata layers of an account.
func (a *Admin) UpdateClaims(ctx context.Context, id string, claims domainauth.Claims) (ports.AdminAccount, error) {
	if id == "" {
		return ports.AdminAccount{}, errors.New("account id is required")
	}
	req := map[string]any{
		"user_metadata": claims.UserMetadata.Map(),
		"app_metadata":  claims.AppMetadata.Map(),
	}
	var out wireUser
	if err := a.t.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id), "", req, &out); err != nil {
		return ports.AdminAccount{}, err
	}
	return toAdminAccount(out), nil
}

func toAdminAccount(u wireUser) ports.AdminAccount {
	return ports.AdminAccount{ID: u.ID, Email: u.Email, Claims: u.claims()}
}
