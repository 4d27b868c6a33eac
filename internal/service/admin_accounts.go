package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jerseyretro/storefront/internal/core"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/ports"
)

// AdminAccountServiceOptions groups dependencies for AdminAccountService.
type AdminAccountServiceOptions struct {
	Users     core.UserRepository // Required
	Accounts  ports.AccountAdmin  // Optional: provider accounts are left alone when nil
	Telemetry Telemetry
}

// AdminAccountService backs the operator commands that grant the admin role
// and the server-side admin check.
type AdminAccountService struct {
	users    core.UserRepository
	accounts ports.AccountAdmin
	logger   *slog.Logger
}

// NewAdminAccountService constructs an AdminAccountService.
func NewAdminAccountService(opts AdminAccountServiceOptions) *AdminAccountService {
	if opts.Users == nil {
		panic("UserRepository is required")
	}
	return &AdminAccountService{
		users:    opts.Users,
		accounts: opts.Accounts,
		logger:   opts.Telemetry.logger("admin_accounts"),
	}
}

// CreateAdminInput describes an administrator account.
type CreateAdminInput struct {
	Email    string
	Password string
	Name     string
}

// CreateAdmin creates the provider account with the admin role in both metadata layers,
// or re-tags it when it already exists, and mirrors the users row.
func (s *AdminAccountService) CreateAdmin(ctx context.Context, in CreateAdminInput) (*model.User, error) {
	email := model.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if name == "" {
		name = email
	}
	claims := domainauth.Claims{
		UserMetadata: domainauth.Metadata{Name: name, Role: domainauth.RoleAdmin},
		AppMetadata:  domainauth.Metadata{Role: domainauth.RoleAdmin},
	}

	id := ""
	if s.accounts != nil {
		acct, err := s.upsertAccount(ctx, email, in.Password, claims)
		if err != nil {
			return nil, err
		}
		id = acct.ID
	}

	user, err := s.users.Upsert(ctx, &model.CreateUserRequest{ID: id, Email: email, Name: name, Role: domainauth.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("mirror admin user: %w", err)
	}
	s.logger.InfoContext(ctx, "admin account ready", "email", email, "user_id", user.ID)
	return user, nil
}

func (s *AdminAccountService) upsertAccount(ctx context.Context, email, password string, claims domainauth.Claims) (ports.AdminAccount, error) {
	existing, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		return ports.AdminAccount{}, fmt.Errorf("look up provider account: %w", err)
	}
	if existing != nil {
		acct, err := s.accounts.UpdateClaims(ctx, existing.ID, claims)
		if err != nil {
			return ports.AdminAccount{}, fmt.Errorf("update provider account: %w", err)
		}
		return acct, nil
	}
	if password == "" {
		return ports.AdminAccount{}, apperrors.ValidationField("password", "password is required for a new account")
	}
	acct, err := s.accounts.CreateAccount(ctx, ports.CreateAccountInput{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		Claims:       claims,
	})
	if err != nil {
		return ports.AdminAccount{}, fmt.Errorf("create provider account: %w", err)
	}
	return acct, nil
}

// IsAdmin decides server-side admin access for a verified principal. A
// provider-asserted admin role is enough; otherwise the users row mirrored under
// the principal's subject must carry the admin role. Self-reported metadata never counts.
func (s *AdminAccountService) IsAdmin(ctx context.Context, p domainauth.Principal) (bool, error) {
	if p.IsAdmin() {
		return true, nil
	}
	if p.Subject == "" {
		return false, nil
	}
	user, err := s.users.GetByID(ctx, p.Subject)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up user role: %w", err)
	}
	return user.IsAdmin(), nil
}

// MakeAdmin promotes an existing user. The provider account, when found, gets the
// provider-asserted admin role too; its self-reported name is kept.
func (s *AdminAccountService) MakeAdmin(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.SetRole(ctx, email, domainauth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if s.accounts != nil {
		acct, err := s.accounts.FindAccountByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("look up provider account: %w", err)
		}
		if acct == nil {
			s.logger.WarnContext(ctx, "no provider account to promote", "email", email)
		} else {
			claims := acct.Claims
			claims.UserMetadata.Role = domainauth.RoleAdmin
			claims.AppMetadata.Role = domainauth.RoleAdmin
			if _, err := s.accounts.UpdateClaims(ctx, acct.ID, claims); err != nil {
				return nil, fmt.Errorf("update provider account: %w", err)
			}
		}
	}
	s.logger.InfoContext(ctx, "user promoted to admin", "email", user.Email)
	return user, nil
}
