package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jerseyretro/storefront/internal/core"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/jerseyretro/storefront/internal/ports"
)

// SignupRequest carries a signup form.
type SignupRequest struct {
	Email    string
	Password string
	Name     string
}

// SignupServiceOptions groups dependencies for SignupService.
type SignupServiceOptions struct {
	Registrar ports.AccountRegistrar // Required
	Users     core.UserRepository    // Required
	Config    SignupConfig
}

// SignupConfig holds role assignment and telemetry.
type SignupConfig struct {
	// Roles assigns the signup role. Every account is a plain user when nil.
	Roles     ports.RoleMapper
	Telemetry Telemetry
}

// SignupService registers accounts at the provider and mirrors them into the users table.
type SignupService struct {
	registrar ports.AccountRegistrar
	users     core.UserRepository
	roles     ports.RoleMapper
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewSignupService constructs a SignupService.
func NewSignupService(opts SignupServiceOptions) *SignupService {
	if opts.Registrar == nil {
		panic("AccountRegistrar is required")
	}
	if opts.Users == nil {
		panic("UserRepository is required")
	}
	return &SignupService{
		registrar: opts.Registrar,
		users:     opts.Users,
		roles:     opts.Config.Roles,
		logger:    opts.Config.Telemetry.logger("signup"),
		metrics:   opts.Config.Telemetry.Metrics,
	}
}

// RoleFor returns the role a new account with email receives.
func (s *SignupService) RoleFor(email string) domainauth.Role {
	if s.roles == nil {
		return domainauth.RoleUser
	}
	return s.roles.RoleFor(email)
}

// SignUp creates the provider account and the users row.
// Provider 4xx rejections keep their status and message; anything else from the provider is upstream.
func (s *SignupService) SignUp(ctx context.Context, req SignupRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return nil, apperrors.Validation("Email, password and name are required")
	}
	role := s.RoleFor(email)

	acct, err := s.registrar.Register(ctx, ports.RegisterInput{
		Email:    email,
		Password: req.Password,
		Metadata: domainauth.Metadata{Name: name, Role: role},
	})
	if err != nil {
		err = providerError(err)
		s.metrics.Signup(metrics.ResultError, string(role), err)
		s.logger.WarnContext(ctx, "signup rejected by provider", "email", email, "error", err)
		return nil, err
	}
	if acct.ID == "" {
		err := apperrors.Validation("Failed to create user")
		s.metrics.Signup(metrics.ResultError, string(role), err)
		return nil, err
	}

	user, err := s.users.Upsert(ctx, &model.CreateUserRequest{
		ID:    acct.ID,
		Email: email,
		Name:  name,
		Role:  role,
	})
	if err != nil {
		err = wrapStoreError(err)
		s.metrics.Signup(metrics.ResultError, string(role), err)
		s.logger.ErrorContext(ctx, "mirror signed-up user", "email", email, "error", err)
		return nil, err
	}
	s.metrics.Signup(metrics.ResultSuccess, string(role), nil)
	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID, "role", role)
	return user, nil
}

// providerError relays provider 4xx answers verbatim and treats everything else as unavailable.
func providerError(err error) error {
	var rej ports.ProviderRejection
	if errors.As(err, &rej) {
		status := rej.RejectionStatus()
		if status >= 400 && status < 500 {
			return apperrors.Wrap(err, apperrors.ErrCodeValidation, rej.RejectionMessage()).WithStatus(status)
		}
	}
	return apperrors.Upstream(err, "Auth provider unavailable")
}
