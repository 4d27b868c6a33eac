package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/jerseyretro/storefront/internal/core"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/observability/metrics"
)

// BootstrapCredentials is the reserved administrator pair.
type BootstrapCredentials struct {
	Email    string
	Password string
	Name     string
}

// AdminBootstrapServiceOptions groups dependencies for AdminBootstrapService.
type AdminBootstrapServiceOptions struct {
	Users       core.UserRepository // Required
	Credentials BootstrapCredentials
	Telemetry   Telemetry
}

// AdminBootstrapService lets the reserved administrator in without the auth provider.
// It only vouches for the credentials and ensures a users row exists; it issues no token.
type AdminBootstrapService struct {
	users   core.UserRepository
	creds   BootstrapCredentials
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewAdminBootstrapService constructs an AdminBootstrapService.
func NewAdminBootstrapService(opts AdminBootstrapServiceOptions) *AdminBootstrapService {
	if opts.Users == nil {
		panic("UserRepository is required")
	}
	if opts.Credentials.Email == "" || opts.Credentials.Password == "" {
		panic("bootstrap credentials are required")
	}
	if opts.Credentials.Name == "" {
		opts.Credentials.Name = "Admin Jersey"
	}
	return &AdminBootstrapService{
		users:   opts.Users,
		creds:   opts.Credentials,
		logger:  opts.Telemetry.logger("admin_bootstrap"),
		metrics: opts.Telemetry.Metrics,
	}
}

// Login checks the reserved pair and returns the administrator's user record, creating it on first use.
func (s *AdminBootstrapService) Login(ctx context.Context, email, password string) (*model.User, error) {
	if !s.matches(email, password) {
		s.metrics.BootstrapAttempt(metrics.ResultRejected, nil)
		s.logger.WarnContext(ctx, "admin bootstrap rejected", "email", email)
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	user, err := s.ensureUser(ctx)
	if err != nil {
		s.metrics.BootstrapAttempt(metrics.ResultError, err)
		s.logger.ErrorContext(ctx, "admin bootstrap user lookup failed", "error", err)
		return nil, err
	}
	s.metrics.BootstrapAttempt(metrics.ResultSuccess, nil)
	s.logger.InfoContext(ctx, "admin bootstrap login", "user_id", user.ID)
	return user, nil
}

func (s *AdminBootstrapService) matches(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.creds.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	return emailOK && passOK
}

func (s *AdminBootstrapService) ensureUser(ctx context.Context) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, s.creds.Email)
	if err == nil {
		return user, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, wrapStoreError(err)
	}

	user, err = s.users.Create(ctx, &model.CreateUserRequest{
		Email: s.creds.Email,
		Name:  s.creds.Name,
		Role:  domainauth.RoleAdmin,
	})
	if apperrors.IsConflict(err) {
		// Another request created it first.
		user, err = s.users.GetByEmail(ctx, s.creds.Email)
	}
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return user, nil
}

// wrapStoreError reports a persistence failure as internal, keeping the most specific message.
func wrapStoreError(err error) error {
	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, msg)
}
