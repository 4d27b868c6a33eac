package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jerseyretro/storefront/internal/adapters/authroles"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
	"github.com/jerseyretro/storefront/internal/mocks"
	mockauth "github.com/jerseyretro/storefront/internal/mocks/auth"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var defaultAdminEmails = []string{"admin@jersey.com", "admin@example.com", "admin@gmail.com"}

type rejection struct {
	status int
	msg    string
}

func (r *rejection) Error() string            { return r.msg }
func (r *rejection) RejectionStatus() int     { return r.status }
func (r *rejection) RejectionMessage() string { return r.msg }

func newSignupService(t *testing.T, reg ports.AccountRegistrar) (*SignupService, *mocks.MockUserRepository) {
	t.Helper()
	users := mocks.NewMockUserRepository(gomock.NewController(t))
	return NewSignupService(SignupServiceOptions{
		Registrar: reg,
		Users:     users,
		Config:    SignupConfig{Roles: authroles.NewStaticRoleMapper(defaultAdminEmails)},
	}), users
}

func TestSignupService_RoleAssignment(t *testing.T) {
	tests := []struct {
		email string
		want  domainauth.Role
	}{
		{"x@gmail.com", domainauth.RoleUser},
		{"ADMIN@EXAMPLE.COM", domainauth.RoleAdmin},
		{" admin@jersey.com ", domainauth.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			reg := &mockauth.FakeRegistrar{}
			svc, users := newSignupService(t, reg)
			users.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, req *model.CreateUserRequest) (*model.User, error) {
					assert.Equal(t, tt.want, req.Role)
					assert.Equal(t, "acct-1", req.ID)
					return &model.User{ID: req.ID, Email: req.Email, Name: req.Name, Role: req.Role}, nil
				})

			user, err := svc.SignUp(context.Background(), SignupRequest{Email: tt.email, Password: "secret1", Name: "X"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, user.Role)
			assert.Equal(t, tt.want, reg.Last.Metadata.Role, "self-reported role sent to the provider")
			assert.Equal(t, "X", reg.Last.Metadata.Name)
		})
	}
}

func TestSignupService_Failures(t *testing.T) {
	tests := []struct {
		name       string
		req        SignupRequest
		register   func(context.Context, ports.RegisterInput) (ports.RegisteredAccount, error)
		upsertErr  error
		wantStatus int
		wantMsg    string
	}{
		{
			name: "missing name", req: SignupRequest{Email: "x@gmail.com", Password: "pw"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "provider rejects",
			req:  SignupRequest{Email: "x@gmail.com", Password: "pw", Name: "X"},
			register: func(context.Context, ports.RegisterInput) (ports.RegisteredAccount, error) {
				return ports.RegisteredAccount{}, &rejection{status: 422, msg: "User already registered"}
			},
			wantStatus: http.StatusUnprocessableEntity, wantMsg: "User already registered",
		},
		{
			name: "provider 5xx",
			req:  SignupRequest{Email: "x@gmail.com", Password: "pw", Name: "X"},
			register: func(context.Context, ports.RegisterInput) (ports.RegisteredAccount, error) {
				return ports.RegisteredAccount{}, &rejection{status: 503, msg: "down"}
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "provider unreachable",
			req:  SignupRequest{Email: "x@gmail.com", Password: "pw", Name: "X"},
			register: func(context.Context, ports.RegisterInput) (ports.RegisteredAccount, error) {
				return ports.RegisteredAccount{}, errors.New("dial tcp: connection refused")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "no identity",
			req:  SignupRequest{Email: "x@gmail.com", Password: "pw", Name: "X"},
			register: func(context.Context, ports.RegisterInput) (ports.RegisteredAccount, error) {
				return ports.RegisteredAccount{}, nil
			},
			wantStatus: http.StatusBadRequest, wantMsg: "Failed to create user",
		},
		{
			name:       "mirror fails",
			req:        SignupRequest{Email: "x@gmail.com", Password: "pw", Name: "X"},
			upsertErr:  errors.New("db down"),
			wantStatus: http.StatusInternalServerError, wantMsg: "db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newSignupService(t, &mockauth.FakeRegistrar{RegisterFunc: tt.register})
			if tt.upsertErr != nil {
				users.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil, tt.upsertErr)
			}

			_, err := svc.SignUp(context.Background(), tt.req)
			appErr, ok := apperrors.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
		})
	}
}
