package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/domain/model"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/jerseyretro/storefront/internal/service"
)

// AuthHandlers serves the admin bootstrap, signup and identity endpoints.
type AuthHandlers struct {
	Bootstrap *service.AdminBootstrapService
	Signup    *service.SignupService
	// Admins decides is_admin on /api/auth/me. Only provider-asserted roles count when nil.
	Admins AdminChecker
	Logger *slog.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// DevLogin checks the reserved admin credentials and returns the admin user record.
// No token is issued; the client keeps a local session.
func (h *AuthHandlers) DevLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Bootstrap.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    bootstrapUser(user),
	})
}

func bootstrapUser(u *model.User) ports.BootstrapUser {
	return ports.BootstrapUser{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		UserMetadata: domainauth.Metadata{Name: u.Name, Role: u.Role},
	}
}

// SignUp registers an account with the auth provider and mirrors it into the users table.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Signup.SignUp(r.Context(), service.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
	})
}

// Me returns the verified caller. Requires RequireAuth.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, Message: "Authentication required"})
		return
	}
	isAdmin := p.IsAdmin()
	if h.Admins != nil {
		var err error
		if isAdmin, err = h.Admins.IsAdmin(r.Context(), p); err != nil {
			WriteServiceError(w, r, h.Logger, err)
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"id":       p.Subject,
		"email":    p.Email,
		"claims":   p.Claims,
		"is_admin": isAdmin,
	})
}
