package devauth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jerseyretro/storefront/internal/adapters/gotrue"
	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/ports"
)

// Handler serves the public provider endpoints under /auth/v1.
func (p *Provider) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", p.handleToken)
	mux.HandleFunc("POST /auth/v1/signup", p.handleSignup)
	mux.HandleFunc("POST /auth/v1/logout", p.handleLogout)
	mux.HandleFunc("GET /auth/v1/user", p.handleUser)
	return mux
}

func (p *Provider) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &gotrue.APIError{Status: http.StatusBadRequest, Message: "Could not read request body"})
		return
	}

	var (
		out tokens
		err error
	)
	switch grant := r.URL.Query().Get("grant_type"); grant {
	case "password":
		out, err = p.signIn(body.Email, body.Password)
	case "refresh_token":
		out, err = p.refresh(body.RefreshToken)
	default:
		err = &gotrue.APIError{Status: http.StatusBadRequest, Message: "unsupported_grant_type"}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (p *Provider) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Data     map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &gotrue.APIError{Status: http.StatusBadRequest, Message: "Could not read request body"})
		return
	}
	acct, err := p.Register(r.Context(), ports.RegisterInput{
		Email:    body.Email,
		Password: body.Password,
		Metadata: domainauth.MetadataFromMap(body.Data),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	doc, _ := p.user(acct.ID)
	writeJSON(w, http.StatusOK, doc)
}

func (p *Provider) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal, ok := p.authenticate(w, r)
	if !ok {
		return
	}
	p.revoke(principal.Subject)
	w.WriteHeader(http.StatusNoContent)
}

func (p *Provider) handleUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := p.authenticate(w, r)
	if !ok {
		return
	}
	doc, found := p.user(principal.Subject)
	if !found {
		writeError(w, &gotrue.APIError{Status: http.StatusNotFound, Message: "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (p *Provider) authenticate(w http.ResponseWriter, r *http.Request) (domainauth.Principal, bool) {
	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || raw == "" {
		writeError(w, &gotrue.APIError{Status: http.StatusUnauthorized, Message: "This endpoint requires a Bearer token"})
		return domainauth.Principal{}, false
	}
	principal, err := p.verifier.Verify(r.Context(), raw)
	if err != nil {
		writeError(w, &gotrue.APIError{Status: http.StatusUnauthorized, Message: "invalid JWT"})
		return domainauth.Principal{}, false
	}
	return principal, true
}

func writeError(w http.ResponseWriter, err error) {
	var apiErr *gotrue.APIError
	if !errors.As(err, &apiErr) {
		apiErr = &gotrue.APIError{Status: http.StatusInternalServerError, Message: "Internal server error"}
	}
	writeJSON(w, apiErr.Status, map[string]any{"code": apiErr.Status, "msg": apiErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
