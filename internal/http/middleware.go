package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/jerseyretro/storefront/internal/ports"
)

// Logging returns a middleware that logs HTTP requests and records request metrics.
// The route label is the matched ServeMux pattern, so it must wrap the mux directly
// or through middleware that does not replace the request.
func Logging(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequest(r.Method, route, ww.status, elapsed)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", route),
				slog.Int("status", ww.status),
				slog.Duration("duration", elapsed),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, ErrorParams{Code: http.StatusInternalServerError, Message: "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AdminChecker decides server-side admin access for a verified principal.
type AdminChecker interface {
	IsAdmin(ctx context.Context, p domainauth.Principal) (bool, error)
}

// RequireAuth returns a middleware that requires a valid bearer token.
// If the token is missing or invalid, it returns a 401 Unauthorized response.
func RequireAuth(verifier ports.TokenVerifier) func(http.Handler) http.Handler {
	return requirePrincipal(verifier, nil, nil)
}

// RequireAdmin returns a middleware that requires a valid bearer token of an admin.
// With a nil checker only a provider-asserted admin role is accepted. Non-admins get 403.
func RequireAdmin(verifier ports.TokenVerifier, admins AdminChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	check := func(r *http.Request, p domainauth.Principal) (bool, error) {
		if admins == nil {
			return p.IsAdmin(), nil
		}
		return admins.IsAdmin(r.Context(), p)
	}
	return requirePrincipal(verifier, check, logger)
}

type adminCheck func(r *http.Request, p domainauth.Principal) (bool, error)

func requirePrincipal(verifier ports.TokenVerifier, admin adminCheck, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" || verifier == nil {
				WriteError(w, ErrorParams{Code: http.StatusUnauthorized, Message: "Authentication required"})
				return
			}
			principal, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				WriteError(w, ErrorParams{Code: http.StatusUnauthorized, Message: "Invalid or expired token"})
				return
			}
			if admin != nil {
				ok, err := admin(r, principal)
				if err != nil {
					logger.ErrorContext(r.Context(), "admin check failed", "subject", principal.Subject, "error", err)
					WriteError(w, ErrorParams{Code: http.StatusInternalServerError, Message: "Internal server error"})
					return
				}
				if !ok {
					WriteError(w, ErrorParams{Code: http.StatusForbidden, Message: "Admin access required"})
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
