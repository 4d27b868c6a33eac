package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/jerseyretro/storefront/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	// Bootstrap serves POST /api/auth/dev-login. The route is not registered when nil.
	Bootstrap *service.AdminBootstrapService
	Signup    *service.SignupService
	Catalog   *service.CatalogService
	// Verifier checks bearer tokens for authenticated and admin routes.
	Verifier ports.TokenVerifier
	// Admins decides admin access. Only provider-asserted roles count when nil.
	Admins AdminChecker
	// AuthLimiter throttles the dev-login and signup routes per client IP.
	AuthLimiter     ports.RateLimiter
	RateLimitWindow time.Duration
	TrustProxy      bool
	// DevAuth, when set, is mounted at /auth/v1/ (mock auth mode).
	DevAuth http.Handler
	DB      Pinger
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewRouter creates and configures the HTTP router with logging and panic recovery.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	services.Logger = logger

	mux := http.NewServeMux()
	registerAuthRoutes(mux, services)
	if services.Catalog != nil {
		registerCatalogRoutes(mux, services)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.DB))
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics.Handler())
	}
	if services.DevAuth != nil {
		mux.Handle("/auth/v1/", services.DevAuth)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, Message: "Not found"})
	})

	var h http.Handler = mux
	h = Recover(logger)(h)
	return Logging(logger, services.Metrics)(h)
}

func registerAuthRoutes(mux *http.ServeMux, s RouterServices) {
	h := &AuthHandlers{Bootstrap: s.Bootstrap, Signup: s.Signup, Admins: s.Admins, Logger: s.Logger}
	limit := func(route string) func(http.Handler) http.Handler {
		return RateLimit(RateLimitConfig{
			Limiter:    s.AuthLimiter,
			Route:      route,
			RetryAfter: s.RateLimitWindow,
			TrustProxy: s.TrustProxy,
			Metrics:    s.Metrics,
			Logger:     s.Logger,
		})
	}

	if s.Bootstrap != nil {
		mux.Handle("POST /api/auth/dev-login", limit("dev-login")(http.HandlerFunc(h.DevLogin)))
	}
	if s.Signup != nil {
		mux.Handle("POST /api/auth/signup", limit("signup")(http.HandlerFunc(h.SignUp)))
	}
	mux.Handle("GET /api/auth/me", RequireAuth(s.Verifier)(http.HandlerFunc(h.Me)))
}

func registerCatalogRoutes(mux *http.ServeMux, s RouterServices) {
	h := &CatalogHandlers{Svc: s.Catalog, Logger: s.Logger}
	admin := RequireAdmin(s.Verifier, s.Admins, s.Logger)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/categories", h.ListCategories)

	mux.Handle("GET /api/admin/stats", admin(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /api/admin/categories", admin(http.HandlerFunc(h.AdminListCategories)))
	mux.Handle("POST /api/admin/categories", admin(http.HandlerFunc(h.CreateCategory)))
	mux.Handle("POST /api/admin/products", admin(http.HandlerFunc(h.CreateProduct)))
	mux.Handle("POST /api/admin/products/{id}/images", admin(http.HandlerFunc(h.UploadImage)))
	mux.Handle("POST /api/create-bucket", admin(http.HandlerFunc(h.CreateBucket)))
}
