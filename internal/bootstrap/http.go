package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jerseyretro/storefront/config"
	httpx "github.com/jerseyretro/storefront/internal/http"
	"golang.org/x/sync/errgroup"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       httpx.Pinger
	Logger   *slog.Logger
}

// NewHTTPServer builds the server and its router without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
		appCfg.Sanitize()
	}

	var admins httpx.AdminChecker
	if cfg.Services.AdminAccounts != nil {
		admins = cfg.Services.AdminAccounts
	}
	handler := httpx.NewRouter(httpx.RouterServices{
		Bootstrap:       cfg.Services.Bootstrap,
		Signup:          cfg.Services.Signup,
		Catalog:         cfg.Services.Catalog,
		Verifier:        cfg.Services.Auth.Verifier,
		Admins:          admins,
		AuthLimiter:     cfg.Services.AuthLimiter,
		RateLimitWindow: appCfg.RateLimit.Window,
		TrustProxy:      appCfg.HTTP.TrustProxy,
		DevAuth:         cfg.Services.Auth.DevHandler,
		DB:              cfg.DB,
		Metrics:         cfg.Services.Metrics,
		Logger:          logger,
	})

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  appCfg.HTTP.ReadTimeout,
		WriteTimeout: appCfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

// ServeOptions controls Serve.
type ServeOptions struct {
	Server          *http.Server
	Listener        net.Listener // Optional: Server.Addr is used when nil
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Serve runs the server until ctx is canceled or SIGINT/SIGTERM arrives, then shuts it down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", opts.Server.Addr)
		var err error
		if opts.Listener != nil {
			err = opts.Server.Serve(opts.Listener)
		} else {
			err = opts.Server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()
		if err := opts.Server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
