// Command storefront runs the jersey storefront HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jerseyretro/storefront/config"
	"github.com/jerseyretro/storefront/internal/bootstrap"
	"github.com/jerseyretro/storefront/internal/devseed"
	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/jerseyretro/storefront/internal/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	logger := bootstrap.InitLogger(cfg.Observability.Level())
	if err := run(ctx, &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	logStartupInfo(ctx, logger, cfg)

	db, redisClient, err := initInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	var m *metrics.Metrics
	if cfg.Observability.MetricsEnabled {
		m = metrics.New()
	}

	auth, err := bootstrap.BuildAuth(ctx, bootstrap.AuthConfig{
		Auth:       cfg.Auth,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	services, err := bootstrap.NewServices(ctx, &bootstrap.ServiceDeps{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
		Auth:        auth,
		Metrics:     m,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	seedDevProvider(ctx, cfg, services, logger)

	server := bootstrap.NewHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   cfg,
		Services: services,
		DB:       db,
		Logger:   logger,
	})
	return bootstrap.Serve(ctx, bootstrap.ServeOptions{
		Server:          server,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		Logger:          logger,
	})
}

// seedDevProvider registers the bootstrap admin with the in-memory dev provider,
// and in dev mode also fills an empty catalog. Failures are logged only.
func seedDevProvider(ctx context.Context, cfg *config.AppConfig, services bootstrap.ServiceContainer, logger *slog.Logger) {
	if services.Auth.DevProvider == nil || !cfg.BootstrapEnabled() {
		return
	}
	svcs := devseed.Services{
		Admins: services.AdminAccounts,
		Admin: service.CreateAdminInput{
			Email:    cfg.Auth.Bootstrap.Email,
			Password: cfg.Auth.Bootstrap.Password,
			Name:     cfg.Auth.Bootstrap.Name,
		},
	}
	if cfg.IsDev {
		svcs.Catalog = services.Catalog
	}
	if err := devseed.Run(ctx, svcs, logger); err != nil {
		logger.WarnContext(ctx, "development seeding incomplete", "error", err)
	}
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting storefront",
		"addr", cfg.HTTP.Addr,
		"auth_mode", string(cfg.Auth.Mode),
		"dev", cfg.IsDev,
		"db_host", cfg.Postgres.Host,
		"db_name", cfg.Postgres.Name,
		"redis", cfg.Redis.Enabled(),
		"storage", cfg.Storage.Enabled())
}

// initInfrastructure connects shared dependencies used by the service runtime.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	db, err := bootstrap.ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}

	redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database after redis connect failure", "error", cerr)
			return nil, nil, fmt.Errorf("connect redis: %w", errors.Join(err, fmt.Errorf("close database: %w", cerr)))
		}
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	return db, redisClient, nil
}
