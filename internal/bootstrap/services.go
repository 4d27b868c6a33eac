package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jerseyretro/storefront/config"
	"github.com/jerseyretro/storefront/internal/adapters/authroles"
	"github.com/jerseyretro/storefront/internal/adapters/objectstore"
	"github.com/jerseyretro/storefront/internal/adapters/ratelimit"
	redisadapter "github.com/jerseyretro/storefront/internal/adapters/redis"
	"github.com/jerseyretro/storefront/internal/core"
	"github.com/jerseyretro/storefront/internal/data"
	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/jerseyretro/storefront/internal/ports"
	"github.com/jerseyretro/storefront/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	// Bootstrap is nil unless the dev-login route is enabled.
	Bootstrap     *service.AdminBootstrapService
	Signup        *service.SignupService
	Catalog       *service.CatalogService
	AdminAccounts *service.AdminAccountService
	Auth          AuthComponents
	AuthLimiter   ports.RateLimiter
	Metrics       *metrics.Metrics
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Optional
	Auth        AuthComponents
	Metrics     *metrics.Metrics // Optional
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users      *data.UserRepo
	Categories *data.CategoryRepo
	Products   *data.ProductRepo
	Images     *data.ProductImageRepo
	Cache      core.CacheRepository
}

func newServiceRepositories(deps *ServiceDeps) serviceRepositories {
	repos := serviceRepositories{
		Users:      data.NewUserRepo(deps.DB),
		Categories: data.NewCategoryRepo(deps.DB),
		Products:   data.NewProductRepo(deps.DB),
		Images:     data.NewProductImageRepo(deps.DB),
	}
	if deps.RedisClient != nil {
		repos.Cache = data.NewRedisCacheRepo(deps.RedisClient, deps.Config.Cache.Prefix)
	}
	return repos
}

// NewServices builds the service container. Storage and limiter failures are returned;
// optional infrastructure that is not configured is skipped with a log line.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	telemetry := service.Telemetry{Logger: logger, Metrics: deps.Metrics}
	repos := newServiceRepositories(deps)

	objects, err := buildObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	limiter, err := buildAuthLimiter(cfg.RateLimit, deps.RedisClient, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	out := ServiceContainer{
		Auth:        deps.Auth,
		AuthLimiter: limiter,
		Metrics:     deps.Metrics,
	}

	out.Catalog = service.NewCatalogService(service.CatalogServiceOptions{
		Repos: service.CatalogRepositories{
			Products:   repos.Products,
			Categories: repos.Categories,
			Images:     repos.Images,
		},
		Categories: core.NewCategoryCache(core.CategoryCacheOptions{
			Cache:      repos.Cache,
			Categories: repos.Categories,
			TTL:        cfg.Cache.CategoriesTTL,
			Logger:     logger,
		}),
		Storage: service.CatalogStorage{Objects: objects, Telemetry: telemetry},
	})

	if deps.Auth.Registrar != nil {
		out.Signup = service.NewSignupService(service.SignupServiceOptions{
			Registrar: deps.Auth.Registrar,
			Users:     repos.Users,
			Config: service.SignupConfig{
				Roles:     authroles.NewStaticRoleMapper(cfg.Auth.AdminEmails),
				Telemetry: telemetry,
			},
		})
	}

	if cfg.BootstrapEnabled() {
		out.Bootstrap = service.NewAdminBootstrapService(service.AdminBootstrapServiceOptions{
			Users: repos.Users,
			Credentials: service.BootstrapCredentials{
				Email:    cfg.Auth.Bootstrap.Email,
				Password: cfg.Auth.Bootstrap.Password,
				Name:     cfg.Auth.Bootstrap.Name,
			},
			Telemetry: telemetry,
		})
		logger.WarnContext(ctx, "admin bootstrap login enabled", "email", cfg.Auth.Bootstrap.Email)
	}

	out.AdminAccounts = service.NewAdminAccountService(service.AdminAccountServiceOptions{
		Users:     repos.Users,
		Accounts:  deps.Auth.Accounts,
		Telemetry: telemetry,
	})

	return out, nil
}

//nolint:ireturn // nil interface when storage is not configured.
func buildObjectStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (ports.ObjectStore, error) {
	if !cfg.Enabled() {
		logger.InfoContext(ctx, "object storage not configured; image uploads disabled")
		return nil, nil
	}
	store, err := objectstore.New(objectstore.Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Region:    cfg.Region,
		Bucket:    cfg.Bucket,
		PublicURL: cfg.PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store: %w", err)
	}
	return store, nil
}

// buildAuthLimiter prefers the shared Redis limiter and falls back to an in-process token bucket.
//
//nolint:ireturn // limiter kind depends on configuration.
func buildAuthLimiter(cfg config.RateLimitConfig, client redis.UniversalClient, logger *slog.Logger) (ports.RateLimiter, error) {
	if !cfg.Enabled {
		logger.Warn("auth rate limiting disabled")
		return nil, nil
	}
	if client != nil {
		l, err := redisadapter.NewRateLimiter(client, redisadapter.RateLimiterOptions{
			Prefix: "ratelimit:auth:",
			Limit:  cfg.PerWindow,
			Window: cfg.Window,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis rate limiter: %w", err)
		}
		return l, nil
	}
	return ratelimit.NewMemory(cfg.PerWindow, cfg.Window, cfg.Burst), nil
}
