package bootstrap

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jerseyretro/storefront/config"
	"github.com/jerseyretro/storefront/internal/adapters/ratelimit"
	redisadapter "github.com/jerseyretro/storefront/internal/adapters/redis"
	"github.com/jerseyretro/storefront/internal/observability/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAuthLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.RateLimitConfig{Enabled: true, PerWindow: 2, Window: time.Minute, Burst: 2}

	l, err := buildAuthLimiter(cfg, client, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &redisadapter.RateLimiter{}, l)

	l, err = buildAuthLimiter(cfg, nil, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.Memory{}, l)

	cfg.Enabled = false
	l, err = buildAuthLimiter(cfg, client, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestBuildObjectStore_Disabled(t *testing.T) {
	store, err := buildObjectStore(context.Background(), config.StorageConfig{}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func newTestContainer(t *testing.T, mutate func(*config.AppConfig)) (*config.AppConfig, ServiceContainer) {
	t.Helper()
	cfg := &config.AppConfig{}
	cfg.Auth.Mode = config.AuthModeMock
	cfg.Auth.DevAuth.JWTSecret = "dev-secret"
	cfg.Auth.Bootstrap = config.BootstrapConfig{Email: "admin@jersey.com", Password: "admin123"}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, PerWindow: 5, Window: time.Minute}
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Sanitize()

	// sql.Open does not connect; the routes exercised here never reach the database.
	db, err := sql.Open("pgx", "postgres://nobody@127.0.0.1:1/none")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	auth, err := BuildAuth(context.Background(), AuthConfig{Auth: cfg.Auth, Logger: discardLogger()})
	require.NoError(t, err)

	svcs, err := NewServices(context.Background(), &ServiceDeps{
		Config:  cfg,
		DB:      db,
		Auth:    auth,
		Metrics: metrics.New(),
		Logger:  discardLogger(),
	})
	require.NoError(t, err)
	return cfg, svcs
}

func TestNewServices_BootstrapGate(t *testing.T) {
	_, svcs := newTestContainer(t, nil)
	assert.Nil(t, svcs.Bootstrap)
	assert.NotNil(t, svcs.Signup)
	assert.NotNil(t, svcs.Catalog)
	assert.NotNil(t, svcs.AdminAccounts)
	assert.IsType(t, &ratelimit.Memory{}, svcs.AuthLimiter)

	_, svcs = newTestContainer(t, func(c *config.AppConfig) { c.Auth.Bootstrap.Enabled = true })
	assert.NotNil(t, svcs.Bootstrap)
}

func TestNewHTTPServer_Routes(t *testing.T) {
	cfg, svcs := newTestContainer(t, nil)
	srv := NewHTTPServer(&HTTPServerConfig{Config: cfg, Services: svcs, Logger: discardLogger()})
	assert.Equal(t, ":8080", srv.Addr)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/auth/dev-login", http.StatusNotFound},
		{http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/auth/v1/user", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
		require.NoError(t, err)
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, tt.want, resp.StatusCode, "%s %s", tt.method, tt.path)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg, svcs := newTestContainer(t, nil)
	srv := NewHTTPServer(&HTTPServerConfig{Config: cfg, Services: svcs, Logger: discardLogger()})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeOptions{Server: srv, Listener: ln, ShutdownTimeout: time.Second, Logger: discardLogger()})
	}()

	require.Eventually(t, func() bool {
		resp, getErr := http.Get("http://" + ln.Addr().String() + "/healthz")
		if getErr != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
