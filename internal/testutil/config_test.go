package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		t.Setenv("TEST_DB_PORT", "")
		t.Setenv("TEST_DB_USER", "")
		cfg := DefaultTestDBConfig()
		assert.Equal(t, "55432", cfg.Port)
		assert.Equal(t, "storefront", cfg.User)
	})

	t.Run("respects TEST_DB_PORT environment variable", func(t *testing.T) {
		t.Setenv("TEST_DB_PORT", "5432")
		assert.Equal(t, "5432", DefaultTestDBConfig().Port)
	})
}

func TestTestDBConfig_DSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", DBName: "shop"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/shop?sslmode=disable", cfg.DSN())
}

func TestSetupTestRedis(t *testing.T) {
	client, mr := SetupTestRedis(t)
	assert.NoError(t, client.Set(t.Context(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, "v", got)
}
