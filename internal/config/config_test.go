package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "coffee-shop", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, []string{"*"}, cfg.App.CORSAllowOrigins)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "drinks.db", cfg.SQLite.Path)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, []string{"RS256"}, cfg.Auth.Algorithms)
	assert.Equal(t, time.Hour, cfg.Auth.KeyCacheTTL())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("POSTGRES_DSN", "postgres://drinks@localhost/drinks")
	t.Setenv("AUTH_ALGORITHMS", "RS256,ES256")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:8100,https://shop.example.com")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, []string{"RS256", "ES256"}, cfg.Auth.Algorithms)
	assert.Equal(t, []string{"http://localhost:8100", "https://shop.example.com"}, cfg.App.CORSAllowOrigins)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_DSN")
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported STORE_DRIVER")
	})
	t.Run("malformed int", func(t *testing.T) {
		t.Setenv("REDIS_DB", "zero")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env:")
	})
}

func TestAuthConfigDerivesURLsFromDomain(t *testing.T) {
	auth := AuthConfig{Domain: "https://coffee.us.auth0.com/", Audience: "drinks"}

	assert.Equal(t, "https://coffee.us.auth0.com/", auth.IssuerURL())
	assert.Equal(t, "https://coffee.us.auth0.com/.well-known/jwks.json", auth.KeySetURL())
	assert.NoError(t, auth.Validate())
}

func TestAuthConfigExplicitURLs(t *testing.T) {
	auth := AuthConfig{
		Issuer:   "https://issuer.test/",
		JWKSURL:  "http://127.0.0.1:9999/jwks.json",
		Audience: "drinks",
	}
	assert.Equal(t, "https://issuer.test/", auth.IssuerURL())
	assert.Equal(t, "http://127.0.0.1:9999/jwks.json", auth.KeySetURL())
	assert.NoError(t, auth.Validate())

	assert.Error(t, AuthConfig{Audience: "drinks"}.Validate())
	assert.Error(t, AuthConfig{Domain: "coffee.auth0.com"}.Validate())
	assert.Equal(t, 5*time.Second, AuthConfig{}.FetchTimeout())
	assert.Zero(t, AuthConfig{}.KeyCacheTTL())
}
