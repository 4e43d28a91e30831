package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string   `env:"APP_NAME" envDefault:"coffee-shop"`
	Env                   string   `env:"APP_ENV" envDefault:"development"`
	Host                  string   `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string   `env:"APP_PORT" envDefault:"8080"`
	Version               string   `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int      `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	CORSAllowOrigins      []string `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
}

// StoreConfig selects the drink store backend.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"sqlite"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// SQLiteConfig holds the database file location.
type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"drinks.db"`
}

// RedisConfig holds Redis connection values. An empty address disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig describes the identity provider tokens are verified against.
type AuthConfig struct {
	Domain                  string   `env:"AUTH0_DOMAIN"`
	Audience                string   `env:"API_AUDIENCE"`
	Issuer                  string   `env:"AUTH_ISSUER"`
	JWKSURL                 string   `env:"AUTH_JWKS_URL"`
	Algorithms              []string `env:"AUTH_ALGORITHMS" envDefault:"RS256" envSeparator:","`
	JWKSCacheTTLSeconds     int      `env:"AUTH_JWKS_CACHE_TTL_SECONDS" envDefault:"3600"`
	JWKSFetchTimeoutSeconds int      `env:"AUTH_JWKS_FETCH_TIMEOUT_SECONDS" envDefault:"5"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}

// Validate checks the identity provider settings needed to verify tokens.
func (a AuthConfig) Validate() error {
	if a.IssuerURL() == "" {
		return errors.New("AUTH0_DOMAIN or AUTH_ISSUER is required")
	}
	if a.KeySetURL() == "" {
		return errors.New("AUTH0_DOMAIN or AUTH_JWKS_URL is required")
	}
	if strings.TrimSpace(a.Audience) == "" {
		return errors.New("API_AUDIENCE is required")
	}
	return nil
}

// IssuerURL returns the expected "iss" claim.
func (a AuthConfig) IssuerURL() string {
	if a.Issuer != "" {
		return a.Issuer
	}
	if domain := a.domain(); domain != "" {
		return "https://" + domain + "/"
	}
	return ""
}

// KeySetURL returns the JWKS document location.
func (a AuthConfig) KeySetURL() string {
	if a.JWKSURL != "" {
		return a.JWKSURL
	}
	if domain := a.domain(); domain != "" {
		return "https://" + domain + "/.well-known/jwks.json"
	}
	return ""
}

// KeyCacheTTL returns how long a fetched key set may be reused.
func (a AuthConfig) KeyCacheTTL() time.Duration {
	if a.JWKSCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(a.JWKSCacheTTLSeconds) * time.Second
}

// FetchTimeout bounds a single key set download.
func (a AuthConfig) FetchTimeout() time.Duration {
	if a.JWKSFetchTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.JWKSFetchTimeoutSeconds) * time.Second
}

func (a AuthConfig) domain() string {
	domain := strings.TrimSpace(a.Domain)
	domain = strings.TrimPrefix(domain, "https://")
	return strings.TrimSuffix(domain, "/")
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}
