package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/coffee-shop/internal/api/http"
	"github.com/spec-kit/coffee-shop/internal/api/http/handlers"
	"github.com/spec-kit/coffee-shop/internal/auth"
	"github.com/spec-kit/coffee-shop/internal/config"
	"github.com/spec-kit/coffee-shop/internal/events"
	"github.com/spec-kit/coffee-shop/internal/observability"
	"github.com/spec-kit/coffee-shop/internal/persistence"
	"github.com/spec-kit/coffee-shop/internal/repository"
	"github.com/spec-kit/coffee-shop/internal/service"
	"github.com/spec-kit/coffee-shop/internal/worker"
)

// App owns the process-wide dependencies shared by every command.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Drinks  *service.DrinkService

	postgres *persistence.Postgres
	sqlite   *persistence.SQLite
	redis    *persistence.Redis
}

// New opens the configured store and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Metrics: observability.NewMetrics()}

	var repo repository.DrinkRepository
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.postgres = pg
		repo = repository.NewPostgresDrinkRepository(pg.PoolHandle())
	case config.DriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		a.sqlite = db
		repo = repository.NewSQLiteDrinkRepository(db.DB)
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))
	a.Drinks = service.NewDrinkService(repo, dispatcher)
	return a, nil
}

// Migrate applies the schema for the configured store.
func (a *App) Migrate(ctx context.Context) error {
	if a.postgres != nil {
		return persistence.RunMigrations(ctx, a.postgres.PoolHandle(), a.Logger)
	}
	return persistence.RunSQLiteMigrations(ctx, a.sqlite.DB, a.Logger)
}

// AutoMigrate runs Migrate unless the postgres store opted out.
func (a *App) AutoMigrate(ctx context.Context) error {
	if a.postgres != nil && !a.Config.Postgres.RunMigrations {
		return nil
	}
	return a.Migrate(ctx)
}

// Server connects Redis, builds the token verifier and returns the HTTP app.
func (a *App) Server(ctx context.Context) (*fiber.App, error) {
	authCfg := a.Config.Auth
	if err := authCfg.Validate(); err != nil {
		return nil, err
	}

	a.redis = persistence.NewRedis(ctx, a.Config.Redis, a.Logger)
	checks := map[string]handlers.Pinger{"store": a.Drinks}
	var cache auth.KeyCache
	if a.redis != nil {
		cache = auth.NewRedisKeyCache(a.redis.Client, auth.DefaultKeyCacheKey)
		checks["redis"] = a.redis
	} else {
		cache = auth.NewMemoryKeyCache(time.Now)
	}

	keys := auth.NewRemoteKeySource(
		&auth.HTTPFetcher{URL: authCfg.KeySetURL(), Timeout: authCfg.FetchTimeout()},
		cache,
		authCfg.KeyCacheTTL(),
		a.Logger.Named("jwks"),
	)
	verifier := auth.NewVerifier(keys, auth.VerifierConfig{
		Issuer:     authCfg.IssuerURL(),
		Audience:   authCfg.Audience,
		Algorithms: authCfg.Algorithms,
	})

	return httptransport.NewServer(httptransport.ServerConfig{
		Name:         a.Config.App.Name,
		Version:      a.Config.App.Version,
		Logger:       a.Logger,
		Metrics:      a.Metrics,
		Timeout:      a.Config.App.RequestTimeout(),
		AllowOrigins: a.Config.App.CORSAllowOrigins,
		Drinks:       a.Drinks,
		Verifier:     verifier,
		HealthChecks: checks,
	}), nil
}

// Close releases every connection the app opened.
func (a *App) Close() {
	a.redis.Close()
	a.postgres.Close()
	a.sqlite.Close()
}
