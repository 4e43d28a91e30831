package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/coffee-shop/internal/api/http/handlers"
	"github.com/spec-kit/coffee-shop/internal/auth"
	"github.com/spec-kit/coffee-shop/internal/observability"
	"github.com/spec-kit/coffee-shop/internal/service"
)

// ServerConfig carries everything NewServer wires together.
type ServerConfig struct {
	Name         string
	Version      string
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Timeout      time.Duration
	AllowOrigins []string
	Drinks       *service.DrinkService
	Verifier     *auth.Verifier
	HealthChecks map[string]handlers.Pinger
}

// NewServer builds the Fiber application with middlewares and routes attached.
func NewServer(cfg ServerConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:       logger,
		Metrics:      cfg.Metrics,
		Timeout:      cfg.Timeout,
		AllowOrigins: cfg.AllowOrigins,
	})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.Name, cfg.Version, cfg.HealthChecks),
		Drinks:         handlers.NewDrinksHandler(cfg.Drinks),
		AuthMiddleware: auth.NewAuthMiddleware(cfg.Verifier, logger.Named("auth")),
	})
	return app
}
