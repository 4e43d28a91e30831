package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coffee-shop/internal/api/http/handlers"
	"github.com/spec-kit/coffee-shop/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Drinks         *handlers.DrinksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	guard := cfg.AuthMiddleware.Require

	app.Get("/drinks", cfg.Drinks.ListDrinks)
	app.Get("/drinks-detail", guard(auth.PermissionGetDrinksDetail), cfg.Drinks.ListDrinkDetails)
	app.Post("/drinks", guard(auth.PermissionPostDrinks), cfg.Drinks.CreateDrink)
	app.Patch("/drinks/:id<int>", guard(auth.PermissionPatchDrinks), cfg.Drinks.UpdateDrink)
	app.Delete("/drinks/:id<int>", guard(auth.PermissionDeleteDrinks), cfg.Drinks.DeleteDrink)
}
