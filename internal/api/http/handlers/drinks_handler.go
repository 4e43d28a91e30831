package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coffee-shop/internal/api/dto"
	"github.com/spec-kit/coffee-shop/internal/auth"
	"github.com/spec-kit/coffee-shop/internal/domain"
	"github.com/spec-kit/coffee-shop/internal/events"
	"github.com/spec-kit/coffee-shop/internal/service"
	"github.com/spec-kit/coffee-shop/pkg/util"
)

// DrinksHandler serves the drink menu endpoints.
type DrinksHandler struct {
	service *service.DrinkService
}

// NewDrinksHandler constructs handler.
func NewDrinksHandler(drinkService *service.DrinkService) *DrinksHandler {
	return &DrinksHandler{service: drinkService}
}

// ListDrinks GET /drinks.
func (h *DrinksHandler) ListDrinks(c *fiber.Ctx) error {
	drinks, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "drinks": dto.ShortList(drinks)})
}

// ListDrinkDetails GET /drinks-detail.
func (h *DrinksHandler) ListDrinkDetails(c *fiber.Ctx) error {
	drinks, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "drinks": dto.LongList(drinks)})
}

// CreateDrink POST /drinks.
func (h *DrinksHandler) CreateDrink(c *fiber.Ctx) error {
	var req dto.CreateDrinkRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}
	drink, err := h.service.Create(actorContext(c), req.Title, req.Recipe)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "drinks": []dto.DrinkLong{dto.NewDrinkLong(drink)}})
}

// UpdateDrink PATCH /drinks/:id.
func (h *DrinksHandler) UpdateDrink(c *fiber.Ctx) error {
	id, err := drinkID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateDrinkRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}
	patch, err := req.Patch()
	if err != nil {
		return invalidPayload(err)
	}
	drink, err := h.service.Update(actorContext(c), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "drinks": []dto.DrinkLong{dto.NewDrinkLong(drink)}})
}

// DeleteDrink DELETE /drinks/:id.
func (h *DrinksHandler) DeleteDrink(c *fiber.Ctx) error {
	id, err := drinkID(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.Delete(actorContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "id": deleted})
}

func drinkID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, util.NewNotFound(err)
	}
	return int64(id), nil
}

func invalidPayload(err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return util.NewUnprocessable(ve.Message, err)
	}
	return util.NewUnprocessable("", err)
}

func actorContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return ctx
	}
	return events.WithActor(ctx, events.Actor{Subject: claims.Subject, Permissions: claims.Permissions})
}
