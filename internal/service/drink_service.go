package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/coffee-shop/internal/domain"
	"github.com/spec-kit/coffee-shop/internal/events"
	"github.com/spec-kit/coffee-shop/internal/repository"
	"github.com/spec-kit/coffee-shop/pkg/util"
)

// DefaultDrink is the drink a reset leaves behind.
func DefaultDrink() domain.Drink {
	return domain.Drink{
		Title:  "water",
		Recipe: domain.Recipe{{Name: "water", Color: "blue", Parts: 1}},
	}
}

// DrinkService coordinates drink workflows.
type DrinkService struct {
	drinks     repository.DrinkRepository
	dispatcher events.Dispatcher
}

// NewDrinkService constructs the service.
func NewDrinkService(drinks repository.DrinkRepository, dispatcher events.Dispatcher) *DrinkService {
	return &DrinkService{drinks: drinks, dispatcher: dispatcher}
}

// List returns every drink in id order.
func (s *DrinkService) List(ctx context.Context) ([]domain.Drink, error) {
	drinks, err := s.drinks.List(ctx)
	if err != nil {
		return nil, util.NewBadRequest(err)
	}
	return drinks, nil
}

// Create validates and stores a new drink.
func (s *DrinkService) Create(ctx context.Context, title string, recipe domain.Recipe) (*domain.Drink, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, writeError(err)
	}
	if err := recipe.Validate(); err != nil {
		return nil, writeError(err)
	}

	drink := &domain.Drink{Title: title, Recipe: recipe}
	if err := s.drinks.Create(ctx, drink); err != nil {
		return nil, writeError(err)
	}
	s.publishEvent(ctx, events.EventDrinkCreated, drink.ID, events.DrinkCreatedPayload{
		Title:       drink.Title,
		Ingredients: len(drink.Recipe),
	})
	return drink, nil
}

// Update applies the fields present in patch. An empty patch returns the
// stored drink unchanged. A missing drink is reported before any field is
// validated.
func (s *DrinkService) Update(ctx context.Context, id int64, patch domain.DrinkPatch) (*domain.Drink, error) {
	current, err := s.drinks.GetByID(ctx, id)
	if err != nil {
		return nil, writeError(err)
	}
	if patch.Title != nil {
		title, err := domain.NormalizeTitle(*patch.Title)
		if err != nil {
			return nil, writeError(err)
		}
		patch.Title = &title
	}
	if patch.Recipe != nil {
		if err := patch.Recipe.Validate(); err != nil {
			return nil, writeError(err)
		}
	}
	if patch.Empty() {
		return current, nil
	}

	drink, err := s.drinks.Update(ctx, id, patch)
	if err != nil {
		return nil, writeError(err)
	}
	s.publishEvent(ctx, events.EventDrinkUpdated, drink.ID, events.DrinkUpdatedPayload{
		Title:         drink.Title,
		TitleChanged:  patch.Title != nil,
		RecipeChanged: patch.Recipe != nil,
	})
	return drink, nil
}

// Delete removes a drink and returns its id.
func (s *DrinkService) Delete(ctx context.Context, id int64) (int64, error) {
	if err := s.drinks.Delete(ctx, id); err != nil {
		return 0, writeError(err)
	}
	s.publishEvent(ctx, events.EventDrinkDeleted, id, nil)
	return id, nil
}

// Reset drops every drink, restarts ids and stores DefaultDrink.
func (s *DrinkService) Reset(ctx context.Context) (*domain.Drink, error) {
	if err := s.drinks.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset drinks: %w", err)
	}
	seed := DefaultDrink()
	if err := s.drinks.Create(ctx, &seed); err != nil {
		return nil, fmt.Errorf("seed default drink: %w", err)
	}
	s.publishEvent(ctx, events.EventDrinksReset, 0, events.DrinksResetPayload{Seeded: []string{seed.Title}})
	return &seed, nil
}

// Seed creates drinks in order and stops at the first failure.
func (s *DrinkService) Seed(ctx context.Context, drinks []domain.Drink) ([]domain.Drink, error) {
	created := make([]domain.Drink, 0, len(drinks))
	for _, d := range drinks {
		drink, err := s.Create(ctx, d.Title, d.Recipe)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", d.Title, err)
		}
		created = append(created, *drink)
	}
	return created, nil
}

// Ping reports whether the backing store is reachable.
func (s *DrinkService) Ping(ctx context.Context) error {
	return s.drinks.Ping(ctx)
}

func (s *DrinkService) publishEvent(ctx context.Context, eventType events.EventType, drinkID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.NewEvent(eventType, drinkID, events.ActorFromContext(ctx), payload))
}

// writeError maps repository and validation failures onto the HTTP-facing
// error kinds: missing rows are 404, everything else on a write is 422.
func writeError(err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return util.NewNotFound(err)
	case errors.Is(err, repository.ErrDuplicateTitle):
		return util.NewUnprocessable("title already exists", err)
	case errors.As(err, &ve):
		return util.NewUnprocessable(ve.Message, err)
	}
	return util.Classify(err, http.StatusUnprocessableEntity)
}
