package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDrinkCreated EventType = "drink_created"
	EventDrinkUpdated EventType = "drink_updated"
	EventDrinkDeleted EventType = "drink_deleted"
	EventDrinksReset  EventType = "drinks_reset"
)

// Actor identifies the token subject that caused an event.
type Actor struct {
	Subject     string   `json:"subject,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type actorKey struct{}

// WithActor attaches the acting caller to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller attached by WithActor, or the zero Actor.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	DrinkID   int64     `json:"drink_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, drinkID int64, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		DrinkID:   drinkID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// DrinkCreatedPayload payload.
type DrinkCreatedPayload struct {
	Title       string `json:"title"`
	Ingredients int    `json:"ingredients"`
}

// DrinkUpdatedPayload payload.
type DrinkUpdatedPayload struct {
	Title         string `json:"title"`
	TitleChanged  bool   `json:"title_changed"`
	RecipeChanged bool   `json:"recipe_changed"`
}

// DrinksResetPayload payload.
type DrinksResetPayload struct {
	Seeded []string `json:"seeded"`
}
