package dto

import (
	"bytes"
	"encoding/json"

	"github.com/spec-kit/coffee-shop/internal/domain"
)

// CreateDrinkRequest payload.
type CreateDrinkRequest struct {
	Title  string        `json:"title" yaml:"title"`
	Recipe domain.Recipe `json:"recipe" yaml:"recipe"`
}

// UpdateDrinkRequest keeps the raw fields so absent and null can be told apart.
type UpdateDrinkRequest map[string]json.RawMessage

// Patch converts the present fields into a domain.DrinkPatch.
func (r UpdateDrinkRequest) Patch() (domain.DrinkPatch, error) {
	var patch domain.DrinkPatch
	if raw, ok := r["title"]; ok {
		var title string
		if isNull(raw) || json.Unmarshal(raw, &title) != nil {
			return patch, &domain.ValidationError{Field: "title", Message: "title must be a string"}
		}
		patch.Title = &title
	}
	if raw, ok := r["recipe"]; ok {
		if isNull(raw) {
			return patch, &domain.ValidationError{Field: "recipe", Message: "recipe must be a list of ingredients"}
		}
		var recipe domain.Recipe
		if err := json.Unmarshal(raw, &recipe); err != nil {
			return patch, err
		}
		patch.Recipe = &recipe
	}
	return patch, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// DrinkShort is the public listing view.
type DrinkShort struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// DrinkLong includes the recipe.
type DrinkLong struct {
	ID     int64         `json:"id"`
	Title  string        `json:"title"`
	Recipe domain.Recipe `json:"recipe"`
}

// NewDrinkShort maps a domain drink.
func NewDrinkShort(d *domain.Drink) DrinkShort {
	return DrinkShort{ID: d.ID, Title: d.Title}
}

// NewDrinkLong maps a domain drink.
func NewDrinkLong(d *domain.Drink) DrinkLong {
	return DrinkLong{ID: d.ID, Title: d.Title, Recipe: d.Recipe}
}

// ShortList maps drinks to summary views.
func ShortList(drinks []domain.Drink) []DrinkShort {
	items := make([]DrinkShort, 0, len(drinks))
	for i := range drinks {
		items = append(items, NewDrinkShort(&drinks[i]))
	}
	return items
}

// LongList maps drinks to detailed views.
func LongList(drinks []domain.Drink) []DrinkLong {
	items := make([]DrinkLong, 0, len(drinks))
	for i := range drinks {
		items = append(items, NewDrinkLong(&drinks[i]))
	}
	return items
}
