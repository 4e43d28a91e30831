package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// MaxTitleLength bounds Drink.Title in characters.
const MaxTitleLength = 80

// Ingredient is one colored layer of a drink.
type Ingredient struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Parts int    `json:"parts" yaml:"parts"`
}

// Recipe is the ordered list of ingredients of a drink.
type Recipe []Ingredient

// Drink is the sole persisted entity.
type Drink struct {
	ID        int64
	Title     string
	Recipe    Recipe
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DrinkPatch carries the optional fields of a partial update.
type DrinkPatch struct {
	Title  *string
	Recipe *Recipe
}

// Empty reports whether the patch changes nothing.
func (p DrinkPatch) Empty() bool {
	return p.Title == nil && p.Recipe == nil
}

// ValidationError describes a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NormalizeTitle trims surrounding whitespace and checks length constraints.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", invalid("title", "title must be at most %d characters", MaxTitleLength)
	}
	return title, nil
}

// Validate checks the structural constraints of a recipe.
func (r Recipe) Validate() error {
	if len(r) == 0 {
		return invalid("recipe", "recipe must contain at least one ingredient")
	}
	for i, ing := range r {
		if strings.TrimSpace(ing.Name) == "" {
			return invalid("recipe", "recipe[%d].name is required", i)
		}
		if strings.TrimSpace(ing.Color) == "" {
			return invalid("recipe", "recipe[%d].color is required", i)
		}
		if ing.Parts < 1 {
			return invalid("recipe", "recipe[%d].parts must be at least 1", i)
		}
	}
	return nil
}

// UnmarshalJSON accepts either a list of ingredients or a single ingredient
// object, which becomes a one-element recipe. Errors carry stable messages
// that name the offending ingredient.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}
	switch trimmed[0] {
	case '{':
		single, err := decodeIngredient(trimmed, "recipe")
		if err != nil {
			return err
		}
		*r = Recipe{single}
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return invalid("recipe", "recipe must be a list of ingredients")
		}
		list := make(Recipe, 0, len(items))
		for i, item := range items {
			ing, err := decodeIngredient(item, fmt.Sprintf("recipe[%d]", i))
			if err != nil {
				return err
			}
			list = append(list, ing)
		}
		*r = list
		return nil
	}
	return invalid("recipe", "recipe must be a list of ingredients")
}

var ingredientFieldTypes = map[string]string{
	"name":  "a string",
	"color": "a string",
	"parts": "an integer",
}

func decodeIngredient(data []byte, path string) (Ingredient, error) {
	var ing Ingredient
	err := strictDecode(data, &ing)
	if err == nil {
		return ing, nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if want, ok := ingredientFieldTypes[typeErr.Field]; ok {
			return ing, invalid("recipe", "%s.%s must be %s", path, typeErr.Field, want)
		}
	}
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return ing, invalid("recipe", "%s has unknown field %s", path, field)
	}
	return ing, invalid("recipe", "%s must be an ingredient object", path)
}

// UnmarshalYAML accepts the same two shapes as UnmarshalJSON.
func (r *Recipe) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var single Ingredient
		if err := value.Decode(&single); err != nil {
			return invalid("recipe", "recipe is not a valid ingredient: %v", err)
		}
		*r = Recipe{single}
		return nil
	}
	var list []Ingredient
	if err := value.Decode(&list); err != nil {
		return invalid("recipe", "recipe is not a valid ingredient list: %v", err)
	}
	*r = Recipe(list)
	return nil
}

// MarshalJSON always renders a list, never null.
func (r Recipe) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Ingredient(r))
}

// EncodeRecipe validates and serializes a recipe for storage.
func EncodeRecipe(r Recipe) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal([]Ingredient(r))
}

// DecodeRecipe parses a stored recipe document.
func DecodeRecipe(data []byte) (Recipe, error) {
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	return r, nil
}

func strictDecode(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
