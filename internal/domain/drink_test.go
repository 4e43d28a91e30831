package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNormalizeTitle(t *testing.T) {
	title, err := NormalizeTitle("  Water  ")
	require.NoError(t, err)
	assert.Equal(t, "Water", title)

	_, err = NormalizeTitle("   ")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = NormalizeTitle(strings.Repeat("a", MaxTitleLength))
	require.NoError(t, err)

	_, err = NormalizeTitle(strings.Repeat("a", MaxTitleLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 80")
}

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name    string
		recipe  Recipe
		wantErr string
	}{
		{name: "valid", recipe: Recipe{{Name: "Water", Color: "blue", Parts: 1}}},
		{name: "empty", recipe: Recipe{}, wantErr: "at least one ingredient"},
		{name: "missing name", recipe: Recipe{{Color: "blue", Parts: 1}}, wantErr: "recipe[0].name"},
		{name: "missing color", recipe: Recipe{{Name: "milk", Parts: 1}}, wantErr: "recipe[0].color"},
		{name: "zero parts", recipe: Recipe{{Name: "milk", Color: "white", Parts: 1}, {Name: "coffee", Color: "brown", Parts: 0}}, wantErr: "recipe[1].parts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecipeUnmarshalAcceptsListAndObject(t *testing.T) {
	var list Recipe
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Water","color":"blue","parts":1},{"name":"Ice","color":"white","parts":2}]`), &list))
	require.Len(t, list, 2)
	assert.Equal(t, Ingredient{Name: "Ice", Color: "white", Parts: 2}, list[1])

	var single Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Water","color":"blue","parts":1}`), &single))
	assert.Equal(t, Recipe{{Name: "Water", Color: "blue", Parts: 1}}, single)
}

func TestRecipeUnmarshalRejectsMalformed(t *testing.T) {
	for _, body := range []string{`"water"`, `[{"name":"Water","parts":"one"}]`, `[{"flavor":"x"}]`, `42`} {
		var r Recipe
		err := json.Unmarshal([]byte(body), &r)
		require.Error(t, err, body)
		assert.True(t, IsValidationError(err), body)
	}
}

func TestRecipeUnmarshalMessages(t *testing.T) {
	cases := []struct{ body, message string }{
		{`"water"`, "recipe must be a list of ingredients"},
		{`42`, "recipe must be a list of ingredients"},
		{`[{"name":"Water","parts":"one"}]`, "recipe[0].parts must be an integer"},
		{`[{"name":"a","color":"b","parts":1},{"flavor":"x"}]`, `recipe[1] has unknown field "flavor"`},
		{`{"name":5}`, "recipe.name must be a string"},
		{`{"name":"Water","sugar":true}`, `recipe has unknown field "sugar"`},
		{`["water"]`, "recipe[0] must be an ingredient object"},
		{`[{"name":"Water","parts":1.5}]`, "recipe[0].parts must be an integer"},
	}
	for _, tc := range cases {
		var r Recipe
		err := json.Unmarshal([]byte(tc.body), &r)
		require.Error(t, err, tc.body)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, tc.body)
		assert.Equal(t, tc.message, ve.Message, tc.body)
		assert.NotContains(t, ve.Message, "json:", tc.body)
	}
}

func TestEncodeDecodeRecipe(t *testing.T) {
	recipe := Recipe{{Name: "Espresso", Color: "brown", Parts: 1}, {Name: "Milk", Color: "white", Parts: 3}}

	encoded, err := EncodeRecipe(recipe)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Espresso","color":"brown","parts":1},{"name":"Milk","color":"white","parts":3}]`, string(encoded))

	decoded, err := DecodeRecipe(encoded)
	require.NoError(t, err)
	assert.Equal(t, recipe, decoded)

	_, err = EncodeRecipe(Recipe{})
	assert.True(t, IsValidationError(err))
}

func TestRecipeMarshalNil(t *testing.T) {
	out, err := json.Marshal(struct {
		Recipe Recipe `json:"recipe"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipe":[]}`, string(out))
}

func TestDrinkPatchEmpty(t *testing.T) {
	assert.True(t, DrinkPatch{}.Empty())
	title := "Latte"
	assert.False(t, DrinkPatch{Title: &title}.Empty())
}

func TestRecipeUnmarshalYAML(t *testing.T) {
	var list struct {
		Recipe Recipe `yaml:"recipe"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("recipe:\n  - {name: milk, color: white, parts: 2}\n"), &list))
	assert.Equal(t, Recipe{{Name: "milk", Color: "white", Parts: 2}}, list.Recipe)

	var single struct {
		Recipe Recipe `yaml:"recipe"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("recipe: {name: water, color: blue, parts: 1}\n"), &single))
	assert.Equal(t, Recipe{{Name: "water", Color: "blue", Parts: 1}}, single.Recipe)

	var bad struct {
		Recipe Recipe `yaml:"recipe"`
	}
	err := yaml.Unmarshal([]byte("recipe: water\n"), &bad)
	assert.True(t, IsValidationError(err))
}
