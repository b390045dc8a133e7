package recipe

import (
	"encoding/json"
	"testing"

	"chefbot/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prettyPantry = "pâtes (250g), tomates (3)"

func TestNormalizeRecipe_Defaults(t *testing.T) {
	got := NormalizeRecipe(map[string]any{}, prettyPantry)

	assert.Equal(t, Recipe{
		Title:              DefaultTitle,
		TimeEstimate:       DefaultTimeEstimate,
		Ingredients:        []any{"pâtes (250g)", "tomates (3)"},
		Steps:              []any{StepsUnavailable},
		MissingIngredients: []any{},
		Tips:               []any{},
	}, got)
}

func TestNormalizeRecipe_NilInput(t *testing.T) {
	got := NormalizeRecipe(nil, "")
	assert.Equal(t, DefaultTitle, got.Title)
	assert.Equal(t, []any{}, got.Ingredients)
	assert.Equal(t, []any{StepsUnavailable}, got.Steps)
}

func TestNormalizeRecipe_WrongTypes(t *testing.T) {
	parsed := common.ExtractJSONObject(`{
		"title": 42,
		"timeEstimate": null,
		"ingredients": "pâtes, tomates",
		"steps": {"1":"cuire"},
		"missingIngredients": null,
		"tips": false
	}`, common.ExtractOptions{})
	require.NotEmpty(t, parsed)

	got := NormalizeRecipe(parsed, prettyPantry)
	assert.Equal(t, DefaultTitle, got.Title)
	assert.Equal(t, DefaultTimeEstimate, got.TimeEstimate)
	assert.Equal(t, []any{"pâtes (250g)", "tomates (3)"}, got.Ingredients)
	assert.Equal(t, []any{StepsUnavailable}, got.Steps)
	assert.Equal(t, []any{}, got.MissingIngredients)
	assert.Equal(t, []any{}, got.Tips)
}

func TestNormalizeRecipe_PassesElementsThrough(t *testing.T) {
	parsed := common.ExtractJSONObject(`{"title":"","ingredients":["sel",{"name":"poivre"},3],"tips":[]}`, common.ExtractOptions{})

	got := NormalizeRecipe(parsed, prettyPantry)
	assert.Equal(t, "", got.Title)
	assert.Equal(t, []any{"sel", map[string]any{"name": "poivre"}, json.Number("3")}, got.Ingredients)
	assert.Equal(t, []any{}, got.Tips)
}

func TestNormalizeRecipe_ListsNeverEncodeAsNull(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"ingredients": nil, "steps": nil, "missingIngredients": nil, "tips": nil},
	}
	for _, in := range inputs {
		raw, err := json.Marshal(NormalizeRecipe(in, ""))
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(raw, &out))
		for _, key := range []string{"title", "timeEstimate", "ingredients", "steps", "missingIngredients", "tips"} {
			require.Contains(t, out, key)
			assert.NotNil(t, out[key], key)
		}
	}
}

func TestSplitPantry(t *testing.T) {
	assert.Equal(t, []any{}, splitPantry(""))
	assert.Equal(t, []any{"riz"}, splitPantry("riz"))
	assert.Equal(t, []any{"a", "b"}, splitPantry("a, , b"))
}
