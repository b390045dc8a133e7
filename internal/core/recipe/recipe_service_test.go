package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"chefbot/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	credentialErr error
	reply         string
	err           error
	prompts       []string
}

func (g *fakeGateway) CheckCredential() error { return g.credentialErr }

func (g *fakeGateway) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

var scenarioPantry = []PantryItem{
	{Name: "pâtes", Qty: "250g"},
	{Name: "tomates", Qty: "3"},
}

func TestGenerateRecipe_ScenarioA(t *testing.T) {
	want := `{"title":"Pâtes tomates","timeEstimate":"20 min","ingredients":["pâtes","tomates"],"steps":["Cuire les pâtes"],"missingIngredients":["basilic"],"tips":["Saler l'eau"]}`
	gw := &fakeGateway{reply: "Voici: " + want + " Bon appétit."}
	svc := NewRecipeService(gw, common.ExtractOptions{})

	got, err := svc.GenerateRecipe(context.Background(), GenerationRequest{Pantry: scenarioPantry, Mode: ModeNone})
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(raw))

	require.Len(t, gw.prompts, 1)
	assert.Equal(t, BuildPrompt(scenarioPantry, ModeNone, false), gw.prompts[0])
}

func TestGenerateRecipe_ScenarioB(t *testing.T) {
	gw := &fakeGateway{reply: "Je vous propose des pâtes à la tomate, cuisez-les 10 minutes."}
	svc := NewRecipeService(gw, common.ExtractOptions{})

	got, err := svc.GenerateRecipe(context.Background(), GenerationRequest{Pantry: scenarioPantry})
	require.NoError(t, err)
	assert.Equal(t, &Recipe{
		Title:              DefaultTitle,
		TimeEstimate:       DefaultTimeEstimate,
		Ingredients:        []any{"pâtes (250g)", "tomates (3)"},
		Steps:              []any{StepsUnavailable},
		MissingIngredients: []any{},
		Tips:               []any{},
	}, got)
}

func TestGenerateRecipe_EmptyPantryNeverCallsGateway(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewRecipeService(gw, common.ExtractOptions{})

	_, err := svc.GenerateRecipe(context.Background(), GenerationRequest{Pantry: []PantryItem{}})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	assert.Equal(t, ErrEmptyPantry, err.Error())
	assert.Empty(t, gw.prompts)
}

func TestGenerateRecipe_MissingCredentialNeverCallsGateway(t *testing.T) {
	gw := &fakeGateway{credentialErr: common.NewConfigurationError("GEMINI_API_KEY")}
	svc := NewRecipeService(gw, common.ExtractOptions{})

	_, err := svc.GenerateRecipe(context.Background(), GenerationRequest{Pantry: scenarioPantry})
	require.Error(t, err)
	assert.True(t, common.IsConfigurationError(err))
	assert.Empty(t, gw.prompts)
}

func TestGenerateRecipe_GatewayErrorPropagates(t *testing.T) {
	upstream := &common.ProviderError{Provider: "Gemini", Status: 500, Body: "boom"}
	gw := &fakeGateway{err: upstream}
	svc := NewRecipeService(gw, common.ExtractOptions{})

	_, err := svc.GenerateRecipe(context.Background(), GenerationRequest{Pantry: scenarioPantry})
	assert.True(t, errors.Is(err, upstream))
}

func TestGenerateRecipe_ImproveUsesSamePantryAndMode(t *testing.T) {
	gw := &fakeGateway{reply: `{"title":"x"}`}
	svc := NewRecipeService(gw, common.ExtractOptions{})
	req := GenerationRequest{Pantry: scenarioPantry, Mode: ModeLean}

	_, err := svc.GenerateRecipe(context.Background(), req)
	require.NoError(t, err)
	req.Improve = true
	_, err = svc.GenerateRecipe(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, gw.prompts, 2)
	assert.Contains(t, gw.prompts[0], "improve=false")
	assert.Contains(t, gw.prompts[1], "improve=true")
	assert.Contains(t, gw.prompts[1], ModeConstraint(ModeLean))
}

func TestGenerateRecipe_BalancedStrategy(t *testing.T) {
	gw := &fakeGateway{reply: `{"title":"Tarte"} (note: remplacez } par rien)`}

	slice := NewRecipeService(gw, common.ExtractOptions{})
	got, err := slice.GenerateRecipe(context.Background(), GenerationRequest{Pantry: scenarioPantry})
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, got.Title)

	balanced := NewRecipeService(gw, common.ExtractOptions{Strategy: common.ExtractBalanced})
	got, err = balanced.GenerateRecipe(context.Background(), GenerationRequest{Pantry: scenarioPantry})
	require.NoError(t, err)
	assert.Equal(t, "Tarte", got.Title)
}
