package recipe

import (
	"context"

	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrEmptyPantry 食材清單為空時的訊息
const ErrEmptyPantry = `Paramètre "pantry" manquant ou vide.`

// Gateway 模型閘道
type Gateway interface {
	CheckCredential() error
	Generate(ctx context.Context, prompt string) (string, error)
}

// RecipeService 食譜生成服務
// --------------------------------------------------
type RecipeService struct {
	gateway Gateway
	extract common.ExtractOptions
}

// NewRecipeService 創建新的食譜生成服務
func NewRecipeService(gateway Gateway, extract common.ExtractOptions) *RecipeService {
	return &RecipeService{
		gateway: gateway,
		extract: extract,
	}
}

// GenerateRecipe 驗證請求、呼叫模型並將回應整理為 Recipe。
// 模型回應無法解析時仍回傳完整的預設食譜，不視為錯誤。
func (s *RecipeService) GenerateRecipe(ctx context.Context, req GenerationRequest) (*Recipe, error) {
	if len(req.Pantry) == 0 {
		return nil, common.NewValidationError(ErrEmptyPantry)
	}

	if err := s.gateway.CheckCredential(); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req.Pantry, req.Mode, req.Improve)
	common.LogDebug("食譜提示詞",
		zap.String("request_id", common.RequestIDFromContext(ctx)),
		zap.Int("pantry_items", len(req.Pantry)),
		zap.String("mode", string(req.Mode)),
		zap.Bool("improve", req.Improve),
		zap.String("prompt_preview", common.Truncate(prompt)),
	)

	text, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed := common.ExtractJSONObject(text, s.extract)
	result := NormalizeRecipe(parsed, PantryPretty(req.Pantry))

	common.LogInfo("食譜生成完成",
		zap.String("request_id", common.RequestIDFromContext(ctx)),
		zap.Bool("parsed", len(parsed) > 0),
		zap.Int("ingredients", len(result.Ingredients)),
		zap.Int("steps", len(result.Steps)),
	)

	return &result, nil
}
