package recipe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	recipeService "chefbot/internal/core/recipe"
	"chefbot/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Generator 食譜生成介面
type Generator interface {
	GenerateRecipe(ctx context.Context, req recipeService.GenerationRequest) (*recipeService.Recipe, error)
}

// Handler 食譜生成處理器
type Handler struct {
	recipeService Generator
}

// NewHandler 創建食譜處理器
func NewHandler(recipeSvc Generator) *Handler {
	return &Handler{recipeService: recipeSvc}
}

// HandleGenerate 根據使用者食材生成食譜
//
// 成功時回傳 200 JSON；錯誤一律以純文字回應。
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := requestid.Get(c)
	start := time.Now()

	var body any
	if err := common.DecodeJSON(c.Request.Body, &body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			common.WriteErrorText(c, common.ErrRequestTooLarge.Status, common.ErrRequestTooLarge.Message)
			return
		}
		common.LogWarn("Invalid request body",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		common.WriteErrorText(c, http.StatusInternalServerError, "Erreur: "+err.Error())
		return
	}

	req := recipeService.NewGenerationRequest(body)
	common.LogInfo("Recipe generation request",
		zap.String("request_id", requestID),
		zap.Int("pantry_items", len(req.Pantry)),
		zap.String("mode", string(req.Mode)),
		zap.Bool("improve", req.Improve),
	)

	// 用戶端斷線不取消進行中的模型請求
	ctx := common.WithRequestID(context.WithoutCancel(c.Request.Context()), requestID)

	result, err := h.recipeService.GenerateRecipe(ctx, req)
	if err != nil {
		status, message := errorResponse(err)
		common.LogError("Recipe generation failed",
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		common.WriteErrorText(c, status, message)
		return
	}

	common.LogInfo("Recipe generated",
		zap.String("request_id", requestID),
		zap.String("title", result.Title),
		zap.Duration("duration", time.Since(start)),
	)
	c.JSON(http.StatusOK, result)
}

// errorResponse 將錯誤對應為狀態碼與純文字訊息
func errorResponse(err error) (int, string) {
	if common.IsValidationError(err) {
		return http.StatusBadRequest, err.Error()
	}
	if common.IsConfigurationError(err) {
		return http.StatusInternalServerError, err.Error()
	}
	if perr, ok := common.AsProviderError(err); ok {
		return http.StatusInternalServerError, fmt.Sprintf("Erreur %s (texte): %s", perr.Provider, perr.Body)
	}
	return http.StatusInternalServerError, "Erreur: " + err.Error()
}
