package api

import (
	"fmt"
	"time"

	"chefbot/internal/api/handlers/health"
	recipeHandler "chefbot/internal/api/handlers/recipe"
	"chefbot/internal/api/middleware"
	"chefbot/internal/core/ai/service"
	recipeService "chefbot/internal/core/recipe"
	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
//
// limiter 為 nil 時不啟用限流。
func SetupRouter(cfg *config.Config, aiService *service.Service, limiter middleware.Limiter) (*gin.Engine, error) {
	if aiService == nil {
		return nil, fmt.Errorf("ai service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 只信任設定中的代理，否則 ClientIP 可被 X-Forwarded-For 偽造
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// 註冊基礎中間件
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	recipeSvc := recipeService.NewRecipeService(aiService, common.ExtractOptions{
		Strategy: cfg.Extract.Strategy,
		Repair:   cfg.Extract.Repair,
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, aiService)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter, cfg.RateLimit.Window))
	}
	{
		recipeHandlerInstance := recipeHandler.NewHandler(recipeSvc)

		// 前端使用的路徑
		api.POST("/generate", recipeHandlerInstance.HandleGenerate)

		// 版本化路徑
		api.POST("/v1/recipe/generate", recipeHandlerInstance.HandleGenerate)
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("provider", aiService.ProviderName()),
		zap.String("extract_strategy", cfg.Extract.Strategy),
		zap.Bool("extract_repair", cfg.Extract.Repair),
		zap.Bool("rate_limit_enabled", limiter != nil),
		zap.Strings("trusted_proxies", cfg.Server.TrustedProxies),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
