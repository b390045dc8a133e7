package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chefbot/internal/api"
	"chefbot/internal/api/middleware"
	"chefbot/internal/core/ai/service"
	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("credential_masked", config.MaskAPIKey(cfg.LLM.APIKey)),
		zap.String("llm_model", cfg.LLM.Model),
	)
	if cfg.LLM.APIKey == "" {
		common.LogWarn("Provider credential missing, generation requests will fail",
			zap.String("env", cfg.LLM.CredentialEnv()),
		)
	}

	// 初始化模型閘道
	aiService, err := service.NewService(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize AI service", zap.Error(err))
	}
	defer aiService.Close()

	// 初始化限流器
	limiter, closeLimiter := newLimiter(cfg)
	defer closeLimiter()

	// 設置路由
	router, err := api.SetupRouter(cfg, aiService, limiter)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}

// newLimiter 依設定建立限流器；Redis 無法連線時退回單機限流
func newLimiter(cfg *config.Config) (middleware.Limiter, func()) {
	noop := func() {}
	if !cfg.RateLimit.Enabled {
		return nil, noop
	}

	if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			common.LogWarn("Redis unavailable, falling back to in-memory rate limiter",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
			_ = client.Close()
		} else {
			common.LogInfo("Redis rate limiter enabled", zap.String("addr", cfg.Redis.Addr))
			return middleware.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window),
				func() { _ = client.Close() }
		}
	}

	return middleware.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), noop
}
