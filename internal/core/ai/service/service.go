package service

import (
	"context"
	"fmt"
	"time"

	"chefbot/internal/core/ai/gemini"
	"chefbot/internal/core/ai/openrouter"
	"chefbot/internal/core/ai/provider"
	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 模型閘道：檢查憑證後對供應商送出單一請求，不重試
type Service struct {
	provider      provider.Provider
	credentialEnv string
}

// NewService 依設定建立供應商與閘道
func NewService(cfg *config.Config) (*Service, error) {
	pcfg := provider.Config{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}

	var p provider.Provider
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		p = gemini.NewClient(pcfg)
	case config.ProviderOpenRouter:
		p = openrouter.NewClient(pcfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}

	common.LogInfo("Model gateway initialized",
		zap.String("provider", p.Name()),
		zap.String("model", p.GetModel()),
		zap.Bool("credential_configured", p.HasCredential()),
		zap.Duration("timeout", cfg.LLM.Timeout),
	)

	return NewServiceWithProvider(p, cfg.LLM.CredentialEnv()), nil
}

// NewServiceWithProvider 使用指定供應商建立閘道
func NewServiceWithProvider(p provider.Provider, credentialEnv string) *Service {
	return &Service{
		provider:      p,
		credentialEnv: credentialEnv,
	}
}

// ProviderName 供應商名稱
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// CheckCredential 缺少憑證時回傳 ConfigurationError
func (s *Service) CheckCredential() error {
	if !s.provider.HasCredential() {
		return common.NewConfigurationError(s.credentialEnv)
	}
	return nil
}

// Generate 送出提示詞並回傳原始文字回應
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if err := s.CheckCredential(); err != nil {
		return "", err
	}

	start := time.Now()
	text, err := s.provider.Generate(ctx, prompt)
	common.LogAICall(s.provider.Name(), s.provider.GetModel(), time.Since(start), err, common.RequestIDFromContext(ctx))
	if err != nil {
		return "", err
	}

	common.LogDebug("AI 回應內容",
		zap.Int("ai_response_length", len(text)),
		zap.String("ai_response_preview", common.Truncate(text)),
	)
	return text, nil
}

// Close 關閉供應商連線
func (s *Service) Close() error {
	return s.provider.Close()
}
