package gemini

import (
	"context"
	"fmt"
	"net/http"

	"chefbot/internal/core/ai/provider"
	"chefbot/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	providerName   = "Gemini"
	credentialEnv  = "GEMINI_API_KEY"
)

// generateContentRequest generateContent 請求
type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

// Client Gemini API 客戶端
type Client struct {
	config provider.Config
	client *resty.Client
}

// NewClient 創建 Gemini 客戶端
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		config: cfg,
		client: client,
	}
}

// Name 供應商名稱
func (c *Client) Name() string {
	return providerName
}

// GetModel 模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// HasCredential 是否已設定 API Key
func (c *Client) HasCredential() bool {
	return c.config.APIKey != ""
}

// Generate 呼叫 generateContent，回傳 candidates[0].content.parts[0].text
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredential() {
		return "", common.NewConfigurationError(credentialEnv)
	}

	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if c.config.MaxTokens > 0 {
		req.GenerationConfig = &generationConfig{MaxOutputTokens: c.config.MaxTokens}
	}

	common.LogDebug("Sending request to Gemini",
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(fmt.Sprintf("/models/%s:generateContent", c.config.Model))
	if err != nil {
		return "", &common.TransportError{Provider: providerName, Err: err}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", &common.ProviderError{
			Provider: providerName,
			Status:   resp.StatusCode(),
			Body:     resp.String(),
		}
	}

	return provider.ReplyText(resp.Body(), "candidates", 0, "content", "parts", 0, "text")
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
