package openrouter

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
	defaultBaseURL = "https://openrouter.ai/api/v1"
	providerName   = "OpenRouter"
	credentialEnv  = "OPENROUTER_API_KEY"
)

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// Client OpenRouter API 客戶端
type Client struct {
	config provider.Config
	client *resty.Client
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://chefbot.app").
		SetHeader("X-Title", "ChefBot")
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

// Generate 生成回應，回傳 choices[0].message.content
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredential() {
		return "", common.NewConfigurationError(credentialEnv)
	}

	req := Request{
		Model: c.config.Model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.config.MaxTokens,
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
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

	return provider.ReplyText(resp.Body(), "choices", 0, "message", "content")
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
