package provider

import (
	"context"
	"time"
)

// Provider 定義文字生成供應商介面
type Provider interface {
	// Generate 送出單一提示詞，回傳回應中的第一段文字；
	// 回應沒有文字時回傳整個回應的 JSON 文字
	Generate(ctx context.Context, prompt string) (string, error)

	// Name 供應商名稱（用於日誌與錯誤訊息）
	Name() string

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// HasCredential 是否已設定憑證
	HasCredential() bool

	// Close 關閉提供者連接
	Close() error
}

// Config 定義 AI 提供者配置
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}
