package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"chefbot/internal/pkg/common"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支援的 LLM 供應商
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// 支援的 JSON 擷取策略
const (
	ExtractStrategySlice    = common.ExtractSlice
	ExtractStrategyBalanced = common.ExtractBalanced
)

// 限流儲存後端
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	// 信任的反向代理 CIDR/IP；為空時不採用 X-Forwarded-For
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// LLMConfig 文字生成供應商配置
//
// APIKey 允許為空：缺少憑證時由每個請求回報 500，而不是在啟動時失敗。
type LLMConfig struct {
	Provider  string        `mapstructure:"provider"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ExtractConfig 模型回應 JSON 擷取設定
type ExtractConfig struct {
	Strategy string `mapstructure:"strategy"`
	Repair   bool   `mapstructure:"repair"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Backend  string        `mapstructure:"backend"`
}

// RedisConfig Redis 連線設定（僅供共享限流使用）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日誌設定
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// CredentialEnv 回傳目前供應商對應的憑證環境變數名稱
func (c LLMConfig) CredentialEnv() string {
	if c.Provider == ProviderOpenRouter {
		return "OPENROUTER_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.base_url", "LLM_BASE_URL")
	v.BindEnv("llm.max_tokens", "MODEL_MAX_TOKENS")
	v.BindEnv("llm.timeout", "LLM_TIMEOUT")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.trusted_proxies", "TRUSTED_PROXIES")
	v.BindEnv("extract.strategy", "EXTRACT_STRATEGY")
	v.BindEnv("extract.repair", "EXTRACT_REPAIR")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("rate_limit.backend", "RATE_LIMIT_BACKEND")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.file", "LOG_FILE")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.LLM.Provider = strings.ToLower(strings.TrimSpace(config.LLM.Provider))
	resolveProviderSettings(&config.LLM)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fmt.Println("Loading configuration",
		"llm_provider:", config.LLM.Provider,
		"llm_api_key:", MaskAPIKey(config.LLM.APIKey),
		"llm_model:", config.LLM.Model,
	)

	return &config, nil
}

// resolveProviderSettings 依供應商套用憑證與模型的環境變數
func resolveProviderSettings(llm *LLMConfig) {
	if llm.APIKey == "" {
		llm.APIKey = os.Getenv(llm.CredentialEnv())
	}

	switch llm.Provider {
	case ProviderOpenRouter:
		if llm.Model == "" {
			llm.Model = os.Getenv("OPENROUTER_MODEL")
		}
		if llm.Model == "" {
			llm.Model = "google/gemini-2.5-flash"
		}
	default:
		if llm.Model == "" {
			llm.Model = os.Getenv("GEMINI_MODEL")
		}
		if llm.Model == "" {
			llm.Model = "gemini-2.5-flash"
		}
	}
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "chefbot")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB
	v.SetDefault("server.trusted_proxies", []string{})

	// LLM 設定，model 與 api_key 依供應商另外解析
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", 0) // 0 表示不送出輸出上限
	v.SetDefault("llm.timeout", "120s")

	// 擷取設定
	v.SetDefault("extract.strategy", ExtractStrategySlice)
	v.SetDefault("extract.repair", false)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.backend", RateLimitBackendMemory)

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// 日誌設定
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes")
	}

	switch config.LLM.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unsupported llm provider %q", config.LLM.Provider)
	}
	if config.LLM.MaxTokens < 0 {
		return fmt.Errorf("invalid llm max tokens")
	}
	if config.LLM.Timeout < 0 {
		return fmt.Errorf("invalid llm timeout")
	}

	switch config.Extract.Strategy {
	case ExtractStrategySlice, ExtractStrategyBalanced:
	default:
		return fmt.Errorf("unsupported extract strategy %q", config.Extract.Strategy)
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
		switch config.RateLimit.Backend {
		case RateLimitBackendMemory:
		case RateLimitBackendRedis:
			if config.Redis.Addr == "" {
				return fmt.Errorf("redis addr is required for redis rate limit backend")
			}
		default:
			return fmt.Errorf("unsupported rate limit backend %q", config.RateLimit.Backend)
		}
	}

	return nil
}
