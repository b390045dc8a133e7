package health

import (
	"net/http"
	"runtime"
	"time"

	"chefbot/internal/infrastructure/config"
	"chefbot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CredentialChecker 回報供應商憑證是否可用
type CredentialChecker interface {
	ProviderName() string
	CheckCredential() error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Provider  string                 `json:"provider"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg     *config.Config
	checker CredentialChecker
}

// NewHandler 創建健康檢查處理器
func NewHandler(cfg *config.Config, checker CredentialChecker) *Handler {
	return &Handler{cfg: cfg, checker: checker}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Provider:  h.checker.ProviderName(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：缺少供應商憑證時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.checker.CheckCredential(); err != nil {
		c.JSON(common.ErrServiceUnavailable.Status, gin.H{
			"status":  "not_ready",
			"code":    common.ErrServiceUnavailable.Code,
			"message": common.ErrServiceUnavailable.Message,
			"reason":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
