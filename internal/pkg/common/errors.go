package common

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError 定義自定義錯誤類型（中間件回應使用）
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示請求驗證錯誤（4xx，不會呼叫模型）
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// ConfigurationError 表示伺服器設定缺失，例如供應商憑證
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s manquant côté serveur.", e.Setting)
}

// NewConfigurationError 創建設定錯誤
func NewConfigurationError(setting string) error {
	return &ConfigurationError{Setting: setting}
}

// IsConfigurationError 檢查是否為設定錯誤
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// ProviderError 表示供應商回傳非成功狀態，Body 保留原始錯誤內容
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}

// AsProviderError 取出供應商錯誤
func AsProviderError(err error) (*ProviderError, bool) {
	var target *ProviderError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// TransportError 表示與供應商之間的網路錯誤
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to send request to %s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError 檢查是否為網路錯誤
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// 預定義錯誤代碼
const (
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"   // 413
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"   // 429
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
)

// 預定義錯誤
var (
	ErrRequestTooLarge    = NewError(ErrCodeRequestTooLarge, "Requête trop volumineuse.", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "Trop de requêtes, réessayez plus tard.", http.StatusTooManyRequests, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "Service temporairement indisponible.", http.StatusServiceUnavailable, nil)
)
