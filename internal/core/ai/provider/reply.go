package provider

import (
	"bytes"
	"fmt"

	"chefbot/internal/pkg/common"
)

// ReplyText 解析供應商回應並沿 path 取出第一段文字。
// path 的元素為 map 鍵（string）或陣列索引（int）。
// 找不到非空文字時回傳整個回應重新序列化後的 JSON 文字。
func ReplyText(body []byte, path ...any) (string, error) {
	var raw any
	if err := common.DecodeJSON(bytes.NewReader(body), &raw); err != nil {
		return "", fmt.Errorf("failed to parse provider response: %w", err)
	}

	if text, ok := lookup(raw, path).(string); ok && text != "" {
		return text, nil
	}

	serialized, err := common.ToJSON(raw)
	if err != nil {
		return "", fmt.Errorf("failed to serialize provider response: %w", err)
	}
	return serialized, nil
}

func lookup(v any, path []any) any {
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			v = m[key]
		case int:
			arr, ok := v.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil
			}
			v = arr[key]
		default:
			return nil
		}
	}
	return v
}
