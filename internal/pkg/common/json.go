package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v, false)
}

// DecodeJSON 使用統一設定解析 JSON
func DecodeJSON(r io.Reader, v interface{}) error {
	return decodeJSON(r, v, false)
}

func decodeJSON(r io.Reader, v interface{}, disallowUnknown bool) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// JSON 物件擷取策略
const (
	// ExtractSlice 取第一個 { 到最後一個 } 之間的內容
	ExtractSlice = "slice"
	// ExtractBalanced 先嚴格解析整段文字，再以括號深度掃描第一個可解析的物件
	ExtractBalanced = "balanced"
)

// ExtractOptions 擷取設定，零值等同 ExtractSlice 且不修復
type ExtractOptions struct {
	Strategy string
	Repair   bool
}

// ExtractJSONObject 從模型回應文字中取出一個 JSON 物件。
// 找不到或解析失敗時回傳空物件，永遠不會回傳 nil。
func ExtractJSONObject(text string, opts ExtractOptions) map[string]any {
	var (
		obj map[string]any
		ok  bool
	)
	switch opts.Strategy {
	case ExtractBalanced:
		obj, ok = extractBalanced(text, opts.Repair)
	default:
		obj, ok = extractSlice(text, opts.Repair)
	}
	if !ok {
		LogDebug("模型回應中找不到可解析的 JSON 物件",
			zap.String("strategy", opts.Strategy),
			zap.Int("text_length", len(text)),
			zap.String("text_preview", Truncate(text)),
		)
		return map[string]any{}
	}
	return obj
}

func extractSlice(text string, repair bool) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeObject(text[start:end+1], repair)
}

// maxUnmatchedBraces 無法閉合的 { 起點上限，每個起點都要掃到文字結尾
const maxUnmatchedBraces = 32

func extractBalanced(text string, repair bool) (map[string]any, bool) {
	if obj, ok := decodeObject(strings.TrimSpace(text), false); ok {
		return obj, true
	}

	unmatched := 0
	for from := 0; from < len(text) && unmatched < maxUnmatchedBraces; {
		rel := strings.IndexByte(text[from:], '{')
		if rel < 0 {
			break
		}
		start := from + rel
		end := matchBrace(text, start)
		if end < 0 {
			unmatched++
		} else if obj, ok := decodeObject(text[start:end+1], repair); ok {
			return obj, true
		}
		from = start + 1
	}
	return nil, false
}

// matchBrace 回傳與 text[start] 的 { 對應的 } 位置，字串常值內的括號不計；找不到回傳 -1
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decodeObject(s string, repair bool) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	err := ParseJSON(s, &v)
	if err != nil && repair {
		repaired, ok := repairJSON(s)
		if !ok {
			return nil, false
		}
		v = nil
		err = ParseJSON(repaired, &v)
	}
	if err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// repairJSON 以 jsonrepair 修正常見的模型輸出錯誤（尾逗號、單引號、未加引號的鍵）
func repairJSON(s string) (repaired string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			LogWarn("JSON 修復失敗", zap.Any("panic", r))
			repaired, ok = "", false
		}
	}()
	out, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return "", false
	}
	return out, true
}
