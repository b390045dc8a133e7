package recipe

import (
	"encoding/json"
	"strconv"
	"strings"
)

// pantrySeparator 食材清單分隔符，提示詞與預設 ingredients 共用
const pantrySeparator = ", "

// NormalizePantry 將請求中的 pantry 欄位轉為有序食材清單。
// 非陣列視為空；缺少 qty 視為空字串；名稱為空的項目會被略過。
func NormalizePantry(raw any) []PantryItem {
	list, ok := raw.([]any)
	if !ok {
		return []PantryItem{}
	}

	items := make([]PantryItem, 0, len(list))
	for _, el := range list {
		var item PantryItem
		switch v := el.(type) {
		case map[string]any:
			item = PantryItem{
				Name: scalarText(v["name"]),
				Qty:  scalarText(v["qty"]),
			}
		case string:
			item = PantryItem{Name: strings.TrimSpace(v)}
		default:
			continue
		}
		if item.Name == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// scalarText 字串去除空白，數字與布林轉為文字，其他型別視為空
func scalarText(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// ParseMode 未知或缺少的模式回傳 ModeNone
func ParseMode(raw any) Mode {
	s, ok := raw.(string)
	if !ok {
		return ModeNone
	}
	switch m := Mode(s); m {
	case ModeLean, ModeProtein, ModeVeg:
		return m
	default:
		return ModeNone
	}
}

// Truthy 以寬鬆規則判斷 improve：true、非零數字、非空字串皆為真
func Truthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case float64:
		return v != 0
	case nil:
		return false
	default:
		// 物件與陣列
		return true
	}
}

// NewGenerationRequest 從已解碼的請求 body 建立生成請求
func NewGenerationRequest(body any) GenerationRequest {
	fields, _ := body.(map[string]any)
	return GenerationRequest{
		Pantry:  NormalizePantry(fields["pantry"]),
		Mode:    ParseMode(fields["mode"]),
		Improve: Truthy(fields["improve"]),
	}
}

// PantryPretty 將食材渲染為 "name (qty)" 並以 ", " 連接
func PantryPretty(pantry []PantryItem) string {
	parts := make([]string, 0, len(pantry))
	for _, item := range pantry {
		if item.Qty != "" {
			parts = append(parts, item.Name+" ("+item.Qty+")")
		} else {
			parts = append(parts, item.Name)
		}
	}
	return strings.Join(parts, pantrySeparator)
}
