package recipe

import "strings"

// 預設值
const (
	DefaultTitle        = "Recette générée"
	DefaultTimeEstimate = "—"
	StepsUnavailable    = "Étapes indisponibles."
)

// NormalizeRecipe 將模型輸出的物件對應到固定的食譜結構。
// 欄位缺少或型別不符時使用預設值，任何輸入都會得到完整的 Recipe。
func NormalizeRecipe(parsed map[string]any, pantryPretty string) Recipe {
	return Recipe{
		Title:              stringOr(parsed["title"], DefaultTitle),
		TimeEstimate:       stringOr(parsed["timeEstimate"], DefaultTimeEstimate),
		Ingredients:        listOr(parsed["ingredients"], splitPantry(pantryPretty)),
		Steps:              listOr(parsed["steps"], []any{StepsUnavailable}),
		MissingIngredients: listOr(parsed["missingIngredients"], []any{}),
		Tips:               listOr(parsed["tips"], []any{}),
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func listOr(v any, fallback []any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return fallback
}

// splitPantry 以分隔符切開食材字串並移除空白項
func splitPantry(pantryPretty string) []any {
	items := []any{}
	for _, s := range strings.Split(pantryPretty, pantrySeparator) {
		if s != "" {
			items = append(items, s)
		}
	}
	return items
}
