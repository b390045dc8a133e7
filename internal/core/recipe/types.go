package recipe

// PantryItem 使用者提供的食材
type PantryItem struct {
	Name string `json:"name"`
	Qty  string `json:"qty"`
}

// Mode 營養模式
type Mode string

const (
	ModeNone    Mode = "none"
	ModeLean    Mode = "lean"
	ModeProtein Mode = "protein"
	ModeVeg     Mode = "veg"
)

// Modes 全部模式
var Modes = []Mode{ModeNone, ModeLean, ModeProtein, ModeVeg}

// GenerationRequest 單次生成請求，每個 HTTP 呼叫建立一次
type GenerationRequest struct {
	Pantry  []PantryItem
	Mode    Mode
	Improve bool
}

// Recipe 回傳給前端的食譜；清單元素原樣保留模型輸出，不做型別檢查
type Recipe struct {
	Title              string `json:"title"`
	TimeEstimate       string `json:"timeEstimate"`
	Ingredients        []any  `json:"ingredients"`
	Steps              []any  `json:"steps"`
	MissingIngredients []any  `json:"missingIngredients"`
	Tips               []any  `json:"tips"`
}
