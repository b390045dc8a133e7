package recipe

import (
	"fmt"
	"strings"
)

// 營養模式對應的限制句
var modeConstraints = map[Mode]string{
	ModeLean:    "Recette faible en calories, cuisson saine, pas de gras inutile.",
	ModeProtein: "Recette riche en protéines, prioriser viande/œufs/produits laitiers maigres/légumineuses.",
	ModeVeg:     "Recette végétarienne uniquement, aucune viande ni poisson.",
	ModeNone:    "Recette standard.",
}

// ModeConstraint 回傳模式的限制句，未知模式使用 ModeNone
func ModeConstraint(mode Mode) string {
	if s, ok := modeConstraints[mode]; ok {
		return s
	}
	return modeConstraints[ModeNone]
}

const promptTemplate = `
Tu es un chef cuisinier. Génère STRICTEMENT un objet JSON valide (sans autre texte), au format EXACT:

{
  "title": "Titre de la recette",
  "timeEstimate": "30 min",
  "ingredients": ["..."],
  "steps": ["..."],
  "missingIngredients": ["..."],
  "tips": ["..."]
}

Règles:
- Ecris en français.
- "ingredients" = liste complète pour réaliser la recette, avec quantités quand possible.
- "missingIngredients" = uniquement ce qui n'est PAS dans le panier, à acheter pour une version meilleure (goût/texture/équilibre).
- "tips" = 3 conseils courts et utiles.
- Si improve=true, fais une version plus gourmande/qualitative (sans être irréaliste).

Panier utilisateur: %s
Contrainte nutritionnelle: %s
improve=%t
`

// BuildPrompt 根據食材、模式與 improve 旗標產生提示詞，結果只取決於輸入
func BuildPrompt(pantry []PantryItem, mode Mode, improve bool) string {
	return strings.TrimSpace(fmt.Sprintf(promptTemplate,
		PantryPretty(pantry),
		ModeConstraint(mode),
		improve,
	))
}
