// Package iteration decides whether a recipe needs another pass and applies
// the scripted ingredient-augmentation transform.
package iteration

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	convapp "github.com/alchemorsel/marco/internal/application/conversation"
	"github.com/alchemorsel/marco/internal/domain/conversation"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// Policy constants
const (
	TargetScore    = 6.0
	ConcernWindow  = 5
	ScanWindow     = 10
	MaxSuggestions = 3
)

// booster ties a conversation keyword to the ingredient it adds.
type booster struct {
	keyword    string
	suggestion string
	ingredient recipe.Ingredient
}

// vocabulary is scanned in this order for every message.
var vocabulary = []booster{
	{"walnut", "Add walnuts for omega-3 and magnesium", recipe.Ingredient{Name: "chopped walnuts", Quantity: 0.25, Unit: "cup"}},
	{"chia", "Add chia seeds for omega-3 and fiber", recipe.Ingredient{Name: "chia seeds", Quantity: 1, Unit: "tbsp"}},
	{"spinach", "Add spinach for magnesium and folate", recipe.Ingredient{Name: "fresh spinach", Quantity: 2, Unit: "cups"}},
	{"kale", "Add kale for magnesium and antioxidants", recipe.Ingredient{Name: "chopped kale", Quantity: 1, Unit: "cup"}},
	{"pumpkin seed", "Add pumpkin seeds for magnesium and zinc", recipe.Ingredient{Name: "pumpkin seeds", Quantity: 2, Unit: "tbsp"}},
}

// DefaultIngredients are added when the conversation names no booster.
func DefaultIngredients() []recipe.Ingredient {
	return []recipe.Ingredient{
		{Name: "chopped walnuts", Quantity: 0.25, Unit: "cup"},
		{Name: "fresh spinach", Quantity: 2, Unit: "cups"},
		{Name: "avocado", Quantity: 1, Unit: "whole"},
	}
}

// EnhancedInstructions replace the recipe's instructions after improvement.
func EnhancedInstructions() []string {
	return []string{
		"Season salmon fillets with salt and pepper",
		"Heat olive oil in a large pan over medium heat",
		"Add fresh spinach to the pan and sauté until wilted (2-3 minutes)",
		"Add chopped walnuts to the spinach and cook for 1 minute to release oils",
		"Grill or pan-sear salmon fillets for 4-5 minutes per side until cooked through",
		"Slice the avocado and arrange alongside the salmon",
		"Serve salmon over the nutrient-rich spinach-walnut mixture with fresh avocado slices",
		"Drizzle with extra olive oil and a squeeze of lemon for enhanced mineral absorption",
	}
}

const descriptionSuffix = " Enhanced with proven anxiety-reducing nutrients including omega-3 rich walnuts, " +
	"magnesium-packed spinach, and heart-healthy avocado for optimal mental wellness."

// Iterator applies the improvement policy.
type Iterator struct {
	conversations *convapp.Manager
	logger        *zap.Logger
}

// NewIterator creates an iterator that reports through conversations.
func NewIterator(conversations *convapp.Manager, logger *zap.Logger) *Iterator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Iterator{
		conversations: conversations,
		logger:        logger.Named("iteration"),
	}
}

// ShouldIterate reports whether the recipe has an analysis and either scores
// below TargetScore or drew a concern in the last ConcernWindow messages.
func (it *Iterator) ShouldIterate(st *recipe.State) bool {
	analysis := st.Analysis()
	if analysis == nil {
		return false
	}
	if analysis.AnxietyScore < TargetScore {
		return true
	}
	for _, msg := range st.RecentMessages(ConcernWindow) {
		if msg.Type == conversation.TypeConcern {
			return true
		}
	}
	return false
}

// Suggestions scans the last ScanWindow messages for "add" alongside a
// booster keyword and returns at most MaxSuggestions matching boosters.
func (it *Iterator) Suggestions(st *recipe.State) []string {
	var out []string
	for _, b := range it.scan(st) {
		out = append(out, b.suggestion)
	}
	return out
}

func (it *Iterator) scan(st *recipe.State) []booster {
	var found []booster
	for _, msg := range st.RecentMessages(ScanWindow) {
		content := strings.ToLower(msg.Content)
		if !strings.Contains(content, "add") {
			continue
		}
		for _, b := range vocabulary {
			if strings.Contains(content, b.keyword) {
				found = append(found, b)
			}
		}
	}
	if len(found) > MaxSuggestions {
		found = found[:MaxSuggestions]
	}
	return found
}

// Improve appends booster ingredients to the recipe, rewrites its name and
// description, replaces its instructions and posts a modification message.
// It does not check ShouldIterate; repeated calls keep appending.
func (it *Iterator) Improve(st *recipe.State) ([]recipe.Ingredient, error) {
	if !st.HasRecipe() {
		return nil, recipe.ErrNoRecipe
	}

	var added []recipe.Ingredient
	for _, b := range it.scan(st) {
		added = append(added, b.ingredient)
	}
	if len(added) == 0 {
		added = DefaultIngredients()
	}

	r := st.Recipe
	r.Ingredients = append(r.Ingredients, added...)
	r.Name = fmt.Sprintf("Enhanced %s with Anxiety-Reducing Superfoods", r.Name)
	r.Description += descriptionSuffix
	r.Instructions = EnhancedInstructions()

	names := make([]string, len(added))
	for i, ing := range added {
		names[i] = ing.Name
	}
	it.conversations.AddMessage(st, conversation.RolePsychonutritionist, modificationMessage(names),
		conversation.TypeModification,
		convapp.WithMetadata(map[string]interface{}{"added_ingredients": names}))

	it.logger.Info("Recipe improved",
		zap.String("name", r.Name),
		zap.Strings("added", names),
	)
	return added, nil
}

func modificationMessage(added []string) string {
	return fmt.Sprintf(`I've significantly enhanced this recipe with powerful anxiety-reducing superfoods!

**Key Improvements Made:**
- Added %s
- Enhanced cooking instructions for optimal nutrient preservation
- Optimized for both flavor and anxiety reduction

This enhanced version should score much higher for anxiety relief with:
- Omega-3 fatty acids from walnuts for brain health
- Magnesium from spinach for nervous system support
- Healthy fats from avocado for neurotransmitter production

The recipe is now a true anxiety-fighting powerhouse!`, strings.Join(added, ", "))
}
