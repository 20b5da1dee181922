// Package offline provides a deterministic recipe generator that needs no
// model server. It is the provider for local use without network access.
package offline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// ProviderName identifies this backend in logs and errors
const ProviderName = config.ProviderOffline

// Generator builds recipes from keyword templates
type Generator struct {
	logger *zap.Logger
}

var _ outbound.RecipeGenerator = (*Generator)(nil)

// NewGenerator creates an offline generator
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger.Named("offline")}
}

// Name returns the provider name
func (g *Generator) Name() string {
	return ProviderName
}

// GenerateRecipe creates a recipe from the request description
func (g *Generator) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dish := extractMainDish(req.Description)
	r := &recipe.Recipe{
		Name:         "Marco's " + dish,
		Description:  fmt.Sprintf("A simple recipe inspired by: %s", req.Description),
		PrepTime:     15,
		CookTime:     25,
		Servings:     req.Servings,
		Ingredients:  fallbackIngredients(req),
		Instructions: fallbackInstructions(),
		Nutrition: &recipe.NutrientInfo{
			Calories: 350,
			ProteinG: 20.0,
			CarbsG:   45.0,
			FatG:     12.0,
			FiberG:   5.0,
		},
		Tags:                fallbackTags(req),
		Difficulty:          "easy",
		StorageInstructions: "Refrigerate in an airtight container for up to 3 days.",
	}
	if len(req.DietaryRestrictions) > 0 {
		r.Description += fmt.Sprintf(". Suitable for %s diets.", strings.Join(req.DietaryRestrictions, " and "))
	}
	r.ApplyDefaults()

	g.logger.Debug("Generated offline recipe",
		zap.String("name", r.Name),
		zap.Int("ingredients", len(r.Ingredients)))
	return r, nil
}

var dishes = []struct {
	keyword string
	dish    string
}{
	{"stir fry", "Stir Fry"},
	{"pasta", "Pasta"},
	{"salmon", "Salmon Dish"},
	{"chicken", "Chicken Dish"},
	{"beef", "Beef Dish"},
	{"fish", "Fish Dish"},
	{"salad", "Salad"},
	{"soup", "Soup"},
	{"curry", "Curry"},
	{"bowl", "Bowl"},
	{"vegetable", "Vegetable Dish"},
	{"sandwich", "Sandwich"},
}

func extractMainDish(description string) string {
	description = strings.ToLower(description)
	for _, d := range dishes {
		if strings.Contains(description, d.keyword) {
			return d.dish
		}
	}
	return "Dish"
}

var keywordIngredients = []struct {
	keyword    string
	ingredient recipe.Ingredient
}{
	{"chicken", recipe.Ingredient{Name: "chicken breast", Quantity: 500, Unit: "g"}},
	{"salmon", recipe.Ingredient{Name: "salmon fillet", Quantity: 400, Unit: "g"}},
	{"fish", recipe.Ingredient{Name: "white fish fillet", Quantity: 400, Unit: "g"}},
	{"beef", recipe.Ingredient{Name: "beef sirloin", Quantity: 400, Unit: "g"}},
	{"pasta", recipe.Ingredient{Name: "pasta", Quantity: 250, Unit: "g"}},
	{"tomato", recipe.Ingredient{Name: "tomatoes", Quantity: 3, Unit: "medium"}},
	{"onion", recipe.Ingredient{Name: "yellow onion", Quantity: 1, Unit: "medium"}},
	{"garlic", recipe.Ingredient{Name: "garlic", Quantity: 3, Unit: "cloves"}},
}

// anxietyIngredients are added to anxiety-focused requests
var anxietyIngredients = []recipe.Ingredient{
	{Name: "spinach", Quantity: 100, Unit: "g"},
	{Name: "walnuts", Quantity: 30, Unit: "g"},
	{Name: "pumpkin seeds", Quantity: 2, Unit: "tbsp"},
}

func fallbackIngredients(req recipe.Request) []recipe.Ingredient {
	ingredients := []recipe.Ingredient{
		{Name: "olive oil", Quantity: 2, Unit: "tbsp"},
		{Name: "salt", Quantity: 1, Unit: "tsp"},
		{Name: "black pepper", Quantity: 0.5, Unit: "tsp"},
	}

	description := strings.ToLower(req.Description)
	for _, k := range keywordIngredients {
		if strings.Contains(description, k.keyword) {
			ingredients = append(ingredients, k.ingredient)
		}
	}
	if req.AnxietyFocus {
		ingredients = append(ingredients, anxietyIngredients...)
	}
	if len(ingredients) < 5 {
		ingredients = append(ingredients,
			recipe.Ingredient{Name: "fresh herbs", Quantity: 2, Unit: "tbsp"},
			recipe.Ingredient{Name: "lemon", Quantity: 1, Unit: "whole"},
		)
	}
	return ingredients
}

func fallbackInstructions() []string {
	return []string{
		"Prepare all ingredients according to the recipe requirements.",
		"Heat olive oil in a large pan over medium heat.",
		"Add main ingredients and cook until properly prepared.",
		"Season with salt and pepper to taste.",
		"Serve hot.",
	}
}

func fallbackTags(req recipe.Request) []string {
	tags := []string{"offline"}
	if req.AnxietyFocus {
		tags = append(tags, "anxiety-friendly")
	}
	return append(tags, req.DietaryRestrictions...)
}
