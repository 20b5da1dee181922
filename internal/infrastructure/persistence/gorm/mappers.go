package gorm

import (
	"fmt"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// RecipeToModel converts domain recipe to GORM model
func RecipeToModel(r *recipe.Recipe) (*RecipeModel, error) {
	ingredients, err := encodeJSON(r.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}

	model := &RecipeModel{
		Name:                r.Name,
		Description:         r.Description,
		PrepTime:            r.PrepTime,
		CookTime:            r.CookTime,
		Servings:            r.Servings,
		Ingredients:         ingredients,
		Instructions:        StringSlice(r.Instructions),
		Tags:                StringSlice(r.Tags),
		Difficulty:          r.Difficulty,
		Cuisine:             r.Cuisine,
		Season:              r.Season,
		ChefTips:            StringSlice(r.ChefTips),
		StorageInstructions: r.StorageInstructions,
		Variations:          StringSlice(r.Variations),
	}

	if r.Nutrition != nil {
		if model.Nutrition, err = encodeJSON(r.Nutrition); err != nil {
			return nil, fmt.Errorf("encode nutrition: %w", err)
		}
	}
	if a := r.PsychonutritionAnalysis; a != nil {
		if model.PsychonutritionAnalysis, err = encodeJSON(a); err != nil {
			return nil, fmt.Errorf("encode analysis: %w", err)
		}
		score := a.AnxietyScore
		model.AnxietyScore = &score
	}
	return model, nil
}

// ModelToRecipe converts GORM model to domain recipe
func ModelToRecipe(model *RecipeModel) (*recipe.Recipe, error) {
	r := &recipe.Recipe{
		Name:                model.Name,
		Description:         model.Description,
		PrepTime:            model.PrepTime,
		CookTime:            model.CookTime,
		Servings:            model.Servings,
		Instructions:        []string(model.Instructions),
		Tags:                []string(model.Tags),
		Difficulty:          model.Difficulty,
		Cuisine:             model.Cuisine,
		Season:              model.Season,
		ChefTips:            []string(model.ChefTips),
		StorageInstructions: model.StorageInstructions,
		Variations:          []string(model.Variations),
	}

	if _, err := model.Ingredients.Decode(&r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients of recipe %d: %w", model.ID, err)
	}

	var nutrition recipe.NutrientInfo
	ok, err := model.Nutrition.Decode(&nutrition)
	if err != nil {
		return nil, fmt.Errorf("decode nutrition of recipe %d: %w", model.ID, err)
	}
	if ok {
		r.Nutrition = &nutrition
	}

	var analysis recipe.PsychonutritionAnalysis
	ok, err = model.PsychonutritionAnalysis.Decode(&analysis)
	if err != nil {
		return nil, fmt.Errorf("decode analysis of recipe %d: %w", model.ID, err)
	}
	if ok {
		r.PsychonutritionAnalysis = &analysis
	}

	r.ApplyDefaults()
	return r, nil
}

// ModelToStoredRecipe converts GORM model to a stored recipe
func ModelToStoredRecipe(model *RecipeModel) (*outbound.StoredRecipe, error) {
	r, err := ModelToRecipe(model)
	if err != nil {
		return nil, err
	}
	return &outbound.StoredRecipe{ID: model.ID, Recipe: r, CreatedAt: model.CreatedAt}, nil
}
