// Package testutils provides test data factories, mocks and fixtures shared
// by the package tests.
package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	faker        *gofakeit.Faker
	name         string
	description  string
	ingredients  []recipe.Ingredient
	instructions []string
	servings     int
	analysis     *recipe.PsychonutritionAnalysis
}

// NewRecipeBuilder creates a builder with random but valid defaults
func NewRecipeBuilder() *RecipeBuilder {
	return NewSeededRecipeBuilder(time.Now().UnixNano())
}

// NewSeededRecipeBuilder creates a builder whose random values are reproducible
func NewSeededRecipeBuilder(seed int64) *RecipeBuilder {
	faker := gofakeit.New(seed)
	return &RecipeBuilder{
		faker:       faker,
		name:        faker.Dessert(),
		description: faker.Sentence(8),
		servings:    faker.Number(1, 8),
	}
}

// WithName sets the recipe name
func (b *RecipeBuilder) WithName(name string) *RecipeBuilder {
	b.name = name
	return b
}

// WithIngredients replaces the ingredient list with one entry per name
func (b *RecipeBuilder) WithIngredients(names ...string) *RecipeBuilder {
	b.ingredients = nil
	for _, n := range names {
		b.ingredients = append(b.ingredients, recipe.Ingredient{
			Name:     n,
			Quantity: float64(b.faker.Number(1, 4)),
			Unit:     b.faker.RandomString([]string{"cup", "tbsp", "g", "whole"}),
		})
	}
	return b
}

// WithAnalysis attaches an analysis with the given score
func (b *RecipeBuilder) WithAnalysis(score float64) *RecipeBuilder {
	b.analysis = &recipe.PsychonutritionAnalysis{AnxietyScore: score}
	return b
}

// Build constructs the recipe
func (b *RecipeBuilder) Build() *recipe.Recipe {
	ingredients := b.ingredients
	if len(ingredients) == 0 {
		for i := 0; i < 3; i++ {
			ingredients = append(ingredients, recipe.Ingredient{
				Name:     b.faker.Vegetable(),
				Quantity: float64(b.faker.Number(1, 4)),
				Unit:     "cup",
			})
		}
	}
	instructions := b.instructions
	if len(instructions) == 0 {
		instructions = []string{b.faker.Sentence(6), b.faker.Sentence(6)}
	}
	r := &recipe.Recipe{
		Name:                    b.name,
		Description:             b.description,
		PrepTime:                b.faker.Number(5, 30),
		CookTime:                b.faker.Number(5, 60),
		Servings:                b.servings,
		Ingredients:             ingredients,
		Instructions:            instructions,
		PsychonutritionAnalysis: b.analysis,
	}
	r.ApplyDefaults()
	return r
}

// NutrientDB is a small nutrient knowledge base covering the common boosters
func NutrientDB() *knowledge.NutrientDB {
	return &knowledge.NutrientDB{
		Nutrients: knowledge.Nutrients{
			{Key: "omega3", Name: "Omega-3 Fatty Acids", Sources: []string{"salmon", "walnuts", "chia"},
				AnxietyBenefit: "Reduces inflammation linked to anxiety",
				Mechanism:      "Supports neuronal membrane fluidity",
				Recommendation: "Include fatty fish twice a week"},
			{Key: "magnesium", Name: "Magnesium", Sources: []string{"spinach", "pumpkin seeds", "avocado"},
				AnxietyBenefit: "Calms the nervous system",
				Mechanism:      "Regulates the HPA axis"},
			{Key: "tryptophan", Name: "Tryptophan", Sources: []string{"turkey", "chicken", "eggs"},
				AnxietyBenefit: "Serotonin precursor"},
			{Key: "probiotics", Name: "Probiotics", Sources: []string{"yogurt", "kimchi", "kefir"},
				AnxietyBenefit: "Supports the gut-brain axis"},
		},
		FoodCombinations: []knowledge.FoodCombination{
			{Combination: "Salmon + Spinach", Benefit: "Omega-3 with magnesium"},
		},
	}
}

// SeasonalDB is a small seasonal knowledge base with winter substitutes
func SeasonalDB() *knowledge.SeasonalDB {
	return &knowledge.SeasonalDB{
		Ingredients: map[string]knowledge.SeasonalItems{
			"vegetables": {
				{Key: "tomato", PeakSeason: []string{"summer"}, Substitutes: map[string]knowledge.Substitute{
					"winter": {Ingredient: "roasted red peppers", Reason: "Tomatoes lack flavor in winter"},
				}},
				{Key: "zucchini", PeakSeason: []string{"summer"}, Substitutes: map[string]knowledge.Substitute{
					"winter": {Ingredient: "butternut squash", Reason: "Winter squash is in season"},
				}},
			},
			"herbs": {
				{Key: "basil", PeakSeason: []string{"summer"}, Substitutes: map[string]knowledge.Substitute{
					"winter": {Ingredient: "dried oregano", Reason: "Fresh basil is scarce"},
				}},
			},
		},
		Seasons: map[string][]string{
			"winter": {"kale", "leeks", "walnuts"},
			"summer": {"tomato", "basil", "zucchini"},
		},
	}
}
