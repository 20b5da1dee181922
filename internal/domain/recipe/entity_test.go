package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RecipeEntityTestSuite tests the recipe entity
type RecipeEntityTestSuite struct {
	suite.Suite
	recipe *Recipe
}

func (s *RecipeEntityTestSuite) SetupTest() {
	omega := 420.0
	s.recipe = &Recipe{
		Name:         "Grilled Chicken Salad",
		Description:  "A light salad",
		PrepTime:     10,
		CookTime:     15,
		Servings:     2,
		Ingredients:  []Ingredient{{Name: "chicken breast", Quantity: 300, Unit: "g"}},
		Instructions: []string{"Grill the chicken", "Toss the salad"},
		Nutrition:    &NutrientInfo{Calories: 350, ProteinG: 30, Omega3Mg: &omega},
		PsychonutritionAnalysis: &PsychonutritionAnalysis{
			AnxietyScore: 4.5,
			KeyNutrients: []string{"Tryptophan"},
		},
		Tags: []string{"salad"},
	}
}

func (s *RecipeEntityTestSuite) TestClone_IsDeep() {
	// Arrange
	clone := s.recipe.Clone()

	// Act
	clone.Ingredients = append(clone.Ingredients, Ingredient{Name: "walnuts"})
	clone.Instructions[0] = "Bake the chicken"
	clone.PsychonutritionAnalysis.KeyNutrients[0] = "Zinc"
	*clone.Nutrition.Omega3Mg = 1

	// Assert
	s.Len(s.recipe.Ingredients, 1)
	s.Equal("Grill the chicken", s.recipe.Instructions[0])
	s.Equal("Tryptophan", s.recipe.PsychonutritionAnalysis.KeyNutrients[0])
	s.Equal(420.0, *s.recipe.Nutrition.Omega3Mg)
}

func (s *RecipeEntityTestSuite) TestClone_Nil() {
	var r *Recipe
	s.Nil(r.Clone())
}

func (s *RecipeEntityTestSuite) TestApplyDefaults() {
	r := &Recipe{Name: "Soup"}
	r.ApplyDefaults()

	s.Equal(DefaultDifficulty, r.Difficulty)
	s.NotNil(r.Tags)
	s.NotNil(r.ChefTips)
	s.NotNil(r.Variations)
}

func (s *RecipeEntityTestSuite) TestIngredientNames_AreLowercased() {
	s.recipe.Ingredients = append(s.recipe.Ingredients, Ingredient{Name: "Fresh Atlantic Salmon Fillet"})
	s.Equal([]string{"chicken breast", "fresh atlantic salmon fillet"}, s.recipe.IngredientNames())
}

func TestRecipeEntityTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeEntityTestSuite))
}

func TestRecipe_UnmarshalAcceptsAliases(t *testing.T) {
	data := `{
		"name": "Oats",
		"description": "Breakfast",
		"prep_time": 5,
		"cook_time": 5,
		"servings": 1,
		"ingredients": [{"name": "rolled oats", "amount": 0.5, "unit": "cup"}],
		"steps": ["Boil", "Stir"]
	}`

	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(data), &r))

	assert.Equal(t, []string{"Boil", "Stir"}, r.Instructions)
	assert.Equal(t, 0.5, r.Ingredients[0].Quantity)
}

func TestRecipe_InstructionsWinOverSteps(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","instructions":["a"],"steps":["b"]}`), &r))
	assert.Equal(t, []string{"a"}, r.Instructions)
}

func TestIngredient_IsComparable(t *testing.T) {
	a := Ingredient{Name: "avocado", Quantity: 1, Unit: "whole"}
	b := Ingredient{Name: "avocado", Quantity: 1, Unit: "whole"}
	assert.True(t, a == b)
}

func TestNewRequest_Defaults(t *testing.T) {
	req := NewRequest("grilled chicken salad")

	assert.True(t, req.AnxietyFocus)
	assert.Equal(t, SeasonAuto, req.Season)
	assert.Equal(t, DefaultRegion, req.Region)
	assert.Equal(t, DefaultServings, req.Servings)
	assert.Empty(t, req.DietaryRestrictions)
}

func TestSeasonSpecified(t *testing.T) {
	assert.False(t, SeasonSpecified(""))
	assert.False(t, SeasonSpecified(SeasonAuto))
	assert.True(t, SeasonSpecified(SeasonWinter))
}
