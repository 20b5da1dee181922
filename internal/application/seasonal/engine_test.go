package seasonal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

func testDB() *knowledge.SeasonalDB {
	return &knowledge.SeasonalDB{
		Ingredients: map[string]knowledge.SeasonalItems{
			"vegetables": {
				{Key: "tomato", PeakSeason: []string{"summer"}, Substitutes: map[string]knowledge.Substitute{
					"winter": {Ingredient: "roasted red peppers", Reason: "Tomatoes lack flavor in winter"},
				}},
				{Key: "asparagus", PeakSeason: []string{"spring"}, Substitutes: map[string]knowledge.Substitute{}},
			},
			"herbs": {
				{Key: "basil", PeakSeason: []string{"summer"}, Substitutes: map[string]knowledge.Substitute{
					"winter": {Ingredient: "dried oregano", Reason: "Fresh basil is scarce"},
				}},
			},
			"fruits": {
				{Key: "cherry tomatoes", PeakSeason: []string{"summer"}, Substitutes: map[string]knowledge.Substitute{
					"winter": {Ingredient: "sun-dried tomatoes", Reason: "Preserved flavor"},
				}},
			},
		},
		Seasons: map[string][]string{
			"winter": {"Kale", "leeks"},
		},
	}
}

func TestCurrentSeason(t *testing.T) {
	cases := map[time.Month]string{
		time.December: "winter", time.January: "winter", time.February: "winter",
		time.March: "spring", time.May: "spring",
		time.June: "summer", time.August: "summer",
		time.September: "fall", time.November: "fall",
	}
	for month, want := range cases {
		assert.Equal(t, want, CurrentSeason(time.Date(2024, month, 10, 0, 0, 0, 0, time.UTC)), month)
	}
}

func TestResolve(t *testing.T) {
	july := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "summer", Resolve("auto", july))
	assert.Equal(t, "summer", Resolve("", july))
	assert.Equal(t, "winter", Resolve("winter", july))
}

func TestSubstitute_OutOfSeasonIngredient(t *testing.T) {
	r := &recipe.Recipe{Ingredients: []recipe.Ingredient{
		{Name: "Ripe Tomato", Quantity: 2, Unit: "pieces"},
		{Name: "asparagus", Quantity: 0.5, Unit: "bunch"},
	}}

	subs := Substitute(r, "winter", "europe", testDB())

	require.Len(t, subs, 1)
	assert.Equal(t, recipe.IngredientSubstitution{
		Original:   "Ripe Tomato",
		Substitute: "roasted red peppers",
		Reason:     "Tomatoes lack flavor in winter",
		Adjustment: "Use same quantity: 2.0 pieces",
	}, subs[0])
}

func TestSubstitute_InPeakSeasonIsKept(t *testing.T) {
	r := &recipe.Recipe{Ingredients: []recipe.Ingredient{{Name: "tomato", Quantity: 1, Unit: "whole"}}}
	assert.Empty(t, Substitute(r, "summer", "europe", testDB()))
}

func TestSubstitute_CategoryOrderAndNoDedup(t *testing.T) {
	r := &recipe.Recipe{Ingredients: []recipe.Ingredient{
		{Name: "fresh basil", Quantity: 0.25, Unit: "cup"},
		{Name: "cherry tomatoes", Quantity: 1, Unit: "cup"},
	}}

	subs := Substitute(r, "winter", "europe", testDB())

	require.Len(t, subs, 3)
	// vegetables first: "tomato" is contained in "cherry tomatoes"
	assert.Equal(t, "roasted red peppers", subs[0].Substitute)
	// fruits next
	assert.Equal(t, "sun-dried tomatoes", subs[1].Substitute)
	// herbs last
	assert.Equal(t, "dried oregano", subs[2].Substitute)
	assert.Equal(t, "Use same quantity: 0.25 cup", subs[2].Adjustment)
}

func TestSubstitute_IngredientContainedInKey(t *testing.T) {
	r := &recipe.Recipe{Ingredients: []recipe.Ingredient{{Name: "Cherry", Quantity: 1, Unit: "cup"}}}
	subs := Substitute(r, "winter", "europe", testDB())
	require.Len(t, subs, 1)
	assert.Equal(t, "sun-dried tomatoes", subs[0].Substitute)
}

func TestSubstitute_EmptyDatabase(t *testing.T) {
	r := &recipe.Recipe{Ingredients: []recipe.Ingredient{{Name: "tomato"}}}
	assert.Empty(t, Substitute(r, "winter", "europe", knowledge.EmptySeasonalDB()))
	assert.Empty(t, Substitute(nil, "winter", "europe", testDB()))
}

func TestGenerateVariation(t *testing.T) {
	r := &recipe.Recipe{Name: "Summer Salad", Ingredients: []recipe.Ingredient{{Name: "tomato", Quantity: 3, Unit: "whole"}}}

	v := GenerateVariation(r, "winter", "europe", testDB())

	assert.Equal(t, "Summer Salad (Winter Variation)", v.Name)
	assert.Equal(t, "winter", v.Season)
	assert.Equal(t, "europe", v.Region)
	assert.Equal(t, "Optimized for winter ingredients in europe", v.Notes)
	assert.Len(t, v.Substitutions, 1)
}

func TestPreservedHeuristics(t *testing.T) {
	r := &recipe.Recipe{Ingredients: []recipe.Ingredient{{Name: "Roma Tomatoes"}, {Name: "onion"}}}

	subs := PreservedHeuristics(r, "winter", testDB())
	require.Len(t, subs, 1)
	assert.Equal(t, "canned tomatoes", subs[0].Substitute)

	assert.Empty(t, PreservedHeuristics(r, "summer", testDB()))
	assert.Empty(t, PreservedHeuristics(r, "winter", knowledge.EmptySeasonalDB()))
}

func TestCheckAvailability(t *testing.T) {
	r := &recipe.Recipe{Ingredients: []recipe.Ingredient{
		{Name: "Curly Kale"}, {Name: "salmon"}, {Name: "leeks"},
	}}

	got := CheckAvailability(r, "winter", testDB(), 2)

	assert.Equal(t, []Availability{{Ingredient: "Curly Kale", InSeason: true}, {Ingredient: "salmon", InSeason: false}}, got)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2.0", FormatQuantity(2))
	assert.Equal(t, "0.25", FormatQuantity(0.25))
	assert.Equal(t, "1.5", FormatQuantity(1.5))
}
