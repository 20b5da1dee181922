package knowledge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const nutrientJSON = `{
  "nutrients": {
    "zinc": {"name": "Zinc", "sources": ["pumpkin seeds"], "anxiety_benefit": "b1"},
    "omega3": {"name": "Omega-3", "sources": ["Salmon", "walnuts"], "anxiety_benefit": "b2"},
    "probiotics": {"name": "Probiotics", "sources": ["yogurt", "kimchi"], "anxiety_benefit": "b3"}
  },
  "food_combinations": [{"combination": "Salmon + Spinach", "benefit": "x"}]
}`

func TestNutrientDB_JSONKeepsFileOrder(t *testing.T) {
	var db NutrientDB
	require.NoError(t, json.Unmarshal([]byte(nutrientJSON), &db))

	require.Len(t, db.Nutrients, 3)
	assert.Equal(t, []string{"zinc", "omega3", "probiotics"},
		[]string{db.Nutrients[0].Key, db.Nutrients[1].Key, db.Nutrients[2].Key})
	assert.Equal(t, []string{"yogurt", "kimchi"}, db.ProbioticSources())
	assert.Equal(t, []string{"salmon", "spinach"}, db.FoodCombinations[0].Fragments())
}

func TestNutrientDB_YAMLKeepsFileOrder(t *testing.T) {
	var db NutrientDB
	require.NoError(t, yaml.Unmarshal([]byte(nutrientJSON), &db))

	require.Len(t, db.Nutrients, 3)
	assert.Equal(t, "zinc", db.Nutrients[0].Key)
	assert.Equal(t, "omega3", db.Nutrients[1].Key)
}

func TestNutrients_MarshalRoundTripKeepsOrder(t *testing.T) {
	var db NutrientDB
	require.NoError(t, json.Unmarshal([]byte(nutrientJSON), &db))

	out, err := json.Marshal(db)
	require.NoError(t, err)

	var again NutrientDB
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, db.Nutrients, again.Nutrients)
}

func TestNutrient_MatchesIsCaseInsensitiveSubstring(t *testing.T) {
	n := Nutrient{Sources: []string{"Salmon"}}

	assert.Equal(t, []string{"fresh atlantic salmon fillet"},
		n.Matches([]string{"fresh atlantic salmon fillet", "rice"}))
	assert.False(t, n.MatchesAny([]string{"rice"}))
}

func TestSeasonalItems_OrderAndLookup(t *testing.T) {
	data := `{
  "seasonal_ingredients": {
    "vegetables": {
      "tomato": {"peak_season": ["summer"], "substitutes": {"winter": {"ingredient": "roasted red peppers", "reason": "r"}}},
      "asparagus": {"peak_season": ["spring"], "substitutes": {}}
    }
  },
  "seasons": {"winter": ["kale"]}
}`
	var db SeasonalDB
	require.NoError(t, json.Unmarshal([]byte(data), &db))

	items := db.Category("vegetables")
	require.Len(t, items, 2)
	assert.Equal(t, "tomato", items[0].Key)
	assert.True(t, items[0].Matches("cherry tomatoes"))
	assert.True(t, items[1].Matches("asparagus"))
	assert.False(t, items[0].InPeak("winter"))
	assert.Equal(t, []string{"kale"}, db.InSeason("winter"))
	assert.Empty(t, db.Category("fish"))
}

func TestEmptyDatabases(t *testing.T) {
	assert.True(t, EmptyNutrientDB().IsEmpty())
	assert.Empty(t, EmptyNutrientDB().ProbioticSources())
	assert.Empty(t, EmptySeasonalDB().InSeason("winter"))

	var nilDB *NutrientDB
	assert.True(t, nilDB.IsEmpty())
}
