package psychonutrition

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

func testDB() *knowledge.NutrientDB {
	return &knowledge.NutrientDB{
		Nutrients: knowledge.Nutrients{
			{Key: "omega3", Name: "Omega-3 Fatty Acids", Sources: []string{"salmon", "walnuts", "chia"},
				AnxietyBenefit: "Reduces inflammation", Mechanism: "Supports membranes", Recommendation: "Eat fish twice a week"},
			{Key: "magnesium", Name: "Magnesium", Sources: []string{"spinach", "pumpkin seeds", "almonds"},
				AnxietyBenefit: "Calms the nervous system", Mechanism: "Regulates HPA axis"},
			{Key: "tryptophan", Name: "Tryptophan", Sources: []string{"turkey", "chicken", "eggs"},
				AnxietyBenefit: "Serotonin precursor", Recommendation: "Pair with carbohydrates"},
			{Key: "probiotics", Name: "Probiotics", Sources: []string{"yogurt", "kimchi", "kefir"},
				AnxietyBenefit: "Gut-brain axis"},
		},
		FoodCombinations: []knowledge.FoodCombination{
			{Combination: "Salmon + Spinach"},
			{Combination: "Turkey + Whole grains + Leafy greens"},
		},
	}
}

func withIngredients(names ...string) *recipe.Recipe {
	r := &recipe.Recipe{Name: "Test"}
	for _, n := range names {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Name: n, Quantity: 1, Unit: "cup"})
	}
	return r
}

// ScoringTestSuite tests the anxiety score
type ScoringTestSuite struct {
	suite.Suite
	db *knowledge.NutrientDB
}

func (s *ScoringTestSuite) SetupTest() {
	s.db = testDB()
}

func (s *ScoringTestSuite) TestScore_EmptyRecipeIsZero() {
	s.Equal(0.0, Score(withIngredients(), s.db, BasicProbioticBonus))
	s.Equal(0.0, Score(nil, s.db, BasicProbioticBonus))
}

func (s *ScoringTestSuite) TestScore_SubstringMatchIsCaseInsensitive() {
	r := withIngredients("Fresh Atlantic Salmon Fillet")
	s.Equal(0.5, Score(r, s.db, BasicProbioticBonus))
	s.Equal([]string{"Omega-3 Fatty Acids"}, KeyNutrients(r, s.db))
}

func (s *ScoringTestSuite) TestScore_PerNutrientIsCapped() {
	// Four omega-3 matches would be 2.0 without the cap
	r := withIngredients("salmon", "walnuts", "chia seeds", "smoked salmon")
	s.Equal(1.5, Score(r, s.db, BasicProbioticBonus))
}

func (s *ScoringTestSuite) TestScore_CombinationNeedsTwoFragments() {
	// salmon (0.5) + spinach (0.5) + combo (0.5)
	s.Equal(1.5, Score(withIngredients("salmon", "baby spinach"), s.db, BasicProbioticBonus))
	// turkey + leafy greens present, whole grains absent: 2 of 3 fragments
	s.Equal(1.0, Score(withIngredients("turkey", "leafy greens"), s.db, BasicProbioticBonus))
}

func (s *ScoringTestSuite) TestScore_ProbioticBonusDiffersPerPath() {
	r := withIngredients("greek yogurt")
	// probiotics nutrient (0.5) + bonus
	s.Equal(1.0, Score(r, s.db, BasicProbioticBonus))
	s.Equal(1.5, Score(r, s.db, CollaborativeProbioticBonus))
}

func (s *ScoringTestSuite) TestScore_ClampedToTen() {
	db := testDB()
	for i := 0; i < 10; i++ {
		db.Nutrients = append(db.Nutrients, knowledge.Nutrient{Key: gofakeit.UUID(), Name: "Filler", Sources: []string{"salmon"}})
	}
	r := withIngredients("salmon", "salmon", "salmon")
	s.Equal(MaxScore, Score(r, db, CollaborativeProbioticBonus))
}

func (s *ScoringTestSuite) TestScore_AlwaysWithinBounds() {
	faker := gofakeit.New(42)
	pool := []string{"salmon", "walnuts", "chia", "spinach", "yogurt", "kimchi", "turkey", "eggs", "rice", "bread"}
	for i := 0; i < 200; i++ {
		var names []string
		for j := 0; j < faker.Number(0, 40); j++ {
			names = append(names, faker.RandomString(pool)+" "+faker.Adjective())
		}
		score := Score(withIngredients(names...), s.db, CollaborativeProbioticBonus)
		s.GreaterOrEqual(score, 0.0)
		s.LessOrEqual(score, MaxScore)
	}
}

func (s *ScoringTestSuite) TestScore_EmptyDatabaseIsInert() {
	s.Equal(0.0, Score(withIngredients("salmon", "yogurt"), knowledge.EmptyNutrientDB(), CollaborativeProbioticBonus))
}

func TestScoringTestSuite(t *testing.T) {
	suite.Run(t, new(ScoringTestSuite))
}

func TestBasic_LowScoreCarriesCautions(t *testing.T) {
	a := NewAnalyzer(testDB())

	analysis := a.Basic(withIngredients("rice"))

	assert.Equal(t, 0.0, analysis.AnxietyScore)
	assert.Empty(t, analysis.KeyNutrients)
	assert.Equal(t, []string{"Consult healthcare provider for personalized advice"}, analysis.Cautions)
	require.Len(t, analysis.Recommendations, 5)
	assert.Equal(t, "Eat this meal mindfully, chewing slowly to enhance nutrient absorption", analysis.Recommendations[0])
	assert.Contains(t, analysis.Recommendations[1], "fermented foods")
	// The tryptophan line is the sixth item and is truncated away.
	assert.NotContains(t, analysis.Recommendations, "Add a protein source rich in tryptophan for better serotonin production")
}

func TestBasic_MechanismsFollowDatabaseOrder(t *testing.T) {
	a := NewAnalyzer(testDB())

	analysis := a.Basic(withIngredients("eggs", "spinach", "salmon"))

	assert.Equal(t, []string{"Omega-3 Fatty Acids", "Magnesium", "Tryptophan"}, analysis.KeyNutrients)
	assert.Equal(t, []string{"Reduces inflammation", "Calms the nervous system", "Serotonin precursor"}, analysis.Mechanisms)
}

func TestBasic_RoundsScoreToOneDecimal(t *testing.T) {
	db := testDB()
	db.Nutrients = append(db.Nutrients, knowledge.Nutrient{Key: "odd", Name: "Odd", Sources: []string{"rice"}})
	a := NewAnalyzer(db)

	analysis := a.Basic(withIngredients("rice"))
	assert.Equal(t, 0.5, analysis.AnxietyScore)
}

func TestRecommendations_ProteinMatchIsExact(t *testing.T) {
	high := 8.0
	withProtein := Recommendations(withIngredients("Salmon"), high)
	assert.Len(t, withProtein, 3)

	partial := Recommendations(withIngredients("salmon fillet"), high)
	assert.Equal(t, "Add a protein source rich in tryptophan for better serotonin production", partial[len(partial)-1])
}

func TestCollaborative_UsesMechanismAndRecommendationFields(t *testing.T) {
	a := NewAnalyzer(testDB())

	analysis := a.Collaborative(withIngredients("salmon", "spinach", "chicken", "kefir"))

	assert.Equal(t, []string{"Omega-3 Fatty Acids", "Magnesium", "Tryptophan", "Probiotics"}, analysis.KeyNutrients)
	assert.Equal(t, []string{"Supports membranes", "Regulates HPA axis"}, analysis.Mechanisms)
	assert.Equal(t, []string{"Eat fish twice a week", "Pair with carbohydrates"}, analysis.Recommendations)
	assert.Nil(t, analysis.Cautions)
	// 4 nutrients * 0.5 + salmon/spinach combo 0.5 + probiotic 1.0
	assert.Equal(t, 3.5, analysis.AnxietyScore)
}

func TestNewAnalyzer_NilDatabase(t *testing.T) {
	a := NewAnalyzer(nil)
	assert.True(t, a.Database().IsEmpty())
	assert.Equal(t, 0.0, a.Collaborative(withIngredients("salmon")).AnxietyScore)
}
