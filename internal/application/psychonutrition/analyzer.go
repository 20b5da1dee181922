package psychonutrition

import (
	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// CautionThreshold is the score below which the basic analysis attaches cautions.
const CautionThreshold = 5.0

// Analyzer produces psychonutrition analyses against one nutrient database.
type Analyzer struct {
	db *knowledge.NutrientDB
}

// NewAnalyzer creates an analyzer. A nil database behaves as an empty one.
func NewAnalyzer(db *knowledge.NutrientDB) *Analyzer {
	if db == nil {
		db = knowledge.EmptyNutrientDB()
	}
	return &Analyzer{db: db}
}

// Database returns the nutrient database the analyzer scores against.
func (a *Analyzer) Database() *knowledge.NutrientDB {
	return a.db
}

// Basic runs the standalone analysis: top five key nutrients, mechanisms and
// recommendations, cautions below CautionThreshold, score rounded to one
// decimal.
func (a *Analyzer) Basic(r *recipe.Recipe) *recipe.PsychonutritionAnalysis {
	score := Score(r, a.db, BasicProbioticBonus)
	key := KeyNutrients(r, a.db)

	analysis := &recipe.PsychonutritionAnalysis{
		AnxietyScore:    roundTo(score, 1),
		KeyNutrients:    top(key, 5),
		Mechanisms:      Mechanisms(key, a.db),
		Recommendations: Recommendations(r, score),
	}
	if score < CautionThreshold {
		analysis.Cautions = []string{"Consult healthcare provider for personalized advice"}
	}
	return analysis
}

// Collaborative runs the analysis used by the expert conversation: top five
// key nutrients, the top three mechanism and recommendation texts of the
// matched nutrients, no cautions and an unrounded score.
func (a *Analyzer) Collaborative(r *recipe.Recipe) *recipe.PsychonutritionAnalysis {
	score := Score(r, a.db, CollaborativeProbioticBonus)

	var key, mechanisms, recs []string
	for _, n := range matchedNutrients(r, a.db) {
		key = append(key, n.Name)
		if n.Mechanism != "" {
			mechanisms = append(mechanisms, n.Mechanism)
		}
		if n.Recommendation != "" {
			recs = append(recs, n.Recommendation)
		}
	}

	return &recipe.PsychonutritionAnalysis{
		AnxietyScore:    score,
		KeyNutrients:    top(key, 5),
		Mechanisms:      top(mechanisms, 3),
		Recommendations: top(recs, 3),
	}
}
