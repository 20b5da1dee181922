// Package psychonutrition scores recipes for their anxiety-reducing
// nutrient content and derives the supporting explanations.
package psychonutrition

import (
	"math"
	"strings"

	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// Scoring constants
const (
	MaxScore             = 10.0
	PointsPerMatch       = 0.5
	MaxPointsPerNutrient = 1.5
	CombinationBonus     = 0.5
	MinComboFragments    = 2

	// BasicProbioticBonus is awarded by the standalone analysis.
	BasicProbioticBonus = 0.5
	// CollaborativeProbioticBonus is awarded by the analysis that feeds the
	// expert conversation.
	CollaborativeProbioticBonus = 1.0
)

// Score computes the anxiety-reduction score of r in [0, MaxScore].
func Score(r *recipe.Recipe, db *knowledge.NutrientDB, probioticBonus float64) float64 {
	if r == nil || db == nil {
		return 0
	}
	ingredients := r.IngredientNames()
	score := 0.0

	for _, n := range db.Nutrients {
		if matches := n.Matches(ingredients); len(matches) > 0 {
			score += math.Min(MaxPointsPerNutrient, PointsPerMatch*float64(len(matches)))
		}
	}

	for _, combo := range db.FoodCombinations {
		if presentFragments(combo, ingredients) >= MinComboFragments {
			score += CombinationBonus
		}
	}

	if anyContains(ingredients, db.ProbioticSources()) {
		score += probioticBonus
	}

	return math.Min(score, MaxScore)
}

// presentFragments counts the combination fragments found in some ingredient.
func presentFragments(combo knowledge.FoodCombination, ingredients []string) int {
	count := 0
	for _, frag := range combo.Fragments() {
		for _, ing := range ingredients {
			if strings.Contains(ing, frag) {
				count++
				break
			}
		}
	}
	return count
}

func anyContains(ingredients, sources []string) bool {
	for _, ing := range ingredients {
		for _, src := range sources {
			if strings.Contains(ing, strings.ToLower(src)) {
				return true
			}
		}
	}
	return false
}

// matchedNutrients returns the nutrients present in r, in database order.
func matchedNutrients(r *recipe.Recipe, db *knowledge.NutrientDB) []knowledge.Nutrient {
	if r == nil || db == nil {
		return nil
	}
	ingredients := r.IngredientNames()
	var out []knowledge.Nutrient
	for _, n := range db.Nutrients {
		if n.MatchesAny(ingredients) {
			out = append(out, n)
		}
	}
	return out
}

// KeyNutrients returns the display names of the nutrients present in r, in
// database order.
func KeyNutrients(r *recipe.Recipe, db *knowledge.NutrientDB) []string {
	var names []string
	for _, n := range matchedNutrients(r, db) {
		names = append(names, n.Name)
	}
	return names
}

// Mechanisms returns the anxiety benefit text of every named nutrient, in
// database order, truncated to the top five.
func Mechanisms(keyNutrients []string, db *knowledge.NutrientDB) []string {
	wanted := make(map[string]bool, len(keyNutrients))
	for _, name := range keyNutrients {
		wanted[name] = true
	}
	var out []string
	for _, n := range db.Nutrients {
		if wanted[n.Name] {
			out = append(out, n.AnxietyBenefit)
		}
	}
	return top(out, 5)
}

// canonicalProteins are the ingredient names that count as a good
// tryptophan source when matched exactly.
var canonicalProteins = map[string]bool{
	"chicken": true,
	"turkey":  true,
	"salmon":  true,
	"eggs":    true,
	"tofu":    true,
}

// Recommendations returns the general advice for a recipe with the given
// score, truncated to the top five.
func Recommendations(r *recipe.Recipe, score float64) []string {
	recs := []string{"Eat this meal mindfully, chewing slowly to enhance nutrient absorption"}
	if score < 7 {
		recs = append(recs,
			"Consider adding fermented foods like yogurt or kimchi for gut health",
			"Pair with herbal tea (chamomile or green tea) for added calming effects",
		)
	}
	recs = append(recs,
		"Maintain consistent meal times to stabilize blood sugar and mood",
		"Stay hydrated throughout the day for optimal brain function",
	)
	if !hasCanonicalProtein(r) {
		recs = append(recs, "Add a protein source rich in tryptophan for better serotonin production")
	}
	return top(recs, 5)
}

func hasCanonicalProtein(r *recipe.Recipe) bool {
	if r == nil {
		return false
	}
	for _, name := range r.IngredientNames() {
		if canonicalProteins[name] {
			return true
		}
	}
	return false
}

func top(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	if items == nil {
		return []string{}
	}
	return items
}

// roundTo rounds v to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
