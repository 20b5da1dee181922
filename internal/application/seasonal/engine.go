// Package seasonal maps recipes onto seasonal ingredient substitutions.
package seasonal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// CurrentSeason returns the northern-hemisphere season for t.
func CurrentSeason(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return recipe.SeasonWinter
	case time.March, time.April, time.May:
		return recipe.SeasonSpring
	case time.June, time.July, time.August:
		return recipe.SeasonSummer
	default:
		return recipe.SeasonFall
	}
}

// Resolve returns season, or the current season when it is unset or "auto".
func Resolve(season string, now time.Time) string {
	if recipe.SeasonSpecified(season) {
		return season
	}
	return CurrentSeason(now)
}

// Title capitalizes the first letter of a season name.
func Title(season string) string {
	if season == "" {
		return season
	}
	return strings.ToUpper(season[:1]) + season[1:]
}

// Substitute returns the substitutions for r in season. Every category is
// searched in order and no deduplication is done, so one ingredient can be
// substituted more than once. Region does not influence the result.
func Substitute(r *recipe.Recipe, season, region string, db *knowledge.SeasonalDB) []recipe.IngredientSubstitution {
	subs := []recipe.IngredientSubstitution{}
	if r == nil || db == nil {
		return subs
	}

	for _, category := range knowledge.Categories {
		items := db.Category(category)
		for _, ing := range r.Ingredients {
			name := ing.LowerName()
			for _, item := range items {
				if !item.Matches(name) || item.InPeak(season) {
					continue
				}
				sub, ok := item.Substitutes[season]
				if !ok {
					continue
				}
				subs = append(subs, recipe.IngredientSubstitution{
					Original:   ing.Name,
					Substitute: sub.Ingredient,
					Reason:     sub.Reason,
					Adjustment: fmt.Sprintf("Use same quantity: %s %s", FormatQuantity(ing.Quantity), ing.Unit),
				})
			}
		}
	}
	return subs
}

// GenerateVariation wraps the substitutions for r into a named variation.
func GenerateVariation(r *recipe.Recipe, season, region string, db *knowledge.SeasonalDB) *recipe.SeasonalVariation {
	return &recipe.SeasonalVariation{
		Name:          VariationName(r, season),
		Season:        season,
		Region:        region,
		Substitutions: Substitute(r, season, region, db),
		Notes:         fmt.Sprintf("Optimized for %s ingredients in %s", season, region),
	}
}

// VariationName is "<recipe name> (<Season> Variation)".
func VariationName(r *recipe.Recipe, season string) string {
	name := ""
	if r != nil {
		name = r.Name
	}
	return fmt.Sprintf("%s (%s Variation)", name, Title(season))
}

// PreservedHeuristics returns the substitutions applied on top of the
// category tables when the season table for season is populated. Fresh
// tomatoes are swapped for canned ones in winter.
func PreservedHeuristics(r *recipe.Recipe, season string, db *knowledge.SeasonalDB) []recipe.IngredientSubstitution {
	subs := []recipe.IngredientSubstitution{}
	if r == nil || len(db.InSeason(season)) == 0 || season != recipe.SeasonWinter {
		return subs
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(ing.LowerName(), "tomato") {
			subs = append(subs, recipe.IngredientSubstitution{
				Original:   ing.Name,
				Substitute: "canned tomatoes",
				Reason:     "Fresh tomatoes are out of season",
				Adjustment: "Use high-quality canned for better flavor",
			})
		}
	}
	return subs
}

// Availability describes whether one ingredient is listed as in season.
type Availability struct {
	Ingredient string
	InSeason   bool
}

// CheckAvailability reports, for the first limit ingredients of r, whether
// any ingredient of the season table appears in its name.
func CheckAvailability(r *recipe.Recipe, season string, db *knowledge.SeasonalDB, limit int) []Availability {
	var out []Availability
	if r == nil {
		return out
	}
	var inSeason []string
	for _, s := range db.InSeason(season) {
		inSeason = append(inSeason, strings.ToLower(s))
	}
	for i, ing := range r.Ingredients {
		if i >= limit {
			break
		}
		name := ing.LowerName()
		found := false
		for _, s := range inSeason {
			if strings.Contains(name, s) {
				found = true
				break
			}
		}
		out = append(out, Availability{Ingredient: ing.Name, InSeason: found})
	}
	return out
}

// FormatQuantity renders a quantity the way recipe adjustments show it:
// whole numbers keep one decimal ("2.0"), others use the shortest form.
func FormatQuantity(q float64) string {
	if q == math.Trunc(q) && !math.IsInf(q, 0) {
		return strconv.FormatFloat(q, 'f', 1, 64)
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}
