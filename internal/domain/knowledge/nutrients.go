// Package knowledge holds the read-only lookup tables the scoring and
// seasonal engines work from. Object-valued tables are decoded into ordered
// slices so that "first match" semantics follow the order of the source file.
package knowledge

import (
	"strings"
)

// ProbioticsKey names the nutrient entry whose sources earn the probiotic bonus.
const ProbioticsKey = "probiotics"

// Nutrient is one anxiety-relevant nutrient category.
type Nutrient struct {
	Key            string   `json:"-" yaml:"-"`
	Name           string   `json:"name" yaml:"name"`
	Sources        []string `json:"sources" yaml:"sources"`
	AnxietyBenefit string   `json:"anxiety_benefit" yaml:"anxiety_benefit"`
	Mechanism      string   `json:"mechanism,omitempty" yaml:"mechanism,omitempty"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// MatchesAny reports whether any of the lowercased ingredient names contains
// one of the nutrient's sources.
func (n Nutrient) MatchesAny(ingredients []string) bool {
	return len(n.Matches(ingredients)) > 0
}

// Matches returns the ingredient names containing at least one source, in
// ingredient order. Names are expected to be lowercased already.
func (n Nutrient) Matches(ingredients []string) []string {
	var matches []string
	for _, ing := range ingredients {
		if containsAny(ing, n.Sources) {
			matches = append(matches, ing)
		}
	}
	return matches
}

// Nutrients is an ordered nutrient table.
type Nutrients []Nutrient

// FoodCombination is a set of ingredient fragments that work well together.
type FoodCombination struct {
	Combination string `json:"combination" yaml:"combination"`
	Benefit     string `json:"benefit,omitempty" yaml:"benefit,omitempty"`
}

// CombinationSeparator splits a combination into its fragments.
const CombinationSeparator = " + "

// Fragments returns the lowercased ingredient fragments of the combination.
func (c FoodCombination) Fragments() []string {
	return strings.Split(strings.ToLower(c.Combination), CombinationSeparator)
}

// NutrientDB is the nutrient knowledge base.
type NutrientDB struct {
	Nutrients        Nutrients              `json:"nutrients" yaml:"nutrients"`
	FoodCombinations []FoodCombination      `json:"food_combinations" yaml:"food_combinations"`
	AnxietyTypes     map[string]interface{} `json:"anxiety_types,omitempty" yaml:"anxiety_types,omitempty"`
}

// EmptyNutrientDB returns the inert database used when no file is available.
func EmptyNutrientDB() *NutrientDB {
	return &NutrientDB{Nutrients: Nutrients{}, FoodCombinations: []FoodCombination{}}
}

// Nutrient looks up a nutrient by key.
func (db *NutrientDB) Nutrient(key string) (Nutrient, bool) {
	if db == nil {
		return Nutrient{}, false
	}
	for _, n := range db.Nutrients {
		if n.Key == key {
			return n, true
		}
	}
	return Nutrient{}, false
}

// ProbioticSources returns the sources of the probiotics entry, if any.
func (db *NutrientDB) ProbioticSources() []string {
	n, ok := db.Nutrient(ProbioticsKey)
	if !ok {
		return nil
	}
	return n.Sources
}

// IsEmpty reports whether the database carries no scoring data.
func (db *NutrientDB) IsEmpty() bool {
	return db == nil || (len(db.Nutrients) == 0 && len(db.FoodCombinations) == 0)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
