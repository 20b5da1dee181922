package recipe

import (
	"encoding/json"
	"strings"
)

// Value Objects - immutable values that describe aspects of a recipe

// Ingredient is a single ingredient line. Equality is structural.
type Ingredient struct {
	Name     string  `json:"name" yaml:"name" validate:"required"`
	Quantity float64 `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" yaml:"unit"`
	Notes    string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// UnmarshalJSON accepts "amount" as an alias for "quantity".
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type plain Ingredient
	aux := struct {
		*plain
		Amount *float64 `json:"amount"`
	}{plain: (*plain)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if i.Quantity == 0 && aux.Amount != nil {
		i.Quantity = *aux.Amount
	}
	return nil
}

// LowerName returns the ingredient name lowercased for substring matching.
func (i Ingredient) LowerName() string {
	return strings.ToLower(i.Name)
}

// IngredientSubstitution is one seasonal ingredient swap.
type IngredientSubstitution struct {
	Original   string `json:"original" yaml:"original"`
	Substitute string `json:"substitute" yaml:"substitute"`
	Reason     string `json:"reason" yaml:"reason"`
	Adjustment string `json:"adjustment,omitempty" yaml:"adjustment,omitempty"`
}

// SeasonalVariation groups the substitutions for one season and region.
type SeasonalVariation struct {
	Name          string                   `json:"name" yaml:"name"`
	Season        string                   `json:"season" yaml:"season"`
	Region        string                   `json:"region" yaml:"region"`
	Substitutions []IngredientSubstitution `json:"substitutions" yaml:"substitutions"`
	Notes         string                   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Clone returns a deep copy of the variation.
func (v *SeasonalVariation) Clone() *SeasonalVariation {
	if v == nil {
		return nil
	}
	c := *v
	c.Substitutions = append([]IngredientSubstitution(nil), v.Substitutions...)
	return &c
}

// Season names
const (
	SeasonAuto   = "auto"
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
)

// DefaultRegion is used when a request does not name one.
const DefaultRegion = "europe"

// DefaultServings is used when a request does not name a serving count.
const DefaultServings = 4

// SeasonSpecified reports whether a request names a concrete season.
func SeasonSpecified(season string) bool {
	return season != "" && season != SeasonAuto
}

// Request asks the pipeline to generate a recipe.
type Request struct {
	Description         string   `json:"description" yaml:"description" validate:"required,max=500,no_html"`
	AnxietyFocus        bool     `json:"anxiety_focus" yaml:"anxiety_focus"`
	DietaryRestrictions []string `json:"dietary_restrictions" yaml:"dietary_restrictions"`
	Season              string   `json:"season" yaml:"season" validate:"omitempty,oneof=auto winter spring summer fall"`
	Region              string   `json:"region" yaml:"region"`
	Servings            int      `json:"servings" yaml:"servings" validate:"gte=1"`
}

// NewRequest creates a request with the documented defaults: anxiety focus
// on, automatic season, european region and four servings.
func NewRequest(description string) Request {
	return Request{
		Description:         description,
		AnxietyFocus:        true,
		DietaryRestrictions: []string{},
		Season:              SeasonAuto,
		Region:              DefaultRegion,
		Servings:            DefaultServings,
	}
}

// Clone returns a copy of the request that shares no slices.
func (r Request) Clone() Request {
	r.DietaryRestrictions = cloneStrings(r.DietaryRestrictions)
	return r
}
