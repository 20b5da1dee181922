// Package recipe contains the core domain types for generated recipes,
// their psychonutrition analysis and their seasonal variations.
package recipe

import (
	"encoding/json"
)

// DefaultDifficulty is applied to generated recipes that do not state one.
const DefaultDifficulty = "medium"

// Recipe is a complete recipe with all details. It is owned by the workflow
// state during a run and handed to the persistence and export collaborators
// once the run is over.
type Recipe struct {
	Name        string `json:"name" yaml:"name" validate:"required,printable"`
	Description string `json:"description" yaml:"description"`

	// Timing in minutes
	PrepTime int `json:"prep_time" yaml:"prep_time" validate:"gte=0"`
	CookTime int `json:"cook_time" yaml:"cook_time" validate:"gte=0"`
	Servings int `json:"servings" yaml:"servings" validate:"gte=1"`

	Ingredients  []Ingredient `json:"ingredients" yaml:"ingredients" validate:"required,min=1,dive"`
	Instructions []string     `json:"instructions" yaml:"instructions" validate:"required,min=1"`

	Nutrition               *NutrientInfo            `json:"nutrition,omitempty" yaml:"nutrition,omitempty"`
	PsychonutritionAnalysis *PsychonutritionAnalysis `json:"psychonutrition_analysis,omitempty" yaml:"psychonutrition_analysis,omitempty"`

	Tags       []string `json:"tags" yaml:"tags"`
	Difficulty string   `json:"difficulty" yaml:"difficulty"`
	Cuisine    string   `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	Season     string   `json:"season,omitempty" yaml:"season,omitempty"`

	ChefTips            []string `json:"chef_tips" yaml:"chef_tips"`
	StorageInstructions string   `json:"storage_instructions,omitempty" yaml:"storage_instructions,omitempty"`
	Variations          []string `json:"variations" yaml:"variations"`
}

// UnmarshalJSON accepts "steps" as an alias for "instructions", which some
// models emit instead of the documented field name.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	aux := struct {
		*plain
		Steps []string `json:"steps"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(r.Instructions) == 0 && len(aux.Steps) > 0 {
		r.Instructions = aux.Steps
	}
	return nil
}

// ApplyDefaults fills the fields a generation backend is allowed to omit.
func (r *Recipe) ApplyDefaults() {
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.ChefTips == nil {
		r.ChefTips = []string{}
	}
	if r.Variations == nil {
		r.Variations = []string{}
	}
}

// IngredientNames returns the lowercased ingredient names in recipe order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.LowerName()
	}
	return names
}

// Clone returns a deep copy of the recipe.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	c.Instructions = cloneStrings(r.Instructions)
	c.Tags = cloneStrings(r.Tags)
	c.ChefTips = cloneStrings(r.ChefTips)
	c.Variations = cloneStrings(r.Variations)
	c.Nutrition = r.Nutrition.Clone()
	c.PsychonutritionAnalysis = r.PsychonutritionAnalysis.Clone()
	return &c
}

// NutrientInfo holds nutritional information per serving.
type NutrientInfo struct {
	Calories int     `json:"calories" yaml:"calories"`
	ProteinG float64 `json:"protein_g" yaml:"protein_g"`
	CarbsG   float64 `json:"carbs_g" yaml:"carbs_g"`
	FatG     float64 `json:"fat_g" yaml:"fat_g"`
	FiberG   float64 `json:"fiber_g" yaml:"fiber_g"`

	// Anxiety-related micronutrients
	Omega3Mg      *float64 `json:"omega3_mg,omitempty" yaml:"omega3_mg,omitempty"`
	MagnesiumMg   *float64 `json:"magnesium_mg,omitempty" yaml:"magnesium_mg,omitempty"`
	VitaminB6Mg   *float64 `json:"vitamin_b6_mg,omitempty" yaml:"vitamin_b6_mg,omitempty"`
	VitaminB12Mcg *float64 `json:"vitamin_b12_mcg,omitempty" yaml:"vitamin_b12_mcg,omitempty"`
	TryptophanMg  *float64 `json:"tryptophan_mg,omitempty" yaml:"tryptophan_mg,omitempty"`
	ZincMg        *float64 `json:"zinc_mg,omitempty" yaml:"zinc_mg,omitempty"`
}

// Clone returns a deep copy of the nutrition facts.
func (n *NutrientInfo) Clone() *NutrientInfo {
	if n == nil {
		return nil
	}
	c := *n
	c.Omega3Mg = cloneFloat(n.Omega3Mg)
	c.MagnesiumMg = cloneFloat(n.MagnesiumMg)
	c.VitaminB6Mg = cloneFloat(n.VitaminB6Mg)
	c.VitaminB12Mcg = cloneFloat(n.VitaminB12Mcg)
	c.TryptophanMg = cloneFloat(n.TryptophanMg)
	c.ZincMg = cloneFloat(n.ZincMg)
	return &c
}

// PsychonutritionAnalysis describes how well a recipe supports anxiety
// management. It is recomputed wholesale on every analysis pass.
type PsychonutritionAnalysis struct {
	AnxietyScore    float64  `json:"anxiety_score" yaml:"anxiety_score" validate:"gte=0,lte=10"`
	KeyNutrients    []string `json:"key_nutrients" yaml:"key_nutrients"`
	Mechanisms      []string `json:"mechanisms" yaml:"mechanisms"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
	Cautions        []string `json:"cautions,omitempty" yaml:"cautions,omitempty"`
}

// Clone returns a deep copy of the analysis.
func (a *PsychonutritionAnalysis) Clone() *PsychonutritionAnalysis {
	if a == nil {
		return nil
	}
	c := *a
	c.KeyNutrients = cloneStrings(a.KeyNutrients)
	c.Mechanisms = cloneStrings(a.Mechanisms)
	c.Recommendations = cloneStrings(a.Recommendations)
	c.Cautions = cloneStrings(a.Cautions)
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
