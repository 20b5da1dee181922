// Package workflow runs the fixed recipe graph over one shared run state.
package workflow

import (
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// Step names
const (
	StepGenerateRecipe    = "generate_recipe"
	StepPsychonutrition   = "psychonutrition"
	StepRecipeImprovement = "recipe_improvement"
	StepSeasonalCheck     = "seasonal_check"
	StepSeasonal          = "seasonal"
	StepChefReview        = "chef_review"
	StepExpertSummary     = "expert_summary"

	// End is the terminal marker.
	End = "END"
)

// ImprovementThreshold routes analyses scoring below it to recipe_improvement.
const ImprovementThreshold = 6.0

// Steps lists every step name in graph order.
func Steps() []string {
	return []string{
		StepGenerateRecipe,
		StepPsychonutrition,
		StepRecipeImprovement,
		StepSeasonalCheck,
		StepSeasonal,
		StepChefReview,
		StepExpertSummary,
	}
}

var labels = map[string]string{
	StepGenerateRecipe:    "Recipe generation",
	StepPsychonutrition:   "Psychonutrition analysis",
	StepRecipeImprovement: "Recipe improvement",
	StepSeasonalCheck:     "Seasonal check",
	StepSeasonal:          "Seasonal optimization",
	StepChefReview:        "Chef collaboration",
	StepExpertSummary:     "Conversation summary",
}

// Label is the human-readable name used in error messages.
func Label(step string) string {
	if l, ok := labels[step]; ok {
		return l
	}
	return step
}

var descriptions = map[string]string{
	StepGenerateRecipe:    "Generating base recipe",
	StepPsychonutrition:   "Dr. Maya: Analyzing psychonutrition benefits",
	StepRecipeImprovement: "Improving recipe based on expert feedback",
	StepSeasonalCheck:     "Checking seasonal requirements",
	StepSeasonal:          "Chef Marco: Optimizing seasonal ingredients",
	StepChefReview:        "Chef Isabella: Reviewing culinary techniques",
	StepExpertSummary:     "Expert Collaboration: Creating consensus",
}

// Describe returns the progress line shown while a step runs.
func Describe(step string) string {
	if d, ok := descriptions[step]; ok {
		return d
	}
	return step
}

// ShouldAnalyze routes generated recipes to the psychonutrition step when
// the request asks for anxiety focus.
func ShouldAnalyze(st *recipe.State) string {
	if st.Request.AnxietyFocus {
		return StepPsychonutrition
	}
	return StepSeasonalCheck
}

// ShouldImprove routes analyses scoring below ImprovementThreshold to the
// improvement step.
func ShouldImprove(st *recipe.State) string {
	if a := st.Analysis(); a != nil && a.AnxietyScore < ImprovementThreshold {
		return StepRecipeImprovement
	}
	return StepSeasonalCheck
}

// ShouldOptimizeSeasonal routes requests naming a concrete season to the
// seasonal step.
func ShouldOptimizeSeasonal(st *recipe.State) string {
	if recipe.SeasonSpecified(st.Request.Season) {
		return StepSeasonal
	}
	return StepChefReview
}

// Next returns the step that follows step for the current state.
func Next(step string, st *recipe.State) string {
	switch step {
	case StepGenerateRecipe:
		return ShouldAnalyze(st)
	case StepPsychonutrition:
		return ShouldImprove(st)
	case StepRecipeImprovement:
		return StepSeasonalCheck
	case StepSeasonalCheck:
		return ShouldOptimizeSeasonal(st)
	case StepSeasonal:
		return StepChefReview
	case StepChefReview:
		return StepExpertSummary
	default:
		return End
	}
}
