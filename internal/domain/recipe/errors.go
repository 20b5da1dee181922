package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Request validation errors
	ErrEmptyDescription = errors.New("recipe description is required")
	ErrInvalidServings  = errors.New("servings must be greater than 0")
	ErrInvalidSeason    = errors.New("season must be one of auto, winter, spring, summer, fall")

	// Recipe shape errors
	ErrNoIngredients  = errors.New("recipe must have at least one ingredient")
	ErrNoInstructions = errors.New("recipe must have at least one instruction")

	// Workflow errors
	ErrNoRecipe       = errors.New("no recipe in state")
	ErrNoAnalysis     = errors.New("recipe has no psychonutrition analysis")
	ErrRecipeNotFound = errors.New("recipe not found")
)
