// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// RecipeService defines the use cases the command surface drives
type RecipeService interface {
	// Commands
	Generate(ctx context.Context, cmd GenerateRecipeCommand) (*GenerationResult, error)
	Export(ctx context.Context, r *recipe.Recipe, format string) ([]byte, error)

	// Queries
	Variations(ctx context.Context, r *recipe.Recipe, season, region string) (*recipe.SeasonalVariation, error)
	Analyze(ctx context.Context, r *recipe.Recipe) (*recipe.PsychonutritionAnalysis, error)
	GetRecipe(ctx context.Context, id uint) (*RecipeDTO, error)
	ListRecipes(ctx context.Context, params PaginationParams) (*RecipeList, error)
}

// GenerateRecipeCommand contains data for generating a recipe
type GenerateRecipeCommand struct {
	Request recipe.Request
	// Save persists the recipe once the run completes
	Save bool
}

// GenerationResult is the outcome of one generation run
type GenerationResult struct {
	State    *recipe.State
	Trace    []string
	RecipeID uint
	Duration time.Duration
}

// Recipe returns the generated recipe
func (r *GenerationResult) Recipe() *recipe.Recipe {
	if r == nil || r.State == nil {
		return nil
	}
	return r.State.Recipe
}

// RecipeDTO is a stored recipe as returned to callers
type RecipeDTO struct {
	ID        uint           `json:"id"`
	Recipe    *recipe.Recipe `json:"recipe"`
	CreatedAt time.Time      `json:"created_at"`
}

// PaginationParams for paginated queries
type PaginationParams struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// RecipeList is a page of stored recipes
type RecipeList struct {
	Recipes []*RecipeDTO `json:"recipes"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
}
