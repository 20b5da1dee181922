package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

var _ outbound.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Save inserts a recipe and returns its id
func (r *RecipeRepository) Save(ctx context.Context, rec *recipe.Recipe) (uint, error) {
	if rec == nil {
		return 0, recipe.ErrNoRecipe
	}
	model, err := RecipeToModel(rec)
	if err != nil {
		return 0, err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}
	return model.ID, nil
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uint) (*outbound.StoredRecipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	return ModelToStoredRecipe(&model)
}

// List returns recipes newest first. Rows created in the same instant are
// ordered by descending id.
func (r *RecipeRepository) List(ctx context.Context, offset, limit int) ([]*outbound.StoredRecipe, error) {
	var models []RecipeModel

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	stored := make([]*outbound.StoredRecipe, 0, len(models))
	for i := range models {
		sr, err := ModelToStoredRecipe(&models[i])
		if err != nil {
			return nil, err
		}
		stored = append(stored, sr)
	}
	return stored, nil
}

// Count returns the number of saved recipes
func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RecipeModel{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
