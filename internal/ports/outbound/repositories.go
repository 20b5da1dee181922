// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// RecipeRepository defines the interface for recipe persistence
type RecipeRepository interface {
	// Save stores a completed recipe and returns its auto-incremented id
	Save(ctx context.Context, r *recipe.Recipe) (uint, error)
	FindByID(ctx context.Context, id uint) (*StoredRecipe, error)
	// List returns recipes newest first
	List(ctx context.Context, offset, limit int) ([]*StoredRecipe, error)
	Count(ctx context.Context) (int64, error)
}

// StoredRecipe is a persisted recipe with its storage metadata
type StoredRecipe struct {
	ID        uint
	Recipe    *recipe.Recipe
	CreatedAt time.Time
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RecipeGenerator is the recipe generation backend. Implementations return
// a recipe that conforms to the Recipe shape or an error; malformed output
// is an error.
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error)
	// Name identifies the backend in logs and diagnostics
	Name() string
}

// KnowledgeSource loads the read-only knowledge bases. A missing backing
// resource yields an empty database rather than an error.
type KnowledgeSource interface {
	NutrientDB(ctx context.Context) (*knowledge.NutrientDB, error)
	SeasonalDB(ctx context.Context) (*knowledge.SeasonalDB, error)
}

// Renderer turns a completed recipe into a document
type Renderer interface {
	Render(ctx context.Context, r *recipe.Recipe) ([]byte, error)
	// Format is the document format, e.g. "pdf" or "html"
	Format() string
}
