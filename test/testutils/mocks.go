package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// MockRecipeGenerator provides a mock implementation of RecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

// GenerateRecipe returns a copy of the configured recipe so runs never share state
func (m *MockRecipeGenerator) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	args := m.Called(ctx, req)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	r, _ := args.Get(0).(*recipe.Recipe)
	return r.Clone(), nil
}

// Name identifies the mock backend
func (m *MockRecipeGenerator) Name() string {
	return "mock"
}

// MockRecipeRepository is an in-memory RecipeRepository that records calls
type MockRecipeRepository struct {
	mock.Mock
	mu      sync.RWMutex
	recipes []*outbound.StoredRecipe
}

// NewMockRecipeRepository creates a new mock recipe repository
func NewMockRecipeRepository() *MockRecipeRepository {
	return &MockRecipeRepository{}
}

// Save stores the recipe when the expectation returns no error
func (m *MockRecipeRepository) Save(ctx context.Context, r *recipe.Recipe) (uint, error) {
	args := m.Called(ctx, r)
	if err := args.Error(0); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uint(len(m.recipes) + 1)
	m.recipes = append(m.recipes, &outbound.StoredRecipe{ID: id, Recipe: r.Clone(), CreatedAt: time.Now()})
	return id, nil
}

// FindByID returns a stored recipe
func (m *MockRecipeRepository) FindByID(ctx context.Context, id uint) (*outbound.StoredRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.recipes {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, recipe.ErrRecipeNotFound
}

// List returns stored recipes newest first
func (m *MockRecipeRepository) List(ctx context.Context, offset, limit int) ([]*outbound.StoredRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*outbound.StoredRecipe
	for i := len(m.recipes) - 1; i >= 0; i-- {
		out = append(out, m.recipes[i])
	}
	if offset >= len(out) {
		return []*outbound.StoredRecipe{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored recipes
func (m *MockRecipeRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.recipes)), nil
}

// MockRenderer provides a mock implementation of Renderer
type MockRenderer struct {
	mock.Mock
	FormatName string
}

// Render returns the configured document
func (m *MockRenderer) Render(ctx context.Context, r *recipe.Recipe) ([]byte, error) {
	args := m.Called(ctx, r)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// Format returns the configured format name
func (m *MockRenderer) Format() string {
	return m.FormatName
}

// MockRecipeService provides a mock implementation of inbound.RecipeService
type MockRecipeService struct {
	mock.Mock
}

var _ inbound.RecipeService = (*MockRecipeService)(nil)

// Generate returns the configured result and error
func (m *MockRecipeService) Generate(ctx context.Context, cmd inbound.GenerateRecipeCommand) (*inbound.GenerationResult, error) {
	args := m.Called(ctx, cmd)
	res, _ := args.Get(0).(*inbound.GenerationResult)
	return res, args.Error(1)
}

// Export returns the configured document
func (m *MockRecipeService) Export(ctx context.Context, r *recipe.Recipe, format string) ([]byte, error) {
	args := m.Called(ctx, r, format)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// Variations returns the configured variation
func (m *MockRecipeService) Variations(ctx context.Context, r *recipe.Recipe, season, region string) (*recipe.SeasonalVariation, error) {
	args := m.Called(ctx, r, season, region)
	v, _ := args.Get(0).(*recipe.SeasonalVariation)
	return v, args.Error(1)
}

// Analyze returns the configured analysis
func (m *MockRecipeService) Analyze(ctx context.Context, r *recipe.Recipe) (*recipe.PsychonutritionAnalysis, error) {
	args := m.Called(ctx, r)
	a, _ := args.Get(0).(*recipe.PsychonutritionAnalysis)
	return a, args.Error(1)
}

// GetRecipe returns the configured stored recipe
func (m *MockRecipeService) GetRecipe(ctx context.Context, id uint) (*inbound.RecipeDTO, error) {
	args := m.Called(ctx, id)
	dto, _ := args.Get(0).(*inbound.RecipeDTO)
	return dto, args.Error(1)
}

// ListRecipes returns the configured page
func (m *MockRecipeService) ListRecipes(ctx context.Context, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	args := m.Called(ctx, params)
	list, _ := args.Get(0).(*inbound.RecipeList)
	return list, args.Error(1)
}
