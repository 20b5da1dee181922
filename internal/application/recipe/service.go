// Package recipe provides the application layer for recipe generation
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/application/psychonutrition"
	"github.com/alchemorsel/marco/internal/application/seasonal"
	"github.com/alchemorsel/marco/internal/application/workflow"
	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	"github.com/alchemorsel/marco/internal/ports/outbound"
	"github.com/alchemorsel/marco/pkg/errors"
)

// Pagination limits for ListRecipes
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// storedRecipeTTL is how long a loaded recipe stays in the cache
const storedRecipeTTL = time.Hour

// Runner executes one generation run
type Runner interface {
	Run(ctx context.Context, req recipe.Request) (*workflow.Result, error)
}

// Sanitizer cleans free text taken from callers
type Sanitizer interface {
	SanitizeDescription(input string) string
	SanitizeList(items []string) []string
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	runner    Runner
	recipes   outbound.RecipeRepository
	cache     outbound.CacheRepository
	renderers map[string]outbound.Renderer
	analyzer  *psychonutrition.Analyzer
	seasonal  *knowledge.SeasonalDB
	validator workflow.Validator
	sanitizer Sanitizer
	clock     func() time.Time
	logger    *zap.Logger
}

// Dependencies groups the collaborators of RecipeService. Cache, Renderers,
// Validator and Sanitizer are optional.
type Dependencies struct {
	Runner    Runner
	Recipes   outbound.RecipeRepository
	Cache     outbound.CacheRepository
	Renderers []outbound.Renderer
	Analyzer  *psychonutrition.Analyzer
	Seasonal  *knowledge.SeasonalDB
	Validator workflow.Validator
	Sanitizer Sanitizer
	Clock     func() time.Time
}

// NewRecipeService creates a new recipe service
func NewRecipeService(deps Dependencies, logger *zap.Logger) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RecipeService{
		runner:    deps.Runner,
		recipes:   deps.Recipes,
		cache:     deps.Cache,
		renderers: make(map[string]outbound.Renderer, len(deps.Renderers)),
		analyzer:  deps.Analyzer,
		seasonal:  deps.Seasonal,
		validator: deps.Validator,
		sanitizer: deps.Sanitizer,
		clock:     deps.Clock,
		logger:    logger.Named("recipe-service"),
	}
	for _, r := range deps.Renderers {
		s.renderers[r.Format()] = r
	}
	if s.analyzer == nil {
		s.analyzer = psychonutrition.NewAnalyzer(nil)
	}
	if s.seasonal == nil {
		s.seasonal = knowledge.EmptySeasonalDB()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

var _ inbound.RecipeService = (*RecipeService)(nil)

// Generate runs the workflow for a request and optionally persists the result
func (s *RecipeService) Generate(ctx context.Context, cmd inbound.GenerateRecipeCommand) (*inbound.GenerationResult, error) {
	req := cmd.Request.Clone()
	if s.sanitizer != nil {
		req.Description = s.sanitizer.SanitizeDescription(req.Description)
		req.DietaryRestrictions = s.sanitizer.SanitizeList(req.DietaryRestrictions)
	}
	if req.Region == "" {
		req.Region = recipe.DefaultRegion
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	s.logger.Info("Generating recipe",
		zap.String("description", req.Description),
		zap.Bool("anxiety_focus", req.AnxietyFocus),
		zap.String("season", req.Season),
	)

	started := s.clock()
	res, err := s.runner.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &inbound.GenerationResult{
		State:    res.State,
		Trace:    res.Trace,
		Duration: s.clock().Sub(started),
	}

	if cmd.Save && out.Recipe() != nil && s.recipes != nil {
		// a generated recipe is stored even if the caller has gone away
		id, err := s.recipes.Save(context.WithoutCancel(ctx), out.Recipe())
		if err != nil {
			s.logger.Warn("Failed to save generated recipe", zap.Error(err))
			return out, errors.NewDatabaseError("save recipe", err)
		}
		out.RecipeID = id
	}

	s.logger.Info("Recipe generated",
		zap.String("name", out.Recipe().Name),
		zap.Uint("recipe_id", out.RecipeID),
		zap.Int("errors", len(res.State.Errors)),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}

func (s *RecipeService) validateRequest(req recipe.Request) error {
	switch {
	case req.Description == "":
		return errors.NewValidationError(recipe.ErrEmptyDescription.Error())
	case req.Servings < 1:
		return errors.NewValidationError(recipe.ErrInvalidServings.Error())
	}
	if s.validator != nil {
		if err := s.validator.Struct(req); err != nil {
			var fields errors.ValidationErrors
			if stderrors.As(err, &fields) {
				return errors.NewValidationErrors(fields)
			}
			return errors.NewValidationError(err.Error()).WithCause(err)
		}
	}
	return nil
}

// Export renders a recipe with the renderer registered for format
func (s *RecipeService) Export(ctx context.Context, r *recipe.Recipe, format string) ([]byte, error) {
	if r == nil {
		return nil, errors.NewValidationError(recipe.ErrNoRecipe.Error())
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, errors.NewBadRequestError(fmt.Sprintf("unsupported export format %q", format))
	}
	doc, err := renderer.Render(ctx, r)
	if err != nil {
		return nil, errors.NewExportError(format, err)
	}
	s.logger.Info("Recipe exported",
		zap.String("name", r.Name),
		zap.String("format", format),
		zap.Int("bytes", len(doc)),
	)
	return doc, nil
}

// Variations computes the seasonal variation of a recipe
func (s *RecipeService) Variations(ctx context.Context, r *recipe.Recipe, season, region string) (*recipe.SeasonalVariation, error) {
	if r == nil {
		return nil, errors.NewValidationError(recipe.ErrNoRecipe.Error())
	}
	if season != "" && season != recipe.SeasonAuto {
		switch season {
		case recipe.SeasonWinter, recipe.SeasonSpring, recipe.SeasonSummer, recipe.SeasonFall:
		default:
			return nil, errors.NewValidationError(recipe.ErrInvalidSeason.Error())
		}
	}
	if region == "" {
		region = recipe.DefaultRegion
	}
	season = seasonal.Resolve(season, s.clock())
	return seasonal.GenerateVariation(r, season, region, s.seasonal), nil
}

// Analyze runs the basic psychonutrition analysis
func (s *RecipeService) Analyze(ctx context.Context, r *recipe.Recipe) (*recipe.PsychonutritionAnalysis, error) {
	if r == nil {
		return nil, errors.NewValidationError(recipe.ErrNoRecipe.Error())
	}
	return s.analyzer.Basic(r), nil
}

// GetRecipe loads a stored recipe, consulting the cache first
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*inbound.RecipeDTO, error) {
	if cached, err := s.getCachedRecipe(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	stored, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(id)
		}
		return nil, errors.NewDatabaseError("find recipe", err)
	}

	dto := toDTO(stored)
	s.cacheRecipe(ctx, dto)
	return dto, nil
}

// ListRecipes returns a page of stored recipes, newest first
func (s *RecipeService) ListRecipes(ctx context.Context, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultPageSize
	}
	if params.Limit > MaxPageSize {
		params.Limit = MaxPageSize
	}

	stored, err := s.recipes.List(ctx, params.Offset(), params.Limit)
	if err != nil {
		return nil, errors.NewDatabaseError("list recipes", err)
	}
	total, err := s.recipes.Count(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("count recipes", err)
	}

	list := &inbound.RecipeList{
		Recipes: make([]*inbound.RecipeDTO, 0, len(stored)),
		Total:   total,
		Page:    params.Page,
		Limit:   params.Limit,
	}
	for _, sr := range stored {
		list.Recipes = append(list.Recipes, toDTO(sr))
	}
	return list, nil
}

func toDTO(sr *outbound.StoredRecipe) *inbound.RecipeDTO {
	return &inbound.RecipeDTO{ID: sr.ID, Recipe: sr.Recipe, CreatedAt: sr.CreatedAt}
}

func recipeCacheKey(id uint) string {
	return fmt.Sprintf("recipe:%d", id)
}

// getCachedRecipe retrieves a recipe from cache
func (s *RecipeService) getCachedRecipe(ctx context.Context, id uint) (*inbound.RecipeDTO, error) {
	if s.cache == nil {
		return nil, nil
	}
	data, err := s.cache.Get(ctx, recipeCacheKey(id))
	if err != nil {
		return nil, err
	}
	var dto inbound.RecipeDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// cacheRecipe caches a recipe
func (s *RecipeService) cacheRecipe(ctx context.Context, dto *inbound.RecipeDTO) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, recipeCacheKey(dto.ID), data, storedRecipeTTL); err != nil {
		s.logger.Debug("Failed to cache recipe", zap.Uint("recipe_id", dto.ID), zap.Error(err))
	}
}
