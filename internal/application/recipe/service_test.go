package recipe

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/marco/internal/application/psychonutrition"
	"github.com/alchemorsel/marco/internal/application/workflow"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	"github.com/alchemorsel/marco/internal/ports/outbound"
	"github.com/alchemorsel/marco/pkg/errors"
	"github.com/alchemorsel/marco/test/testutils"
)

type runnerFunc func(ctx context.Context, req recipe.Request) (*workflow.Result, error)

func (f runnerFunc) Run(ctx context.Context, req recipe.Request) (*workflow.Result, error) {
	return f(ctx, req)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return nil, stderrors.New("miss")
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

// RecipeServiceTestSuite tests the recipe use cases
type RecipeServiceTestSuite struct {
	suite.Suite
	repo     *testutils.MockRecipeRepository
	renderer *testutils.MockRenderer
	cache    *mapCache
	service  *RecipeService
	runs     int
}

func (s *RecipeServiceTestSuite) SetupTest() {
	s.repo = testutils.NewMockRecipeRepository()
	s.renderer = &testutils.MockRenderer{FormatName: "pdf"}
	s.cache = &mapCache{data: map[string][]byte{}}
	s.runs = 0

	runner := runnerFunc(func(_ context.Context, req recipe.Request) (*workflow.Result, error) {
		s.runs++
		st := recipe.NewState(req)
		st.Recipe = testutils.NewSeededRecipeBuilder(7).WithName("Soup").Build()
		return &workflow.Result{State: st, Trace: []string{workflow.StepGenerateRecipe}}, nil
	})

	s.service = NewRecipeService(Dependencies{
		Runner:    runner,
		Recipes:   s.repo,
		Cache:     s.cache,
		Renderers: []outbound.Renderer{s.renderer},
		Analyzer:  psychonutrition.NewAnalyzer(testutils.NutrientDB()),
		Seasonal:  testutils.SeasonalDB(),
		Clock:     func() time.Time { return time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC) },
	}, zaptest.NewLogger(s.T()))
}

func (s *RecipeServiceTestSuite) TestGenerate_SavesWhenAsked() {
	s.repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	res, err := s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{
		Request: recipe.NewRequest("soup"),
		Save:    true,
	})

	s.Require().NoError(err)
	s.Equal(uint(1), res.RecipeID)
	s.Equal("Soup", res.Recipe().Name)
	s.repo.AssertNumberOfCalls(s.T(), "Save", 1)
}

func (s *RecipeServiceTestSuite) TestGenerate_SkipsSaveByDefault() {
	res, err := s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{Request: recipe.NewRequest("soup")})

	s.Require().NoError(err)
	s.Zero(res.RecipeID)
	s.repo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *RecipeServiceTestSuite) TestGenerate_SaveFailureKeepsResult() {
	s.repo.On("Save", mock.Anything, mock.Anything).Return(stderrors.New("disk full"))

	res, err := s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{
		Request: recipe.NewRequest("soup"),
		Save:    true,
	})

	s.True(errors.Is(err, errors.CodeDatabaseError))
	s.Require().NotNil(res)
	s.Equal("Soup", res.Recipe().Name)
}

func (s *RecipeServiceTestSuite) TestGenerate_SavesAfterCallerCancels() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.service.runner = runnerFunc(func(_ context.Context, req recipe.Request) (*workflow.Result, error) {
		cancel()
		st := recipe.NewState(req)
		st.Recipe = testutils.NewSeededRecipeBuilder(8).WithName("Stew").Build()
		return &workflow.Result{State: st}, nil
	})
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	s.repo.On("Save", live, mock.Anything).Return(nil)

	res, err := s.service.Generate(ctx, inbound.GenerateRecipeCommand{
		Request: recipe.NewRequest("stew"),
		Save:    true,
	})

	s.Require().NoError(err)
	s.Equal(uint(1), res.RecipeID)
	s.repo.AssertExpectations(s.T())
}

type sanitizerFunc func(string) string

func (f sanitizerFunc) SanitizeDescription(input string) string { return f(input) }

func (f sanitizerFunc) SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, f(it))
	}
	return out
}

func (s *RecipeServiceTestSuite) TestGenerate_SanitizesRequest() {
	var seen recipe.Request
	s.service.runner = runnerFunc(func(_ context.Context, req recipe.Request) (*workflow.Result, error) {
		seen = req
		st := recipe.NewState(req)
		st.Recipe = testutils.NewSeededRecipeBuilder(9).WithName("Soup").Build()
		return &workflow.Result{State: st}, nil
	})
	s.service.sanitizer = sanitizerFunc(strings.ToUpper)

	req := recipe.NewRequest("soup")
	req.DietaryRestrictions = []string{"vegan"}
	_, err := s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{Request: req})

	s.Require().NoError(err)
	s.Equal("SOUP", seen.Description)
	s.Equal([]string{"VEGAN"}, seen.DietaryRestrictions)
	s.Equal([]string{"vegan"}, req.DietaryRestrictions)
}

func (s *RecipeServiceTestSuite) TestGenerate_MarkupOnlyDescriptionIsRejected() {
	s.service.sanitizer = sanitizerFunc(func(string) string { return "" })

	_, err := s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{Request: recipe.NewRequest("<b></b>")})

	s.True(errors.Is(err, errors.CodeValidationFailed))
	s.Zero(s.runs)
}

type validatorFunc func(interface{}) error

func (f validatorFunc) Struct(v interface{}) error { return f(v) }

func (s *RecipeServiceTestSuite) TestGenerate_ReportsRejectedFields() {
	s.service.validator = validatorFunc(func(interface{}) error {
		return errors.ValidationErrors{{Field: "season", Tag: "oneof", Message: "season must be one of: winter spring summer fall auto"}}
	})

	_, err := s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{Request: recipe.NewRequest("soup")})

	var appErr *errors.AppError
	s.Require().True(stderrors.As(err, &appErr))
	s.Equal(errors.CodeValidationFailed, appErr.Code)
	s.Equal([]string{"season"}, appErr.Metadata["fields"])
	s.Zero(s.runs)
}

func (s *RecipeServiceTestSuite) TestGenerate_RejectsInvalidRequests() {
	_, err := s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{Request: recipe.NewRequest("")})
	s.True(errors.Is(err, errors.CodeValidationFailed))

	req := recipe.NewRequest("soup")
	req.Servings = 0
	_, err = s.service.Generate(context.Background(), inbound.GenerateRecipeCommand{Request: req})
	s.True(errors.Is(err, errors.CodeValidationFailed))

	s.Zero(s.runs)
}

func (s *RecipeServiceTestSuite) TestExport_UsesRendererForFormat() {
	r := testutils.NewRecipeBuilder().Build()
	s.renderer.On("Render", mock.Anything, r).Return([]byte("%PDF-1.3"), nil)

	doc, err := s.service.Export(context.Background(), r, "pdf")

	s.Require().NoError(err)
	s.Equal([]byte("%PDF-1.3"), doc)
}

func (s *RecipeServiceTestSuite) TestExport_Failures() {
	r := testutils.NewRecipeBuilder().Build()

	_, err := s.service.Export(context.Background(), r, "docx")
	s.True(errors.Is(err, errors.CodeBadRequest))

	s.renderer.On("Render", mock.Anything, r).Return(nil, stderrors.New("font missing"))
	_, err = s.service.Export(context.Background(), r, "pdf")
	s.True(errors.Is(err, errors.CodeExportFailed))
}

func (s *RecipeServiceTestSuite) TestVariations_ResolvesAutoSeason() {
	r := testutils.NewRecipeBuilder().WithName("Caprese").WithIngredients("tomatoes", "basil leaves").Build()

	v, err := s.service.Variations(context.Background(), r, "auto", "")

	s.Require().NoError(err)
	s.Equal("winter", v.Season)
	s.Equal("europe", v.Region)
	s.Equal("Caprese (Winter Variation)", v.Name)
	s.Len(v.Substitutions, 2)

	_, err = s.service.Variations(context.Background(), r, "monsoon", "")
	s.True(errors.Is(err, errors.CodeValidationFailed))
}

func (s *RecipeServiceTestSuite) TestAnalyze_UsesBasicPath() {
	r := testutils.NewRecipeBuilder().WithIngredients("greek yogurt").Build()

	a, err := s.service.Analyze(context.Background(), r)

	s.Require().NoError(err)
	// one probiotic source match plus the basic probiotic bonus
	s.InDelta(1.0, a.AnxietyScore, 1e-9)
	s.NotEmpty(a.Cautions)
}

func (s *RecipeServiceTestSuite) TestGetRecipe_CachesAfterFirstLoad() {
	s.repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	id, err := s.repo.Save(context.Background(), testutils.NewRecipeBuilder().WithName("Stew").Build())
	s.Require().NoError(err)

	first, err := s.service.GetRecipe(context.Background(), id)
	s.Require().NoError(err)
	s.Equal("Stew", first.Recipe.Name)

	exists, _ := s.cache.Exists(context.Background(), recipeCacheKey(id))
	s.True(exists)

	second, err := s.service.GetRecipe(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(first.Recipe.Name, second.Recipe.Name)
}

func (s *RecipeServiceTestSuite) TestGetRecipe_NotFound() {
	_, err := s.service.GetRecipe(context.Background(), 42)
	s.True(errors.Is(err, errors.CodeRecipeNotFound))
}

func (s *RecipeServiceTestSuite) TestListRecipes_PaginatesNewestFirst() {
	s.repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.repo.Save(context.Background(), testutils.NewRecipeBuilder().WithName(name).Build())
		s.Require().NoError(err)
	}

	page, err := s.service.ListRecipes(context.Background(), inbound.PaginationParams{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), page.Total)
	s.Require().Len(page.Recipes, 2)
	s.Equal("c", page.Recipes[0].Recipe.Name)

	page, err = s.service.ListRecipes(context.Background(), inbound.PaginationParams{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page.Recipes, 1)
	s.Equal("a", page.Recipes[0].Recipe.Name)

	page, err = s.service.ListRecipes(context.Background(), inbound.PaginationParams{Limit: 1000})
	s.Require().NoError(err)
	s.Equal(MaxPageSize, page.Limit)
}

func TestRecipeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeServiceTestSuite))
}
