package workflow

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	convapp "github.com/alchemorsel/marco/internal/application/conversation"
	"github.com/alchemorsel/marco/internal/application/iteration"
	"github.com/alchemorsel/marco/internal/application/psychonutrition"
	"github.com/alchemorsel/marco/internal/domain/conversation"
	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/pkg/errors"
	"github.com/alchemorsel/marco/test/testutils"
)

type validatorFunc func(interface{}) error

func (f validatorFunc) Struct(v interface{}) error { return f(v) }

// EngineTestSuite runs the full graph against a mocked generator
type EngineTestSuite struct {
	suite.Suite
	generator *testutils.MockRecipeGenerator
	deps      Dependencies
	now       time.Time
	asserts   *testutils.StateAssertions
}

func (s *EngineTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.now = time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	convs := convapp.NewManager(logger, convapp.WithClock(clock))
	s.generator = &testutils.MockRecipeGenerator{}
	s.deps = Dependencies{
		Generator:     s.generator,
		Conversations: convs,
		Analyzer:      psychonutrition.NewAnalyzer(testutils.NutrientDB()),
		Iterator:      iteration.NewIterator(convs, logger),
		Seasonal:      testutils.SeasonalDB(),
	}
	s.asserts = testutils.NewStateAssertions(s.T())
}

func (s *EngineTestSuite) engine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return s.now })}, opts...)
	e, err := NewEngine(s.deps, zaptest.NewLogger(s.T()), opts...)
	s.Require().NoError(err)
	return e
}

func chickenSalad() *recipe.Recipe {
	return testutils.NewSeededRecipeBuilder(1).
		WithName("Grilled Chicken Salad").
		WithIngredients("grilled chicken breast", "romaine lettuce", "cherry tomatoes", "olive oil").
		Build()
}

func summerSalad() *recipe.Recipe {
	return testutils.NewSeededRecipeBuilder(2).
		WithName("Summer Salad").
		WithIngredients("cherry tomatoes", "fresh basil", "zucchini").
		Build()
}

func (s *EngineTestSuite) TestRun_AnxietyFocusedLowScoreIsImprovedOnce() {
	// Arrange
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(chickenSalad(), nil)
	req := recipe.NewRequest("grilled chicken salad")
	req.Servings = 2

	// Act
	res, err := s.engine().Run(context.Background(), req)

	// Assert
	s.Require().NoError(err)
	s.Equal([]string{
		StepGenerateRecipe, StepPsychonutrition, StepRecipeImprovement,
		StepSeasonalCheck, StepChefReview, StepExpertSummary,
	}, res.Trace)

	st := res.State
	s.asserts.Finalized(st)
	s.asserts.MessagesChronological(st)
	s.Empty(st.Errors)

	s.True(strings.HasPrefix(st.Recipe.Name, "Enhanced Grilled Chicken Salad"))
	s.Len(st.Recipe.Ingredients, 7)
	s.Equal("chopped walnuts", st.Recipe.Ingredients[4].Name)
	s.Require().NotNil(st.Recipe.PsychonutritionAnalysis)
	s.InDelta(2.0, st.Recipe.PsychonutritionAnalysis.AnxietyScore, 1e-9)

	s.asserts.HasMessage(st, conversation.RolePsychonutritionist, conversation.TypeModification)
	s.asserts.HasMessage(st, conversation.RoleChef, conversation.TypeApproval)
	// improvement summary plus the three closing sign-offs
	s.Equal(4, testutils.CountMessages(st, conversation.TypeFinalDecision))

	s.Len(st.Recipe.ChefTips, len(ChefTips))
	s.Equal("medium", st.Recipe.Difficulty)
	s.Nil(st.SeasonalVariation)
	s.Equal("Generated recipe: Grilled Chicken Salad", st.Messages[0].Content)
}

func (s *EngineTestSuite) TestRun_WinterWithoutAnxietyFocusSkipsAnalysis() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(summerSalad(), nil)
	req := recipe.NewRequest("summer salad")
	req.AnxietyFocus = false
	req.Season = recipe.SeasonWinter

	res, err := s.engine().Run(context.Background(), req)

	s.Require().NoError(err)
	s.Equal([]string{
		StepGenerateRecipe, StepSeasonalCheck, StepSeasonal, StepChefReview, StepExpertSummary,
	}, res.Trace)

	st := res.State
	s.asserts.Finalized(st)
	s.Nil(st.Recipe.PsychonutritionAnalysis)
	s.Equal(recipe.SeasonWinter, st.Recipe.Season)

	s.Require().NotNil(st.SeasonalVariation)
	s.Equal("Summer Salad (Winter Variation)", st.SeasonalVariation.Name)
	s.Equal("Optimized for winter ingredients in europe", st.SeasonalVariation.Notes)
	subs := st.SeasonalVariation.Substitutions
	s.Require().Len(subs, 4)
	s.Equal("roasted red peppers", subs[0].Substitute)
	s.Equal("canned tomatoes", subs[3].Substitute)
	s.Contains(st.Recipe.Variations, "Winter: roasted red peppers, butternut squash, dried oregano")

	// the chef answers the seasonal expert's technique question
	question := s.asserts.HasMessage(st, conversation.RoleSeasonalExpert, conversation.TypeQuestion)
	reply := s.asserts.HasMessage(st, conversation.RoleChef, conversation.TypeOpinion)
	s.Equal(question.ID, reply.ReferenceTo)
	for _, msg := range st.Conversation {
		if msg.From == conversation.RoleSeasonalExpert {
			s.NotEqual(conversation.TypeOpinion, msg.Type, "seasonal expert has no question to answer")
		}
	}

	signOff := s.asserts.HasMessage(st, conversation.RolePsychonutritionist, conversation.TypeFinalDecision)
	s.Contains(signOff.Content, "not assessed")
}

func (s *EngineTestSuite) TestRun_AutoSeasonSkipsSeasonalStep() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(summerSalad(), nil)
	req := recipe.NewRequest("summer salad")
	req.AnxietyFocus = false

	res, err := s.engine().Run(context.Background(), req)

	s.Require().NoError(err)
	s.Equal([]string{StepGenerateRecipe, StepSeasonalCheck, StepChefReview, StepExpertSummary}, res.Trace)
	s.Empty(res.State.Recipe.Season)
	s.Nil(res.State.SeasonalVariation)
}

func (s *EngineTestSuite) TestRun_SeasonUnsetWithoutSubstitutions() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(summerSalad(), nil)
	s.deps.Seasonal = knowledge.EmptySeasonalDB()
	req := recipe.NewRequest("summer salad")
	req.AnxietyFocus = false
	req.Season = recipe.SeasonWinter

	res, err := s.engine().Run(context.Background(), req)

	s.Require().NoError(err)
	s.Contains(res.Trace, StepSeasonal)
	s.Empty(res.State.Recipe.Season)
	s.Nil(res.State.SeasonalVariation)
	s.Contains(res.State.Messages, conversation.LegacyMessage{Role: "assistant", Content: "Recipe is already optimized for winter"})
}

func (s *EngineTestSuite) TestRun_GenerationFailureIsFatal() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(nil, stderrors.New("connection refused"))

	res, err := s.engine().Run(context.Background(), recipe.NewRequest("soup"))

	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeGenerationFailed))
	s.Contains(err.Error(), "connection refused")
	s.Equal([]string{StepGenerateRecipe}, res.Trace)
	s.Nil(res.State.Recipe)
}

func (s *EngineTestSuite) TestRun_GeneratedRecipeMustValidate() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(chickenSalad(), nil)
	s.deps.Validator = validatorFunc(func(interface{}) error { return stderrors.New("Ingredients is required") })

	_, err := s.engine().Run(context.Background(), recipe.NewRequest("soup"))

	s.Require().Error(err)
	s.True(errors.Is(err, errors.CodeMalformedOutput))
}

func (s *EngineTestSuite) TestRun_FailingStepIsRolledBackAndRecorded() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(summerSalad(), nil)
	failing := func(_ context.Context, st *recipe.State) error {
		st.Recipe.Name = "mutated"
		st.Conversation = append(st.Conversation, conversation.Message{ID: "stray"})
		return stderrors.New("boom")
	}
	req := recipe.NewRequest("summer salad")
	req.AnxietyFocus = false

	res, err := s.engine(WithStep(StepChefReview, failing)).Run(context.Background(), req)

	s.Require().NoError(err)
	st := res.State
	s.Equal([]string{"Chef collaboration error: boom"}, st.Errors)
	s.Equal("Summer Salad", st.Recipe.Name)
	for _, msg := range st.Conversation {
		s.NotEqual("stray", msg.ID)
	}
	s.Contains(res.Trace, StepExpertSummary)
}

func (s *EngineTestSuite) TestRun_PanickingStepIsRecovered() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(chickenSalad(), nil)
	panicky := func(context.Context, *recipe.State) error { panic("nil map") }

	res, err := s.engine(WithStep(StepSeasonalCheck, panicky)).Run(context.Background(), recipe.NewRequest("salad"))

	s.Require().NoError(err)
	s.Contains(res.State.Errors, "Seasonal check error: panic: nil map")
	s.asserts.Finalized(res.State)
}

func (s *EngineTestSuite) TestRun_CancelledContextStopsBeforeFirstStep() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var finished error
	obs := ObserverFuncs{OnRunFinished: func(_ []string, err error) { finished = err }}

	res, err := s.engine(WithObserver(obs)).Run(ctx, recipe.NewRequest("salad"))

	s.ErrorIs(err, context.Canceled)
	s.ErrorIs(finished, context.Canceled)
	s.Empty(res.Trace)
	s.generator.AssertNotCalled(s.T(), "GenerateRecipe", mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestRun_CancelAfterGenerationStillFinishes() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(chickenSalad(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var chefCtxErr error
	engine := s.engine(WithStep(StepChefReview, func(stepCtx context.Context, st *recipe.State) error {
		cancel()
		chefCtxErr = stepCtx.Err()
		return nil
	}))

	res, err := engine.Run(ctx, recipe.NewRequest("salad"))

	s.Require().NoError(err)
	s.NoError(chefCtxErr)
	s.Require().NotNil(res.State.Recipe)
	s.Equal(StepExpertSummary, res.Trace[len(res.Trace)-1])
	s.Empty(res.State.Errors)
	s.asserts.Finalized(res.State)
}

func (s *EngineTestSuite) TestRun_ObserversSeeEveryVisitedStep() {
	s.generator.On("GenerateRecipe", mock.Anything, mock.Anything).Return(chickenSalad(), nil)
	var started, finished []string
	obs := ObserverFuncs{
		OnStepStarted:  func(step string) { started = append(started, step) },
		OnStepFinished: func(step string, _ time.Duration, _ error) { finished = append(finished, step) },
	}

	res, err := s.engine(WithObserver(obs)).Run(context.Background(), recipe.NewRequest("salad"))

	s.Require().NoError(err)
	s.Equal(res.Trace, started)
	s.Equal(res.Trace, finished)
}

func (s *EngineTestSuite) TestChefReview_TipsAreNotDuplicated() {
	e := s.engine()
	st := recipe.NewState(recipe.NewRequest("salad"))
	st.Recipe = summerSalad()
	st.Recipe.ChefTips = []string{ChefTips[0]}

	s.Require().NoError(e.chefReview(context.Background(), st))
	s.Require().NoError(e.chefReview(context.Background(), st))

	s.Equal(ChefTips, st.Recipe.ChefTips)
}

func (s *EngineTestSuite) TestExpertSummary_NoopWithoutConversation() {
	e := s.engine()
	st := recipe.NewState(recipe.NewRequest("salad"))

	s.Require().NoError(e.expertSummary(context.Background(), st))

	s.Empty(st.Conversation)
	s.Equal(conversation.PhasePlanning, st.Context.Phase)
	s.False(st.Context.ConsensusReached)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	logger := zaptest.NewLogger(t)
	convs := convapp.NewManager(logger)

	_, err := NewEngine(Dependencies{}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator is required")

	_, err = NewEngine(Dependencies{Generator: &testutils.MockRecipeGenerator{}}, logger)
	assert.Contains(t, err.Error(), "conversation manager is required")

	e, err := NewEngine(Dependencies{
		Generator:     &testutils.MockRecipeGenerator{},
		Conversations: convs,
		Analyzer:      psychonutrition.NewAnalyzer(nil),
		Iterator:      iteration.NewIterator(convs, logger),
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, e.deps.Seasonal)
}

func TestNext_Routing(t *testing.T) {
	st := recipe.NewState(recipe.NewRequest("salad"))
	assert.Equal(t, StepPsychonutrition, Next(StepGenerateRecipe, st))

	st.Request.AnxietyFocus = false
	assert.Equal(t, StepSeasonalCheck, Next(StepGenerateRecipe, st))

	// no analysis routes straight on
	assert.Equal(t, StepSeasonalCheck, Next(StepPsychonutrition, st))
	st.Recipe = &recipe.Recipe{PsychonutritionAnalysis: &recipe.PsychonutritionAnalysis{AnxietyScore: 5.99}}
	assert.Equal(t, StepRecipeImprovement, Next(StepPsychonutrition, st))
	st.Recipe.PsychonutritionAnalysis.AnxietyScore = 6.0
	assert.Equal(t, StepSeasonalCheck, Next(StepPsychonutrition, st))

	assert.Equal(t, StepChefReview, Next(StepSeasonalCheck, st))
	st.Request.Season = "fall"
	assert.Equal(t, StepSeasonal, Next(StepSeasonalCheck, st))

	assert.Equal(t, StepSeasonalCheck, Next(StepRecipeImprovement, st))
	assert.Equal(t, StepChefReview, Next(StepSeasonal, st))
	assert.Equal(t, StepExpertSummary, Next(StepChefReview, st))
	assert.Equal(t, End, Next(StepExpertSummary, st))
}
