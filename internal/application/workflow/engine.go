package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	convapp "github.com/alchemorsel/marco/internal/application/conversation"
	"github.com/alchemorsel/marco/internal/application/iteration"
	"github.com/alchemorsel/marco/internal/application/psychonutrition"
	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
	"github.com/alchemorsel/marco/pkg/errors"
)

// Validator checks a struct against its validation tags.
type Validator interface {
	Struct(v interface{}) error
}

// StepFunc is one unit of work over the shared state.
type StepFunc func(ctx context.Context, st *recipe.State) error

// Dependencies are the collaborators the steps work with.
type Dependencies struct {
	Generator     outbound.RecipeGenerator
	Conversations *convapp.Manager
	Analyzer      *psychonutrition.Analyzer
	Iterator      *iteration.Iterator
	Seasonal      *knowledge.SeasonalDB
	// Validator checks generated recipes; optional
	Validator Validator
}

// Engine walks the graph from StepGenerateRecipe to End.
type Engine struct {
	deps     Dependencies
	steps    map[string]StepFunc
	observer Observer
	clock    func() time.Time
	logger   *zap.Logger
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithObserver adds an observer. Observers are notified in the order added.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		if obs == nil {
			return
		}
		if list, ok := e.observer.(Observers); ok {
			e.observer = append(list, obs)
			return
		}
		e.observer = Observers{obs}
	}
}

// WithStep replaces the implementation of a named step.
func WithStep(name string, fn StepFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.steps[name] = fn
		}
	}
}

// NewEngine wires the engine to its collaborators.
func NewEngine(deps Dependencies, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("workflow engine: generator is required")
	}
	if deps.Conversations == nil {
		return nil, fmt.Errorf("workflow engine: conversation manager is required")
	}
	if deps.Analyzer == nil {
		return nil, fmt.Errorf("workflow engine: analyzer is required")
	}
	if deps.Iterator == nil {
		return nil, fmt.Errorf("workflow engine: iterator is required")
	}
	if deps.Seasonal == nil {
		deps.Seasonal = knowledge.EmptySeasonalDB()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		deps:     deps,
		observer: Observers{},
		clock:    time.Now,
		logger:   logger.Named("workflow"),
	}
	e.steps = map[string]StepFunc{
		StepGenerateRecipe:    e.generateRecipe,
		StepPsychonutrition:   e.analyzePsychonutrition,
		StepRecipeImprovement: e.improveRecipe,
		StepSeasonalCheck:     func(context.Context, *recipe.State) error { return nil },
		StepSeasonal:          e.optimizeSeasonal,
		StepChefReview:        e.chefReview,
		StepExpertSummary:     e.expertSummary,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result is the outcome of a run.
type Result struct {
	State *recipe.State
	// Trace is the order in which steps were visited
	Trace []string
}

// Run executes the graph for req. Only a generation failure stops the run;
// any other step failure is recorded in State.Errors and the state is left
// as it was before that step. ctx is honoured up to and including
// generation; once a recipe exists the remaining steps always run.
func (e *Engine) Run(ctx context.Context, req recipe.Request) (*Result, error) {
	st := recipe.NewState(req)
	res := &Result{State: st}
	runID := e.clock().UTC().Format("20060102T150405.000")

	log := e.logger.With(zap.String("run", runID), zap.String("description", req.Description))
	log.Info("Workflow started",
		zap.Bool("anxiety_focus", req.AnxietyFocus),
		zap.String("season", req.Season),
		zap.String("region", req.Region),
	)

	runErr := ctx.Err()
	stepCtx := ctx
	for step := StepGenerateRecipe; runErr == nil && step != End; step = Next(step, st) {
		res.Trace = append(res.Trace, step)
		if err := e.runStep(stepCtx, step, st, log); err != nil {
			runErr = err
			break
		}
		if step == StepGenerateRecipe {
			stepCtx = context.WithoutCancel(ctx)
		}
	}
	if runErr == nil && ctx.Err() != nil {
		log.Warn("Caller cancelled after generation, run completed", zap.Error(ctx.Err()))
	}

	e.observer.RunFinished(ctx, res.Trace, runErr)
	if runErr != nil {
		log.Error("Workflow aborted", zap.Strings("trace", res.Trace), zap.Error(runErr))
		return res, runErr
	}
	log.Info("Workflow completed",
		zap.Strings("trace", res.Trace),
		zap.Int("messages", len(st.Conversation)),
		zap.Int("errors", len(st.Errors)),
	)
	return res, nil
}

// runStep executes one step. A failing generation step is returned as a
// fatal error; any other failure is recorded and swallowed.
func (e *Engine) runStep(ctx context.Context, step string, st *recipe.State, log *zap.Logger) error {
	fn, ok := e.steps[step]
	if !ok {
		return errors.NewInternalError(fmt.Sprintf("unknown workflow step %q", step))
	}

	stepCtx := e.observer.StepStarted(ctx, step)
	started := e.clock()
	log.Debug("Step started", zap.String("step", step))

	var snapshot *recipe.State
	if step != StepGenerateRecipe {
		snapshot = st.Clone()
	}

	err := safeCall(stepCtx, fn, st)
	elapsed := e.clock().Sub(started)
	e.observer.StepFinished(stepCtx, step, elapsed, err)

	if err == nil {
		log.Debug("Step finished", zap.String("step", step), zap.Duration("elapsed", elapsed))
		return nil
	}

	if step == StepGenerateRecipe {
		st.Recipe = nil
		if !errors.IsAppError(err) {
			err = errors.NewGenerationError(e.deps.Generator.Name(), err)
		}
		return err
	}

	*st = *snapshot
	msg := fmt.Sprintf("%s error: %s", Label(step), err.Error())
	st.AddError(msg)
	log.Warn("Step failed, continuing", zap.String("step", step), zap.Error(err))
	return nil
}

// safeCall runs fn and converts a panic into an error.
func safeCall(ctx context.Context, fn StepFunc, st *recipe.State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, st)
}
