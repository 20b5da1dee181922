package workflow

import (
	"context"
	"time"
)

// Observer is notified as the engine walks the graph. StepStarted may return
// a derived context that is handed to the step and to StepFinished.
type Observer interface {
	StepStarted(ctx context.Context, step string) context.Context
	StepFinished(ctx context.Context, step string, elapsed time.Duration, err error)
	RunFinished(ctx context.Context, trace []string, err error)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

// StepStarted implements Observer
func (o Observers) StepStarted(ctx context.Context, step string) context.Context {
	for _, obs := range o {
		ctx = obs.StepStarted(ctx, step)
	}
	return ctx
}

// StepFinished implements Observer
func (o Observers) StepFinished(ctx context.Context, step string, elapsed time.Duration, err error) {
	for i := len(o) - 1; i >= 0; i-- {
		o[i].StepFinished(ctx, step, elapsed, err)
	}
}

// RunFinished implements Observer
func (o Observers) RunFinished(ctx context.Context, trace []string, err error) {
	for _, obs := range o {
		obs.RunFinished(ctx, trace, err)
	}
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnStepStarted  func(step string)
	OnStepFinished func(step string, elapsed time.Duration, err error)
	OnRunFinished  func(trace []string, err error)
}

// StepStarted implements Observer
func (f ObserverFuncs) StepStarted(ctx context.Context, step string) context.Context {
	if f.OnStepStarted != nil {
		f.OnStepStarted(step)
	}
	return ctx
}

// StepFinished implements Observer
func (f ObserverFuncs) StepFinished(_ context.Context, step string, elapsed time.Duration, err error) {
	if f.OnStepFinished != nil {
		f.OnStepFinished(step, elapsed, err)
	}
}

// RunFinished implements Observer
func (f ObserverFuncs) RunFinished(_ context.Context, trace []string, err error) {
	if f.OnRunFinished != nil {
		f.OnRunFinished(trace, err)
	}
}
