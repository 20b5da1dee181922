// Package monitoring records workflow metrics and traces
package monitoring

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/application/workflow"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

const namespace = "marco"

// Run outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// MetricsCollector handles Prometheus metrics collection for workflow runs
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// Workflow metrics
	stepsVisited  *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	stepErrors    *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	runStepsCount prometheus.Histogram

	// Generation metrics
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec

	// API metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var _ workflow.Observer = (*MetricsCollector)(nil)

// NewMetricsCollector creates a collector on its own registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: reg,

		stepsVisited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_steps_total",
				Help:      "Total number of workflow steps visited",
			},
			[]string{"step"},
		),
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_step_duration_seconds",
				Help:      "Workflow step duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0},
			},
			[]string{"step"},
		),
		stepErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_step_errors_total",
				Help:      "Total number of workflow step errors",
			},
			[]string{"step"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_runs_total",
				Help:      "Total number of workflow runs",
			},
			[]string{"outcome"},
		),
		runStepsCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_run_steps",
				Help:      "Number of steps visited per run",
				Buckets:   prometheus.LinearBuckets(1, 2, 8),
			},
		),
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_requests_total",
				Help:      "Total number of recipe generation requests",
			},
			[]string{"provider", "status"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Recipe generation duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 120.0},
			},
			[]string{"provider"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Registry returns the registry holding the collector's metrics
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// StepStarted implements workflow.Observer
func (m *MetricsCollector) StepStarted(ctx context.Context, step string) context.Context {
	m.stepsVisited.WithLabelValues(step).Inc()
	return ctx
}

// StepFinished implements workflow.Observer
func (m *MetricsCollector) StepFinished(_ context.Context, step string, elapsed time.Duration, err error) {
	m.stepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
	if err != nil {
		m.stepErrors.WithLabelValues(step).Inc()
	}
}

// RunFinished implements workflow.Observer
func (m *MetricsCollector) RunFinished(_ context.Context, trace []string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runStepsCount.Observe(float64(len(trace)))
}

// GenerationRequest records one call to a generation backend
func (m *MetricsCollector) GenerationRequest(provider, status string, duration time.Duration) {
	m.generationsTotal.WithLabelValues(provider, status).Inc()
	m.generationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// HTTPRequest records one API request. Route is the matched pattern, not the raw path.
func (m *MetricsCollector) HTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// WriteTextfile dumps the metrics in text exposition format, for the
// node_exporter textfile collector
func (m *MetricsCollector) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	m.logger.Debug("Metrics written", zap.String("path", path))
	return nil
}

// InstrumentedGenerator records generation metrics around a generator
type InstrumentedGenerator struct {
	next    outbound.RecipeGenerator
	metrics *MetricsCollector
}

var _ outbound.RecipeGenerator = (*InstrumentedGenerator)(nil)

// InstrumentGenerator wraps next with generation metrics
func InstrumentGenerator(next outbound.RecipeGenerator, metrics *MetricsCollector) *InstrumentedGenerator {
	return &InstrumentedGenerator{next: next, metrics: metrics}
}

// GenerateRecipe implements outbound.RecipeGenerator
func (g *InstrumentedGenerator) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	start := time.Now()
	r, err := g.next.GenerateRecipe(ctx, req)

	status := OutcomeSuccess
	if err != nil {
		status = OutcomeFailed
	}
	g.metrics.GenerationRequest(g.next.Name(), status, time.Since(start))
	return r, err
}

// Name implements outbound.RecipeGenerator
func (g *InstrumentedGenerator) Name() string {
	return g.next.Name()
}

// Unwrap returns the wrapped generator
func (g *InstrumentedGenerator) Unwrap() outbound.RecipeGenerator {
	return g.next
}
