package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/application/workflow"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
}

// TracingProvider wraps OpenTelemetry tracing and traces workflow steps
type TracingProvider struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
	config   TracingConfig
}

var _ workflow.Observer = (*TracingProvider)(nil)

// NewTracingProvider creates a tracing provider. Finished spans go to
// exporter, or to the log when exporter is nil.
func NewTracingProvider(config TracingConfig, exporter sdktrace.SpanExporter, logger *zap.Logger) (*TracingProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("tracing")

	if !config.Enabled {
		logger.Debug("Tracing is disabled")
		return &TracingProvider{
			tracer: noop.NewTracerProvider().Tracer(config.ServiceName),
			logger: logger,
			config: config,
		}, nil
	}

	res := resource.NewSchemaless(
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	)

	if exporter == nil {
		exporter = NewLogExporter(logger)
	}
	// the CLI exits right after a run, so spans are exported synchronously
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	logger.Debug("Tracing initialized",
		zap.String("service", config.ServiceName),
		zap.String("version", config.ServiceVersion),
	)

	return &TracingProvider{
		tracer:   tp.Tracer(config.ServiceName),
		provider: tp,
		logger:   logger,
		config:   config,
	}, nil
}

// StartRun starts the root span of a workflow run
func (t *TracingProvider) StartRun(ctx context.Context, description string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "workflow.run",
		trace.WithAttributes(attribute.String("recipe.description", description)),
	)
}

// Runner executes one workflow run
type Runner interface {
	Run(ctx context.Context, req recipe.Request) (*workflow.Result, error)
}

type tracedRunner struct {
	next   Runner
	tracer *TracingProvider
}

// WrapRunner runs every workflow run inside a root span so step spans share
// one trace
func (t *TracingProvider) WrapRunner(next Runner) Runner {
	return &tracedRunner{next: next, tracer: t}
}

func (r *tracedRunner) Run(ctx context.Context, req recipe.Request) (*workflow.Result, error) {
	ctx, span := r.tracer.StartRun(ctx, req.Description)
	defer span.End()
	return r.next.Run(ctx, req)
}

// StepStarted implements workflow.Observer
func (t *TracingProvider) StepStarted(ctx context.Context, step string) context.Context {
	ctx, _ = t.tracer.Start(ctx, "workflow.step."+step,
		trace.WithAttributes(attribute.String("workflow.step", step)),
	)
	return ctx
}

// StepFinished implements workflow.Observer
func (t *TracingProvider) StepFinished(ctx context.Context, step string, elapsed time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int64("workflow.step.elapsed_ms", elapsed.Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RunFinished implements workflow.Observer
func (t *TracingProvider) RunFinished(ctx context.Context, steps []string, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.StringSlice("workflow.trace", steps))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Shutdown flushes and stops the tracer provider
func (t *TracingProvider) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// LogExporter writes finished spans to a zap logger
type LogExporter struct {
	logger *zap.Logger
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

// NewLogExporter creates a span exporter that logs at debug level
func NewLogExporter(logger *zap.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter
func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.logger.Debug("Span finished",
			zap.String("name", s.Name()),
			zap.String("trace_id", s.SpanContext().TraceID().String()),
			zap.String("span_id", s.SpanContext().SpanID().String()),
			zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
			zap.String("status", s.Status().Code.String()),
		)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter
func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}
