// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	convapp "github.com/alchemorsel/marco/internal/application/conversation"
	"github.com/alchemorsel/marco/internal/application/iteration"
	"github.com/alchemorsel/marco/internal/application/psychonutrition"
	recipeapp "github.com/alchemorsel/marco/internal/application/recipe"
	"github.com/alchemorsel/marco/internal/application/workflow"
	domainknowledge "github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/infrastructure/ai"
	"github.com/alchemorsel/marco/internal/infrastructure/cache"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/infrastructure/export"
	"github.com/alchemorsel/marco/internal/infrastructure/knowledge"
	"github.com/alchemorsel/marco/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/marco/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/marco/internal/infrastructure/persistence/memory"
	redisRepo "github.com/alchemorsel/marco/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/marco/internal/infrastructure/validation"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	"github.com/alchemorsel/marco/internal/ports/outbound"
	"github.com/alchemorsel/marco/pkg/healthcheck"
)

// Options carries per-invocation wiring that is not part of the config
type Options struct {
	// Observers are notified of every workflow step, after metrics and tracing
	Observers []workflow.Observer
}

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	DatabaseModule,
	CacheModule,
	KnowledgeModule,
	MonitoringModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	AIModule,
	WorkflowModule,
	ServiceModule,
	HealthModule,

	// Lifecycle hooks
	LifecycleModule,
)

// DatabaseModule provides the database connection
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		db, err := gormRepo.OpenDatabase(cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		log.Debug("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.String("path", cfg.Database.Path),
		)
		return db, nil
	},
)

// CacheModule provides caching. Redis is used when an address is configured;
// otherwise the client is nil and an in-memory store is used.
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*cache.RedisClient, error) {
		if cfg.Redis.Addr == "" {
			return nil, nil
		}
		client, err := cache.NewRedisClient(context.Background(), cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				stats := client.Stats()
				log.Debug("Closing Redis client",
					zap.Int64("hits", stats.Hits),
					zap.Int64("misses", stats.Misses),
					zap.Float64("hit_ratio", stats.HitRatio()),
				)
				return client.Close()
			},
		})
		return client, nil
	},
	func(client *cache.RedisClient, log *zap.Logger) outbound.CacheRepository {
		if client == nil {
			log.Debug("Using in-memory cache")
			return memory.NewCacheRepository()
		}
		return redisRepo.NewCacheRepository(client, log)
	},
)

// KnowledgeModule provides the nutrient and seasonal knowledge bases
var KnowledgeModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *knowledge.FileSource {
		return knowledge.NewFileSource(cfg.Knowledge.DataDir, log)
	},
	func(src *knowledge.FileSource) (*domainknowledge.NutrientDB, error) {
		return src.NutrientDB(context.Background())
	},
	func(src *knowledge.FileSource) (*domainknowledge.SeasonalDB, error) {
		return src.SeasonalDB(context.Background())
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.Monitoring.ServiceName,
			ServiceVersion: cfg.App.Version,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, nil, log)
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormRepo.NewRecipeRepository,
		fx.As(new(outbound.RecipeRepository)),
	),
)

// AIModule provides the recipe generation backend
var AIModule = fx.Provide(
	func(
		cfg *config.Config,
		store outbound.CacheRepository,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) (outbound.RecipeGenerator, error) {
		gen, err := ai.NewGenerator(cfg, store, log)
		if err != nil {
			return nil, err
		}
		if cfg.Monitoring.EnableMetrics {
			return monitoring.InstrumentGenerator(gen, metrics), nil
		}
		return gen, nil
	},
	func(cfg *config.Config, gen outbound.RecipeGenerator, log *zap.Logger) *ai.HealthChecker {
		return ai.NewHealthChecker(cfg, gen, log)
	},
)

// WorkflowModule provides the workflow engine and its collaborators
var WorkflowModule = fx.Provide(
	validation.NewValidationService,
	func(log *zap.Logger) *convapp.Manager {
		return convapp.NewManager(log)
	},
	psychonutrition.NewAnalyzer,
	iteration.NewIterator,
	func(
		cfg *config.Config,
		opts Options,
		gen outbound.RecipeGenerator,
		conversations *convapp.Manager,
		analyzer *psychonutrition.Analyzer,
		iterator *iteration.Iterator,
		seasonal *domainknowledge.SeasonalDB,
		validator *validation.ValidationService,
		metrics *monitoring.MetricsCollector,
		tracer *monitoring.TracingProvider,
		log *zap.Logger,
	) (*workflow.Engine, error) {
		engineOpts := []workflow.Option{workflow.WithObserver(tracer)}
		if cfg.Monitoring.EnableMetrics {
			engineOpts = append(engineOpts, workflow.WithObserver(metrics))
		}
		for _, obs := range opts.Observers {
			engineOpts = append(engineOpts, workflow.WithObserver(obs))
		}
		return workflow.NewEngine(workflow.Dependencies{
			Generator:     gen,
			Conversations: conversations,
			Analyzer:      analyzer,
			Iterator:      iterator,
			Seasonal:      seasonal,
			Validator:     validator,
		}, log, engineOpts...)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) ([]outbound.Renderer, error) {
		html, err := export.NewHTMLRenderer(cfg.Export.TemplatesDir, log)
		if err != nil {
			return nil, err
		}
		return []outbound.Renderer{html, export.NewPDFRenderer(log)}, nil
	},
	fx.Annotate(
		func(
			engine *workflow.Engine,
			tracer *monitoring.TracingProvider,
			recipes outbound.RecipeRepository,
			store outbound.CacheRepository,
			renderers []outbound.Renderer,
			analyzer *psychonutrition.Analyzer,
			seasonal *domainknowledge.SeasonalDB,
			validator *validation.ValidationService,
			log *zap.Logger,
		) *recipeapp.RecipeService {
			return recipeapp.NewRecipeService(recipeapp.Dependencies{
				Runner:    tracer.WrapRunner(engine),
				Recipes:   recipes,
				Cache:     store,
				Renderers: renderers,
				Analyzer:  analyzer,
				Seasonal:  seasonal,
				Validator: validator,
				Sanitizer: validator,
			}, log)
		},
		fx.As(new(inbound.RecipeService)),
	),
)

// HealthModule provides the dependency checks run by marco init
var HealthModule = fx.Provide(
	func(
		cfg *config.Config,
		db *gorm.DB,
		redis *cache.RedisClient,
		provider *ai.HealthChecker,
		nutrients *domainknowledge.NutrientDB,
		seasonal *domainknowledge.SeasonalDB,
		log *zap.Logger,
	) *healthcheck.HealthCheck {
		h := healthcheck.New(cfg.App.Version, log)
		h.Register("database", healthcheck.NewDatabaseChecker(db))
		if redis != nil {
			h.Register("redis", healthcheck.NewPingChecker(redis))
		}
		h.Register("knowledge", healthcheck.NewCustomChecker("knowledge",
			func(context.Context) (healthcheck.Status, string, interface{}) {
				meta := map[string]interface{}{
					"data_dir":            cfg.Knowledge.DataDir,
					"nutrients":           len(nutrients.Nutrients),
					"seasonal_categories": len(seasonal.Ingredients),
				}
				if len(nutrients.Nutrients) == 0 || len(seasonal.Ingredients) == 0 {
					return healthcheck.StatusDegraded, "knowledge files missing or empty in " + cfg.Knowledge.DataDir, meta
				}
				return healthcheck.StatusHealthy, fmt.Sprintf("%d nutrients, %d seasonal categories",
					len(nutrients.Nutrients), len(seasonal.Ingredients)), meta
			}))
		h.Register("provider", healthcheck.NewCustomChecker("provider",
			func(ctx context.Context) (healthcheck.Status, string, interface{}) {
				status := provider.Check(ctx)
				msg := fmt.Sprintf("%s (%s) %s", status.Provider, status.Model, status.Detail)
				if !status.Healthy {
					return healthcheck.StatusUnhealthy, msg, status
				}
				return healthcheck.StatusHealthy, msg, status
			}))
		return h
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks flushes telemetry and closes the database on stop
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	metrics *monitoring.MetricsCollector,
	tracer *monitoring.TracingProvider,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Debug("Starting marco",
				zap.String("version", cfg.App.Version),
				zap.String("provider", cfg.AI.Provider),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cfg.Monitoring.EnableMetrics && cfg.Monitoring.MetricsFile != "" {
				if err := metrics.WriteTextfile(cfg.Monitoring.MetricsFile); err != nil {
					log.Warn("Failed to write metrics", zap.Error(err))
				}
			}
			if err := tracer.Shutdown(ctx); err != nil {
				log.Warn("Failed to shutdown tracing", zap.Error(err))
			}
			if err := gormRepo.Close(db); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
				return err
			}
			log.Debug("Database connection closed")
			return nil
		},
	})
}

// New builds the application graph for cfg. Targets are pointers filled
// from the graph, as with fx.Populate.
func New(cfg *config.Config, log *zap.Logger, opts Options, targets ...interface{}) *fx.App {
	return fx.New(
		fx.Supply(cfg, log, opts),
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		Module,
		fx.Populate(targets...),
	)
}
