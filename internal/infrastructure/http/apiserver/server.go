// Package apiserver serves the recipe workflow as a JSON API
package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/marco/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/marco/internal/ports/inbound"
)

// Dependencies are the services the API exposes
type Dependencies struct {
	Recipes inbound.RecipeService
	Health  handlers.HealthChecker

	// Metrics is optional; without it /metrics is not mounted
	Metrics  *prometheus.Registry
	Recorder middleware.RequestRecorder

	// Tracing wraps the router with otelhttp spans
	Tracing bool
}

// Server is the JSON API server
type Server struct {
	cfg    config.ServerConfig
	deps   Dependencies
	logger *zap.Logger
	server *http.Server
}

// New creates the server; call Serve to start accepting connections
func New(cfg *config.Config, deps Dependencies, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg.Server,
		deps:   deps,
		logger: logger.Named("api"),
	}

	defaults := handlers.RequestDefaults{Season: cfg.Defaults.Season, Region: cfg.Defaults.Region}
	var handler http.Handler = s.routes(defaults)
	if deps.Tracing {
		handler = otelhttp.NewHandler(handler, cfg.Monitoring.ServiceName)
	}

	s.server = &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(defaults handlers.RequestDefaults) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	if s.deps.Recorder != nil {
		r.Use(middleware.Metrics(s.deps.Recorder))
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())

	if s.deps.Health != nil {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(s.deps.Health, s.logger))
	}
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}

	h := handlers.NewAPIHandlers(s.deps.Recipes, defaults, s.logger)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
		r.Use(middleware.JSONBody())

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.ListRecipes)
			r.Post("/", h.GenerateRecipe)
			r.Get("/{id}", h.GetRecipe)
			r.Get("/{id}/export", h.ExportRecipe)
		})
		r.Post("/variations", h.Variations)
		r.Post("/analysis", h.Analyze)
	})

	return r
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve accepts connections on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting JSON API server", zap.String("address", ln.Addr().String()))
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown gracefully shuts down the server, waiting for running
// generations until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down JSON API server")
	return s.server.Shutdown(ctx)
}
