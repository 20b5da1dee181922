package main

import (
	"context"
	"errors"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/infrastructure/container"
	"github.com/alchemorsel/marco/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/marco/internal/infrastructure/monitoring"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	"github.com/alchemorsel/marco/pkg/healthcheck"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recipe generation as a JSON API",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				c.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default server.port)")
	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests
func (c *cli) serve(ctx context.Context) error {
	var (
		svc     inbound.RecipeService
		health  *healthcheck.HealthCheck
		metrics *monitoring.MetricsCollector
	)
	return c.run(ctx, container.Options{}, func(ctx context.Context) error {
		deps := apiserver.Dependencies{
			Recipes: svc,
			Health:  health,
			Tracing: c.cfg.Monitoring.EnableTracing,
		}
		if c.cfg.Monitoring.EnableMetrics {
			deps.Metrics = metrics.Registry()
			deps.Recorder = metrics
		}
		srv := apiserver.New(c.cfg, deps, c.log)

		ln, err := net.Listen("tcp", c.cfg.Server.Address())
		if err != nil {
			return err
		}
		c.ui.ok("Serving the Marco API on http://%s", ln.Addr())

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.log.Warn("In-flight requests were cut off", zap.Error(err))
		}
		if err := <-errCh; err != nil {
			return err
		}
		c.ui.println(c.ui.dim.Render("Server stopped"))
		return nil
	}, &svc, &health, &metrics)
}
