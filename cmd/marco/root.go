package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/infrastructure/container"
	apperrors "github.com/alchemorsel/marco/pkg/errors"
	"github.com/alchemorsel/marco/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// reportedError wraps an error the command already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// cli holds what every command shares
type cli struct {
	out    io.Writer
	errOut io.Writer
	ui     *ui

	configPath string
	envFile    string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

func newCLI(out, errOut io.Writer) (*cli, *cobra.Command) {
	c := &cli{out: out, errOut: errOut, ui: newUI(out)}

	root := &cobra.Command{
		Use:           "marco",
		Short:         "AI-powered recipe generator with psychonutrition for anxiety management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperrors.NewBadRequestError(err.Error())
	})

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ./marco.yaml or ~/.marco/marco.yaml)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the config")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		c.generateCmd(),
		c.variationsCmd(),
		c.exportCmd(),
		c.analyzeCmd(),
		c.listCmd(),
		c.showCmd(),
		c.interactiveCmd(),
		c.initCmd(),
		c.serveCmd(),
		c.versionCmd(),
	)
	return c, root
}

// exactArgs is cobra.ExactArgs reported as a usage error
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return apperrors.NewBadRequestError(err.Error())
		}
		return nil
	}
}

func (c *cli) setup() error {
	cfg, err := config.LoadWithEnvFile(c.configPath, c.envFile)
	if err != nil {
		return err
	}
	level := cfg.App.LogLevel
	if c.verbose || cfg.App.Debug {
		level = "debug"
	}
	log, err := logger.New(logger.Config{
		Level:       level,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
		Output:      c.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	c.cfg = cfg
	c.log = log
	return nil
}

// run builds the application graph, starts it, fills targets and calls fn.
// The graph is stopped when fn returns so metrics are flushed and the
// database is closed.
func (c *cli) run(ctx context.Context, opts container.Options, fn func(context.Context) error, targets ...interface{}) (err error) {
	if err := c.cfg.EnsureDirectories(); err != nil {
		return err
	}
	app := container.New(c.cfg, c.log, opts, targets...)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to initialize marco: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start marco: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil {
			c.log.Warn("Shutdown failed", zap.Error(stopErr))
			if err == nil {
				err = stopErr
			}
		}
	}()

	return fn(ctx)
}

// report prints err unless a command already did
func (c *cli) report(err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	newUI(c.errOut).fail("Error", err)
}
