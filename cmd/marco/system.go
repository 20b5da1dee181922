package main

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/container"
	gormrepo "github.com/alchemorsel/marco/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/marco/pkg/healthcheck"
)

func (c *cli) interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive recipe generation session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.ui.heading("Marco - Interactive Recipe Generator")
			c.ui.println("Type 'exit' to quit")

			in := bufio.NewScanner(cmd.InOrStdin())
			for {
				description, ok := c.prompt(in, "\nWhat would you like to cook? ")
				if !ok || description == "exit" || description == "quit" {
					break
				}
				if description == "" {
					continue
				}
				answer, ok := c.prompt(in, "Optimize for anxiety reduction? [Y/n] ")
				if !ok {
					break
				}

				opts := generateOptions{anxietyFocus: !strings.HasPrefix(strings.ToLower(answer), "n"), servings: recipe.DefaultServings}
				if err := c.generate(cmd.Context(), description, opts); err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					c.report(err)
				}
				c.ui.println("\n" + strings.Repeat("─", 60))
			}
			c.ui.println(c.ui.dim.Render("\nGoodbye!"))
			return nil
		},
	}
}

func (c *cli) prompt(in *bufio.Scanner, question string) (string, bool) {
	c.ui.printf("%s", question)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the Marco database and check the configuration",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.ui.heading("Initializing Marco")
			if err := c.cfg.EnsureDirectories(); err != nil {
				return err
			}

			c.cfg.Database.AutoMigrate = true
			db, err := gormrepo.OpenDatabase(c.cfg.Database, c.log)
			if err != nil {
				return err
			}
			if err := gormrepo.Close(db); err != nil {
				return err
			}
			c.ui.ok("Database initialized")

			if _, err := c.cfg.APIKey(); err != nil {
				c.ui.warn("%v", err)
				c.ui.println(c.ui.dim.Render("Please set your API key in the .env file"))
				return nil
			}
			c.ui.ok("API key configured for %s", c.cfg.AI.Provider)

			var health *healthcheck.HealthCheck
			return c.run(cmd.Context(), container.Options{}, func(ctx context.Context) error {
				report := health.Check(ctx)
				for _, check := range report.Checks {
					if check.Status == healthcheck.StatusHealthy {
						c.ui.ok("%s: %s", check.Name, check.Message)
					} else {
						c.ui.warn("%s %s: %s", check.Name, check.Status, check.Message)
					}
				}
				c.ui.println()
				if report.Status == healthcheck.StatusUnhealthy {
					c.ui.warn("Marco is installed but some dependencies are unavailable")
					return nil
				}
				c.ui.ok("Marco is ready to use!")
				return nil
			}, &health)
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the Marco version",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			c.ui.printf("Marco version %s\n", version)
		},
	}
}
