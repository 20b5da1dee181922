package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/application/workflow"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/infrastructure/container"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	apperrors "github.com/alchemorsel/marco/pkg/errors"
)

type generateOptions struct {
	anxietyFocus bool
	restrictions string
	season       string
	region       string
	servings     int
	output       string
	pdf          string
	html         string
	noSave       bool
}

func (c *cli) generateCmd() *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate a chef-quality healthy recipe with psychonutrition analysis",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("no-anxiety-focus") {
				opts.anxietyFocus = false
			}
			return c.generate(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.anxietyFocus, "anxiety-focus", true, "optimize for anxiety reduction")
	f.Bool("no-anxiety-focus", false, "do not optimize for anxiety reduction")
	f.StringVar(&opts.restrictions, "restrictions", "", "dietary restrictions (comma-separated)")
	f.StringVar(&opts.season, "season", "", "season for ingredients (winter, spring, summer, fall, auto)")
	f.StringVar(&opts.region, "region", "", "geographic region (europe, north-america, asia)")
	f.IntVar(&opts.servings, "servings", recipe.DefaultServings, "number of servings")
	f.StringVarP(&opts.output, "output", "o", "", "save recipe to a JSON or YAML file")
	f.StringVar(&opts.pdf, "pdf", "", "export recipe to a PDF file")
	f.StringVar(&opts.html, "html", "", "export recipe to an HTML file")
	f.BoolVar(&opts.noSave, "no-save", false, "do not store the recipe in the database")
	cmd.MarkFlagsMutuallyExclusive("anxiety-focus", "no-anxiety-focus")
	return cmd
}

func (c *cli) buildRequest(description string, opts generateOptions) recipe.Request {
	req := recipe.NewRequest(description)
	req.AnxietyFocus = opts.anxietyFocus
	req.Servings = opts.servings
	if opts.restrictions != "" {
		for _, r := range strings.Split(opts.restrictions, ",") {
			if r = strings.TrimSpace(r); r != "" {
				req.DietaryRestrictions = append(req.DietaryRestrictions, r)
			}
		}
	}
	req.Season = firstNonEmpty(opts.season, c.cfg.Defaults.Season, recipe.SeasonAuto)
	req.Region = firstNonEmpty(opts.region, c.cfg.Defaults.Region, recipe.DefaultRegion)
	return req
}

func (c *cli) generate(ctx context.Context, description string, opts generateOptions) error {
	req := c.buildRequest(description, opts)
	c.ui.heading("Generating recipe: " + description)
	c.ui.println(c.ui.dim.Render("Starting recipe generation workflow..."))
	c.ui.println()

	progress := workflow.ObserverFuncs{
		OnStepStarted: func(step string) { c.ui.step(workflow.Describe(step)) },
	}

	var svc inbound.RecipeService
	return c.run(ctx, container.Options{Observers: []workflow.Observer{progress}}, func(ctx context.Context) error {
		res, err := svc.Generate(ctx, inbound.GenerateRecipeCommand{Request: req, Save: !opts.noSave})
		if res == nil || res.Recipe() == nil {
			if err == nil {
				err = apperrors.NewGenerationError(c.cfg.AI.Provider, recipe.ErrNoRecipe)
			}
			c.ui.fail("Error during recipe generation", err)
			c.malformedOutputHint(err)
			return &reportedError{err: err}
		}

		r := res.Recipe()
		c.ui.recipe("Recipe generated", r)
		c.ui.stateErrors(res.State.Errors)
		c.ui.conversation(res.State)

		if opts.output != "" {
			if werr := saveRecipe(opts.output, r); werr != nil {
				c.ui.fail("Saving recipe failed", werr)
			} else {
				c.ui.ok("Saved to %s", opts.output)
			}
		}
		for _, path := range []string{opts.pdf, opts.html} {
			if path == "" {
				continue
			}
			if xerr := c.exportTo(ctx, svc, r, path); xerr != nil {
				c.ui.fail("Export failed", xerr)
			} else {
				c.ui.ok("Exported to %s", path)
			}
		}

		if err != nil {
			// the recipe was generated but could not be stored
			c.ui.warn("Recipe could not be saved to the database")
			c.log.Error("Failed to save recipe", zap.Error(err))
			return &reportedError{err: err}
		}
		if res.RecipeID != 0 {
			c.ui.println(c.ui.dim.Render(fmt.Sprintf("Stored as recipe #%d", res.RecipeID)))
		}
		return nil
	}, &svc)
}

// malformedOutputHint suggests a larger model when a local Ollama model
// could not produce structured output
func (c *cli) malformedOutputHint(err error) {
	if c.cfg.AI.Provider != config.ProviderOllama {
		return
	}
	if !apperrors.Is(err, apperrors.CodeMalformedOutput) && !strings.Contains(err.Error(), "Invalid json output") {
		return
	}
	u := c.ui
	u.printf("\n%s The model '%s' may struggle with structured JSON output.\n",
		u.warning.Render("Tip:"), c.cfg.AI.OllamaModel)
	u.println(u.warning.Render("Try using a larger model like 'qwen2.5:7b' or 'llama3.2:3b' for better results:"))
	u.println("  ollama pull qwen2.5:7b")
	u.println("  # or")
	u.println("  ollama pull llama3.2:3b")
	u.println("\nThen update the model in config:")
	u.println("  export OLLAMA_MODEL=qwen2.5:7b")
	u.println("  # or set in .env file: OLLAMA_MODEL=qwen2.5:7b")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
