package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/container"
	"github.com/alchemorsel/marco/internal/infrastructure/export"
	"github.com/alchemorsel/marco/internal/ports/inbound"
	apperrors "github.com/alchemorsel/marco/pkg/errors"
)

func (c *cli) variationsCmd() *cobra.Command {
	var season, region string
	cmd := &cobra.Command{
		Use:   "variations <recipe-file>",
		Short: "Generate seasonal variations of an existing recipe",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRecipe(args[0])
			if err != nil {
				return err
			}
			c.ui.heading("Generating seasonal variations")
			region = firstNonEmpty(region, c.cfg.Defaults.Region, recipe.DefaultRegion)

			var svc inbound.RecipeService
			return c.run(cmd.Context(), container.Options{}, func(ctx context.Context) error {
				v, err := svc.Variations(ctx, r, season, region)
				if err != nil {
					return err
				}
				c.ui.substitutions(v)
				return nil
			}, &svc)
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "season (winter, spring, summer, fall)")
	cmd.Flags().StringVar(&region, "region", "", "geographic region")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "export <recipe-file>",
		Aliases: []string{"export-pdf"},
		Short:   "Export a recipe to a PDF or HTML document",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRecipe(args[0])
			if err != nil {
				return err
			}
			c.ui.heading("Exporting " + r.Name)

			var svc inbound.RecipeService
			return c.run(cmd.Context(), container.Options{}, func(ctx context.Context) error {
				if err := c.exportTo(ctx, svc, r, output); err != nil {
					return err
				}
				c.ui.ok("Exported to %s", output)
				return nil
			}, &svc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "recipe.pdf", "output path, .pdf or .html")
	return cmd
}

// exportTo renders r in the format implied by path and writes it there
func (c *cli) exportTo(ctx context.Context, svc inbound.RecipeService, r *recipe.Recipe, path string) error {
	format, err := export.FormatForPath(path)
	if err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}
	doc, err := svc.Export(ctx, r, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (c *cli) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <recipe-file>",
		Short: "Score a recipe for anxiety support",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRecipe(args[0])
			if err != nil {
				return err
			}
			c.ui.heading("Psychonutrition analysis: " + r.Name)

			var svc inbound.RecipeService
			return c.run(cmd.Context(), container.Options{}, func(ctx context.Context) error {
				a, err := svc.Analyze(ctx, r)
				if err != nil {
					return err
				}
				c.ui.analysis(a)
				return nil
			}, &svc)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	params := inbound.PaginationParams{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored recipes, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc inbound.RecipeService
			return c.run(cmd.Context(), container.Options{}, func(ctx context.Context) error {
				list, err := svc.ListRecipes(ctx, params)
				if err != nil {
					return err
				}
				if list.Total == 0 {
					c.ui.println(c.ui.dim.Render("No recipes stored yet. Run `marco generate` to create one."))
					return nil
				}
				c.ui.recipeTable(list)
				return nil
			}, &svc)
		},
	}
	cmd.Flags().IntVar(&params.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 20, "recipes per page")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored recipe",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return apperrors.NewBadRequestError(fmt.Sprintf("invalid recipe id %q", args[0]))
			}

			var svc inbound.RecipeService
			return c.run(cmd.Context(), container.Options{}, func(ctx context.Context) error {
				dto, err := svc.GetRecipe(ctx, uint(id))
				if err != nil {
					return err
				}
				c.ui.recipe(fmt.Sprintf("Recipe #%d", dto.ID), dto.Recipe)
				if output != "" {
					if err := saveRecipe(output, dto.Recipe); err != nil {
						return err
					}
					c.ui.ok("Saved to %s", output)
				}
				return nil
			}, &svc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "save recipe to a JSON or YAML file")
	return cmd
}
