// Package export renders recipes into shareable documents
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// Supported formats
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// NewRenderer returns the renderer for a format name
func NewRenderer(format string, cfg config.ExportConfig, logger *zap.Logger) (outbound.Renderer, error) {
	switch strings.ToLower(format) {
	case FormatHTML:
		return NewHTMLRenderer(cfg.TemplatesDir, logger)
	case FormatPDF:
		return NewPDFRenderer(logger), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// FormatForPath infers the export format from a file extension
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("cannot infer export format from %q (use .pdf or .html)", path)
	}
}

// WriteFile renders r and writes the document to path
func WriteFile(ctx context.Context, renderer outbound.Renderer, r *recipe.Recipe, path string) error {
	if r == nil {
		return recipe.ErrNoRecipe
	}
	data, err := renderer.Render(ctx, r)
	if err != nil {
		return fmt.Errorf("render %s: %w", renderer.Format(), err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatQuantity(q float64) string {
	if q == 0 {
		return ""
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatIngredient(i recipe.Ingredient) string {
	parts := make([]string, 0, 3)
	if q := formatQuantity(i.Quantity); q != "" {
		parts = append(parts, q)
	}
	if i.Unit != "" {
		parts = append(parts, i.Unit)
	}
	parts = append(parts, i.Name)
	line := strings.Join(parts, " ")
	if i.Notes != "" {
		line += " (" + i.Notes + ")"
	}
	return line
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
