package export

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

const templateName = "recipe.html"

//go:embed templates/recipe.html
var templateFS embed.FS

// HTMLRenderer renders recipes through an html/template
type HTMLRenderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

var _ outbound.Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the recipe template. A recipe.html inside
// templatesDir replaces the embedded one.
func NewHTMLRenderer(templatesDir string, logger *zap.Logger) (*HTMLRenderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("html-renderer")

	tmpl := template.New(templateName).Funcs(template.FuncMap{
		"ingredient": formatIngredient,
		"quantity":   formatQuantity,
		"join":       strings.Join,
		"title":      capitalize,
	})

	var err error
	override := ""
	if templatesDir != "" {
		override = filepath.Join(templatesDir, templateName)
		if _, statErr := os.Stat(override); statErr != nil {
			logger.Warn("Template override not found, using embedded template",
				zap.String("path", override))
			override = ""
		}
	}
	if override != "" {
		tmpl, err = tmpl.ParseFiles(override)
	} else {
		tmpl, err = tmpl.ParseFS(templateFS, "templates/"+templateName)
	}
	if err != nil {
		return nil, fmt.Errorf("parse recipe template: %w", err)
	}

	logger.Debug("Recipe template loaded", zap.Bool("override", override != ""))
	return &HTMLRenderer{tmpl: tmpl, logger: logger}, nil
}

// Render executes the template for r
func (h *HTMLRenderer) Render(ctx context.Context, r *recipe.Recipe) ([]byte, error) {
	if r == nil {
		return nil, recipe.ErrNoRecipe
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, templateName, r); err != nil {
		return nil, fmt.Errorf("execute recipe template: %w", err)
	}
	return buf.Bytes(), nil
}

// Format returns "html"
func (h *HTMLRenderer) Format() string {
	return FormatHTML
}
