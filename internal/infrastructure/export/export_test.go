package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/test/testutils"
)

func sampleRecipe() *recipe.Recipe {
	r := testutils.NewSeededRecipeBuilder(11).
		WithName("Autumn Salmon & Squash").
		WithAnalysis(7.8).
		Build()
	r.Ingredients = []recipe.Ingredient{
		{Name: "salmon fillet", Quantity: 2, Unit: "whole"},
		{Name: "butternut squash", Quantity: 0.5, Unit: "kg", Notes: "cubed"},
		{Name: "salt"},
	}
	r.Season = "autumn"
	r.ChefTips = []string{"Pat the salmon dry before searing"}
	r.Variations = []string{"Winter: kale, parsnip"}
	r.PsychonutritionAnalysis.KeyNutrients = []string{"Omega-3 Fatty Acids", "Magnesium"}
	r.PsychonutritionAnalysis.Recommendations = []string{"Serve with brown rice"}
	return r
}

func TestFormatIngredient(t *testing.T) {
	tests := []struct {
		name string
		ing  recipe.Ingredient
		want string
	}{
		{"full", recipe.Ingredient{Name: "squash", Quantity: 0.5, Unit: "kg", Notes: "cubed"}, "0.5 kg squash (cubed)"},
		{"whole number", recipe.Ingredient{Name: "eggs", Quantity: 2}, "2 eggs"},
		{"name only", recipe.Ingredient{Name: "salt"}, "salt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatIngredient(tt.ing))
		})
	}
}

func TestHTMLRendererEmbeddedTemplate(t *testing.T) {
	h, err := NewHTMLRenderer("", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, h.Format())

	out, err := h.Render(context.Background(), sampleRecipe())
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Autumn Salmon &amp; Squash</title>")
	assert.Contains(t, html, "0.5 kg butternut squash (cubed)")
	assert.Contains(t, html, "Season: Autumn")
	assert.Contains(t, html, "7.8 / 10")
	assert.Contains(t, html, "Omega-3 Fatty Acids, Magnesium")
	assert.Contains(t, html, "Pat the salmon dry before searing")
}

func TestHTMLRendererOmitsEmptySections(t *testing.T) {
	h, err := NewHTMLRenderer("", nil)
	require.NoError(t, err)

	r := sampleRecipe()
	r.PsychonutritionAnalysis = nil
	r.ChefTips = nil

	out, err := h.Render(context.Background(), r)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Anxiety support")
	assert.NotContains(t, string(out), "Chef's tips")
}

func TestHTMLRendererTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe.html"),
		[]byte(`<h1>{{.Name}}</h1>{{range .Ingredients}}<i>{{ingredient .}}</i>{{end}}`), 0o644))

	h, err := NewHTMLRenderer(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	out, err := h.Render(context.Background(), sampleRecipe())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("<h1>Autumn Salmon &amp; Squash</h1>")))
	assert.Contains(t, string(out), "<i>salt</i>")
}

func TestHTMLRendererMissingOverrideFallsBack(t *testing.T) {
	h, err := NewHTMLRenderer(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)

	out, err := h.Render(context.Background(), sampleRecipe())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<!DOCTYPE html>")
}

func TestPDFRenderer(t *testing.T) {
	p := NewPDFRenderer(zaptest.NewLogger(t))
	p.now = func() time.Time { return time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC) }
	assert.Equal(t, FormatPDF, p.Format())

	out, err := p.Render(context.Background(), sampleRecipe())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRenderNilRecipe(t *testing.T) {
	h, err := NewHTMLRenderer("", nil)
	require.NoError(t, err)

	_, err = h.Render(context.Background(), nil)
	assert.ErrorIs(t, err, recipe.ErrNoRecipe)
	_, err = NewPDFRenderer(nil).Render(context.Background(), nil)
	assert.ErrorIs(t, err, recipe.ErrNoRecipe)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFRenderer(nil).Render(ctx, sampleRecipe())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRendererAndFormatForPath(t *testing.T) {
	r, err := NewRenderer("PDF", config.ExportConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, r.Format())

	_, err = NewRenderer("docx", config.ExportConfig{}, nil)
	assert.Error(t, err)

	f, err := FormatForPath("out/recipe.HTML")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)

	_, err = FormatForPath("recipe.txt")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "recipe.pdf")

	err := WriteFile(context.Background(), NewPDFRenderer(nil), sampleRecipe(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
