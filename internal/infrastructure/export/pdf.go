package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

const (
	pdfFont       = "Helvetica"
	pdfLineHeight = 6.0
	pdfMargin     = 18.0
)

// PDFRenderer lays recipes out on A4 pages
type PDFRenderer struct {
	logger *zap.Logger
	now    func() time.Time
}

var _ outbound.Renderer = (*PDFRenderer)(nil)

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFRenderer{logger: logger.Named("pdf-renderer"), now: time.Now}
}

// Render produces a PDF document for r
func (p *PDFRenderer) Render(ctx context.Context, r *recipe.Recipe) ([]byte, error) {
	if r == nil {
		return nil, recipe.ErrNoRecipe
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(r.Name, true)
	pdf.SetCreator("marco", true)
	pdf.SetCreationDate(p.now())
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	w := &pdfWriter{pdf: pdf, tr: tr}
	w.title(r.Name)
	if r.Description != "" {
		w.italic(r.Description)
	}
	w.meta(r)

	w.heading("Ingredients")
	for _, ing := range r.Ingredients {
		w.bullet(formatIngredient(ing))
	}

	w.heading("Instructions")
	for i, step := range r.Instructions {
		w.numbered(i+1, step)
	}

	if n := r.Nutrition; n != nil {
		w.heading("Nutrition per serving")
		w.paragraph(fmt.Sprintf("%d kcal, protein %s g, carbs %s g, fat %s g, fiber %s g",
			n.Calories, formatQuantity(n.ProteinG), formatQuantity(n.CarbsG),
			formatQuantity(n.FatG), formatQuantity(n.FiberG)))
	}

	if a := r.PsychonutritionAnalysis; a != nil {
		w.heading(fmt.Sprintf("Anxiety support: %.1f / 10", a.AnxietyScore))
		if len(a.KeyNutrients) > 0 {
			w.paragraph("Key nutrients: " + strings.Join(a.KeyNutrients, ", "))
		}
		for _, m := range a.Mechanisms {
			w.bullet(m)
		}
		for _, rec := range a.Recommendations {
			w.bullet(rec)
		}
		for _, c := range a.Cautions {
			w.bullet("Caution: " + c)
		}
	}

	w.list("Chef's tips", r.ChefTips)
	w.list("Variations", r.Variations)
	if r.StorageInstructions != "" {
		w.heading("Storage")
		w.paragraph(r.StorageInstructions)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	p.logger.Debug("Rendered recipe PDF",
		zap.String("recipe", r.Name),
		zap.Int("pages", pdf.PageCount()),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Format returns "pdf"
func (p *PDFRenderer) Format() string {
	return FormatPDF
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) title(s string) {
	w.pdf.SetFont(pdfFont, "B", 20)
	w.pdf.SetTextColor(122, 62, 29)
	w.pdf.MultiCell(0, 9, w.tr(s), "", "L", false)
	w.pdf.SetTextColor(45, 42, 38)
	w.pdf.Ln(1)
}

func (w *pdfWriter) italic(s string) {
	w.pdf.SetFont(pdfFont, "I", 11)
	w.pdf.MultiCell(0, pdfLineHeight, w.tr(s), "", "L", false)
	w.pdf.Ln(2)
}

func (w *pdfWriter) meta(r *recipe.Recipe) {
	parts := []string{
		fmt.Sprintf("Prep %d min", r.PrepTime),
		fmt.Sprintf("Cook %d min", r.CookTime),
		fmt.Sprintf("Serves %d", r.Servings),
		"Difficulty " + r.Difficulty,
	}
	if r.Cuisine != "" {
		parts = append(parts, "Cuisine "+r.Cuisine)
	}
	if r.Season != "" {
		parts = append(parts, "Season "+capitalize(r.Season))
	}
	w.pdf.SetFont(pdfFont, "", 10)
	w.pdf.MultiCell(0, pdfLineHeight, w.tr(strings.Join(parts, "  |  ")), "TB", "L", false)
	if len(r.Tags) > 0 {
		w.pdf.MultiCell(0, pdfLineHeight, w.tr("Tags: "+strings.Join(r.Tags, ", ")), "", "L", false)
	}
}

func (w *pdfWriter) heading(s string) {
	w.pdf.Ln(3)
	w.pdf.SetFont(pdfFont, "B", 14)
	w.pdf.MultiCell(0, 8, w.tr(s), "", "L", false)
	w.pdf.SetFont(pdfFont, "", 11)
}

func (w *pdfWriter) paragraph(s string) {
	w.pdf.MultiCell(0, pdfLineHeight, w.tr(s), "", "L", false)
}

func (w *pdfWriter) bullet(s string) {
	w.prefixed("-", s)
}

func (w *pdfWriter) numbered(n int, s string) {
	w.prefixed(fmt.Sprintf("%d.", n), s)
}

func (w *pdfWriter) prefixed(prefix, s string) {
	w.pdf.CellFormat(8, pdfLineHeight, prefix, "", 0, "R", false, 0, "")
	w.pdf.MultiCell(0, pdfLineHeight, w.tr(s), "", "L", false)
}

func (w *pdfWriter) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	w.heading(title)
	for _, it := range items {
		w.bullet(it)
	}
}
