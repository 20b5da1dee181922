package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	convapp "github.com/alchemorsel/marco/internal/application/conversation"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/inbound"
)

// maxErrorLength truncates provider errors in terminal output
const maxErrorLength = 200

// ui prints styled command output. Colors are dropped when w is not a
// terminal.
type ui struct {
	w io.Writer

	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	accent  lipgloss.Style
	bold    lipgloss.Style
	dim     lipgloss.Style
	arrow   lipgloss.Style
}

func newUI(w io.Writer) *ui {
	r := lipgloss.NewRenderer(w)
	return &ui{
		w:       w,
		title:   r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		failure: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#F7B801")),
		accent:  r.NewStyle().Foreground(lipgloss.Color("#C678DD")).Bold(true),
		bold:    r.NewStyle().Bold(true),
		dim:     r.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
		arrow:   r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
	}
}

func (u *ui) println(a ...interface{}) {
	fmt.Fprintln(u.w, a...)
}

func (u *ui) printf(format string, a ...interface{}) {
	fmt.Fprintf(u.w, format, a...)
}

func (u *ui) heading(s string) {
	u.printf("\n%s\n\n", u.title.Render(s))
}

func (u *ui) ok(format string, a ...interface{}) {
	u.println(u.success.Render("✓ " + fmt.Sprintf(format, a...)))
}

func (u *ui) warn(format string, a ...interface{}) {
	u.println(u.warning.Render("⚠ " + fmt.Sprintf(format, a...)))
}

func (u *ui) fail(label string, err error) {
	u.printf("\n%s %s\n", u.failure.Render("✗ "+label+":"), truncate(err.Error(), maxErrorLength))
}

func (u *ui) step(description string) {
	u.printf("%s %s\n", u.arrow.Render("→"), description)
}

// recipe prints a recipe summary under label
func (u *ui) recipe(label string, r *recipe.Recipe) {
	u.printf("\n%s %s\n\n", u.success.Render("✓ "+label+":"), r.Name)
	if r.Description != "" {
		u.println(u.dim.Render(r.Description))
		u.println()
	}

	if a := r.PsychonutritionAnalysis; a != nil {
		u.printf("%s %s/10\n", u.accent.Render("Anxiety Reduction Score:"), formatScore(a.AnxietyScore))
		nutrients := a.KeyNutrients
		if len(nutrients) > 3 {
			nutrients = nutrients[:3]
		}
		u.println(u.dim.Render("Key nutrients: " + strings.Join(nutrients, ", ")))
		u.println()
	}

	u.println(u.bold.Render("Ingredients:"))
	for _, ing := range r.Ingredients {
		u.printf("  • %s\n", strings.TrimSpace(fmt.Sprintf("%s %s %s",
			formatQuantity(ing.Quantity), ing.Unit, ing.Name)))
	}

	u.printf("\n%s %d min\n", u.bold.Render("Preparation time:"), r.PrepTime)
	u.printf("%s %d min\n", u.bold.Render("Cooking time:"), r.CookTime)
	u.printf("%s %d\n\n", u.bold.Render("Servings:"), r.Servings)
}

// stateErrors lists the non-fatal step failures of a run
func (u *ui) stateErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	u.println(u.warning.Render("Some steps did not complete:"))
	for _, e := range errs {
		u.printf("  - %s\n", e)
	}
	u.println()
}

// conversation prints who took part and the last key messages
func (u *ui) conversation(st *recipe.State) {
	if len(st.Conversation) == 0 {
		return
	}
	s := convapp.Summarize(st)
	u.println(u.bold.Render("Expert collaboration:"))
	u.printf("  Participants: %s\n", strings.Join(s.Participants, ", "))
	u.printf("  Messages: %d, phase: %s\n", s.TotalMessages, s.Phase)
	for _, msg := range s.KeyMessages {
		u.printf("  %s %s\n",
			u.dim.Render(fmt.Sprintf("[%s] %s:", msg.Type, convapp.ExpertName(st, msg.From))),
			truncate(msg.Content, 120))
	}
	u.println()
}

func (u *ui) substitutions(v *recipe.SeasonalVariation) {
	u.printf("%s %s\n\n", u.success.Render("✓ Seasonal variation:"), v.Name)
	if len(v.Substitutions) == 0 {
		u.println(u.dim.Render("No substitutions needed for this season."))
		return
	}
	rows := make([][]string, 0, len(v.Substitutions))
	for _, sub := range v.Substitutions {
		rows = append(rows, []string{sub.Original, sub.Substitute, sub.Reason})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Original", "Substitute", "Reason").
		Rows(rows...)
	u.println(u.bold.Render("Ingredient Substitutions"))
	u.println(t.String())
	if v.Notes != "" {
		u.println(u.dim.Render(v.Notes))
	}
}

func (u *ui) analysis(a *recipe.PsychonutritionAnalysis) {
	u.printf("%s %s/10\n", u.accent.Render("Anxiety Reduction Score:"), formatScore(a.AnxietyScore))
	u.list("Key nutrients", a.KeyNutrients)
	u.list("Mechanisms", a.Mechanisms)
	u.list("Recommendations", a.Recommendations)
	u.list("Cautions", a.Cautions)
}

func (u *ui) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	u.printf("\n%s\n", u.bold.Render(title+":"))
	for _, it := range items {
		u.printf("  • %s\n", it)
	}
}

func (u *ui) recipeTable(list *inbound.RecipeList) {
	rows := make([][]string, 0, len(list.Recipes))
	for _, dto := range list.Recipes {
		score := "-"
		if a := dto.Recipe.PsychonutritionAnalysis; a != nil {
			score = formatScore(a.AnxietyScore)
		}
		rows = append(rows, []string{
			fmt.Sprint(dto.ID),
			dto.Recipe.Name,
			score,
			dto.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Score", "Created").
		Rows(rows...)
	u.println(t.String())
	u.println(u.dim.Render(fmt.Sprintf("Page %d, %d of %d recipes", list.Page, len(list.Recipes), list.Total)))
}

func formatScore(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

func formatQuantity(q float64) string {
	if q == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", q), "0"), ".")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
