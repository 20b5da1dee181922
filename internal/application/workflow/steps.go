package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	convapp "github.com/alchemorsel/marco/internal/application/conversation"
	"github.com/alchemorsel/marco/internal/application/seasonal"
	"github.com/alchemorsel/marco/internal/domain/conversation"
	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/pkg/errors"
)

// ChefTips are merged into every reviewed recipe.
var ChefTips = []string{
	"Bloom spices in oil for 30 seconds to enhance flavor compounds",
	"Cook magnesium-rich ingredients separately to prevent mineral leaching",
	"Add fermented components at the end to preserve probiotic benefits",
	"Use low-temperature cooking for omega-3 rich ingredients",
	"Finish with acid (lemon) to enhance mineral absorption",
}

// Chef review bumps difficulty to medium once the recipe carries more tips
// than this.
const chefTipDifficultyThreshold = 3

// Number of ingredients the seasonal expert comments on, and how many of
// those comments make it into the reply.
const (
	availabilityChecked  = 5
	availabilityReported = 3
)

func (e *Engine) generateRecipe(ctx context.Context, st *recipe.State) error {
	r, err := e.deps.Generator.GenerateRecipe(ctx, st.Request)
	if err != nil {
		return err
	}
	if r == nil {
		return errors.NewMalformedOutputError(e.deps.Generator.Name(), fmt.Errorf("empty recipe"))
	}
	r.ApplyDefaults()
	if e.deps.Validator != nil {
		if err := e.deps.Validator.Struct(r); err != nil {
			return errors.NewMalformedOutputError(e.deps.Generator.Name(), err)
		}
	}

	st.Recipe = r
	st.Note("Generated recipe: " + r.Name)
	e.logger.Info("Recipe generated",
		zap.String("provider", e.deps.Generator.Name()),
		zap.String("name", r.Name),
		zap.Int("ingredients", len(r.Ingredients)),
	)
	return nil
}

func (e *Engine) analyzePsychonutrition(_ context.Context, st *recipe.State) error {
	if !st.HasRecipe() {
		return recipe.ErrNoRecipe
	}
	analysis := e.deps.Analyzer.Collaborative(st.Recipe)
	st.Recipe.PsychonutritionAnalysis = analysis

	convs := e.deps.Conversations
	convs.EnsureExperts(st)
	convs.UpdateContext(st, conversation.ContextUpdate{
		Topic: "Psychonutrition Analysis",
		Phase: conversation.PhaseAnalysis,
	})

	if analysis.AnxietyScore < 5 {
		convs.AddMessage(st, conversation.RolePsychonutritionist, analysisConcern(analysis), conversation.TypeConcern)
	} else {
		convs.AddMessage(st, conversation.RolePsychonutritionist, analysisApproval(analysis), conversation.TypeApproval)
	}
	convs.AddMessage(st, conversation.RolePsychonutritionist, seasonalityQuestion, conversation.TypeQuestion,
		convapp.To(conversation.RoleSeasonalExpert))

	st.Note(fmt.Sprintf("Psychonutrition analysis complete. Anxiety score: %.1f/10", analysis.AnxietyScore))
	e.logger.Info("Psychonutrition analyzed",
		zap.Float64("anxiety_score", analysis.AnxietyScore),
		zap.Strings("key_nutrients", analysis.KeyNutrients),
	)
	return nil
}

func (e *Engine) improveRecipe(ctx context.Context, st *recipe.State) error {
	if !e.deps.Iterator.ShouldIterate(st) {
		e.logger.Debug("Recipe meets quality standards")
		return nil
	}

	before := 0.0
	if a := st.Analysis(); a != nil {
		before = a.AnxietyScore
	}
	beforeName := st.Recipe.Name

	if _, err := e.deps.Iterator.Improve(st); err != nil {
		return err
	}
	if err := e.analyzePsychonutrition(ctx, st); err != nil {
		return err
	}

	after := st.Analysis().AnxietyScore
	e.deps.Conversations.AddMessage(st, conversation.RolePsychonutritionist,
		improvementSummary(beforeName, before, st.Recipe.Name, after),
		conversation.TypeFinalDecision)

	e.logger.Info("Recipe re-analyzed",
		zap.Float64("before", before),
		zap.Float64("after", after),
	)
	return nil
}

func (e *Engine) optimizeSeasonal(_ context.Context, st *recipe.State) error {
	if !st.HasRecipe() {
		return recipe.ErrNoRecipe
	}
	convs := e.deps.Conversations
	convs.EnsureExperts(st)
	convs.UpdateContext(st, conversation.ContextUpdate{
		Topic: "Seasonal Optimization",
		Phase: conversation.PhaseOptimization,
	})

	season := seasonal.Resolve(st.Request.Season, e.clock())
	e.seasonalExpertResponse(st, season)

	r := st.Recipe
	db := e.deps.Seasonal
	subs := seasonal.Substitute(r, season, st.Request.Region, db)
	subs = append(subs, seasonal.PreservedHeuristics(r, season, db)...)

	if len(subs) == 0 {
		st.Note("Recipe is already optimized for " + season)
		e.logger.Info("No seasonal substitutions", zap.String("season", season))
		return nil
	}
	r.Season = season

	st.SeasonalVariation = &recipe.SeasonalVariation{
		Name:          seasonal.VariationName(r, season),
		Season:        season,
		Region:        st.Request.Region,
		Substitutions: subs,
		Notes:         fmt.Sprintf("Optimized for %s ingredients in %s", season, st.Request.Region),
	}

	var names []string
	for i, sub := range subs {
		if i == 3 {
			break
		}
		names = append(names, sub.Substitute)
	}
	r.Variations = append(r.Variations, fmt.Sprintf("%s: %s", seasonal.Title(season), strings.Join(names, ", ")))

	convs.AddMessage(st, conversation.RoleSeasonalExpert, seasonalAnnouncement(season, subs), conversation.TypeFinalDecision)
	st.Note(fmt.Sprintf("Found %d seasonal substitutions for %s", len(subs), season))
	e.logger.Info("Seasonal variation created",
		zap.String("season", season),
		zap.Int("substitutions", len(subs)),
	)
	return nil
}

// seasonalExpertResponse answers any psychonutritionist question addressed to
// the seasonal expert and always hands a technique question to the chef.
func (e *Engine) seasonalExpertResponse(st *recipe.State, season string) {
	convs := e.deps.Conversations
	asked := false
	for _, msg := range convs.ConversationFor(st, conversation.RoleSeasonalExpert, true) {
		if msg.From == conversation.RolePsychonutritionist && msg.Type == conversation.TypeQuestion {
			asked = true
			break
		}
	}

	if asked {
		avail := seasonal.CheckAvailability(st.Recipe, season, e.deps.Seasonal, availabilityChecked)
		if len(avail) > availabilityReported {
			avail = avail[:availabilityReported]
		}
		convs.AddMessage(st, conversation.RoleSeasonalExpert, seasonalReply(season, avail), conversation.TypeOpinion,
			convapp.To(conversation.RolePsychonutritionist))
	}

	convs.AddMessage(st, conversation.RoleSeasonalExpert, chefTechniqueQuestion(season), conversation.TypeQuestion,
		convapp.To(conversation.RoleChef))
}

func (e *Engine) chefReview(_ context.Context, st *recipe.State) error {
	convs := e.deps.Conversations
	convs.EnsureExperts(st)
	convs.UpdateContext(st, conversation.ContextUpdate{
		Topic: "Culinary Refinement",
		Phase: conversation.PhaseRefinement,
	})

	if !st.HasRecipe() {
		return nil
	}

	var latest *conversation.Message
	for _, msg := range convs.ConversationFor(st, conversation.RoleChef, false) {
		if msg.AddressedTo(conversation.RoleChef) && msg.Type == conversation.TypeQuestion {
			m := msg
			latest = &m
		}
	}
	if latest != nil {
		content := strings.ToLower(latest.Content)
		if strings.Contains(content, "cooking techniques") || strings.Contains(content, "maximize") {
			convs.AddMessage(st, conversation.RoleChef, chefTechniqueReply, conversation.TypeOpinion,
				convapp.ReplyTo(latest.ID))
			convs.AddMessage(st, conversation.RoleChef, chefNutritionQuestion, conversation.TypeQuestion,
				convapp.To(conversation.RolePsychonutritionist))
		}
	}
	convs.AddMessage(st, conversation.RoleChef, culinaryAssessment, conversation.TypeApproval)

	r := st.Recipe
	for _, tip := range ChefTips {
		if !containsString(r.ChefTips, tip) {
			r.ChefTips = append(r.ChefTips, tip)
		}
	}
	if len(r.ChefTips) > chefTipDifficultyThreshold {
		r.Difficulty = recipe.DefaultDifficulty
	}
	e.logger.Info("Chef review complete", zap.Int("chef_tips", len(r.ChefTips)))
	return nil
}

func (e *Engine) expertSummary(_ context.Context, st *recipe.State) error {
	if len(st.Experts) == 0 || len(st.Conversation) == 0 {
		return nil
	}
	convs := e.deps.Conversations
	convs.AddMessage(st, conversation.RolePsychonutritionist, nutritionSignOff(st.Analysis()), conversation.TypeFinalDecision)
	convs.AddMessage(st, conversation.RoleSeasonalExpert, seasonalSignOff, conversation.TypeFinalDecision)
	convs.AddMessage(st, conversation.RoleChef, culinarySignOff, conversation.TypeFinalDecision)

	st.Context.ConsensusReached = true
	st.Context.Phase = conversation.PhaseFinalized
	e.logger.Info("Expert consensus reached", zap.Int("messages", len(st.Conversation)))
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
