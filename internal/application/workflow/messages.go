package workflow

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/marco/internal/application/seasonal"
	"github.com/alchemorsel/marco/internal/domain/recipe"
)

const seasonalityQuestion = `Marco, from a seasonal perspective, are these ingredients at their peak right now?
I want to make sure we're getting maximum nutrient density from fresh, in-season produce.`

func analysisConcern(a *recipe.PsychonutritionAnalysis) string {
	key := a.KeyNutrients
	if len(key) > 3 {
		key = key[:3]
	}
	return fmt.Sprintf(`I've analyzed this recipe and I have some concerns about its anxiety-reducing potential.

The current anxiety score is only %.1f/10. While the recipe includes %s,
I think we could significantly improve this by considering some modifications:

1. Could we add more omega-3 rich ingredients like walnuts or chia seeds?
2. The magnesium content could be boosted with dark leafy greens or pumpkin seeds
3. For better GABA support, fermented ingredients would be beneficial

What do you think, Chef Isabella and Marco? Can we enhance this nutritionally while maintaining the culinary integrity?`,
		a.AnxietyScore, strings.Join(key, ", "))
}

func analysisApproval(a *recipe.PsychonutritionAnalysis) string {
	mechanisms := a.Mechanisms
	if len(mechanisms) > 3 {
		mechanisms = mechanisms[:3]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Excellent work on this recipe! I'm pleased to see an anxiety score of %.1f/10.\n\n", a.AnxietyScore)
	fmt.Fprintf(&b, "The recipe effectively incorporates %s which work through these mechanisms:\n", strings.Join(a.KeyNutrients, ", "))
	for _, m := range mechanisms {
		fmt.Fprintf(&b, "• %s\n", m)
	}
	b.WriteString(`
This combination should help users feel more balanced and less anxious. These nutrients work together
to support the gut-brain axis and neurotransmitter production.

I give this my full approval from a psychonutrition standpoint!`)
	return b.String()
}

func improvementSummary(beforeName string, before float64, afterName string, after float64) string {
	delta := after - before
	sign := ""
	if delta > 0 {
		sign = "+"
	}
	return fmt.Sprintf(`Recipe Improvement Summary!

**Before:** %s - Anxiety Score: %.1f/10
**After:** %s - Anxiety Score: %.1f/10
**Improvement:** %s%.1f points

The collaborative discussion has led to a significantly better recipe for anxiety management!`,
		beforeName, before, afterName, after, sign, delta)
}

func seasonalReply(season string, avail []seasonal.Availability) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Maya, great question about seasonal nutrient density!\n\n")
	fmt.Fprintf(&b, "Looking at this recipe for %s, I have some insights:\n\n", season)
	fmt.Fprintf(&b, "**Current Season Analysis (%s):**\n", seasonal.Title(season))
	for _, a := range avail {
		if a.InSeason {
			fmt.Fprintf(&b, "✅ %s - Perfect timing! Peak season now\n", a.Ingredient)
		} else {
			fmt.Fprintf(&b, "⚠️ %s - Out of season, consider alternatives\n", a.Ingredient)
		}
	}
	b.WriteString(`
**My Seasonal Recommendations:**
• For maximum omega-3 absorption, fresh walnuts are at their best right now
• Winter greens like kale and spinach have concentrated nutrients from slower growth
• If we need magnesium, I suggest seasonal pumpkin seeds, stored at peak quality

Should we make any seasonal swaps to boost the nutritional profile while working with nature's timing?`)
	return b.String()
}

func chefTechniqueQuestion(season string) string {
	return fmt.Sprintf(`Isabella, from a seasonal cooking perspective:

The %s season affects our cooking methods too. These ingredients will have different moisture content
and cooking times than their off-season versions.

• Root vegetables are denser and sweeter now and will caramelize beautifully
• Leafy greens are more robust and can handle higher heat
• Stored nuts have concentrated oils

What cooking techniques would you recommend to maximize both flavor and nutritional benefits?`, season)
}

func seasonalAnnouncement(season string, subs []recipe.IngredientSubstitution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I've created a %s variation of this recipe!\n\n**Seasonal Optimizations:**\n", season)
	for _, s := range subs {
		fmt.Fprintf(&b, "• %s: %s → %s\n", s.Reason, s.Original, s.Substitute)
	}
	b.WriteString("\nThis ensures we're working with ingredients at their peak quality and supporting local growing cycles.")
	return b.String()
}

const chefTechniqueReply = `Marco, excellent point about seasonal cooking methods!

For maximizing both nutrition and flavor in this recipe, I recommend:

**Cooking Technique Optimization:**
• **Low-temperature roasting** (325°F) for nuts preserves omega-3 oils while developing flavor
• **Quick sauté** for leafy greens maintains vitamin content
• **Gentle steaming** for vegetables preserves water-soluble B-vitamins

**Technical Notes:**
• Cook magnesium-rich ingredients separately to prevent mineral leaching
• Add fermented components at the end to preserve probiotic benefits
• Use acidic ingredients (lemon, vinegar) to enhance mineral absorption

Maya, from a nutritional standpoint, does this cooking approach align with maximizing the anxiety-reducing compounds?`

const chefNutritionQuestion = `Dr. Chen, I want to ensure my cooking methods enhance rather than diminish the anxiety-reducing properties.

Are there specific temperature ranges or cooking times I should avoid to preserve the bioactive compounds?
Also, should certain ingredients be combined in specific ways for better absorption?`

const culinaryAssessment = `Looking at this recipe from a purely culinary perspective:

**Technique Assessment:**
• The flavor profile balances umami, acid and natural sweetness well
• Cooking times are appropriate for ingredient sizes
• The progression from aromatics to proteins to vegetables follows classic French technique

**Potential Refinements:**
• Consider blooming spices in oil first to enhance flavor compounds
• A final acid touch (lemon zest) could brighten the dish and aid mineral absorption
• Temperature control will be crucial for the delicate anxiety-reducing compounds

I'm confident this recipe achieves both culinary excellence and therapeutic benefits!`

func nutritionSignOff(a *recipe.PsychonutritionAnalysis) string {
	score := "not assessed"
	if a != nil {
		score = fmt.Sprintf("%.1f/10", a.AnxietyScore)
	}
	return fmt.Sprintf(`After our collaborative discussion, I'm pleased to give this recipe my final approval!

**Final Nutritional Assessment:**
✅ Anxiety reduction score: %s
✅ Key compounds optimized for bioavailability
✅ Cooking methods preserve therapeutic properties
✅ Seasonal ingredients at peak nutrient density

**My Prescription:** Enjoy this meal mindfully, ideally in good company.`, score)
}

const seasonalSignOff = `From a seasonal and sustainability perspective, this recipe is aligned with natural cycles!

**Seasonal Sustainability Score:** 5/5

We're supporting local farmers by using seasonal produce and getting maximum flavor and nutrition
from peak-season ingredients.`

const culinarySignOff = `Mes amis, this has been a beautiful collaboration!

**Culinary Excellence:** ⭐⭐⭐⭐⭐ (5/5 stars)

Each cooking method is optimized for both flavor and nutrition, with textures, flavors and nutrients in harmony.
I would be proud to serve this in my restaurant.

**Chef's Final Verdict:** Magnifique!`
