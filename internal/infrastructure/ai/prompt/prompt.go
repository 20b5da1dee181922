// Package prompt builds the recipe generation prompts shared by every chat
// backend and parses their replies into recipes.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/pkg/errors"
)

// System is the system prompt for full-size models.
const System = `You are a world-class chef and nutritionist. You create delicious, healthy recipes that taste amazing while being nutritious.

Your recipes should:
- Have clear, precise instructions that anyone can follow
- Use proper cooking techniques and terminology
- Include chef tips for best results
- Provide accurate nutritional information
- Balance flavors and textures like a professional chef
- Be practical and achievable for home cooks

Focus on making food that is both incredibly tasty AND healthy.

CRITICAL: You must respond with ONLY a valid JSON object in the exact format shown below.
Do not include markdown formatting, explanations, or any text outside the JSON.
Start your response with { and end with }.

Required JSON format:
{
  "name": "Recipe Name",
  "description": "Brief description of the dish",
  "prep_time": 15,
  "cook_time": 25,
  "servings": 4,
  "ingredients": [
    {"name": "ingredient name", "quantity": 1.5, "unit": "cups", "notes": "optional"}
  ],
  "instructions": ["Step 1", "Step 2"],
  "nutrition": {"calories": 350, "protein_g": 25.0, "carbs_g": 30.0, "fat_g": 15.0, "fiber_g": 5.0},
  "tags": ["tag1", "tag2"],
  "difficulty": "easy|medium|hard",
  "cuisine": "cuisine type",
  "chef_tips": ["tip"],
  "storage_instructions": "how to store leftovers",
  "variations": ["variation"]
}`

// anxietyRequirement is added to the user prompt of anxiety-focused requests.
const anxietyRequirement = "- IMPORTANT: Include ingredients rich in anxiety-reducing nutrients (omega-3, magnesium, B vitamins, tryptophan, zinc)"

// User builds the user prompt for a request.
func User(req recipe.Request) string {
	restrictions := "None"
	if len(req.DietaryRestrictions) > 0 {
		restrictions = strings.Join(req.DietaryRestrictions, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a chef-quality recipe for: %s\n\n", req.Description)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Number of servings: %d\n", req.Servings)
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", restrictions)
	fmt.Fprintf(&b, "- Geographic region: %s\n", req.Region)
	if req.AnxietyFocus {
		b.WriteString(anxietyRequirement + "\n")
	}
	if recipe.SeasonSpecified(req.Season) {
		fmt.Fprintf(&b, "- Use ingredients that are in season during: %s\n", req.Season)
	}
	b.WriteString(`
Provide a complete recipe with a creative name, an enticing description, precise ingredient
measurements, step-by-step instructions, preparation and cooking times, nutritional information
per serving, chef tips, storage instructions and possible variations.

Output ONLY the JSON object. No markdown, no explanations.`)
	return b.String()
}

// Compact is the short single-message prompt used for small local models.
func Compact(req recipe.Request) string {
	return fmt.Sprintf(`Create a basic recipe for: %s

JSON format:
{
  "name": "recipe name",
  "description": "brief description",
  "prep_time": 15,
  "cook_time": 20,
  "servings": %d,
  "ingredients": [
    {"name": "main ingredient", "quantity": 1, "unit": "piece"}
  ],
  "instructions": ["Cook it", "Serve hot"]
}

Just the JSON:`, req.Description, req.Servings)
}

// ExtractJSON trims code fences and any text around the outermost object.
func ExtractJSON(content string) (string, bool) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// ParseRecipe decodes a model reply into a recipe for req. Any failure is
// reported as malformed output of the named provider.
func ParseRecipe(provider, content string, req recipe.Request) (*recipe.Recipe, error) {
	raw, ok := ExtractJSON(content)
	if !ok {
		return nil, errors.NewMalformedOutputError(provider, fmt.Errorf("no JSON object found in response"))
	}

	var r recipe.Recipe
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, errors.NewMalformedOutputError(provider, err)
	}
	switch {
	case r.Name == "":
		return nil, errors.NewMalformedOutputError(provider, fmt.Errorf("recipe has no name"))
	case len(r.Ingredients) == 0:
		return nil, errors.NewMalformedOutputError(provider, recipe.ErrNoIngredients)
	case len(r.Instructions) == 0:
		return nil, errors.NewMalformedOutputError(provider, recipe.ErrNoInstructions)
	}
	if r.Servings < 1 {
		r.Servings = req.Servings
	}
	r.ApplyDefaults()
	return &r, nil
}

// Truncate shortens s for log fields.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
