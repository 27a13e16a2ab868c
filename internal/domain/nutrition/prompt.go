package nutrition

import (
	"bytes"
	"fmt"
	"math"
	"text/template"
)

// Instrucciones de salida que van después de las reglas estructurales.
var promptOutputLines = []string{
	"Output exact gram weights for every ingredient.",
	"Output a nutrition panel with: kcal, protein_g, fat_g, fiber_g, calcium_g, phosphorus_g, ca_p_ratio, and all tracked micronutrients.",
	"If any micronutrient cannot meet the minimum target, explicitly state which ones and recommend supplementation.",
}

const promptTemplate = `
<canine-recipe-constraints>
  <energy>
    <daily_kcal_target>{{num .Targets.DailyKcal}}</daily_kcal_target>
    <meals_per_day>{{.Targets.MealsPerDay}}</meals_per_day>
    <kcal_per_meal>{{kcalPerMeal .Targets}}</kcal_per_meal>
  </energy>

  <context>
    <life_stage>{{.Targets.LifeStage}}</life_stage>
    <ideal_body_weight_kg>{{printf "%.1f" .Targets.IdealBodyWeightKg}}</ideal_body_weight_kg>
    <weight_goal>{{.Targets.WeightGoal}}</weight_goal>
  </context>

  <macronutrient_targets unit="per 1000 kcal ME">
{{- range .Targets.Macros}}
    <{{.Nutrient}} min="{{num .Min}}" max="{{maxOf .Max}}" unit="{{.Unit}}" />
{{- end}}
  </macronutrient_targets>

  <micronutrient_targets unit="per 1000 kcal ME">
{{- range .Targets.Micros}}
    <{{.Nutrient}} min="{{num .Min}}" max="{{maxOf .Max}}" unit="{{.Unit}}" />
{{- end}}
  </micronutrient_targets>

  <ratio_constraints>
{{- range .Targets.Ratios}}
    <ratio name="{{.Name}}" min="{{num .Min}}" max="{{num .Max}}" />
{{- end}}
  </ratio_constraints>

  <forbidden_ingredients>
{{- range .ForbiddenIngredients}}
    <ingredient>{{.}}</ingredient>
{{- end}}
  </forbidden_ingredients>

  <allergen_exclusions>
{{- range .AllergenExclusions}}
    <allergen>{{.}}</allergen>
{{- end}}
  </allergen_exclusions>

  <structural_rules>
{{- range .StructuralRules}}{{if .Prompt}}
    - {{.Prompt}}
{{- end}}{{end}}
{{- range outputLines}}
    - {{.}}
{{- end}}
  </structural_rules>

  <output_format>
    Return a JSON object with this structure:
    {
      "recipe_name": "string",
      "servings_per_day": number,
      "ingredients": [
        { "name": "string", "weight_g": number, "notes": "string (optional: e.g. 'raw', 'cooked', 'ground')" }
      ],
      "prep_instructions": ["string"],
      "nutrition_per_serving": {
        "kcal": number,
        "protein_g": number,
        "fat_g": number,
        "fiber_g": number,
        "calcium_g": number,
        "phosphorus_g": number,
        "ca_p_ratio": number
      },
      "nutrition_daily_total": { },
      "pct_nrc_ra_met": { },
      "completeness": "complete" | "supplementation_needed",
      "gaps": ["nutrient names where < 100% NRC RA"],
      "supplement_recommendations": ["string"]
    }
  </output_format>
</canine-recipe-constraints>`

var promptTmpl = template.Must(template.New("constraints").Funcs(template.FuncMap{
	"num": num,
	"maxOf": func(p *float64) string {
		if p == nil {
			return "none"
		}
		return num(*p)
	},
	"kcalPerMeal": func(t ComputedTargets) string {
		if t.MealsPerDay <= 0 {
			return num(math.Round(t.DailyKcal))
		}
		return num(math.Round(t.DailyKcal / float64(t.MealsPerDay)))
	},
	"outputLines": func() []string { return promptOutputLines },
}).Parse(promptTemplate))

// RenderPromptConstraints serializa el contrato como bloque de instrucciones
// para el generador LLM.
func RenderPromptConstraints(c RecipeConstraints) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render prompt constraints: %w", err)
	}
	return buf.String(), nil
}
