package nutrition

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"text/template"
)

// Enforcement indica quién garantiza la regla: el prompt al generador (pedido)
// o el Validator (re-chequeo numérico, independiente de lo que diga el generador).
type Enforcement string

const (
	EnforcedByPrompt    Enforcement = "prompt"
	EnforcedByValidator Enforcement = "validator"
)

// Rule IDs usados en ValidationResult. Los SR-xxx vienen del catálogo estructural.
const (
	RuleSingleIngredientShare = "SR-001"
	RuleCalciumSource         = "SR-002"
	RuleOrganOrPremix         = "SR-003"
	RuleMinIngredients        = "SR-004"
	RuleMaxIngredients        = "SR-005"
	RuleAnimalProtein         = "SR-006"
	RuleFatCalories           = "SR-007"
	RuleRestrictedCap         = "SR-008"
	RuleGrowthCalcium         = "SR-009"
	RuleMicroCompleteness     = "SR-010"
	RuleCaPRatio              = "SR-011"
	RuleToxin                 = "SR-012"
	RuleAllergen              = "SR-013"
	RuleMealWeight            = "SR-014"

	RuleMacroMin        = "MACRO-MIN"
	RuleMacroMax        = "MACRO-MAX"
	RuleMicroMax        = "MICRO-MAX"
	RuleSupplementFlag  = "SUPPLEMENT-FLAG"
	RuleRecipeEmpty     = "RECIPE-EMPTY"
	RuleClaimProhibited = "CLAIM-PROHIBITED"
)

// StructuralRule vive en las tablas. Description, Check y Prompt son templates
// sobre StructuralLimits y los caps de ingredientes restringidos; se expanden al
// resolver, así el texto siempre coincide con lo que audita el Validator.
type StructuralRule struct {
	RuleID      string      `yaml:"rule_id" json:"rule_id" validate:"required"`
	Description string      `yaml:"description" json:"description" validate:"required"`
	Severity    Severity    `yaml:"severity" json:"severity" validate:"oneof=BLOCK WARN INFO"`
	Check       string      `yaml:"check" json:"check" validate:"required"`
	Enforcement Enforcement `yaml:"enforcement" json:"enforcement" validate:"oneof=prompt validator"`
	// Prompt es la instrucción para el generador; vacío => no va al prompt.
	Prompt string `yaml:"prompt" json:"prompt,omitempty" validate:"required_if=Enforcement prompt"`
}

// StructuralLimits son los umbrales numéricos de las reglas SR.
type StructuralLimits struct {
	MaxSingleIngredientPct float64 `yaml:"max_single_ingredient_pct" json:"max_single_ingredient_pct" validate:"gt=0,lte=100"`
	MaxFatCaloriePct       float64 `yaml:"max_fat_calorie_pct" json:"max_fat_calorie_pct" validate:"gt=0,lte=100"`
	MinIngredients         int     `yaml:"min_ingredients" json:"min_ingredients" validate:"gte=1"`
	MaxIngredients         int     `yaml:"max_ingredients" json:"max_ingredients" validate:"gtefield=MinIngredients"`
	GrowthCalciumMaxG      float64 `yaml:"growth_calcium_max_g" json:"growth_calcium_max_g" validate:"gt=0"`
	MealWeightMinGPerKg    float64 `yaml:"meal_weight_min_g_per_kg" json:"meal_weight_min_g_per_kg" validate:"gt=0"`
	MealWeightMaxGPerKg    float64 `yaml:"meal_weight_max_g_per_kg" json:"meal_weight_max_g_per_kg" validate:"gtefield=MealWeightMinGPerKg"`
}

// knownRuleIDs es el catálogo que el código sabe evaluar o pedir. Las tablas
// deben declararlos todos, ni más ni menos.
var knownRuleIDs = []string{
	RuleSingleIngredientShare, RuleCalciumSource, RuleOrganOrPremix, RuleMinIngredients,
	RuleMaxIngredients, RuleAnimalProtein, RuleFatCalories, RuleRestrictedCap,
	RuleGrowthCalcium, RuleMicroCompleteness, RuleCaPRatio, RuleToxin,
	RuleAllergen, RuleMealWeight,
}

// Toxinas y alérgenos se auditan siempre, las tablas no pueden degradarlos a prompt.
var validatorOnlyRuleIDs = []string{RuleToxin, RuleAllergen}

type ruleTextData struct {
	Limits     StructuralLimits
	Restricted []RestrictedIngredient
}

var ruleTextFuncs = template.FuncMap{
	"num": num,
	"caps": func(rs []RestrictedIngredient) string {
		parts := make([]string, 0, len(rs))
		for _, r := range rs {
			parts = append(parts, fmt.Sprintf("%s %s%%", r.Ingredient, num(r.MaxPctByWeight)))
		}
		return strings.Join(parts, ", ")
	},
}

func renderRuleText(text string, data ruleTextData) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("rule").Funcs(ruleTextFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (t *ReferenceTables) renderRule(r StructuralRule) (StructuralRule, error) {
	data := ruleTextData{Limits: t.Limits, Restricted: t.RestrictedIngredients}
	var err error
	if r.Description, err = renderRuleText(r.Description, data); err != nil {
		return r, fmt.Errorf("%s description: %w", r.RuleID, err)
	}
	if r.Check, err = renderRuleText(r.Check, data); err != nil {
		return r, fmt.Errorf("%s check: %w", r.RuleID, err)
	}
	if r.Prompt, err = renderRuleText(r.Prompt, data); err != nil {
		return r, fmt.Errorf("%s prompt: %w", r.RuleID, err)
	}
	return r, nil
}

// StructuralRules devuelve el catálogo con los textos expandidos contra los
// umbrales actuales. Es una copia nueva en cada llamada.
func (t *ReferenceTables) StructuralRules() []StructuralRule {
	out := make([]StructuralRule, 0, len(t.Rules))
	for _, r := range t.Rules {
		rendered, err := t.renderRule(r)
		if err != nil {
			// LoadTables ya ejecutó cada template; solo pasa con tablas armadas a mano
			rendered = r
		}
		out = append(out, rendered)
	}
	return out
}

// MechanicallyChecked lista los IDs que el Validator re-deriva numéricamente.
func (t *ReferenceTables) MechanicallyChecked() []string {
	return t.rulesBy(EnforcedByValidator)
}

// PromptOnly lista los IDs que solo se le piden al generador.
func (t *ReferenceTables) PromptOnly() []string {
	return t.rulesBy(EnforcedByPrompt)
}

func (t *ReferenceTables) rulesBy(e Enforcement) []string {
	out := make([]string, 0, len(t.Rules))
	for _, r := range t.Rules {
		if r.Enforcement == e {
			out = append(out, r.RuleID)
		}
	}
	return out
}

func (t *ReferenceTables) enforces(ruleID string) bool {
	for _, r := range t.Rules {
		if r.RuleID == ruleID {
			return r.Enforcement == EnforcedByValidator
		}
	}
	return false
}

func (t *ReferenceTables) checkRules() error {
	seen := make(map[string]struct{}, len(t.Rules))
	for _, r := range t.Rules {
		if !slices.Contains(knownRuleIDs, r.RuleID) {
			return fmt.Errorf("unknown structural rule %s", r.RuleID)
		}
		if _, dup := seen[r.RuleID]; dup {
			return fmt.Errorf("duplicate structural rule %s", r.RuleID)
		}
		seen[r.RuleID] = struct{}{}
		if slices.Contains(validatorOnlyRuleIDs, r.RuleID) && r.Enforcement != EnforcedByValidator {
			return fmt.Errorf("structural rule %s must be enforced by validator", r.RuleID)
		}
		if _, err := t.renderRule(r); err != nil {
			return err
		}
	}
	for _, id := range knownRuleIDs {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("missing structural rule %s", id)
		}
	}
	return nil
}
