package nutrition

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const fatKcalPerGram = 9.0

// Validator re-deriva densidades por 1000 kcal desde los ingredientes y audita
// la receta contra el contrato. Es puro: no muta receta ni constraints.
// Umbrales y enforcement de las reglas SR salen de las tablas al validar.
type Validator struct {
	tables *ReferenceTables
	claims []*regexp.Regexp
}

func NewValidator(tables *ReferenceTables) *Validator {
	claims := make([]*regexp.Regexp, 0, len(tables.ProhibitedClaims))
	for _, c := range tables.ProhibitedClaims {
		claims = append(claims, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(c)+`\b`))
	}
	return &Validator{tables: tables, claims: claims}
}

// Validate devuelve todas las violaciones en una pasada. El orden del reporte es
// estable; la aceptación la decide el caller con Accepted().
func (v *Validator) Validate(recipe CandidateRecipe, c RecipeConstraints) []ValidationResult {
	results := make([]ValidationResult, 0)
	names := make([]string, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		names[i] = normalizeName(ing.Name)
	}

	t := v.tables
	lim := t.Limits

	if t.enforces(RuleToxin) {
		results = append(results, checkToxins(recipe, names, c.ForbiddenIngredients)...)
	}
	if t.enforces(RuleAllergen) {
		results = append(results, checkAllergens(recipe, names, c.AllergenExclusions)...)
	}

	totalWeight := TotalWeightG(recipe.Ingredients)
	if totalWeight <= 0 || recipe.TotalKcal <= 0 {
		return append(results, ValidationResult{
			Passed:   false,
			Severity: SeverityBlock,
			RuleID:   RuleRecipeEmpty,
			Message:  fmt.Sprintf("Recipe has no usable weight (%.1f g) or energy (%.1f kcal); nutrient densities cannot be computed. REJECTED.", totalWeight, recipe.TotalKcal),
		})
	}

	totals := NutrientTotals(recipe.Ingredients)
	density := func(nutrient string) float64 {
		return PerThousandKcal(totals[nutrient], recipe.TotalKcal)
	}

	if t.enforces(RuleSingleIngredientShare) {
		results = append(results, checkSingleIngredientShare(recipe, totalWeight, lim.MaxSingleIngredientPct)...)
	}
	if t.enforces(RuleRestrictedCap) {
		results = append(results, v.checkRestricted(recipe, names, totalWeight)...)
	}
	results = append(results, checkMacros(c.Targets.Macros, density)...)

	microResults, gaps := checkMicros(c.Targets.Micros, density)
	if !t.enforces(RuleMicroCompleteness) {
		microResults = slices.DeleteFunc(microResults, func(r ValidationResult) bool {
			return r.RuleID == RuleMicroCompleteness
		})
		gaps = nil
	}
	results = append(results, microResults...)

	if t.enforces(RuleCaPRatio) {
		results = append(results, checkRatios(c.Targets.Ratios, totals)...)
	}
	if t.enforces(RuleFatCalories) {
		results = append(results, checkFatCalories(totals["fat"], recipe.TotalKcal, lim.MaxFatCaloriePct)...)
	}
	if t.enforces(RuleGrowthCalcium) {
		results = append(results, checkGrowthCalcium(c.Targets, density("calcium"), lim.GrowthCalciumMaxG)...)
	}
	if t.enforces(RuleMaxIngredients) {
		results = append(results, checkIngredientCount(len(recipe.Ingredients), lim.MaxIngredients)...)
	}
	if t.enforces(RuleMealWeight) {
		results = append(results, checkMealWeight(c.Targets, totalWeight, recipe.TotalKcal, lim)...)
	}

	if len(gaps) > 0 {
		// no rechaza: marca la receta como "supplementation_needed"
		results = append(results, ValidationResult{
			Passed:   true,
			Severity: SeverityInfo,
			RuleID:   RuleSupplementFlag,
			Message:  v.tables.Disclaimers.Supplementation(gaps),
		})
	}

	return results
}

// Gaps extrae los nutrientes con déficit (WARN SR-010) de un reporte.
func Gaps(results []ValidationResult) []string {
	out := make([]string, 0)
	for _, r := range results {
		if r.RuleID == RuleMicroCompleteness && r.Nutrient != "" {
			out = append(out, r.Nutrient)
		}
	}
	return out
}

// ScanClaims busca claims de marketing prohibidos en el texto generado.
func (v *Validator) ScanClaims(text string) []ValidationResult {
	results := make([]ValidationResult, 0)
	if strings.TrimSpace(text) == "" {
		return results
	}
	for i, re := range v.claims {
		if re.MatchString(text) {
			results = append(results, ValidationResult{
				Passed:   false,
				Severity: SeverityBlock,
				RuleID:   RuleClaimProhibited,
				Message:  fmt.Sprintf("Prohibited claim %q found in recipe text.", v.tables.ProhibitedClaims[i]),
			})
		}
	}
	return results
}

func checkToxins(recipe CandidateRecipe, names []string, forbidden []string) []ValidationResult {
	set := make(map[string]struct{}, len(forbidden))
	for _, f := range forbidden {
		set[f] = struct{}{}
	}

	out := make([]ValidationResult, 0)
	for i, ing := range recipe.Ingredients {
		if _, ok := set[names[i]]; ok {
			out = append(out, ValidationResult{
				Passed:   false,
				Severity: SeverityBlock,
				RuleID:   RuleToxin,
				Message:  fmt.Sprintf("Toxic ingredient %q found in recipe. REJECTED.", ing.Name),
			})
		}
	}
	return out
}

// checkAllergens usa substring a propósito: preferimos falsos positivos.
func checkAllergens(recipe CandidateRecipe, names []string, allergens []string) []ValidationResult {
	out := make([]ValidationResult, 0)
	for i, ing := range recipe.Ingredients {
		for _, a := range allergens {
			if strings.Contains(names[i], a) {
				out = append(out, ValidationResult{
					Passed:   false,
					Severity: SeverityBlock,
					RuleID:   RuleAllergen,
					Message:  fmt.Sprintf("Allergen %q detected in ingredient %q. REJECTED.", a, ing.Name),
				})
			}
		}
	}
	return out
}

func checkSingleIngredientShare(recipe CandidateRecipe, totalWeight, maxPct float64) []ValidationResult {
	out := make([]ValidationResult, 0)
	for _, ing := range recipe.Ingredients {
		pct := ing.WeightG / totalWeight * 100
		if pct > maxPct {
			out = append(out, ValidationResult{
				Passed:        false,
				Severity:      SeverityBlock,
				RuleID:        RuleSingleIngredientShare,
				Message:       fmt.Sprintf("%q is %.1f%% of recipe (max %s%%).", ing.Name, pct, num(maxPct)),
				ActualValue:   floatPtr(pct),
				RequiredValue: floatPtr(maxPct),
			})
		}
	}
	return out
}

func (v *Validator) checkRestricted(recipe CandidateRecipe, names []string, totalWeight float64) []ValidationResult {
	out := make([]ValidationResult, 0)
	for _, r := range v.tables.RestrictedIngredients {
		var grams float64
		for i, ing := range recipe.Ingredients {
			if strings.Contains(names[i], r.Ingredient) {
				grams += ing.WeightG
			}
		}
		pct := grams / totalWeight * 100
		if pct > r.MaxPctByWeight {
			out = append(out, ValidationResult{
				Passed:        false,
				Severity:      SeverityBlock,
				RuleID:        RuleRestrictedCap,
				Message:       fmt.Sprintf("%q at %.1f%% exceeds cap of %s%%. Reason: %s", r.Ingredient, pct, num(r.MaxPctByWeight), r.Reason),
				ActualValue:   floatPtr(pct),
				RequiredValue: floatPtr(r.MaxPctByWeight),
			})
		}
	}
	return out
}

func checkMacros(macros []NutrientTarget, density func(string) float64) []ValidationResult {
	out := make([]ValidationResult, 0)
	for _, m := range macros {
		d := density(m.Nutrient)
		if d < m.Min {
			out = append(out, ValidationResult{
				Passed:        false,
				Severity:      SeverityBlock,
				RuleID:        RuleMacroMin,
				Nutrient:      m.Nutrient,
				Message:       fmt.Sprintf("%s: %.1f %s/1000kcal < minimum %s", m.Nutrient, d, m.Unit, num(m.Min)),
				ActualValue:   floatPtr(d),
				RequiredValue: floatPtr(m.Min),
			})
		}
		if m.Max != nil && d > *m.Max {
			out = append(out, ValidationResult{
				Passed:        false,
				Severity:      SeverityBlock,
				RuleID:        RuleMacroMax,
				Nutrient:      m.Nutrient,
				Message:       fmt.Sprintf("%s: %.1f %s/1000kcal > maximum %s", m.Nutrient, d, m.Unit, num(*m.Max)),
				ActualValue:   floatPtr(d),
				RequiredValue: floatPtr(*m.Max),
			})
		}
	}
	return out
}

// checkMicros: bajo el mínimo es WARN (gap), sobre el máximo es BLOCK (toxicidad).
func checkMicros(micros []NutrientTarget, density func(string) float64) ([]ValidationResult, []string) {
	out := make([]ValidationResult, 0)
	gaps := make([]string, 0)
	for _, m := range micros {
		d := density(m.Nutrient)
		if d < m.Min {
			gaps = append(gaps, m.Nutrient)
			out = append(out, ValidationResult{
				Passed:        false,
				Severity:      SeverityWarn,
				RuleID:        RuleMicroCompleteness,
				Nutrient:      m.Nutrient,
				Message:       fmt.Sprintf("%s: %.2f %s/1000kcal < NRC RA of %s", m.Nutrient, d, m.Unit, num(m.Min)),
				ActualValue:   floatPtr(d),
				RequiredValue: floatPtr(m.Min),
			})
		}
		if m.Max != nil && d > *m.Max {
			out = append(out, ValidationResult{
				Passed:        false,
				Severity:      SeverityBlock,
				RuleID:        RuleMicroMax,
				Nutrient:      m.Nutrient,
				Message:       fmt.Sprintf("%s: %.2f %s/1000kcal EXCEEDS safe upper limit of %s. Toxicity risk.", m.Nutrient, d, m.Unit, num(*m.Max)),
				ActualValue:   floatPtr(d),
				RequiredValue: floatPtr(*m.Max),
			})
		}
	}
	return out, gaps
}

// checkRatios trabaja sobre totales crudos: el factor de kcal se cancela.
func checkRatios(ratios []RatioConstraint, totals map[string]float64) []ValidationResult {
	out := make([]ValidationResult, 0)
	for _, rc := range ratios {
		den := totals[rc.Denominator]
		if den <= 0 {
			continue
		}
		ratio := totals[rc.Numerator] / den
		if ratio >= rc.Min && ratio <= rc.Max {
			continue
		}
		required := rc.Min
		if ratio > rc.Max {
			required = rc.Max
		}
		out = append(out, ValidationResult{
			Passed:        false,
			Severity:      SeverityBlock,
			RuleID:        RuleCaPRatio,
			Message:       fmt.Sprintf("%s: ratio %.2f:1 outside required range %s:1 – %s:1", rc.Name, ratio, num(rc.Min), num(rc.Max)),
			ActualValue:   floatPtr(ratio),
			RequiredValue: floatPtr(required),
		})
	}
	return out
}

func checkFatCalories(fatG, totalKcal, maxPct float64) []ValidationResult {
	pct := fatG * fatKcalPerGram / totalKcal * 100
	if pct <= maxPct {
		return nil
	}
	return []ValidationResult{{
		Passed:        false,
		Severity:      SeverityBlock,
		RuleID:        RuleFatCalories,
		Message:       fmt.Sprintf("Fat provides %.1f%% of calories (max %s%%).", pct, num(maxPct)),
		ActualValue:   floatPtr(pct),
		RequiredValue: floatPtr(maxPct),
	}}
}

// checkGrowthCalcium: maxG en g / 1000 kcal, solo razas large/giant en crecimiento.
func checkGrowthCalcium(t ComputedTargets, calcium, maxG float64) []ValidationResult {
	if !t.LifeStage.IsPuppy() {
		return nil
	}
	if t.BreedSize != BreedSizeLarge && t.BreedSize != BreedSizeGiant {
		return nil
	}
	if calcium <= maxG {
		return nil
	}
	return []ValidationResult{{
		Passed:        false,
		Severity:      SeverityBlock,
		RuleID:        RuleGrowthCalcium,
		Nutrient:      "calcium",
		Message:       fmt.Sprintf("calcium: %.2f g/1000kcal exceeds %s g/1000kcal for %s-breed puppies (skeletal disease risk).", calcium, num(maxG), t.BreedSize),
		ActualValue:   floatPtr(calcium),
		RequiredValue: floatPtr(maxG),
	}}
}

func checkIngredientCount(n, limit int) []ValidationResult {
	if n <= limit {
		return nil
	}
	return []ValidationResult{{
		Passed:        false,
		Severity:      SeverityWarn,
		RuleID:        RuleMaxIngredients,
		Message:       fmt.Sprintf("Recipe has %d ingredients (max %d for home cooking).", n, limit),
		ActualValue:   floatPtr(float64(n)),
		RequiredValue: floatPtr(float64(limit)),
	}}
}

// checkMealWeight escala la receta a la ración diaria y la compara con el IBW.
func checkMealWeight(t ComputedTargets, totalWeight, totalKcal float64, lim StructuralLimits) []ValidationResult {
	if t.DailyKcal <= 0 || t.IdealBodyWeightKg <= 0 {
		return nil
	}
	dailyGrams := totalWeight * t.DailyKcal / totalKcal
	perKg := dailyGrams / t.IdealBodyWeightKg
	if perKg >= lim.MealWeightMinGPerKg && perKg <= lim.MealWeightMaxGPerKg {
		return nil
	}
	required := lim.MealWeightMinGPerKg
	if perKg > lim.MealWeightMaxGPerKg {
		required = lim.MealWeightMaxGPerKg
	}
	return []ValidationResult{{
		Passed:        false,
		Severity:      SeverityWarn,
		RuleID:        RuleMealWeight,
		Message:       fmt.Sprintf("Daily food weight is %.1f g/kg ideal body weight (expected %s-%s); recipe may be implausibly calorie-dense or dilute.", perKg, num(lim.MealWeightMinGPerKg), num(lim.MealWeightMaxGPerKg)),
		ActualValue:   floatPtr(perKg),
		RequiredValue: floatPtr(required),
	}}
}

// normalizeName: "Garlic Powder" -> "garlic_powder".
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
