package nutrition

import (
	"fmt"
	"math"
	"strings"
)

const (
	sourceNRC    = "NRC 2006 RA"
	sourceFEDIAF = "FEDIAF 2024"

	keyProteinMax = "protein_g_max_per_1000kcal"
	keyFatMax     = "fat_g_max_per_1000kcal"
	keyFiberMin   = "fiber_g_min_per_1000kcal"
)

// OverridePrecedence define cómo se combinan overrides de varias condiciones
// que tocan el mismo nutriente.
type OverridePrecedence string

const (
	// PrecedenceScanOrder aplica las condiciones en el orden del perfil:
	// para macros gana el último override, para micros el primer max corta la búsqueda.
	PrecedenceScanOrder OverridePrecedence = "scan_order"
	// PrecedenceMostRestrictive toma el max más bajo y el min más alto entre todas.
	PrecedenceMostRestrictive OverridePrecedence = "most_restrictive"
)

func ParsePrecedence(s string) (OverridePrecedence, error) {
	switch OverridePrecedence(strings.ToLower(strings.TrimSpace(s))) {
	case PrecedenceScanOrder, "":
		return PrecedenceScanOrder, nil
	case PrecedenceMostRestrictive:
		return PrecedenceMostRestrictive, nil
	default:
		return "", fmt.Errorf("unknown override precedence %q", s)
	}
}

// Resolver es puro: mismas entradas => mismas RecipeConstraints.
type Resolver struct {
	tables     *ReferenceTables
	precedence OverridePrecedence
}

func NewResolver(tables *ReferenceTables, precedence OverridePrecedence) *Resolver {
	if precedence == "" {
		precedence = PrecedenceScanOrder
	}
	return &Resolver{tables: tables, precedence: precedence}
}

func (r *Resolver) Tables() *ReferenceTables { return r.tables }

func (r *Resolver) Precedence() OverridePrecedence { return r.precedence }

// Resolve arma el contrato de nutrientes. Asume input validado (ValidateInput).
func (r *Resolver) Resolve(p DogProfile, e EnergyContext) RecipeConstraints {
	overrides := r.matchingOverrides(p)

	macros := r.resolveMacros(e, overrides)
	micros := r.resolveMicros(e.LifeStage, overrides)
	ratios := r.resolveRatios(e.LifeStage)

	forbidden := make([]string, len(r.tables.ToxicIngredients))
	copy(forbidden, r.tables.ToxicIngredients)

	vet := CheckVetReferral(r.tables, p)

	disclaimers := []string{r.tables.Disclaimers.Standard}
	if p.HasConditions() {
		disclaimers = append(disclaimers, r.tables.Disclaimers.HealthCondition)
	}

	applied := make([]string, 0, len(overrides))
	for _, ov := range overrides {
		applied = append(applied, ov.Condition)
	}

	return RecipeConstraints{
		Targets: ComputedTargets{
			DailyKcal:         e.DailyKcal,
			IdealBodyWeightKg: e.IdealBodyWeightKg,
			LifeStage:         e.LifeStage,
			WeightGoal:        e.WeightGoal,
			BreedSize:         p.BreedSize,
			Macros:            macros,
			Micros:            micros,
			Ratios:            ratios,
			MealsPerDay:       mealsPerDay(e.LifeStage),
		},
		ForbiddenIngredients: forbidden,
		AllergenExclusions:   r.allergenExclusions(p.KnownAllergies),
		StructuralRules:      r.tables.StructuralRules(),
		Disclaimers:          disclaimers,
		VetReferralTriggered: vet.Triggered,
		VetReferralReasons:   vet.Reasons,
		AppliedOverrides:     applied,
	}
}

func (r *Resolver) resolveMacros(e EnergyContext, overrides []HealthOverride) []NutrientTarget {
	row := r.tables.MacroTargets[e.LifeStage]

	proteinMin := row.ProteinG
	if e.WeightGoal == WeightGoalLose {
		proteinMin = math.Max(proteinMin, r.tables.WeightLossProteinFloorG)
	}

	var proteinMax, fatMax *float64
	fiberMin, fiberMax := row.FiberGMin, row.FiberGMax

	for _, ov := range overrides {
		if v, ok := ov.Lookup(keyProteinMax); ok {
			proteinMax = r.tighterMax(proteinMax, v)
			// min nunca por encima del max
			proteinMin = math.Min(proteinMin, *proteinMax)
		}
		if v, ok := ov.Lookup(keyFatMax); ok {
			fatMax = r.tighterMax(fatMax, v)
		}
		if v, ok := ov.Lookup(keyFiberMin); ok {
			fiberMin = math.Max(fiberMin, v)
		}
	}
	fiberMin = math.Min(fiberMin, fiberMax)

	return []NutrientTarget{
		{Nutrient: "protein", Min: proteinMin, Max: proteinMax, Unit: "g", Source: sourceNRC},
		{Nutrient: "fat", Min: row.FatG, Max: fatMax, Unit: "g", Source: sourceNRC},
		{Nutrient: "fiber", Min: fiberMin, Max: floatPtr(fiberMax), Unit: "g", Source: sourceFEDIAF},
	}
}

// tighterMax: en scan_order gana el último; en most_restrictive el menor.
func (r *Resolver) tighterMax(current *float64, v float64) *float64 {
	if r.precedence == PrecedenceMostRestrictive && current != nil && *current <= v {
		return current
	}
	return floatPtr(v)
}

func (r *Resolver) resolveMicros(stage LifeStage, overrides []HealthOverride) []NutrientTarget {
	out := make([]NutrientTarget, 0, len(r.tables.MicroTargets))
	for _, m := range r.tables.MicroTargets {
		if r.precedence == PrecedenceMostRestrictive {
			out = append(out, resolveMicroMostRestrictive(m, stage, overrides))
			continue
		}
		out = append(out, resolveMicroScanOrder(m, stage, overrides))
	}
	return out
}

func resolveMicroScanOrder(m MicroTarget, stage LifeStage, overrides []HealthOverride) NutrientTarget {
	minVal := m.MinFor(stage)
	maxKey := m.Nutrient + "_max_per_1000kcal"
	minKey := m.Nutrient + "_min_per_1000kcal"

	for _, ov := range overrides {
		if v, ok := ov.Lookup(maxKey); ok {
			// el primer max corta la búsqueda para este nutriente
			return NutrientTarget{
				Nutrient: m.Nutrient,
				Min:      minVal,
				Max:      floatPtr(v),
				Unit:     m.Unit,
				Source:   overrideSource(ov.Condition),
			}
		}
		if v, ok := ov.Lookup(minKey); ok {
			minVal = math.Max(minVal, v)
		}
	}

	return NutrientTarget{
		Nutrient: m.Nutrient,
		Min:      minVal,
		Max:      copyPtr(m.Max),
		Unit:     m.Unit,
		Source:   sourceNRC,
	}
}

func resolveMicroMostRestrictive(m MicroTarget, stage LifeStage, overrides []HealthOverride) NutrientTarget {
	minVal := m.MinFor(stage)
	maxVal := copyPtr(m.Max)
	source := sourceNRC
	maxKey := m.Nutrient + "_max_per_1000kcal"
	minKey := m.Nutrient + "_min_per_1000kcal"

	var maxFrom string
	for _, ov := range overrides {
		if v, ok := ov.Lookup(minKey); ok {
			minVal = math.Max(minVal, v)
		}
		if v, ok := ov.Lookup(maxKey); ok {
			// el techo estático tampoco se relaja
			if maxVal == nil || v < *maxVal {
				maxVal = floatPtr(v)
				maxFrom = ov.Condition
			}
		}
	}
	if maxFrom != "" {
		source = overrideSource(maxFrom)
	}

	return NutrientTarget{Nutrient: m.Nutrient, Min: minVal, Max: maxVal, Unit: m.Unit, Source: source}
}

func overrideSource(condition string) string {
	return fmt.Sprintf("NRC 2006 + %s override", condition)
}

func (r *Resolver) resolveRatios(stage LifeStage) []RatioConstraint {
	out := make([]RatioConstraint, 0, len(r.tables.RatioConstraints))
	for _, rc := range r.tables.RatioConstraints {
		if !rc.AppliesTo(stage) {
			continue
		}
		c := rc
		c.LifeStages = append([]LifeStage(nil), rc.LifeStages...)
		out = append(out, c)
	}
	return out
}

// allergenExclusions: solo alergias reconocidas; el resto se descarta sin error.
func (r *Resolver) allergenExclusions(allergies []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(allergies))
	for _, a := range allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if !r.tables.isAllergenProtein(a) {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// matchingOverrides mantiene el orden del perfil, sin duplicados ni "none".
func (r *Resolver) matchingOverrides(p DogProfile) []HealthOverride {
	out := make([]HealthOverride, 0)
	for _, c := range uniqueConditions(p.HealthConditions) {
		if ov, ok := r.tables.Override(c); ok {
			out = append(out, ov)
		}
	}
	return out
}

// uniqueConditions normaliza los tags igual que los ingredientes:
// "Kidney Disease" y "kidney_disease" son la misma condición.
func uniqueConditions(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = normalizeName(c)
		if c == "" || c == ConditionNone {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func mealsPerDay(stage LifeStage) int {
	switch stage {
	case LifeStagePuppyEarly:
		return 4
	case LifeStagePuppyLate:
		return 3
	default:
		return 2
	}
}

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return floatPtr(*p)
}
