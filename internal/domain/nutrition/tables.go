package nutrition

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidTables = errors.New("invalid reference tables")

//go:embed tables/canine_v1.yaml
var defaultTablesYAML []byte

type RestrictedIngredient struct {
	Ingredient     string  `yaml:"ingredient" validate:"required"`
	MaxPctByWeight float64 `yaml:"max_pct_by_weight" validate:"gt=0,lte=100"`
	Reason         string  `yaml:"reason" validate:"required"`
}

type MacroRow struct {
	ProteinG  float64 `yaml:"protein_g" validate:"gte=0"`
	FatG      float64 `yaml:"fat_g" validate:"gte=0"`
	FiberGMin float64 `yaml:"fiber_g_min" validate:"gte=0"`
	FiberGMax float64 `yaml:"fiber_g_max" validate:"gtefield=FiberGMin"`
}

type MicroTarget struct {
	Nutrient  string   `yaml:"nutrient" validate:"required"`
	AdultMin  float64  `yaml:"adult_min" validate:"gte=0"`
	PuppyMin  float64  `yaml:"puppy_min" validate:"gte=0"`
	SeniorMin float64  `yaml:"senior_min" validate:"gte=0"`
	Max       *float64 `yaml:"max" validate:"omitempty,gt=0"`
	Unit      string   `yaml:"unit" validate:"required"`
}

// MinFor devuelve el mínimo según life stage (puppy / senior / adult).
func (m MicroTarget) MinFor(stage LifeStage) float64 {
	switch {
	case stage.IsPuppy():
		return m.PuppyMin
	case stage == LifeStageSenior:
		return m.SeniorMin
	default:
		return m.AdultMin
	}
}

// HealthOverride: condición -> claves tipo "protein_g_max_per_1000kcal".
type HealthOverride struct {
	Condition           string             `yaml:"condition" json:"condition" validate:"required"`
	Overrides           map[string]float64 `yaml:"overrides" json:"overrides" validate:"required"`
	Notes               string             `yaml:"notes" json:"notes"`
	VetReferralRequired bool               `yaml:"vet_referral_required" json:"vet_referral_required"`
}

func (h HealthOverride) Lookup(key string) (float64, bool) {
	v, ok := h.Overrides[key]
	return v, ok
}

type Disclaimers struct {
	Standard              string `yaml:"standard" validate:"required"`
	HealthCondition       string `yaml:"health_condition" validate:"required"`
	SupplementationNeeded string `yaml:"supplementation_needed" validate:"required,contains=%s"`
}

func (d Disclaimers) Supplementation(gaps []string) string {
	return fmt.Sprintf(d.SupplementationNeeded, strings.Join(gaps, ", "))
}

// ReferenceTables es configuración de solo lectura: se carga una vez al arrancar y
// se inyecta en Resolver/Validator. Nadie la muta después de LoadTables.
type ReferenceTables struct {
	Version                 string                 `yaml:"version" validate:"required"`
	WeightLossProteinFloorG float64                `yaml:"weight_loss_protein_floor_g" validate:"gt=0"`
	ToxicIngredients        []string               `yaml:"toxic_ingredients" validate:"required,min=1,dive,required"`
	AllergenProteins        []string               `yaml:"allergen_proteins" validate:"required,min=1,dive,required"`
	RestrictedIngredients   []RestrictedIngredient `yaml:"restricted_ingredients" validate:"dive"`
	MacroTargets            map[LifeStage]MacroRow `yaml:"macro_targets" validate:"required,len=4,dive"`
	MicroTargets            []MicroTarget          `yaml:"micro_targets" validate:"required,min=1,dive"`
	RatioConstraints        []RatioConstraint      `yaml:"ratio_constraints" validate:"dive"`
	HealthOverrides         []HealthOverride       `yaml:"health_overrides" validate:"dive"`
	CopperSensitiveBreeds   []string               `yaml:"copper_sensitive_breeds"`
	Disclaimers             Disclaimers            `yaml:"disclaimers"`
	ProhibitedClaims        []string               `yaml:"prohibited_claims"`
	Limits                  StructuralLimits       `yaml:"structural_limits"`
	Rules                   []StructuralRule       `yaml:"structural_rules" validate:"required,dive"`
}

// LoadTables parsea y valida un documento YAML de tablas.
func LoadTables(r io.Reader) (*ReferenceTables, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t ReferenceTables
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidTables, err)
	}

	if err := validator.New().Struct(t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTables, err)
	}

	for _, stage := range []LifeStage{LifeStagePuppyEarly, LifeStagePuppyLate, LifeStageAdult, LifeStageSenior} {
		if _, ok := t.MacroTargets[stage]; !ok {
			return nil, fmt.Errorf("%w: missing macro targets for %s", ErrInvalidTables, stage)
		}
	}
	for _, m := range t.MicroTargets {
		if m.Max == nil {
			continue
		}
		for _, lo := range []float64{m.AdultMin, m.PuppyMin, m.SeniorMin} {
			if lo > *m.Max {
				return nil, fmt.Errorf("%w: %s minimum %.3f above maximum %.3f", ErrInvalidTables, m.Nutrient, lo, *m.Max)
			}
		}
	}

	if err := t.checkRules(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTables, err)
	}

	return &t, nil
}

// DefaultTables carga las tablas embebidas. Si fallan es un bug de build, no de runtime.
func DefaultTables() *ReferenceTables {
	t, err := LoadTables(bytes.NewReader(defaultTablesYAML))
	if err != nil {
		panic(err)
	}
	return t
}

func (t *ReferenceTables) Override(condition string) (HealthOverride, bool) {
	for _, h := range t.HealthOverrides {
		if h.Condition == condition {
			return h, true
		}
	}
	return HealthOverride{}, false
}

func (t *ReferenceTables) isAllergenProtein(name string) bool {
	for _, a := range t.AllergenProteins {
		if a == name {
			return true
		}
	}
	return false
}

func (t *ReferenceTables) isCopperSensitive(breed string) bool {
	b := normalizeName(breed)
	if b == "" {
		return false
	}
	for _, c := range t.CopperSensitiveBreeds {
		if c == b {
			return true
		}
	}
	return false
}
