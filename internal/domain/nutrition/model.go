package nutrition

import (
	"errors"
	"strings"
)

var (
	ErrInvalidProfile = errors.New("invalid dog profile")
	ErrInvalidEnergy  = errors.New("invalid energy context")
	ErrInvalidRecipe  = errors.New("invalid candidate recipe")
)

// LifeStage es el eje principal para elegir targets macro/micro.
type LifeStage string

const (
	LifeStagePuppyEarly LifeStage = "puppy_early"
	LifeStagePuppyLate  LifeStage = "puppy_late"
	LifeStageAdult      LifeStage = "adult"
	LifeStageSenior     LifeStage = "senior"
)

func (s LifeStage) Valid() bool {
	switch s {
	case LifeStagePuppyEarly, LifeStagePuppyLate, LifeStageAdult, LifeStageSenior:
		return true
	default:
		return false
	}
}

func (s LifeStage) IsPuppy() bool {
	return strings.HasPrefix(string(s), "puppy")
}

type WeightGoal string

const (
	WeightGoalLose     WeightGoal = "lose"
	WeightGoalMaintain WeightGoal = "maintain"
	WeightGoalGain     WeightGoal = "gain"
)

func (g WeightGoal) Valid() bool {
	switch g {
	case WeightGoalLose, WeightGoalMaintain, WeightGoalGain:
		return true
	default:
		return false
	}
}

type BreedSize string

const (
	BreedSizeToy          BreedSize = "toy"
	BreedSizeSmall        BreedSize = "small"
	BreedSizeMedium       BreedSize = "medium"
	BreedSizeLarge        BreedSize = "large"
	BreedSizeGiant        BreedSize = "giant"
	BreedSizeMixedUnknown BreedSize = "mixed_unknown"
)

type NeuterStatus string

const (
	NeuterIntact   NeuterStatus = "intact"
	NeuterNeutered NeuterStatus = "neutered"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
	ActivityWorking   ActivityLevel = "working"
)

type ReproductiveStatus string

const (
	ReproNone          ReproductiveStatus = "none"
	ReproPregnantEarly ReproductiveStatus = "pregnant_early"
	ReproPregnantLate  ReproductiveStatus = "pregnant_late"
	ReproLactating     ReproductiveStatus = "lactating"
)

type Housing string

const (
	HousingIndoor  Housing = "indoor"
	HousingOutdoor Housing = "outdoor"
	HousingMixed   Housing = "mixed"
)

// ConditionNone es un tag no-op: se acepta pero no aplica overrides.
const ConditionNone = "none"

// DogProfile es el input inmutable por request. Nunca se persiste desde este paquete.
type DogProfile struct {
	Name                  string             `json:"dog_name,omitempty"`
	WeightKg              float64            `json:"weight_kg" validate:"gt=0"`
	BCS                   int                `json:"bcs" validate:"min=1,max=9"`
	AgeMonths             float64            `json:"age_months" validate:"min=0"`
	BreedSize             BreedSize          `json:"breed_size" validate:"required,oneof=toy small medium large giant mixed_unknown"`
	Breed                 string             `json:"breed,omitempty"` // nombre de raza, p.ej. "Labrador Retriever"
	NeuterStatus          NeuterStatus       `json:"neuter_status" validate:"required,oneof=intact neutered"`
	Sex                   Sex                `json:"sex" validate:"required,oneof=male female"`
	ActivityLevel         ActivityLevel      `json:"activity_level" validate:"required,oneof=sedentary moderate active working"`
	ExpectedAdultWeightKg *float64           `json:"expected_adult_weight_kg,omitempty" validate:"omitempty,gt=0"`
	ReproductiveStatus    ReproductiveStatus `json:"reproductive_status,omitempty" validate:"omitempty,oneof=none pregnant_early pregnant_late lactating"`
	KnownAllergies        []string           `json:"known_allergies"`
	HealthConditions      []string           `json:"health_conditions"`
	Housing               Housing            `json:"housing,omitempty" validate:"omitempty,oneof=indoor outdoor mixed"`
}

// HasConditions indica si hay alguna condición distinta de "none".
func (p DogProfile) HasConditions() bool {
	return len(uniqueConditions(p.HealthConditions)) > 0
}

// EnergyContext viene de la calculadora de energía externa. Solo lectura.
type EnergyContext struct {
	DailyKcal         float64    `json:"daily_kcal" validate:"gt=0"`
	IdealBodyWeightKg float64    `json:"ideal_body_weight_kg" validate:"gt=0"`
	LifeStage         LifeStage  `json:"life_stage" validate:"required,oneof=puppy_early puppy_late adult senior"`
	WeightGoal        WeightGoal `json:"weight_goal" validate:"required,oneof=lose maintain gain"`
}

// NutrientTarget: todos los valores por 1000 kcal ME. Max nil = sin límite.
type NutrientTarget struct {
	Nutrient string   `json:"nutrient"`
	Min      float64  `json:"min_per_1000kcal"`
	Max      *float64 `json:"max_per_1000kcal"`
	Unit     string   `json:"unit"`
	Source   string   `json:"source"`
}

type RatioConstraint struct {
	Name        string      `json:"name" yaml:"name" validate:"required"`
	Numerator   string      `json:"numerator" yaml:"numerator" validate:"required"`
	Denominator string      `json:"denominator" yaml:"denominator" validate:"required"`
	Min         float64     `json:"min" yaml:"min_ratio" validate:"gte=0"`
	Max         float64     `json:"max" yaml:"max_ratio" validate:"gtefield=Min"`
	LifeStages  []LifeStage `json:"life_stages" yaml:"life_stages" validate:"required,min=1,dive,oneof=puppy_early puppy_late adult senior"`
	Note        string      `json:"note,omitempty" yaml:"note"`
}

func (r RatioConstraint) AppliesTo(stage LifeStage) bool {
	for _, s := range r.LifeStages {
		if s == stage {
			return true
		}
	}
	return false
}

// ComputedTargets agrupa los targets resueltos para un perro.
type ComputedTargets struct {
	DailyKcal         float64           `json:"daily_kcal"`
	IdealBodyWeightKg float64           `json:"ideal_body_weight_kg"`
	LifeStage         LifeStage         `json:"life_stage"`
	WeightGoal        WeightGoal        `json:"weight_goal"`
	BreedSize         BreedSize         `json:"breed_size"`
	Macros            []NutrientTarget  `json:"macros"`
	Micros            []NutrientTarget  `json:"micros"`
	Ratios            []RatioConstraint `json:"ratios"`
	MealsPerDay       int               `json:"meals_per_day"`
}

// RecipeConstraints es el contrato resuelto. Se construye una vez por request y
// lo consumen tanto el serializer del prompt como el Validator.
type RecipeConstraints struct {
	Targets              ComputedTargets  `json:"targets"`
	ForbiddenIngredients []string         `json:"forbidden_ingredients"`
	AllergenExclusions   []string         `json:"allergen_exclusions"`
	StructuralRules      []StructuralRule `json:"structural_rules"`
	Disclaimers          []string         `json:"disclaimers"`
	VetReferralTriggered bool             `json:"vet_referral_triggered"`
	VetReferralReasons   []string         `json:"vet_referral_reasons"`
	AppliedOverrides     []string         `json:"applied_overrides"`
}

// CandidateIngredient trae los nutrientes ya resueltos por el pipeline de lookup
// (cantidad total aportada en la receta, no por 100 g).
type CandidateIngredient struct {
	Name      string             `json:"name" validate:"required"`
	WeightG   float64            `json:"weight_g" validate:"gte=0"`
	Nutrients map[string]float64 `json:"nutrients" validate:"dive,gte=0"`
}

type CandidateRecipe struct {
	Name        string                `json:"recipe_name,omitempty"`
	Ingredients []CandidateIngredient `json:"ingredients" validate:"dive"`
	TotalKcal   float64               `json:"total_kcal" validate:"gte=0"`
	Description string                `json:"description,omitempty"`
}

type Severity string

const (
	SeverityBlock Severity = "BLOCK"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
)

type ValidationResult struct {
	Passed        bool     `json:"passed"`
	Severity      Severity `json:"severity"`
	RuleID        string   `json:"rule_id"`
	Nutrient      string   `json:"nutrient,omitempty"`
	Message       string   `json:"message"`
	ActualValue   *float64 `json:"actual_value,omitempty"`
	RequiredValue *float64 `json:"required_value,omitempty"`
}

// Accepted: una receta se acepta solo si no hay ningún BLOCK.
// WARN e INFO se muestran pero no invalidan.
func Accepted(results []ValidationResult) bool {
	for _, r := range results {
		if r.Severity == SeverityBlock {
			return false
		}
	}
	return true
}

func floatPtr(v float64) *float64 {
	return &v
}
