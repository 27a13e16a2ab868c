package mealplans

import (
	"time"

	"dog-meal-planner/internal/domain/nutrition"
)

// Plan guarda el contrato resuelto para un perro. Las constraints quedan
// congeladas: si cambian las tablas, se crea otro plan.
type Plan struct {
	ID            string
	Profile       nutrition.DogProfile
	Energy        nutrition.EnergyContext
	Constraints   nutrition.RecipeConstraints
	TablesVersion string
	Precedence    nutrition.OverridePrecedence
	CreatedAt     time.Time
}

// Report es el resultado de auditar una receta candidata contra un Plan.
type Report struct {
	ID         string
	PlanID     string
	RecipeName string
	Results    []nutrition.ValidationResult
	Accepted   bool
	Gaps       []string
	CreatedAt  time.Time
}

// Completeness: "complete" o "supplementation_needed" según haya gaps.
func (r Report) Completeness() string {
	if len(r.Gaps) > 0 {
		return "supplementation_needed"
	}
	return "complete"
}
