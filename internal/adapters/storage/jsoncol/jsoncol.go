// Package jsoncol serializa los campos anidados de planes y reportes para
// columnas JSON (JSONB en Postgres, TEXT en SQLite).
package jsoncol

import (
	"encoding/json"
	"fmt"

	"dog-meal-planner/internal/domain/mealplans"
)

type PlanColumns struct {
	Profile     string
	Energy      string
	Constraints string
}

func EncodePlan(p mealplans.Plan) (PlanColumns, error) {
	profile, err := json.Marshal(p.Profile)
	if err != nil {
		return PlanColumns{}, fmt.Errorf("encode profile: %w", err)
	}
	energy, err := json.Marshal(p.Energy)
	if err != nil {
		return PlanColumns{}, fmt.Errorf("encode energy: %w", err)
	}
	constraints, err := json.Marshal(p.Constraints)
	if err != nil {
		return PlanColumns{}, fmt.Errorf("encode constraints: %w", err)
	}
	return PlanColumns{Profile: string(profile), Energy: string(energy), Constraints: string(constraints)}, nil
}

func DecodePlan(p *mealplans.Plan, cols PlanColumns) error {
	if err := json.Unmarshal([]byte(cols.Profile), &p.Profile); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.Energy), &p.Energy); err != nil {
		return fmt.Errorf("decode energy: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.Constraints), &p.Constraints); err != nil {
		return fmt.Errorf("decode constraints: %w", err)
	}
	return nil
}

type ReportColumns struct {
	Results string
	Gaps    string
}

func EncodeReport(r mealplans.Report) (ReportColumns, error) {
	results, err := json.Marshal(r.Results)
	if err != nil {
		return ReportColumns{}, fmt.Errorf("encode results: %w", err)
	}
	gaps := r.Gaps
	if gaps == nil {
		gaps = []string{}
	}
	g, err := json.Marshal(gaps)
	if err != nil {
		return ReportColumns{}, fmt.Errorf("encode gaps: %w", err)
	}
	return ReportColumns{Results: string(results), Gaps: string(g)}, nil
}

func DecodeReport(r *mealplans.Report, cols ReportColumns) error {
	if err := json.Unmarshal([]byte(cols.Results), &r.Results); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.Gaps), &r.Gaps); err != nil {
		return fmt.Errorf("decode gaps: %w", err)
	}
	return nil
}
