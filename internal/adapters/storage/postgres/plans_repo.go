package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dog-meal-planner/internal/adapters/storage/jsoncol"
	"dog-meal-planner/internal/domain/mealplans"
	"dog-meal-planner/internal/domain/nutrition"
)

type PlansRepo struct {
	db *sql.DB
}

func NewPlansRepo(db *sql.DB) *PlansRepo {
	return &PlansRepo{db: db}
}

func (r *PlansRepo) CreatePlan(ctx context.Context, p mealplans.Plan) error {
	cols, err := jsoncol.EncodePlan(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (
			id, profile, energy, constraints,
			tables_version, precedence, created_at
		) VALUES ($1,$2::jsonb,$3::jsonb,$4::jsonb,$5,$6,$7)
	`,
		p.ID,
		cols.Profile,
		cols.Energy,
		cols.Constraints,
		p.TablesVersion,
		string(p.Precedence),
		p.CreatedAt,
	)
	return err
}

func (r *PlansRepo) GetPlan(ctx context.Context, id string) (mealplans.Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return mealplans.Plan{}, mealplans.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, profile::text, energy::text, constraints::text,
			tables_version, precedence, created_at
		FROM meal_plans
		WHERE id = $1
	`, id)

	var (
		p          mealplans.Plan
		cols       jsoncol.PlanColumns
		precedence string
	)
	if err := row.Scan(
		&p.ID,
		&cols.Profile,
		&cols.Energy,
		&cols.Constraints,
		&p.TablesVersion,
		&precedence,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mealplans.Plan{}, fmt.Errorf("plan %s: %w", id, mealplans.ErrNotFound)
		}
		return mealplans.Plan{}, err
	}

	if err := jsoncol.DecodePlan(&p, cols); err != nil {
		return mealplans.Plan{}, err
	}
	p.Precedence = nutrition.OverridePrecedence(precedence)
	return p, nil
}

func (r *PlansRepo) CreateReport(ctx context.Context, rep mealplans.Report) error {
	cols, err := jsoncol.EncodeReport(rep)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipe_reports (
			id, plan_id, recipe_name,
			results, accepted, gaps, created_at
		) VALUES ($1,$2,$3,$4::jsonb,$5,$6::jsonb,$7)
	`,
		rep.ID,
		rep.PlanID,
		rep.RecipeName,
		cols.Results,
		rep.Accepted,
		cols.Gaps,
		rep.CreatedAt,
	)
	return err
}

func (r *PlansRepo) ListReports(ctx context.Context, planID string) ([]mealplans.Report, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return []mealplans.Report{}, nil
	}

	// seq desempata reportes del mismo batch (mismo created_at)
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, plan_id, recipe_name,
			results::text, accepted, gaps::text, created_at
		FROM recipe_reports
		WHERE plan_id = $1
		ORDER BY seq ASC
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]mealplans.Report, 0)
	for rows.Next() {
		var (
			rep  mealplans.Report
			cols jsoncol.ReportColumns
		)
		if err := rows.Scan(
			&rep.ID,
			&rep.PlanID,
			&rep.RecipeName,
			&cols.Results,
			&rep.Accepted,
			&cols.Gaps,
			&rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := jsoncol.DecodeReport(&rep, cols); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}

	return out, rows.Err()
}
