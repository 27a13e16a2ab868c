package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dog-meal-planner/internal/adapters/storage/jsoncol"
	"dog-meal-planner/internal/domain/mealplans"
	"dog-meal-planner/internal/domain/nutrition"

	_ "modernc.org/sqlite"
)

// PlansRepo persiste planes en un archivo SQLite local (modo single-node / CLI).
type PlansRepo struct {
	db *sql.DB
}

// Open abre (o crea) la base y aplica el schema. path ":memory:" sirve para tests.
func Open(path string) (*PlansRepo, error) {
	db, err := sql.Open("sqlite", withForeignKeys(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// un solo writer; evita SQLITE_BUSY y que ":memory:" abra bases distintas
	db.SetMaxOpenConns(1)

	r := &PlansRepo{db: db}
	if err := r.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func withForeignKeys(path string) string {
	if strings.Contains(path, "_pragma=foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func (r *PlansRepo) Close() error {
	return r.db.Close()
}

func (r *PlansRepo) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meal_plans (
		id             TEXT PRIMARY KEY,
		profile        TEXT NOT NULL,
		energy         TEXT NOT NULL,
		constraints    TEXT NOT NULL,
		tables_version TEXT NOT NULL,
		precedence     TEXT NOT NULL,
		created_at     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recipe_reports (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		id           TEXT NOT NULL UNIQUE,
		plan_id      TEXT NOT NULL REFERENCES meal_plans(id) ON DELETE CASCADE,
		recipe_name  TEXT NOT NULL,
		results      TEXT NOT NULL,
		accepted     INTEGER NOT NULL,
		gaps         TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recipe_reports_plan ON recipe_reports(plan_id, seq);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}
	return nil
}

func (r *PlansRepo) CreatePlan(ctx context.Context, p mealplans.Plan) error {
	cols, err := jsoncol.EncodePlan(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (id, profile, energy, constraints, tables_version, precedence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, cols.Profile, cols.Energy, cols.Constraints,
		p.TablesVersion, string(p.Precedence), p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: insert plan: %w", err)
	}
	return nil
}

func (r *PlansRepo) GetPlan(ctx context.Context, id string) (mealplans.Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return mealplans.Plan{}, mealplans.ErrNotFound
	}

	var (
		p          mealplans.Plan
		cols       jsoncol.PlanColumns
		precedence string
		createdAt  string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, profile, energy, constraints, tables_version, precedence, created_at
		FROM meal_plans WHERE id = ?
	`, id).Scan(&p.ID, &cols.Profile, &cols.Energy, &cols.Constraints, &p.TablesVersion, &precedence, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mealplans.Plan{}, fmt.Errorf("plan %s: %w", id, mealplans.ErrNotFound)
		}
		return mealplans.Plan{}, fmt.Errorf("sqlite: get plan: %w", err)
	}

	if err := jsoncol.DecodePlan(&p, cols); err != nil {
		return mealplans.Plan{}, err
	}
	p.Precedence = nutrition.OverridePrecedence(precedence)
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return mealplans.Plan{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	return p, nil
}

func (r *PlansRepo) CreateReport(ctx context.Context, rep mealplans.Report) error {
	cols, err := jsoncol.EncodeReport(rep)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipe_reports (id, plan_id, recipe_name, results, accepted, gaps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rep.ID, rep.PlanID, rep.RecipeName, cols.Results,
		rep.Accepted, cols.Gaps, rep.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: insert report: %w", err)
	}
	return nil
}

func (r *PlansRepo) ListReports(ctx context.Context, planID string) ([]mealplans.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, plan_id, recipe_name, results, accepted, gaps, created_at
		FROM recipe_reports
		WHERE plan_id = ?
		ORDER BY seq ASC
	`, strings.TrimSpace(planID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list reports: %w", err)
	}
	defer rows.Close()

	out := make([]mealplans.Report, 0)
	for rows.Next() {
		var (
			rep       mealplans.Report
			cols      jsoncol.ReportColumns
			createdAt string
		)
		if err := rows.Scan(&rep.ID, &rep.PlanID, &rep.RecipeName, &cols.Results, &rep.Accepted, &cols.Gaps, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan report: %w", err)
		}
		if err := jsoncol.DecodeReport(&rep, cols); err != nil {
			return nil, err
		}
		if rep.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse created_at: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
