package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para MVP (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS meal_plans (
	id              TEXT PRIMARY KEY,
	profile         JSONB NOT NULL,
	energy          JSONB NOT NULL,
	constraints     JSONB NOT NULL,
	tables_version  TEXT NOT NULL,
	precedence      TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_reports (
	seq          BIGSERIAL,
	id           TEXT PRIMARY KEY,
	plan_id      TEXT NOT NULL REFERENCES meal_plans(id) ON DELETE CASCADE,
	recipe_name  TEXT NOT NULL,
	results      JSONB NOT NULL,
	accepted     BOOLEAN NOT NULL,
	gaps         JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recipe_reports_plan ON recipe_reports(plan_id, seq);
`

// EnsureSchema crea las tablas si no existen. Idempotente.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}
