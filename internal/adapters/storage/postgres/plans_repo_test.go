package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"dog-meal-planner/internal/domain/mealplans"
	"dog-meal-planner/internal/domain/nutrition"

	"github.com/google/uuid"
)

// Requiere un Postgres real: DOGMEAL_TEST_PG_DSN=postgres://... go test ./...
func openTestRepo(t *testing.T) *PlansRepo {
	t.Helper()
	dsn := os.Getenv("DOGMEAL_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("DOGMEAL_TEST_PG_DSN not set")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema err: %v", err)
	}
	return NewPlansRepo(db)
}

func TestPlansRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	planID := uuid.NewString()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := mealplans.Plan{
		ID:            planID,
		TablesVersion: "canine-v1.0",
		Precedence:    nutrition.PrecedenceScanOrder,
		Energy:        nutrition.EnergyContext{DailyKcal: 1200, IdealBodyWeightKg: 25, LifeStage: nutrition.LifeStageAdult, WeightGoal: nutrition.WeightGoalMaintain},
		CreatedAt:     created,
	}
	if err := repo.CreatePlan(ctx, p); err != nil {
		t.Fatalf("CreatePlan err: %v", err)
	}

	got, err := repo.GetPlan(ctx, planID)
	if err != nil {
		t.Fatalf("GetPlan err: %v", err)
	}
	if got.Energy.DailyKcal != 1200 || got.TablesVersion != "canine-v1.0" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected plan %+v", got)
	}

	if _, err := repo.GetPlan(ctx, uuid.NewString()); !errors.Is(err, mealplans.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for _, name := range []string{"first", "second"} {
		rep := mealplans.Report{ID: uuid.NewString(), PlanID: planID, RecipeName: name, Accepted: true, CreatedAt: created}
		if err := repo.CreateReport(ctx, rep); err != nil {
			t.Fatalf("CreateReport err: %v", err)
		}
	}
	reps, err := repo.ListReports(ctx, planID)
	if err != nil {
		t.Fatalf("ListReports err: %v", err)
	}
	if len(reps) != 2 || reps[0].RecipeName != "first" || reps[1].RecipeName != "second" {
		t.Fatalf("unexpected reports %+v", reps)
	}
}
