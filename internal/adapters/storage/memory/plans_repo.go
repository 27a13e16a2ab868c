package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"dog-meal-planner/internal/domain/mealplans"
)

type plansRepo struct {
	mu      sync.RWMutex
	byID    map[string]mealplans.Plan
	reports map[string][]mealplans.Report // por plan, en orden de inserción
}

func NewPlansRepo() mealplans.Repository {
	return &plansRepo{
		byID:    make(map[string]mealplans.Plan),
		reports: make(map[string][]mealplans.Report),
	}
}

func (r *plansRepo) CreatePlan(ctx context.Context, p mealplans.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("plan id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("plan already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *plansRepo) GetPlan(ctx context.Context, id string) (mealplans.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return mealplans.Plan{}, fmt.Errorf("plan %s: %w", id, mealplans.ErrNotFound)
	}
	return p, nil
}

func (r *plansRepo) CreateReport(ctx context.Context, rep mealplans.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("report id required")
	}
	if _, ok := r.byID[rep.PlanID]; !ok {
		return fmt.Errorf("plan %s: %w", rep.PlanID, mealplans.ErrNotFound)
	}
	r.reports[rep.PlanID] = append(r.reports[rep.PlanID], rep)
	return nil
}

func (r *plansRepo) ListReports(ctx context.Context, planID string) ([]mealplans.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// copia: el caller no debe ver appends posteriores
	src := r.reports[planID]
	out := make([]mealplans.Report, len(src))
	copy(out, src)
	return out, nil
}
