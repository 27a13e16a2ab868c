package mealplans

import "context"

// Repository: las implementaciones devuelven ErrNotFound (envuelto o no) cuando
// el plan no existe.
type Repository interface {
	CreatePlan(ctx context.Context, p Plan) error
	GetPlan(ctx context.Context, id string) (Plan, error)
	CreateReport(ctx context.Context, r Report) error
	ListReports(ctx context.Context, planID string) ([]Report, error)
}
