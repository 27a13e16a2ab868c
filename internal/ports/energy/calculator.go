package energy

import (
	"context"
	"errors"

	"dog-meal-planner/internal/domain/nutrition"
)

// ErrTemporarilyUnavailable marca fallas reintentables de la calculadora
// (5xx, 429, red). Las implementaciones lo envuelven junto a su propio error.
var ErrTemporarilyUnavailable = errors.New("energy calculator temporarily unavailable")

// Input es lo que la calculadora externa necesita para estimar RER/MER.
type Input struct {
	Profile nutrition.DogProfile `json:"profile"`
}

// Calculator resuelve el EnergyContext (kcal diarias, IBW, life stage, objetivo)
// fuera de este servicio. El motor de nutrientes solo lo consume.
type Calculator interface {
	Compute(ctx context.Context, in Input) (nutrition.EnergyContext, error)
}
