package mealplans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dog-meal-planner/internal/domain/nutrition"
	"dog-meal-planner/internal/platform/logger"
	"dog-meal-planner/internal/ports/energy"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrEnergyUnavailable = errors.New("energy calculator unavailable")
)

const (
	DefaultBatchLimit = 4
	MaxBatchSize      = 50
)

// Recorder recibe eventos del servicio para métricas. nil => no-op.
type Recorder interface {
	PlanResolved(stage nutrition.LifeStage, vetReferral bool)
	RecipeValidated(results []nutrition.ValidationResult, accepted bool)
}

type noopRecorder struct{}

func (noopRecorder) PlanResolved(nutrition.LifeStage, bool)             {}
func (noopRecorder) RecipeValidated([]nutrition.ValidationResult, bool) {}

type Service struct {
	repo       Repository
	tables     *nutrition.ReferenceTables
	resolver   *nutrition.Resolver
	validator  *nutrition.Validator
	energy     energy.Calculator
	metrics    Recorder
	log        logger.Logger
	batchLimit int
	now        func() time.Time
}

type Option func(*Service)

// WithEnergyCalculator habilita planes sin energy en el request.
func WithEnergyCalculator(c energy.Calculator) Option {
	return func(s *Service) { s.energy = c }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBatchLimit acota cuántas recetas se validan en paralelo.
func WithBatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

func NewService(repo Repository, tables *nutrition.ReferenceTables, precedence nutrition.OverridePrecedence, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		tables:     tables,
		resolver:   nutrition.NewResolver(tables, precedence),
		validator:  nutrition.NewValidator(tables),
		metrics:    noopRecorder{},
		log:        logger.Nop(),
		batchLimit: DefaultBatchLimit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreatePlanInput struct {
	Profile nutrition.DogProfile
	// Energy nil => se pide a la calculadora configurada.
	Energy *nutrition.EnergyContext
}

func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (Plan, error) {
	if err := nutrition.ValidateProfile(in.Profile); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	e, err := s.energyFor(ctx, in)
	if err != nil {
		return Plan{}, err
	}
	if err := nutrition.ValidateInput(in.Profile, e); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	precedence := s.resolver.Precedence()
	p := Plan{
		ID:            uuid.NewString(),
		Profile:       in.Profile,
		Energy:        e,
		Constraints:   s.resolver.Resolve(in.Profile, e),
		TablesVersion: s.tables.Version,
		Precedence:    precedence,
		CreatedAt:     s.now(),
	}

	if err := s.repo.CreatePlan(ctx, p); err != nil {
		return Plan{}, fmt.Errorf("store plan: %w", err)
	}

	s.metrics.PlanResolved(e.LifeStage, p.Constraints.VetReferralTriggered)
	s.log.Info("plan created", map[string]any{
		"plan_id":      p.ID,
		"life_stage":   string(e.LifeStage),
		"overrides":    p.Constraints.AppliedOverrides,
		"vet_referral": p.Constraints.VetReferralTriggered,
	})

	return p, nil
}

func (s *Service) energyFor(ctx context.Context, in CreatePlanInput) (nutrition.EnergyContext, error) {
	if in.Energy != nil {
		return *in.Energy, nil
	}
	if s.energy == nil {
		return nutrition.EnergyContext{}, fmt.Errorf("%w: energy context required", ErrInvalidInput)
	}

	e, err := s.energy.Compute(ctx, energy.Input{Profile: in.Profile})
	if err != nil {
		s.log.Warn("energy calculator failed", map[string]any{"error": err.Error()})
		return nutrition.EnergyContext{}, fmt.Errorf("%w: %w", ErrEnergyUnavailable, err)
	}
	return e, nil
}

func (s *Service) GetPlan(ctx context.Context, id string) (Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Plan{}, ErrInvalidInput
	}
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Prompt devuelve el bloque de instrucciones para el generador de recetas.
func (s *Service) Prompt(ctx context.Context, planID string) (string, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return "", err
	}
	return nutrition.RenderPromptConstraints(p.Constraints)
}

func (s *Service) ValidateRecipe(ctx context.Context, planID string, recipe nutrition.CandidateRecipe) (Report, error) {
	if err := nutrition.ValidateRecipe(recipe); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return Report{}, err
	}

	r := s.buildReport(p, recipe)
	if err := s.repo.CreateReport(ctx, r); err != nil {
		return Report{}, fmt.Errorf("store report: %w", err)
	}
	s.logReport(r)
	return r, nil
}

// ValidateBatch audita varias candidatas contra el mismo plan. El orden de
// salida es el de entrada sin importar cuál termina primero.
func (s *Service) ValidateBatch(ctx context.Context, planID string, recipes []nutrition.CandidateRecipe) ([]Report, error) {
	if len(recipes) == 0 || len(recipes) > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch must contain 1-%d recipes", ErrInvalidInput, MaxBatchSize)
	}
	for i, rc := range recipes {
		if err := nutrition.ValidateRecipe(rc); err != nil {
			return nil, fmt.Errorf("%w: recipe %d: %w", ErrInvalidInput, i, err)
		}
	}

	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, len(recipes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)
	for i, rc := range recipes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = s.buildReport(p, rc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range reports {
		if err := s.repo.CreateReport(ctx, r); err != nil {
			return nil, fmt.Errorf("store report: %w", err)
		}
		s.logReport(r)
	}
	return reports, nil
}

func (s *Service) ListReports(ctx context.Context, planID string) ([]Report, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListReports(ctx, p.ID)
}

// buildReport es puro salvo por el id y el reloj.
func (s *Service) buildReport(p Plan, recipe nutrition.CandidateRecipe) Report {
	results := s.validator.Validate(recipe, p.Constraints)
	results = append(results, s.validator.ScanClaims(recipe.Name+"\n"+recipe.Description)...)

	accepted := nutrition.Accepted(results)
	s.metrics.RecipeValidated(results, accepted)

	return Report{
		ID:         uuid.NewString(),
		PlanID:     p.ID,
		RecipeName: recipe.Name,
		Results:    results,
		Accepted:   accepted,
		Gaps:       nutrition.Gaps(results),
		CreatedAt:  s.now(),
	}
}

func (s *Service) logReport(r Report) {
	fields := map[string]any{
		"plan_id":   r.PlanID,
		"report_id": r.ID,
		"accepted":  r.Accepted,
		"findings":  len(r.Results),
	}
	if !r.Accepted {
		s.log.Warn("recipe rejected", fields)
		return
	}
	s.log.Debug("recipe accepted", fields)
}
