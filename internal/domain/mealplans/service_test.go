package mealplans

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dog-meal-planner/internal/domain/nutrition"
	"dog-meal-planner/internal/ports/energy"

	"go.uber.org/goleak"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu      sync.Mutex
	plans   map[string]Plan
	reports []Report
}

func newTestRepo() *testRepo {
	return &testRepo{plans: map[string]Plan{}}
}

func (r *testRepo) CreatePlan(ctx context.Context, p Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.plans[p.ID] = p
	return nil
}

func (r *testRepo) GetPlan(ctx context.Context, id string) (Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) CreateReport(ctx context.Context, rep Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return nil
}

func (r *testRepo) ListReports(ctx context.Context, planID string) ([]Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, 0)
	for _, rep := range r.reports {
		if rep.PlanID == planID {
			out = append(out, rep)
		}
	}
	return out, nil
}

// -------------------------
// Fakes
// -------------------------

type fakeCalculator struct {
	out   nutrition.EnergyContext
	err   error
	calls int
}

func (f *fakeCalculator) Compute(ctx context.Context, in energy.Input) (nutrition.EnergyContext, error) {
	f.calls++
	return f.out, f.err
}

type countingRecorder struct {
	mu       sync.Mutex
	plans    int
	recipes  int
	rejected int
}

func (c *countingRecorder) PlanResolved(nutrition.LifeStage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans++
}

func (c *countingRecorder) RecipeValidated(_ []nutrition.ValidationResult, accepted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipes++
	if !accepted {
		c.rejected++
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *testRepo) {
	t.Helper()
	repo := newTestRepo()
	svc := NewService(repo, nutrition.DefaultTables(), nutrition.PrecedenceScanOrder, opts...)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, repo
}

func testProfile() nutrition.DogProfile {
	return nutrition.DogProfile{
		Name:             "Luna",
		WeightKg:         20,
		BCS:              5,
		AgeMonths:        36,
		BreedSize:        nutrition.BreedSizeMedium,
		NeuterStatus:     nutrition.NeuterNeutered,
		Sex:              nutrition.SexFemale,
		ActivityLevel:    nutrition.ActivityModerate,
		KnownAllergies:   []string{},
		HealthConditions: []string{},
	}
}

func testEnergy() *nutrition.EnergyContext {
	return &nutrition.EnergyContext{
		DailyKcal:         1000,
		IdealBodyWeightKg: 20,
		LifeStage:         nutrition.LifeStageAdult,
		WeightGoal:        nutrition.WeightGoalMaintain,
	}
}

func testRecipe(name string) nutrition.CandidateRecipe {
	return nutrition.CandidateRecipe{
		Name:      name,
		TotalKcal: 1000,
		Ingredients: []nutrition.CandidateIngredient{
			{Name: "ground turkey", WeightG: 280, Nutrients: map[string]float64{
				"protein": 60, "fat": 20, "omega_6": 2.0, "omega_3": 0.5,
			}},
			{Name: "sweet potato", WeightG: 200, Nutrients: map[string]float64{"fiber": 6}},
			{Name: "spinach", WeightG: 100, Nutrients: map[string]float64{"fiber": 2}},
			{Name: "vitamin mineral premix", WeightG: 20, Nutrients: map[string]float64{
				"calcium": 1.4, "phosphorus": 0.8, "sodium": 0.5, "potassium": 1.5,
				"magnesium": 0.2, "iron": 10, "zinc": 20, "copper": 2, "manganese": 1.5,
				"selenium": 100, "iodine": 300, "vitamin_a": 500, "vitamin_d": 5,
				"vitamin_e": 13, "vitamin_k": 0.5, "thiamin_b1": 1, "riboflavin_b2": 1.5,
				"niacin_b3": 5, "pantothenic_acid_b5": 4, "pyridoxine_b6": 0.5,
				"folic_acid": 0.1, "vitamin_b12": 10, "choline": 500, "epa_dha_omega3": 0.5,
			}},
		},
	}
}

// -------------------------
// Tests
// -------------------------

func TestCreatePlan_WithEnergyInRequest(t *testing.T) {
	rec := &countingRecorder{}
	svc, repo := newTestService(t, WithRecorder(rec))

	p, err := svc.CreatePlan(context.Background(), CreatePlanInput{
		Profile: testProfile(),
		Energy:  testEnergy(),
	})
	if err != nil {
		t.Fatalf("CreatePlan err: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected id")
	}
	if p.TablesVersion != "canine-v1.0" {
		t.Fatalf("unexpected tables version %q", p.TablesVersion)
	}
	if p.Precedence != nutrition.PrecedenceScanOrder {
		t.Fatalf("unexpected precedence %q", p.Precedence)
	}
	if !p.CreatedAt.Equal(svc.now()) {
		t.Fatalf("expected injected clock")
	}
	if _, ok := repo.plans[p.ID]; !ok {
		t.Fatalf("plan not stored")
	}
	if rec.plans != 1 {
		t.Fatalf("expected recorder to see one plan, got %d", rec.plans)
	}
}

func TestCreatePlan_InvalidProfile(t *testing.T) {
	svc, repo := newTestService(t)

	bad := testProfile()
	bad.BCS = 12
	_, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: bad, Energy: testEnergy()})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !errors.Is(err, nutrition.ErrInvalidProfile) {
		t.Fatalf("expected wrapped ErrInvalidProfile, got %v", err)
	}
	if len(repo.plans) != 0 {
		t.Fatalf("invalid plan must not be stored")
	}
}

func TestCreatePlan_EnergyRequiredWithoutCalculator(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile()})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreatePlan_UsesCalculator(t *testing.T) {
	calc := &fakeCalculator{out: *testEnergy()}
	svc, _ := newTestService(t, WithEnergyCalculator(calc))

	p, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile()})
	if err != nil {
		t.Fatalf("CreatePlan err: %v", err)
	}
	if calc.calls != 1 {
		t.Fatalf("expected one calculator call, got %d", calc.calls)
	}
	if p.Energy.DailyKcal != 1000 {
		t.Fatalf("unexpected energy %+v", p.Energy)
	}

	// energy explícita gana sobre la calculadora
	if _, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()}); err != nil {
		t.Fatalf("CreatePlan err: %v", err)
	}
	if calc.calls != 1 {
		t.Fatalf("calculator must not be called when energy is provided")
	}
}

func TestCreatePlan_CalculatorFailure(t *testing.T) {
	calc := &fakeCalculator{err: errors.New("boom")}
	svc, _ := newTestService(t, WithEnergyCalculator(calc))

	_, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile()})
	if !errors.Is(err, ErrEnergyUnavailable) {
		t.Fatalf("expected ErrEnergyUnavailable, got %v", err)
	}
}

func TestCreatePlan_CalculatorReturnsInvalidEnergy(t *testing.T) {
	calc := &fakeCalculator{out: nutrition.EnergyContext{LifeStage: nutrition.LifeStageAdult}}
	svc, _ := newTestService(t, WithEnergyCalculator(calc))

	_, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile()})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, nutrition.ErrInvalidEnergy) {
		t.Fatalf("expected invalid energy error, got %v", err)
	}
}

func TestGetPlan_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.GetPlan(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetPlan(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPrompt(t *testing.T) {
	svc, _ := newTestService(t)
	p, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()})
	if err != nil {
		t.Fatalf("CreatePlan err: %v", err)
	}

	out, err := svc.Prompt(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Prompt err: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected prompt text")
	}
}

func TestValidateRecipe_StoresReport(t *testing.T) {
	rec := &countingRecorder{}
	svc, repo := newTestService(t, WithRecorder(rec))
	p, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()})
	if err != nil {
		t.Fatalf("CreatePlan err: %v", err)
	}

	rep, err := svc.ValidateRecipe(context.Background(), p.ID, testRecipe("clean"))
	if err != nil {
		t.Fatalf("ValidateRecipe err: %v", err)
	}
	if !rep.Accepted || rep.Completeness() != "complete" {
		t.Fatalf("expected accepted complete recipe, got %+v", rep)
	}
	if len(repo.reports) != 1 {
		t.Fatalf("expected stored report")
	}

	bad := testRecipe("with grapes")
	bad.Ingredients = append(bad.Ingredients, nutrition.CandidateIngredient{Name: "grapes", WeightG: 10})
	rep, err = svc.ValidateRecipe(context.Background(), p.ID, bad)
	if err != nil {
		t.Fatalf("ValidateRecipe err: %v", err)
	}
	if rep.Accepted {
		t.Fatalf("recipe with grapes must be rejected")
	}
	if rec.recipes != 2 || rec.rejected != 1 {
		t.Fatalf("unexpected recorder counts %+v", rec)
	}
}

func TestValidateRecipe_ProhibitedClaimInDescription(t *testing.T) {
	svc, _ := newTestService(t)
	p, _ := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()})

	r := testRecipe("Turkey bowl")
	r.Description = "Clinically proven to keep your dog healthy."

	rep, err := svc.ValidateRecipe(context.Background(), p.ID, r)
	if err != nil {
		t.Fatalf("ValidateRecipe err: %v", err)
	}
	if rep.Accepted {
		t.Fatalf("prohibited claim must reject")
	}
	last := rep.Results[len(rep.Results)-1]
	if last.RuleID != nutrition.RuleClaimProhibited {
		t.Fatalf("expected CLAIM-PROHIBITED, got %+v", last)
	}
}

func TestValidateRecipe_GapsReported(t *testing.T) {
	svc, _ := newTestService(t)
	p, _ := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()})

	r := testRecipe("low zinc")
	r.Ingredients[3].Nutrients["zinc"] = 5

	rep, err := svc.ValidateRecipe(context.Background(), p.ID, r)
	if err != nil {
		t.Fatalf("ValidateRecipe err: %v", err)
	}
	if !rep.Accepted {
		t.Fatalf("gaps alone must not reject")
	}
	if rep.Completeness() != "supplementation_needed" || len(rep.Gaps) != 1 || rep.Gaps[0] != "zinc" {
		t.Fatalf("unexpected gaps %+v", rep.Gaps)
	}
}

func TestValidateRecipe_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ValidateRecipe(context.Background(), "missing", testRecipe("x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	r := testRecipe("negative")
	r.Ingredients[0].WeightG = -1
	if _, err := svc.ValidateRecipe(context.Background(), "missing", r); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateBatch_PreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, repo := newTestService(t, WithBatchLimit(3))
	p, err := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()})
	if err != nil {
		t.Fatalf("CreatePlan err: %v", err)
	}

	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	recipes := make([]nutrition.CandidateRecipe, 0, len(names))
	for _, n := range names {
		recipes = append(recipes, testRecipe(n))
	}
	recipes[2].Ingredients = append(recipes[2].Ingredients, nutrition.CandidateIngredient{Name: "xylitol", WeightG: 1})

	reps, err := svc.ValidateBatch(context.Background(), p.ID, recipes)
	if err != nil {
		t.Fatalf("ValidateBatch err: %v", err)
	}
	if len(reps) != len(names) {
		t.Fatalf("expected %d reports, got %d", len(names), len(reps))
	}
	for i, rep := range reps {
		if rep.RecipeName != names[i] {
			t.Fatalf("report %d out of order: %q", i, rep.RecipeName)
		}
		if rep.Accepted != (i != 2) {
			t.Fatalf("report %d: unexpected accepted=%v", i, rep.Accepted)
		}
	}
	if len(repo.reports) != len(names) {
		t.Fatalf("expected all reports stored, got %d", len(repo.reports))
	}

	listed, err := svc.ListReports(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ListReports err: %v", err)
	}
	if len(listed) != len(names) || listed[0].RecipeName != "a" {
		t.Fatalf("unexpected listing %+v", listed)
	}
}

func TestValidateBatch_Limits(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _ := newTestService(t)
	p, _ := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()})

	if _, err := svc.ValidateBatch(context.Background(), p.ID, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on empty batch, got %v", err)
	}

	big := make([]nutrition.CandidateRecipe, MaxBatchSize+1)
	for i := range big {
		big[i] = testRecipe("r")
	}
	if _, err := svc.ValidateBatch(context.Background(), p.ID, big); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on oversized batch, got %v", err)
	}
}

func TestValidateBatch_CanceledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, repo := newTestService(t)
	p, _ := svc.CreatePlan(context.Background(), CreatePlanInput{Profile: testProfile(), Energy: testEnergy()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ValidateBatch(ctx, p.ID, []nutrition.CandidateRecipe{testRecipe("a"), testRecipe("b")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(repo.reports) != 0 {
		t.Fatalf("canceled batch must not store reports")
	}
}
