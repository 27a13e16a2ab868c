package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dog-meal-planner/internal/domain/nutrition"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecipeValidated(t *testing.T) {
	c := New()

	c.RecipeValidated([]nutrition.ValidationResult{
		{RuleID: nutrition.RuleToxin, Severity: nutrition.SeverityBlock},
		{RuleID: nutrition.RuleMicroCompleteness, Severity: nutrition.SeverityWarn},
		{RuleID: nutrition.RuleMicroCompleteness, Severity: nutrition.SeverityWarn},
	}, false)
	c.RecipeValidated(nil, true)

	if got := testutil.ToFloat64(c.validationResults.WithLabelValues("SR-010", "WARN")); got != 2 {
		t.Fatalf("expected 2 SR-010 warnings, got %v", got)
	}
	if got := testutil.ToFloat64(c.recipesValidated.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("expected 1 rejected, got %v", got)
	}
	if got := testutil.ToFloat64(c.recipesValidated.WithLabelValues("accepted")); got != 1 {
		t.Fatalf("expected 1 accepted, got %v", got)
	}
}

func TestCollector_HandlerExposesMetrics(t *testing.T) {
	c := New()
	c.PlanResolved(nutrition.LifeStageAdult, true)
	c.ObserveHTTP("POST", "/plans/", 201, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`dogmeal_plans_resolved_total{life_stage="adult",vet_referral="true"} 1`,
		`http_requests_total{method="POST",route="/plans/",status_code="201"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// dos collectors no deben pisarse (registry propio)
	a, b := New(), New()
	a.PlanResolved(nutrition.LifeStageSenior, false)

	if got := testutil.ToFloat64(b.plansResolved.WithLabelValues("senior", "false")); got != 0 {
		t.Fatalf("registries are shared: %v", got)
	}
}
