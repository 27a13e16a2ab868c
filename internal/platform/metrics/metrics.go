package metrics

import (
	"net/http"
	"strconv"
	"time"

	"dog-meal-planner/internal/domain/nutrition"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector agrupa las métricas del servicio. Cada instancia registra en su
// propio Registry para que tests y binarios no choquen con el registry global.
type Collector struct {
	registry *prometheus.Registry

	plansResolved     *prometheus.CounterVec
	validationResults *prometheus.CounterVec
	recipesValidated  *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		plansResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dogmeal_plans_resolved_total",
				Help: "Meal plans resolved, by life stage and vet referral flag",
			},
			[]string{"life_stage", "vet_referral"},
		),
		validationResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dogmeal_validation_results_total",
				Help: "Validation findings emitted, by rule and severity",
			},
			[]string{"rule_id", "severity"},
		),
		recipesValidated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dogmeal_recipes_validated_total",
				Help: "Candidate recipes validated, by outcome",
			},
			[]string{"outcome"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// PlanResolved implementa mealplans.Recorder.
func (c *Collector) PlanResolved(stage nutrition.LifeStage, vetReferral bool) {
	c.plansResolved.WithLabelValues(string(stage), strconv.FormatBool(vetReferral)).Inc()
}

// RecipeValidated implementa mealplans.Recorder.
func (c *Collector) RecipeValidated(results []nutrition.ValidationResult, accepted bool) {
	for _, r := range results {
		c.validationResults.WithLabelValues(r.RuleID, string(r.Severity)).Inc()
	}
	outcome := "accepted"
	if !accepted {
		outcome = "rejected"
	}
	c.recipesValidated.WithLabelValues(outcome).Inc()
}

// ObserveHTTP registra un request ya servido. route es el patrón chi, no el path.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
