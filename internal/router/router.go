package router

import (
	"net/http"

	mem "dog-meal-planner/internal/adapters/storage/memory"
	"dog-meal-planner/internal/domain/mealplans"
	"dog-meal-planner/internal/domain/nutrition"
	"dog-meal-planner/internal/middleware"
	"dog-meal-planner/internal/platform/logger"
	"dog-meal-planner/internal/platform/metrics"
	"dog-meal-planner/internal/ports/energy"

	_ "dog-meal-planner/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si no viene, in-memory.
	Repo mealplans.Repository

	Tables     *nutrition.ReferenceTables   // nil => tablas embebidas
	Precedence nutrition.OverridePrecedence // "" => scan_order
	Energy     energy.Calculator            // puede ser nil: el request trae energy
	BatchLimit int

	Logger  logger.Logger
	Metrics *metrics.Collector // nil => sin /metrics
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	var obs middleware.HTTPObserver
	if opts.Metrics != nil {
		obs = opts.Metrics
	}
	r.Use(middleware.RequestLog(log, obs))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	repo := opts.Repo
	if repo == nil {
		repo = mem.NewPlansRepo()
	}
	tables := opts.Tables
	if tables == nil {
		tables = nutrition.DefaultTables()
	}
	precedence := opts.Precedence
	if precedence == "" {
		precedence = nutrition.PrecedenceScanOrder
	}

	svcOpts := []mealplans.Option{
		mealplans.WithLogger(log),
		mealplans.WithBatchLimit(opts.BatchLimit),
	}
	if opts.Energy != nil {
		svcOpts = append(svcOpts, mealplans.WithEnergyCalculator(opts.Energy))
	}
	if opts.Metrics != nil {
		svcOpts = append(svcOpts, mealplans.WithRecorder(opts.Metrics))
	}

	plansSvc := mealplans.NewService(repo, tables, precedence, svcOpts...)

	mealplans.RegisterRoutes(r, plansSvc)

	return r
}
