package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dog-meal-planner/internal/adapters/energy/remote"
	pg "dog-meal-planner/internal/adapters/storage/postgres"
	"dog-meal-planner/internal/adapters/storage/sqlite"
	"dog-meal-planner/internal/domain/mealplans"
	"dog-meal-planner/internal/domain/nutrition"
	"dog-meal-planner/internal/platform/config"
	"dog-meal-planner/internal/platform/logger"
	"dog-meal-planner/internal/platform/metrics"
	"dog-meal-planner/internal/router"
)

// @title Dog Meal Planner API
// @version 1.0
// @description Resolución de targets nutricionales y validación de recetas caseras para perros.
// @BasePath /
func main() {
	cfg, err := config.Load(os.Getenv("DOGMEAL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, err := loadTables(cfg.Engine.TablesPath)
	if err != nil {
		return err
	}
	precedence, err := nutrition.ParsePrecedence(cfg.Engine.OverridePrecedence)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepo(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = closeRepo() }()

	opts := router.Options{
		Repo:       repo,
		Tables:     tables,
		Precedence: precedence,
		BatchLimit: cfg.Engine.BatchLimit,
		Logger:     log,
		Metrics:    metrics.New(),
	}

	calc, err := remote.NewClient(remote.Config{
		BaseURL: cfg.Energy.BaseURL,
		APIKey:  cfg.Energy.APIKey,
		Timeout: cfg.Energy.Timeout,
	})
	switch {
	case err == nil:
		opts.Energy = calc
	case errors.Is(err, remote.ErrNotConfigured):
		log.Info("energy calculator not configured; requests must carry energy", nil)
	default:
		return fmt.Errorf("energy client: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":           srv.Addr,
			"storage":        cfg.Storage.Driver,
			"tables_version": tables.Version,
			"precedence":     string(precedence),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadTables(path string) (*nutrition.ReferenceTables, error) {
	if path == "" {
		return nutrition.DefaultTables(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tables: %w", err)
	}
	defer f.Close()
	return nutrition.LoadTables(f)
}

func openRepo(ctx context.Context, cfg config.StorageConfig) (mealplans.Repository, func() error, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg.NewPlansRepo(db), db.Close, nil
	case "sqlite":
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		// nil => el router usa in-memory
		return nil, func() error { return nil }, nil
	}
}
