package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jaennil/guide_helper/backend/seeder/internal/fetcher"
	v1 "github.com/jaennil/guide_helper/backend/seeder/internal/infrastructure/http/v1"
	"github.com/jaennil/guide_helper/backend/seeder/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/guide_helper/backend/seeder/internal/repository/progress"
	"github.com/jaennil/guide_helper/backend/seeder/internal/seeder"
	"github.com/jaennil/guide_helper/backend/seeder/internal/usecase"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/config"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/telemetry"
)

// SeederOptions maps the SEEDER_ section onto dispatcher options.
func SeederOptions(cfg *config.Config) seeder.Options {
	return seeder.Options{
		Layer:      cfg.Seeder.Layer,
		URLFormat:  cfg.Seeder.URLFormat,
		Version:    cfg.Seeder.Version,
		TileSize:   cfg.Seeder.TileSize,
		GutterSize: cfg.Seeder.GutterSize,
		Endpoint:   cfg.Seeder.Endpoint,
		MaxThreads: cfg.Seeder.MaxThreads,
		Zoom:       cfg.Seeder.MinZoom,
		DryRun:     cfg.Seeder.DryRun,
		Resume:     cfg.Seeder.Resume,
	}
}

// configFields lists the settings worth logging at startup. Store
// credentials are left out.
func configFields(cfg *config.Config) []any {
	return []any{
		"layer", cfg.Seeder.Layer,
		"url_format", cfg.Seeder.URLFormat,
		"version", cfg.Seeder.Version,
		"endpoint", cfg.Seeder.Endpoint,
		"tile_size", cfg.Seeder.TileSize,
		"gutter_size", cfg.Seeder.GutterSize,
		"max_threads", cfg.Seeder.MaxThreads,
		"min_zoom", cfg.Seeder.MinZoom,
		"max_zoom", cfg.Seeder.MaxZoom,
		"dry_run", cfg.Seeder.DryRun,
		"resume", cfg.Seeder.Resume,
		"store", cfg.Store.Driver,
		"port", cfg.HTTP.Server.Port,
		"telemetry", cfg.Telemetry.Enabled,
	}
}

func initTelemetry(cfg *config.Config, l logger.Logger) func() {
	if !cfg.Telemetry.Enabled {
		return func() {}
	}

	shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Telemetry.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	}, l)
	if err != nil {
		l.Fatal("failed to initialize telemetry", "error", err)
	}
	l.Info("telemetry initialized", "service", cfg.Telemetry.ServiceName)

	return func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			l.Error("failed to shutdown telemetry", "error", err)
		}
	}
}

func newSeedUseCase(cfg *config.Config, l logger.Logger) (*usecase.SeedUseCase, progress.Store, error) {
	store, err := NewProgressStore(cfg, l)
	if err != nil {
		return nil, nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.Config{
		Timeout:   cfg.Seeder.RequestTimeout,
		UserAgent: cfg.Seeder.UserAgent,
	}, l)

	return usecase.NewSeedUseCase(f, store, l), store, nil
}

// Seed runs one blocking seeding pass over the configured zoom range.
func Seed(ctx context.Context, cfg *config.Config) (usecase.Summary, error) {
	l := logger.NewZapLogger(cfg.Logger.Level)
	defer l.Sync()

	l.Info("starting seeder", configFields(cfg)...)

	shutdownTelemetry := initTelemetry(cfg, l)
	defer shutdownTelemetry()

	uc, store, err := newSeedUseCase(cfg, l)
	if err != nil {
		return usecase.Summary{}, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			l.Error("failed to close progress store", "error", err)
		}
	}()

	summary, err := uc.Seed(logger.WithLogger(ctx, l), SeederOptions(cfg), cfg.Seeder.MinZoom, cfg.Seeder.MaxZoom)
	if err != nil {
		l.Error("seeding stopped", "error", err)
		return summary, err
	}

	l.Info("seeding completed",
		"layer", summary.Layer,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

// URLs lists the request descriptors of one zoom level. No store or
// endpoint is touched.
func URLs(cfg *config.Config, zoom int) (usecase.URLList, error) {
	opts := SeederOptions(cfg)
	opts.Zoom = zoom
	opts.DryRun = true
	return usecase.NewSeedUseCase(nil, nil, logger.NewNoOp()).URLs(opts)
}

// Serve exposes the seeding API until SIGINT or SIGTERM.
func Serve(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)
	defer l.Sync()

	l.Info("starting seeder service", configFields(cfg)...)

	shutdownTelemetry := initTelemetry(cfg, l)
	defer shutdownTelemetry()

	uc, store, err := newSeedUseCase(cfg, l)
	if err != nil {
		l.Fatal("failed to initialize progress store", "error", err)
	}
	defer store.Close()

	h := handler.NewHandler(validator.New(), uc, handler.Defaults{
		Options: SeederOptions(cfg),
		MinZoom: cfg.Seeder.MinZoom,
		MaxZoom: cfg.Seeder.MaxZoom,
	})

	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.Server.ReadTimeout,
		WriteTimeout: cfg.HTTP.Server.WriteTimeout,
		IdleTimeout:  cfg.HTTP.Server.IdleTimeout,
	}

	go func() {
		l.Info("starting http server", "port", cfg.HTTP.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Error("server forced to shutdown", "error", err)
	}

	if err := uc.Shutdown(ctx); err != nil {
		l.Warn("timeout waiting for seed jobs to stop", "error", err)
	}

	l.Info("server stopped")
}
