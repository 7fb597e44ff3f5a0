package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaennil/guide_helper/backend/seeder/internal/repository/progress"
	"github.com/jaennil/guide_helper/backend/seeder/internal/tile"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/metrics"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrNoFetcher = errors.New("no fetcher configured")

// Fetcher issues one GetMap request against a render endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint, descriptor string) error
}

// Dispatcher turns a seeding config into requests and runs them on a
// worker pool sized by OptimalThreadCount.
type Dispatcher struct {
	fetcher Fetcher
	store   progress.Store
	logger  logger.Logger
}

// NewDispatcher creates a Dispatcher. store may be nil, in which case
// outcomes are only kept in the returned Run.
func NewDispatcher(f Fetcher, s progress.Store, l logger.Logger) *Dispatcher {
	if l == nil {
		l = logger.NewNoOp()
	}
	return &Dispatcher{
		fetcher: f,
		store:   s,
		logger:  l,
	}
}

// Prepare creates an empty Run covering every tile of cfg's zoom level.
func (d *Dispatcher) Prepare(cfg Config) *Run {
	return newRun(cfg, tile.Count(cfg.zoom))
}

// Run seeds cfg and blocks until every request has an outcome or ctx is
// done. The Run is returned in both cases.
func (d *Dispatcher) Run(ctx context.Context, cfg Config) (*Run, error) {
	run := d.Prepare(cfg)
	return run, d.Execute(ctx, cfg, run)
}

// Execute streams the tiles of cfg into the worker pool and records every
// outcome in run. Requests go to cfg's endpoint. A failed request never
// stops the others; cancelling ctx stops handing out work and leaves
// already recorded outcomes untouched.
func (d *Dispatcher) Execute(ctx context.Context, cfg Config, run *Run) error {
	l := logger.FromContextOr(ctx, d.logger).With("layer", cfg.layer, "zoom", cfg.zoom)

	ctx, span := telemetry.Tracer().Start(ctx, "seeder.run",
		trace.WithAttributes(
			attribute.String("seeder.layer", cfg.layer),
			attribute.Int("seeder.zoom", cfg.zoom),
			attribute.Int("seeder.tiles", run.Total),
			attribute.Bool("seeder.dry_run", cfg.dryRun),
			attribute.String("seeder.endpoint", cfg.endpoint),
		),
	)
	defer span.End()

	workers := OptimalThreadCount(cfg.maxThreads, run.Total)
	run.setWorkers(workers)

	l.Info("seeding started",
		"tiles", run.Total,
		"workers", workers,
		"endpoint", cfg.endpoint,
		"dry_run", cfg.dryRun,
		"resume", cfg.resume && d.store != nil,
	)

	if cfg.dryRun {
		d.logDryRun(ctx, cfg, l)
		run.finish(false)
		metrics.RunsTotal.WithLabelValues(metrics.OutcomeDryRun).Inc()
		return nil
	}

	if d.fetcher == nil {
		run.finish(true)
		return ErrNoFetcher
	}

	metrics.Workers.Add(float64(workers))
	defer metrics.Workers.Sub(float64(workers))

	reportEvery := run.Total / 10
	if reportEvery < 1 {
		reportEvery = 1
	}

	p := newPool(2 * workers)
	p.start(workers, func(_ int, t task) {
		defer metrics.TilesPending.Dec()
		if ctx.Err() != nil {
			return
		}
		d.dispatch(ctx, cfg, run, t, l)

		if done := run.Completed(); done%reportEvery == 0 {
			l.Info("seeding progress",
				"completed", done,
				"skipped", run.Skipped(),
				"total", run.Total,
				"failed", run.Failed(),
			)
		}
	})
	produceErr := d.produce(ctx, cfg, run, p)
	p.stop()

	aborted := ctx.Err() != nil
	run.finish(aborted || produceErr != nil)

	span.SetAttributes(
		attribute.Int("seeder.succeeded", run.Succeeded()),
		attribute.Int("seeder.failed", run.Failed()),
		attribute.Int("seeder.skipped", run.Skipped()),
	)

	if aborted {
		metrics.RunsTotal.WithLabelValues(metrics.OutcomeAborted).Inc()
		l.Warn("seeding aborted",
			"succeeded", run.Succeeded(),
			"failed", run.Failed(),
			"error", ctx.Err(),
		)
		span.SetStatus(codes.Error, "aborted")
		return ctx.Err()
	}

	if produceErr != nil {
		metrics.RunsTotal.WithLabelValues(metrics.OutcomeAborted).Inc()
		l.Error("seeding stopped", "error", produceErr)
		span.RecordError(produceErr)
		span.SetStatus(codes.Error, "tile enumeration failed")
		return produceErr
	}

	metrics.RunsTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	l.Info("seeding finished",
		"succeeded", run.Succeeded(),
		"failed", run.Failed(),
		"skipped", run.Skipped(),
		"duration", run.Duration(),
	)

	return nil
}

// produce walks the pyramid and queues one task per tile. Tiles the store
// already has as seeded are counted as skipped when resuming.
func (d *Dispatcher) produce(ctx context.Context, cfg Config, run *Run, p *pool) error {
	size := cfg.ImageSize()
	resume := cfg.resume && d.store != nil

	var lookupErr error
	index := 0
	err := tile.Each(cfg.zoom, cfg.tileSize, cfg.gutterSize, cfg.order, func(_ tile.Coordinates, b tile.BoundingBox) bool {
		if ctx.Err() != nil {
			return false
		}

		t := task{index: index, descriptor: cfg.template.Instantiate(b, size, size)}
		index++

		if resume {
			seeded, err := d.store.IsSeeded(ctx, progress.Key{Layer: cfg.layer, Zoom: cfg.zoom, Descriptor: t.descriptor})
			if err != nil {
				lookupErr = fmt.Errorf("failed to look up seeded tiles: %w", err)
				return false
			}
			if seeded {
				run.recordSkipped(1)
				return true
			}
		}

		metrics.TilesPending.Inc()
		if !p.submit(ctx, t) {
			metrics.TilesPending.Dec()
			return false
		}
		return true
	})
	if lookupErr != nil {
		return lookupErr
	}
	return err
}

func (d *Dispatcher) logDryRun(ctx context.Context, cfg Config, l logger.Logger) {
	if cfg.zoom > tile.MaxListZoom {
		l.Debug("dry run, too many tiles to list")
		return
	}

	size := cfg.ImageSize()
	_ = tile.Each(cfg.zoom, cfg.tileSize, cfg.gutterSize, cfg.order, func(_ tile.Coordinates, b tile.BoundingBox) bool {
		l.Debug("dry run, not requesting", "url", cfg.template.Instantiate(b, size, size))
		return ctx.Err() == nil
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, cfg Config, run *Run, t task, l logger.Logger) {
	start := time.Now()
	err := d.fetcher.Fetch(ctx, cfg.endpoint, t.descriptor)

	key := progress.Key{Layer: cfg.layer, Zoom: cfg.zoom, Descriptor: t.descriptor}

	if err != nil {
		if ctx.Err() != nil {
			// interrupted, the request is abandoned rather than failed
			return
		}

		dispatchErr := &DispatchError{Descriptor: t.descriptor, Err: err}
		var withStatus interface{ StatusCode() int }
		if errors.As(err, &withStatus) {
			dispatchErr.StatusCode = withStatus.StatusCode()
		}

		run.recordFailure(dispatchErr)
		metrics.RequestsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		l.Warn("tile request failed",
			"index", t.index,
			"duration", time.Since(start),
			"error", err,
		)

		if d.store != nil {
			if storeErr := d.store.MarkFailed(ctx, key, err.Error()); storeErr != nil {
				l.Warn("failed to record tile failure", "error", storeErr)
			}
		}
		return
	}

	run.recordSuccess()
	metrics.RequestsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	l.Debug("tile requested",
		"index", t.index,
		"duration", time.Since(start),
	)

	if d.store != nil {
		if storeErr := d.store.MarkSeeded(ctx, key); storeErr != nil {
			l.Warn("failed to record seeded tile", "error", storeErr)
		}
	}
}
