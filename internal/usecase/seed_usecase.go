package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaennil/guide_helper/backend/seeder/internal/repository/progress"
	"github.com/jaennil/guide_helper/backend/seeder/internal/seeder"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
)

var (
	ErrInvalidZoomRange = errors.New("invalid zoom range")
	ErrJobNotFound      = errors.New("seed job not found")
)

// Summary aggregates the runs of one seeding request over a zoom range.
type Summary struct {
	Layer     string          `json:"layer"`
	MinZoom   int             `json:"min_zoom"`
	MaxZoom   int             `json:"max_zoom"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Aborted   bool            `json:"aborted"`
	Runs      []seeder.Status `json:"runs"`
}

func summarize(layer string, minZoom, maxZoom int, runs []*seeder.Run) Summary {
	s := Summary{
		Layer:   layer,
		MinZoom: minZoom,
		MaxZoom: maxZoom,
		Runs:    make([]seeder.Status, 0, len(runs)),
	}
	for _, r := range runs {
		status := r.Status()
		s.Total += status.Total
		s.Succeeded += status.Succeeded
		s.Failed += status.Failed
		s.Skipped += status.Skipped
		s.Aborted = s.Aborted || status.Aborted
		s.Runs = append(s.Runs, status)
	}
	return s
}

// JobStatus is the state of an asynchronous seeding job.
type JobStatus struct {
	ID       string    `json:"id"`
	Running  bool      `json:"running"`
	Error    string    `json:"error,omitempty"`
	Created  time.Time `json:"created_at"`
	Progress Summary   `json:"progress"`
}

type job struct {
	id      string
	layer   string
	minZoom int
	maxZoom int
	created time.Time
	cancel  context.CancelFunc

	mu      sync.Mutex
	runs    []*seeder.Run
	running bool
	err     error
}

func (j *job) addRun(r *seeder.Run) {
	j.mu.Lock()
	j.runs = append(j.runs, r)
	j.mu.Unlock()
}

func (j *job) status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := JobStatus{
		ID:       j.id,
		Running:  j.running,
		Created:  j.created,
		Progress: summarize(j.layer, j.minZoom, j.maxZoom, j.runs),
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}
	return s
}

type SeedUseCase struct {
	dispatcher *seeder.Dispatcher
	logger     logger.Logger

	mu   sync.RWMutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

func NewSeedUseCase(f seeder.Fetcher, store progress.Store, l logger.Logger) *SeedUseCase {
	if l == nil {
		l = logger.NewNoOp()
	}
	return &SeedUseCase{
		dispatcher: seeder.NewDispatcher(f, store, l),
		logger:     l,
		jobs:       make(map[string]*job),
	}
}

func (uc *SeedUseCase) config(opts seeder.Options, minZoom, maxZoom int) (seeder.Config, error) {
	if minZoom > maxZoom {
		return seeder.Config{}, fmt.Errorf("%w: min %d is above max %d", ErrInvalidZoomRange, minZoom, maxZoom)
	}
	opts.Zoom = minZoom
	return seeder.NewConfig(opts)
}

// Seed seeds every zoom level in [minZoom, maxZoom] in order and blocks
// until done. Failed requests do not stop the loop, cancellation does.
func (uc *SeedUseCase) Seed(ctx context.Context, opts seeder.Options, minZoom, maxZoom int) (Summary, error) {
	cfg, err := uc.config(opts, minZoom, maxZoom)
	if err != nil {
		return Summary{}, err
	}

	var runs []*seeder.Run
	err = uc.seedLevels(ctx, cfg, minZoom, maxZoom, func(r *seeder.Run) {
		runs = append(runs, r)
	})

	return summarize(cfg.Layer(), minZoom, maxZoom, runs), err
}

func (uc *SeedUseCase) seedLevels(ctx context.Context, cfg seeder.Config, minZoom, maxZoom int, onRun func(*seeder.Run)) error {
	for zoom := minZoom; zoom <= maxZoom; zoom++ {
		zoomCfg, err := cfg.WithZoom(zoom)
		if err != nil {
			return err
		}

		run := uc.dispatcher.Prepare(zoomCfg)
		onRun(run)

		if err := uc.dispatcher.Execute(ctx, zoomCfg, run); err != nil {
			return fmt.Errorf("zoom level %d: %w", zoom, err)
		}
	}
	return nil
}

// Start validates the request and seeds it in the background. The returned
// id is used with Job.
func (uc *SeedUseCase) Start(opts seeder.Options, minZoom, maxZoom int) (string, error) {
	cfg, err := uc.config(opts, minZoom, maxZoom)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		id:      uuid.NewString(),
		layer:   cfg.Layer(),
		minZoom: minZoom,
		maxZoom: maxZoom,
		created: time.Now(),
		cancel:  cancel,
		running: true,
	}

	uc.mu.Lock()
	uc.jobs[j.id] = j
	uc.mu.Unlock()

	l := uc.logger.With("job_id", j.id)
	l.Info("seed job started", "layer", j.layer, "endpoint", cfg.Endpoint(), "min_zoom", minZoom, "max_zoom", maxZoom)

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		defer cancel()

		err := uc.seedLevels(logger.WithLogger(ctx, l), cfg, minZoom, maxZoom, j.addRun)

		j.mu.Lock()
		j.running = false
		j.err = err
		j.mu.Unlock()

		if err != nil {
			l.Warn("seed job stopped", "error", err)
			return
		}
		l.Info("seed job finished")
	}()

	return j.id, nil
}

func (uc *SeedUseCase) Job(id string) (JobStatus, error) {
	uc.mu.RLock()
	j, ok := uc.jobs[id]
	uc.mu.RUnlock()

	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return j.status(), nil
}

// Cancel stops a running job. Outcomes recorded so far are kept.
func (uc *SeedUseCase) Cancel(id string) error {
	uc.mu.RLock()
	j, ok := uc.jobs[id]
	uc.mu.RUnlock()

	if !ok {
		return ErrJobNotFound
	}
	j.cancel()
	return nil
}

// Shutdown cancels every job and waits for the workers to drain.
func (uc *SeedUseCase) Shutdown(ctx context.Context) error {
	uc.mu.RLock()
	for _, j := range uc.jobs {
		j.cancel()
	}
	uc.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// URLList is the ordered request list of one layer at one zoom level.
type URLList struct {
	Layer string
	Zoom  int
	URLs  []string
}

// URLs lists the request descriptors of one zoom level without any I/O.
func (uc *SeedUseCase) URLs(opts seeder.Options) (URLList, error) {
	cfg, err := seeder.NewConfig(opts)
	if err != nil {
		return URLList{}, err
	}
	urls, err := seeder.URLList(cfg)
	if err != nil {
		return URLList{}, err
	}
	return URLList{Layer: cfg.Layer(), Zoom: cfg.Zoom(), URLs: urls}, nil
}
