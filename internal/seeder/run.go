package seeder

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrFetchFailed = errors.New("tile fetch failed")

// DispatchError is the recorded outcome of one failed request.
type DispatchError struct {
	Descriptor string
	StatusCode int
	Err        error
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Descriptor, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Descriptor, e.Err)
}

func (e *DispatchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFetchFailed, e.Err}
	}
	return []error{ErrFetchFailed}
}

// Run tracks one seeding pass over a layer at a zoom level. Counters are
// updated by the workers and may be read concurrently.
type Run struct {
	Layer     string
	Zoom      int
	Total     int
	DryRun    bool
	StartedAt time.Time

	mu        sync.Mutex
	workers   int
	succeeded int
	failed    int
	skipped   int
	failures  []*DispatchError
	finished  bool
	aborted   bool
	duration  time.Duration
}

func newRun(cfg Config, total int) *Run {
	return &Run{
		Layer:     cfg.layer,
		Zoom:      cfg.zoom,
		Total:     total,
		DryRun:    cfg.dryRun,
		StartedAt: time.Now(),
	}
}

func (r *Run) setWorkers(n int) {
	r.mu.Lock()
	r.workers = n
	r.mu.Unlock()
}

func (r *Run) recordSuccess() {
	r.mu.Lock()
	r.succeeded++
	r.mu.Unlock()
}

func (r *Run) recordFailure(err *DispatchError) {
	r.mu.Lock()
	r.failed++
	r.failures = append(r.failures, err)
	r.mu.Unlock()
}

func (r *Run) recordSkipped(n int) {
	r.mu.Lock()
	r.skipped += n
	r.mu.Unlock()
}

func (r *Run) finish(aborted bool) {
	r.mu.Lock()
	r.finished = true
	r.aborted = aborted
	r.duration = time.Since(r.StartedAt)
	r.mu.Unlock()
}

func (r *Run) Workers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workers
}

func (r *Run) Succeeded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.succeeded
}

func (r *Run) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *Run) Skipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

// Completed counts requests that have an outcome, successful or not.
func (r *Run) Completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.succeeded + r.failed
}

// Failures returns a copy of the recorded failures.
func (r *Run) Failures() []*DispatchError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*DispatchError, len(r.failures))
	copy(out, r.failures)
	return out
}

func (r *Run) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

func (r *Run) Aborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

func (r *Run) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.finished {
		return time.Since(r.StartedAt)
	}
	return r.duration
}

// Status is a point-in-time copy of a Run, safe to serialize.
type Status struct {
	Layer     string        `json:"layer"`
	Zoom      int           `json:"zoom"`
	Total     int           `json:"total"`
	Workers   int           `json:"workers"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	DryRun    bool          `json:"dry_run"`
	Finished  bool          `json:"finished"`
	Aborted   bool          `json:"aborted"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Failures  []string      `json:"failures,omitempty"`
}

func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := r.duration
	if !r.finished {
		duration = time.Since(r.StartedAt)
	}

	failures := make([]string, 0, len(r.failures))
	for _, f := range r.failures {
		failures = append(failures, f.Error())
	}

	return Status{
		Layer:     r.Layer,
		Zoom:      r.Zoom,
		Total:     r.Total,
		Workers:   r.workers,
		Succeeded: r.succeeded,
		Failed:    r.failed,
		Skipped:   r.skipped,
		DryRun:    r.DryRun,
		Finished:  r.finished,
		Aborted:   r.aborted,
		StartedAt: r.StartedAt,
		Duration:  duration,
		Failures:  failures,
	}
}
