package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeDryRun    = "dry_run"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seeder_requests_total",
		Help: "Total number of tile requests issued against the render endpoint",
	}, []string{"status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seeder_request_duration_seconds",
		Help:    "Latency of tile requests in seconds",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"status"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seeder_runs_total",
		Help: "Total number of seeding runs by outcome",
	}, []string{"outcome"})

	Workers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seeder_workers",
		Help: "Number of seeding workers currently running",
	})

	TilesPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seeder_tiles_pending",
		Help: "Number of tile requests waiting for an outcome",
	})
)
