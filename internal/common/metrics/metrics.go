// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Worker job metrics, labelled by Zeebe task type.
var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Decision engine metrics.
var (
	DecisionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_runs_total",
			Help: "Ranking runs by outcome (ok, empty, unavailable, error)",
		},
		[]string{"status"},
	)

	// DecisionCandidates observes pool sizes at each stage of a run:
	// fetched, eligible, returned.
	DecisionCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "decision_candidates",
			Help:    "Number of candidates per ranking stage",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"stage"},
	)

	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "decision_run_duration_seconds",
			Help:    "End-to-end ranking duration including inventory fetch",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	OverridesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_overrides_applied_total",
			Help: "Overrides applied to ranked results by kind (disabled, force_review)",
		},
		[]string{"kind"},
	)

	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "decision_audit_write_failures_total",
			Help: "Audit records that could not be written",
		},
	)

	WeightsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_weights_cache_lookups_total",
			Help: "Weights cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
