package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for a single migration check run. The process is a batch job,
// so values are pushed once at exit rather than scraped.

var (
	// Invariant checker
	ChecksRunTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "invariant",
		Name:      "checks_run_total",
		Help:      "Total invariant checks executed",
	}, []string{"check"})

	ChecksSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "invariant",
		Name:      "checks_skipped_total",
		Help:      "Total invariant checks skipped because they were disabled",
	}, []string{"check"})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "invariant",
		Name:      "findings_total",
		Help:      "Total invariant findings by check and severity",
	}, []string{"check", "severity"})

	// Migration driver
	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coretime_check",
		Subsystem: "driver",
		Name:      "phase_duration_seconds",
		Help:      "Duration of each run phase",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"phase"})

	MigrationPollAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "driver",
		Name:      "migration_poll_attempts_total",
		Help:      "Total agenda reads while waiting for the migration to execute",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "driver",
		Name:      "runs_total",
		Help:      "Total check runs by result (pass, fail, fatal)",
	}, []string{"result"})

	// RPC
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total RPC calls by ledger, method and status",
	}, []string{"ledger", "method", "status"})

	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Total number of times an RPC call waited for a rate limit token",
	}, []string{"ledger"})

	// Report sinks
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts sent by channel and type",
	}, []string{"channel", "type"})

	ReportsPersistedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coretime_check",
		Subsystem: "store",
		Name:      "reports_persisted_total",
		Help:      "Total run reports written to the report store by status",
	}, []string{"status"})
)
