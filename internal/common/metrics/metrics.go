// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProvisionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_provision_total",
			Help: "Total number of provisioning calls by outcome",
		},
		[]string{"outcome"}, // created, reused, conflict, error
	)

	ProvisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "variant_provision_duration_seconds",
			Help: "Duration of provisioning calls in seconds",
		},
	)

	SweepDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "variant_sweep_deleted_total",
			Help: "Total number of temporary variants deleted by the sweeper",
		},
	)

	SweepSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "variant_sweep_skipped_total",
			Help: "Total number of temporary variants skipped by the sweeper",
		},
	)

	SweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "variant_sweep_errors_total",
			Help: "Total number of per-variant delete failures during sweeps",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "variant_sweep_duration_seconds",
			Help: "Duration of cleanup passes in seconds",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	EventLogEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventlog_entries_total",
			Help: "Total number of event log entries by level",
		},
		[]string{"level"},
	)

	AlarmsFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventlog_alarms_fired_total",
			Help: "Total number of error-spike alarms fired",
		},
	)
)
