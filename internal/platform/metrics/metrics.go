// Package metrics registers the Prometheus instruments for sync runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sync engine.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	RecordsTotal   *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	RowErrorsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mandata_sync_runs_total",
			Help: "Sync runs by source and outcome.",
		}, []string{"source", "outcome"}),
		RecordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mandata_sync_records_total",
			Help: "Records processed by source and disposition (created/updated/closed/matched).",
		}, []string{"source", "disposition"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mandata_sync_run_duration_seconds",
			Help:    "Wall time of one sync run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"source"}),
		RowErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mandata_sync_row_errors_total",
			Help: "Row-level errors recovered without aborting the run.",
		}, []string{"source"}),
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(source string, success bool, d time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.RunsTotal.WithLabelValues(source, outcome).Inc()
	m.RunDuration.WithLabelValues(source).Observe(d.Seconds())
}

// AddRecords bumps the disposition counter.
func (m *Metrics) AddRecords(source, disposition string, n int) {
	if n > 0 {
		m.RecordsTotal.WithLabelValues(source, disposition).Add(float64(n))
	}
}
