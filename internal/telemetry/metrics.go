package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkja"

// Metrics holds the collectors of one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	records       *prometheus.CounterVec
	batches       *prometheus.CounterVec
	batchDuration prometheus.Histogram
	runDuration   prometheus.Gauge
	lastRun       *prometheus.GaugeVec
}

// Record outcome labels.
const (
	OutcomeHashed    = "hashed"
	OutcomeInvalid   = "invalid"
	OutcomeDerived   = "derived"
	OutcomeException = "exception"
)

// Batch execution labels.
const (
	BatchPooled = "pooled"
	BatchInline = "inline"
)

// NewMetrics creates and registers the run collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records written, by outcome.",
		}, []string{"outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches processed, by where they ran.",
		}, []string{"mode"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time spent processing one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished, by final state.",
		}, []string{"state"}),
	}

	m.registry.MustRegister(m.records, m.batches, m.batchDuration, m.runDuration, m.lastRun)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddRecords counts n records with the given outcome.
func (m *Metrics) AddRecords(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.records.WithLabelValues(outcome).Add(float64(n))
}

// ObserveBatch records one processed batch.
func (m *Metrics) ObserveBatch(mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(mode).Inc()
	m.batchDuration.Observe(d.Seconds())
}

// ObserveRun records the end of a run.
func (m *Metrics) ObserveRun(state string, d time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.runDuration.Set(d.Seconds())
	m.lastRun.WithLabelValues(state).Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
