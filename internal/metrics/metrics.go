// Package metrics exposes Prometheus instrumentation for the signal loop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Alias1177/SmartMoney/internal/model"
)

// Metrics holds all Prometheus metrics of the bot.
type Metrics struct {
	Evaluations      *prometheus.CounterVec   // labels: asset, decision
	AlertsEmitted    *prometheus.CounterVec   // labels: asset, decision
	AlertsSuppressed *prometheus.CounterVec   // labels: asset
	Errors           *prometheus.CounterVec   // labels: asset, stage
	FetchDuration    *prometheus.HistogramVec // labels: provider
	CycleDuration    prometheus.Histogram
}

// New creates the metrics and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartmoney_evaluations_total",
			Help: "Signals composed, by asset and decision",
		}, []string{"asset", "decision"}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartmoney_alerts_emitted_total",
			Help: "State-changing alerts handed to the notifier",
		}, []string{"asset", "decision"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartmoney_alerts_suppressed_total",
			Help: "Actionable signals suppressed as duplicates",
		}, []string{"asset"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartmoney_evaluation_errors_total",
			Help: "Per-asset failures, by pipeline stage",
		}, []string{"asset", "stage"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartmoney_fetch_duration_seconds",
			Help:    "Candle fetch latency by provider",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartmoney_cycle_duration_seconds",
			Help:    "Duration of one evaluation cycle over every asset",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Evaluations,
			m.AlertsEmitted,
			m.AlertsSuppressed,
			m.Errors,
			m.FetchDuration,
			m.CycleDuration,
		)
	}
	return m
}

func (m *Metrics) ObserveEvaluation(asset string, d model.Decision) {
	m.Evaluations.WithLabelValues(asset, string(d)).Inc()
}

func (m *Metrics) ObserveEmitted(asset string, d model.Decision) {
	m.AlertsEmitted.WithLabelValues(asset, string(d)).Inc()
}

func (m *Metrics) ObserveSuppressed(asset string) {
	m.AlertsSuppressed.WithLabelValues(asset).Inc()
}

func (m *Metrics) ObserveError(asset, stage string) {
	m.Errors.WithLabelValues(asset, stage).Inc()
}

func (m *Metrics) ObserveFetch(provider string, d time.Duration) {
	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) ObserveCycle(d time.Duration) {
	m.CycleDuration.Observe(d.Seconds())
}
