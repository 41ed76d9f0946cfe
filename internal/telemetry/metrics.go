package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	QuoteOutcomes   *prometheus.CounterVec
	RatesOffered    prometheus.Histogram
	SettingsErrors  *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiprate_requests_total",
				Help: "Total number of GraphQL field resolutions by operation and status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiprate_request_duration_seconds",
				Help:    "Field resolution duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		QuoteOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiprate_quote_outcomes_total",
				Help: "Rate calculations by outcome (digital, no_zone, no_rates, rated)",
			},
			[]string{"outcome"},
		),
		RatesOffered: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shiprate_rates_offered",
				Help:    "Number of rates returned per calculation",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
		SettingsErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiprate_settings_errors_total",
				Help: "Store settings load failures by kind",
			},
			[]string{"kind"},
		),
	}
}

// RecordRequest records a field resolution.
func (m *Metrics) RecordRequest(operation, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordQuote records the outcome of a rate calculation.
func (m *Metrics) RecordQuote(outcome string, rates int) {
	m.QuoteOutcomes.WithLabelValues(outcome).Inc()
	m.RatesOffered.Observe(float64(rates))
}

// RecordSettingsError records a failure to load a store's settings.
func (m *Metrics) RecordSettingsError(kind string) {
	m.SettingsErrors.WithLabelValues(kind).Inc()
}
