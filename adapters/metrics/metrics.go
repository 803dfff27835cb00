// Package metrics provides Prometheus metrics collection for the gateway.
package metrics

import (
	"strconv"

	"github.com/artpar/paygate/domain/admission"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "paygate"

// Collector holds all Prometheus metrics for the gateway.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Admission metrics
	Admissions    *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	RevenueTotal  *prometheus.CounterVec
	RateLimitHits *prometheus.CounterVec

	// Settlement metrics
	WebhookEvents *prometheus.CounterVec
	ArchiveWrites *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),

		Admissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admissions_total",
				Help:      "Requests admitted to a priced endpoint",
			},
			[]string{"endpoint", "status"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Requests rejected by the admission pipeline",
			},
			[]string{"endpoint", "code"},
		),
		RevenueTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "revenue_total",
				Help:      "Amount charged for admitted requests, in the accepted token",
			},
			[]string{"endpoint", "token"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of rate limit rejections",
			},
			[]string{"endpoint"},
		),

		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Settlement webhook events by type and result",
			},
			[]string{"type", "result"},
		),
		ArchiveWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_writes_total",
				Help:      "Ledger archive batch writes by result (ok, error, dropped)",
			},
			[]string{"result"},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// ObserveDecision records the outcome of one admission.
func (c *Collector) ObserveDecision(endpoint string, d admission.Decision, entryStatus string) {
	if d.Admitted {
		c.Admissions.WithLabelValues(endpoint, entryStatus).Inc()
		amount, _ := d.Charge.AmountCharged.Float64()
		c.RevenueTotal.WithLabelValues(endpoint, d.Charge.Token).Add(amount)
		return
	}

	c.Rejections.WithLabelValues(endpoint, d.Rejection.Code).Inc()
	if d.Rejection.Code == admission.CodeRateLimitExceeded {
		c.RateLimitHits.WithLabelValues(endpoint).Inc()
	}
}

// StatusLabel buckets an HTTP status code (2xx, 4xx, ...).
func StatusLabel(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
