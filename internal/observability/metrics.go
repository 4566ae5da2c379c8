package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts pricing operations on a private registry so tests and
// multiple servers in one process never collide on registration.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	grandTotal *prometheus.HistogramVec
}

// NewMetrics registers the pricing collectors plus the Go runtime and process
// collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenderpricing",
			Name:      "operations_total",
			Help:      "Pricing operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenderpricing",
			Name:      "operation_duration_seconds",
			Help:      "Time spent per pricing operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
		grandTotal: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenderpricing",
			Name:      "grand_total",
			Help:      "Grand totals produced, by strategy.",
			Buckets:   prometheus.ExponentialBuckets(1000, 10, 7),
		}, []string{"strategy"}),
	}
	reg.MustRegister(
		m.operations,
		m.duration,
		m.grandTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for scraping in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnEvent records one operation. A "grand_totals" entry in Data, keyed by
// strategy, feeds the grand total histogram.
func (m *Metrics) OnEvent(_ context.Context, event Event) {
	if event.Operation == "" {
		return
	}

	outcome := "ok"
	if event.Err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(event.Operation, outcome).Inc()
	if event.Duration > 0 {
		m.duration.WithLabelValues(event.Operation).Observe(event.Duration.Seconds())
	}

	if totals, ok := event.Data["grand_totals"].(map[string]float64); ok {
		for strategy, v := range totals {
			m.grandTotal.WithLabelValues(strategy).Observe(v)
		}
	}
}
