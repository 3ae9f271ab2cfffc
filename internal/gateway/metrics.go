package gateway

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors. Each Gateway instance
// owns its own registry so tests can run side by side.
type Metrics struct {
	registry *prometheus.Registry

	webhookRequests *prometheus.CounterVec
	webhookDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the gateway collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		webhookRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "gateway",
			Name:      "webhook_requests_total",
			Help:      "Webhook requests by source and outcome.",
		}, []string{"source", "outcome"}),
		webhookDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tgbridge",
			Subsystem: "gateway",
			Name:      "webhook_request_duration_seconds",
			Help:      "Webhook handling latency by source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
	}
	reg.MustRegister(m.webhookRequests, m.webhookDuration)
	return m
}

// ObserveWebhook records one webhook request.
func (m *Metrics) ObserveWebhook(source, outcome string, d time.Duration) {
	m.webhookRequests.WithLabelValues(source, outcome).Inc()
	m.webhookDuration.WithLabelValues(source).Observe(d.Seconds())
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for modules that register their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
