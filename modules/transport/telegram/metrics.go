package telegram

import "github.com/prometheus/client_golang/prometheus"

// transportMetrics counts inbound updates and outbound deliveries. A nil
// receiver is a no-op so the transport runs without a metrics registry.
type transportMetrics struct {
	inboundUpdates     *prometheus.CounterVec
	outboundDeliveries *prometheus.CounterVec
}

func newTransportMetrics(reg prometheus.Registerer) *transportMetrics {
	m := &transportMetrics{
		inboundUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "telegram",
			Name:      "inbound_updates_total",
			Help:      "Inbound webhook updates by kind and outcome.",
		}, []string{"kind", "outcome"}),
		outboundDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "telegram",
			Name:      "outbound_deliveries_total",
			Help:      "Outbound API calls by method and outcome.",
		}, []string{"method", "outcome"}),
	}
	reg.MustRegister(m.inboundUpdates, m.outboundDeliveries)
	return m
}

// IncInbound records one inbound update.
func (m *transportMetrics) IncInbound(kind, outcome string) {
	if m == nil {
		return
	}
	m.inboundUpdates.WithLabelValues(kind, outcome).Inc()
}

// IncOutbound records one outbound delivery attempt.
func (m *transportMetrics) IncOutbound(method, outcome string) {
	if m == nil {
		return
	}
	m.outboundDeliveries.WithLabelValues(method, outcome).Inc()
}
