package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for a Relay and its preference
// services.
type Metrics struct {
	EventsPublishedTotal prometheus.Counter
	DeliveriesTotal      *prometheus.CounterVec
	DeliveryLatency      prometheus.Histogram
	ActiveSubscriptions  prometheus.Gauge
	StickyEvents         prometheus.Gauge
	PrefOpsTotal         *prometheus.CounterVec
}

// NewMetrics creates pulse metric instruments and registers them with reg.
// Pass prometheus.DefaultRegisterer for the process-wide registry, or a
// fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsPublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_events_published_total",
			Help: "Total number of events published.",
		}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_deliveries_total",
			Help: "Total number of delivery attempts by status.",
		}, []string{"status"}),
		DeliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulse_delivery_latency_seconds",
			Help:    "Handler execution latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_active_subscriptions",
			Help: "Number of live subscriptions.",
		}),
		StickyEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_sticky_events",
			Help: "Number of retained sticky events.",
		}),
		PrefOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_pref_ops_total",
			Help: "Total number of preference operations by op and status.",
		}, []string{"op", "status"}),
	}

	reg.MustRegister(
		m.EventsPublishedTotal,
		m.DeliveriesTotal,
		m.DeliveryLatency,
		m.ActiveSubscriptions,
		m.StickyEvents,
		m.PrefOpsTotal,
	)
	return m
}

// RecordDelivery records one delivery attempt with its status and handler latency.
func (m *Metrics) RecordDelivery(status string, latencySeconds float64) {
	m.DeliveriesTotal.WithLabelValues(status).Inc()
	m.DeliveryLatency.Observe(latencySeconds)
}

// RecordPrefOp records one preference operation, deriving the status label
// from err.
func (m *Metrics) RecordPrefOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PrefOpsTotal.WithLabelValues(op, status).Inc()
}
