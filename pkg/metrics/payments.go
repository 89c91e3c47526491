package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics tracks payment sessions, gateway calls and IPN deliveries.
// All methods are safe on a nil receiver.
type PaymentMetrics struct {
	activeSessions prometheus.Gauge
	opens          *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	polls          *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	webhooks       *prometheus.CounterVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	m := &PaymentMetrics{
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "active_sessions",
			Help:      "Payment sessions currently held in memory.",
		}),
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "session_opens_total",
			Help:      "Session open attempts by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "session_transitions_total",
			Help:      "Session status transitions.",
		}, []string{"status", "reason"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "session_polls_total",
			Help:      "Status polls by outcome.",
		}, []string{"outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency of crypto gateway calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "webhook_events_total",
			Help:      "Gateway notifications by payment status and result.",
		}, []string{"payment_status", "result"}),
	}
	reg.MustRegister(m.activeSessions, m.opens, m.transitions, m.polls, m.gatewayLatency, m.webhooks)
	return m
}

func (m *PaymentMetrics) SessionStarted() {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *PaymentMetrics) SessionStopped() {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *PaymentMetrics) IncOpen(result string) {
	if m == nil || m.opens == nil {
		return
	}
	m.opens.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *PaymentMetrics) IncTransition(status, reason string) {
	if m == nil || m.transitions == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.transitions.WithLabelValues(normalizeLabel(status), reason).Inc()
}

func (m *PaymentMetrics) IncPoll(outcome string) {
	if m == nil || m.polls == nil {
		return
	}
	m.polls.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *PaymentMetrics) ObserveGateway(operation, outcome string, d time.Duration) {
	if m == nil || m.gatewayLatency == nil {
		return
	}
	m.gatewayLatency.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Observe(d.Seconds())
}

func (m *PaymentMetrics) IncWebhook(paymentStatus, result string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(paymentStatus), normalizeLabel(result)).Inc()
}
