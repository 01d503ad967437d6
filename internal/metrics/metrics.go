package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Forwarding metrics
	ForwardsTotal          *prometheus.CounterVec
	ForwardDurationSeconds *prometheus.HistogramVec

	// Outbound channel metrics
	OutboundTotal *prometheus.CounterVec

	// Flow store metrics
	FlowStoreOpsTotal *prometheus.CounterVec

	// Frontend proxy metrics
	ProxyRequestsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: processed, ignored
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edge_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"event_type"}, // event_type: message, postback, image
		),

		ForwardsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_forwards_total",
				Help: "Total number of backend forwards by target and status",
			},
			[]string{"target", "status"}, // status: success, failure
		),

		ForwardDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edge_forward_duration_seconds",
				Help:    "Backend forward duration in seconds by target",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"target"},
		),

		OutboundTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_outbound_messages_total",
				Help: "Total number of outbound LINE API calls by channel and status",
			},
			[]string{"channel", "status"}, // channel: reply, push, loading
		),

		FlowStoreOpsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_flow_store_ops_total",
				Help: "Total number of flow store operations by op and status",
			},
			[]string{"op", "status"}, // op: get, put, delete; status: hit, miss, ok, error
		),

		ProxyRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_proxy_requests_total",
				Help: "Total number of frontend proxy requests by status class",
			},
			[]string{"status_class"}, // 2xx, 4xx, 5xx, error
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // invalid_signature, bad_body, proxy_unconfigured
		),
	}

	return m
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordForward records a backend forward attempt
func (m *Metrics) RecordForward(target string, ok bool, duration float64) {
	status := "failure"
	if ok {
		status = "success"
	}
	m.ForwardsTotal.WithLabelValues(target, status).Inc()
	m.ForwardDurationSeconds.WithLabelValues(target).Observe(duration)
}

// RecordOutbound records an outbound LINE API call
func (m *Metrics) RecordOutbound(channel string, ok bool) {
	status := "failure"
	if ok {
		status = "success"
	}
	m.OutboundTotal.WithLabelValues(channel, status).Inc()
}

// RecordFlowStoreOp records a flow store operation
func (m *Metrics) RecordFlowStoreOp(op, status string) {
	m.FlowStoreOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordProxyRequest records a frontend proxy request by status class
func (m *Metrics) RecordProxyRequest(statusClass string) {
	m.ProxyRequestsTotal.WithLabelValues(statusClass).Inc()
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}
