package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bridge host.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge metrics
	MessagesReceived prometheus.Counter
	RepliesDelivered prometheus.Counter
	MessagesDropped  *prometheus.CounterVec
	InstancesActive  prometheus.Gauge

	// Navigation metrics
	Navigations *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates the metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		MessagesReceived: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_messages_received_total",
				Help: "Total inbound bridge messages, before gating",
			},
		),
		RepliesDelivered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_replies_delivered_total",
				Help: "Total replies handed to a dispatch sink",
			},
		),
		MessagesDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_messages_dropped_total",
				Help: "Messages dropped, labeled by reason",
			},
			[]string{"reason"},
		),
		InstancesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_instances_active",
				Help: "Number of live bridge instances",
			},
		),

		Navigations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_navigations_total",
				Help: "Navigation attempts, labeled by outcome",
			},
			[]string{"outcome"},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}
}

// MessageReceived implements the bridge recorder contract.
func (m *Metrics) MessageReceived() {
	m.MessagesReceived.Inc()
}

// ReplyDelivered implements the bridge recorder contract.
func (m *Metrics) ReplyDelivered() {
	m.RepliesDelivered.Inc()
}

// MessageDropped implements the bridge recorder contract.
func (m *Metrics) MessageDropped(reason string) {
	m.MessagesDropped.WithLabelValues(reason).Inc()
}

// RecordNavigation counts a navigation attempt by outcome
// ("ok", "blocked", "failed").
func (m *Metrics) RecordNavigation(outcome string) {
	m.Navigations.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
