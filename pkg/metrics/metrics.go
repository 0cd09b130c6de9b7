// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// StreamDuration tracks end-to-end duration of one streamed chat turn.
	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_stream_duration_seconds",
			Help:    "Duration of a streamed chat turn",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"model", "status"},
	)

	// StreamEventsTotal tracks emitted stream events by type.
	StreamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_stream_events_total",
			Help: "Stream events emitted, by event type",
		},
		[]string{"type"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// AuditRecordsTotal tracks audit records appended, by outcome.
	AuditRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_total",
			Help: "Audit records appended, by outcome",
		},
		[]string{"outcome"},
	)

	// AuditQueueDepth tracks records waiting in the async audit queue.
	AuditQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Records waiting in the async audit queue",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordStream records metrics for one completed chat turn.
func RecordStream(model, status string, duration float64, tokensIn, tokensOut int) {
	StreamDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordStreamEvent records one emitted stream event.
func RecordStreamEvent(eventType string) {
	StreamEventsTotal.WithLabelValues(eventType).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}

// RecordAuditAppend records one audit append outcome.
func RecordAuditAppend(outcome string) {
	AuditRecordsTotal.WithLabelValues(outcome).Inc()
}
