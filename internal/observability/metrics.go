package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LifecycleOps counts soft-delete lifecycle operations by entity and
	// outcome. Restore no-ops are counted separately from real restores so
	// idempotent retries stay visible.
	LifecycleOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_lifecycle_operations_total",
		Help: "Total soft-delete lifecycle operations by entity, operation and outcome",
	}, []string{"entity", "operation", "outcome"})

	// StatusTransitions counts workflow status transitions by entity and target.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_status_transitions_total",
		Help: "Total workflow status transitions by entity and target status",
	}, []string{"entity", "to", "outcome"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskhive_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketRoomConnections is the gauge of connections per chat room.
	WebSocketRoomConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "taskhive_websocket_room_connections",
		Help: "Number of WebSocket connections per chat room",
	}, []string{"room_id"})

	// MessageThroughput counts chat messages processed per room.
	MessageThroughput = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_message_throughput_total",
		Help: "Total number of chat messages processed",
	}, []string{"room_id"})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// outbound buffer was full or its send channel already closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhive_websocket_backpressure_drops_total",
		Help: "Total WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
