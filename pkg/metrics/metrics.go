package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Store operation latency (seconds)
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_store_op_duration_seconds",
			Help:    "Entity store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "category"},
	)

	// Store operations by outcome
	StoreOpCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_store_op_total",
			Help: "Total number of entity store operations",
		},
		[]string{"operation", "category", "result"}, // result: ok, invalid, reference, error
	)

	// Session gate attempts
	AuthAttemptCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_auth_attempt_total",
			Help: "Total number of register and authenticate attempts",
		},
		[]string{"operation", "result"},
	)

	// Event publishing
	EventPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_event_publish_total",
			Help: "Total number of published events",
		},
		[]string{"routing_key", "status"}, // status: success, failed, skipped
	)

	// Slow queries seen by the pgx tracer
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"command"},
	)

	SlowQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracker_db_slow_query_duration_seconds",
			Help:    "Duration of slow queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
		},
	)
)

func RecordStoreOp(operation, category, result string, duration time.Duration) {
	StoreOpDuration.WithLabelValues(operation, category).Observe(duration.Seconds())
	StoreOpCount.WithLabelValues(operation, category, result).Inc()
}

func IncrementAuthAttempt(operation, result string) {
	AuthAttemptCount.WithLabelValues(operation, result).Inc()
}

func IncrementEventPublish(routingKey, status string) {
	EventPublishCount.WithLabelValues(routingKey, status).Inc()
}

func IncrementSlowQuery(command string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(command).Inc()
	SlowQueryDuration.Observe(duration.Seconds())
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
