// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EventsCreatedTotal counts events created since process start.
	EventsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planora_events_created_total",
		Help: "Total number of events created",
	})

	// TasksCreatedTotal counts tasks created since process start.
	TasksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planora_tasks_created_total",
		Help: "Total number of tasks created",
	})

	// TaskCompletionToggles counts task completion toggles by resulting state.
	TaskCompletionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planora_task_completion_toggles_total",
		Help: "Total number of task completion toggles by resulting state",
	}, []string{"state"})

	// LoginAttempts counts login attempts by outcome (success, failure, locked).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planora_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordToggle increments the task toggle counter for the resulting state.
func RecordToggle(completed bool) {
	state := "open"
	if completed {
		state = "completed"
	}
	TaskCompletionToggles.WithLabelValues(state).Inc()
}

// RecordLogin increments the login attempts counter for the outcome.
func RecordLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}
