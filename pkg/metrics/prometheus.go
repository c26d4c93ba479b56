package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	EventsPlayed      *prometheus.CounterVec
	DispatchDuration  prometheus.Histogram
	DispatchFailures  *prometheus.CounterVec
	CleanupStatements *prometheus.CounterVec
	TaskRuns          *prometheus.CounterVec
	SessionOperations *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EventsPlayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_played_total",
			Help:      "The total number of events delivered to a callback",
		}, []string{"mode"}),
		DispatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time taken to deliver an event to its callback",
			Buckets:   prometheus.DefBuckets,
		}),
		DispatchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_failures_total",
			Help:      "The total number of failed callback deliveries",
		}, []string{"kind"}),
		CleanupStatements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_statements_total",
			Help:      "The total number of executed cleanup statements",
		}, []string{"result"}),
		TaskRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "The total number of additional task executions",
		}, []string{"type", "result"}),
		SessionOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_operations_total",
			Help:      "The total number of session operations",
		}, []string{"operation", "status"}),
	}
}

func (m *Metrics) ObservePlay(mode string) {
	if m == nil {
		return
	}
	m.EventsPlayed.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveDispatch(d time.Duration, failureKind string) {
	if m == nil {
		return
	}
	m.DispatchDuration.Observe(d.Seconds())
	if failureKind != "" {
		m.DispatchFailures.WithLabelValues(failureKind).Inc()
	}
}

func (m *Metrics) ObserveStatement(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.CleanupStatements.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTask(taskType string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.TaskRuns.WithLabelValues(taskType, result).Inc()
}

func (m *Metrics) ObserveSession(operation, status string) {
	if m == nil {
		return
	}
	m.SessionOperations.WithLabelValues(operation, status).Inc()
}
