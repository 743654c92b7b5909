package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the operation/handler instrumentation surface shared by
// every module. Service wrappers record operations; message handler
// wrappers record handler counters.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, module string)
	RecordOperationSuccess(ctx context.Context, operation, module string)
	RecordOperationFailure(ctx context.Context, operation, module string)
	RecordOperationDuration(ctx context.Context, operation, module string, duration time.Duration)

	RecordHandlerAttempt(handler string)
	RecordHandlerSuccess(handler string)
	RecordHandlerFailure(handler string)
	RecordHandlerDuration(handler string, seconds float64)

	RecordDBOperationError(ctx context.Context, operation string)
}

// PrometheusMetrics implements Metrics on a prometheus registry.
type PrometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec

	handlerAttempts  *prometheus.CounterVec
	handlerSuccesses *prometheus.CounterVec
	handlerFailures  *prometheus.CounterVec
	handlerDuration  *prometheus.HistogramVec

	dbErrors *prometheus.CounterVec
}

// NewPrometheusMetrics registers the engine metric vectors on the
// given registry.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_operation_attempts_total",
			Help: "Service operation attempts by operation and module.",
		}, []string{"operation", "module"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_operation_successes_total",
			Help: "Service operation successes by operation and module.",
		}, []string{"operation", "module"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_operation_failures_total",
			Help: "Service operation failures by operation and module.",
		}, []string{"operation", "module"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_operation_duration_seconds",
			Help:    "Service operation duration by operation and module.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "module"}),
		handlerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_handler_attempts_total",
			Help: "Message handler attempts by handler.",
		}, []string{"handler"}),
		handlerSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_handler_successes_total",
			Help: "Message handler successes by handler.",
		}, []string{"handler"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_handler_failures_total",
			Help: "Message handler failures by handler.",
		}, []string{"handler"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_handler_duration_seconds",
			Help:    "Message handler duration by handler.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler"}),
		dbErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_db_operation_errors_total",
			Help: "Repository operation errors by operation.",
		}, []string{"operation"}),
	}

	registry.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.handlerAttempts,
		m.handlerSuccesses,
		m.handlerFailures,
		m.handlerDuration,
		m.dbErrors,
	)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, module string) {
	m.operationAttempts.WithLabelValues(operation, module).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, module string) {
	m.operationSuccesses.WithLabelValues(operation, module).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, module string) {
	m.operationFailures.WithLabelValues(operation, module).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, module string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation, module).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordHandlerAttempt(handler string) {
	m.handlerAttempts.WithLabelValues(handler).Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(handler string) {
	m.handlerSuccesses.WithLabelValues(handler).Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(handler string) {
	m.handlerFailures.WithLabelValues(handler).Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(handler string, seconds float64) {
	m.handlerDuration.WithLabelValues(handler).Observe(seconds)
}

func (m *PrometheusMetrics) RecordDBOperationError(_ context.Context, operation string) {
	m.dbErrors.WithLabelValues(operation).Inc()
}

// NoOpMetrics satisfies Metrics without recording anything. Tests use it.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string) {}

func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string) {}

func (NoOpMetrics) RecordOperationFailure(context.Context, string, string) {}

func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}

func (NoOpMetrics) RecordHandlerAttempt(string) {}

func (NoOpMetrics) RecordHandlerSuccess(string) {}

func (NoOpMetrics) RecordHandlerFailure(string) {}

func (NoOpMetrics) RecordHandlerDuration(string, float64) {}

func (NoOpMetrics) RecordDBOperationError(context.Context, string) {}

// NoOpLogger discards all log output. Tests use it.
var NoOpLogger = newNoOpLogger()
