package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_service_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroll_service_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PayrollRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_service_requests_created_total",
			Help: "Payroll request creations by outcome",
		},
		[]string{"outcome"},
	)

	PaymentsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_service_payments_recorded_total",
			Help: "Payment ledger writes by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	CompletionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payroll_service_request_completion_failures_total",
			Help: "Payments recorded whose payroll request could not be marked completed",
		},
	)

	RequestsReconciledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payroll_service_requests_reconciled_total",
			Help: "Pending payroll requests completed by reconciliation",
		},
	)

	GatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_service_gateway_calls_total",
			Help: "Payment gateway calls by operation and outcome kind",
		},
		[]string{"operation", "outcome"},
	)

	GatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroll_service_gateway_call_duration_seconds",
			Help:    "Duration of payment gateway calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"operation"},
	)

	GatewayCircuitState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "payroll_service_gateway_circuit_open",
			Help: "1 while the payment gateway circuit breaker is open",
		},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_service_events_published_total",
			Help: "Payment events published to Kafka by outcome",
		},
		[]string{"topic", "outcome"},
	)

	GRPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_service_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status_code"},
	)

	GRPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroll_service_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PayrollRequestsTotal,
		PaymentsRecordedTotal,
		CompletionFailuresTotal,
		RequestsReconciledTotal,
		GatewayCallsTotal,
		GatewayCallDuration,
		GatewayCircuitState,
		EventsPublishedTotal,
		GRPCRequestsTotal,
		GRPCRequestDuration,
	)
}

// ObserveGatewayCall records one gateway round trip.
func ObserveGatewayCall(operation, outcome string, started time.Time) {
	GatewayCallsTotal.WithLabelValues(operation, outcome).Inc()
	GatewayCallDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
