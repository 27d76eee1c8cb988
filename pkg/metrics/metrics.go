package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samudrayan_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// VerificationAttempts counts Aadhar verification attempts by method and outcome.
	VerificationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samudrayan_verification_attempts_total",
			Help: "Total number of Aadhar verification attempts",
		},
		[]string{"method", "result"},
	)

	// ProviderRequests counts outbound verification provider calls and their outcome.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samudrayan_provider_requests_total",
			Help: "Total number of verification provider requests",
		},
		[]string{"provider", "result"},
	)

	// BookingsCreated counts bookings accepted into pending_payment.
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "samudrayan_bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "samudrayan_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
