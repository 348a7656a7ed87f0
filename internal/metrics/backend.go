package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector backend Prometheus metrics, fed by backend.NewInstrumented.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecstore",
			Name:      "backend_requests_total",
			Help:      "Total number of vector backend requests",
		},
		[]string{"op", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vecstore",
			Name:      "backend_request_duration_seconds",
			Help:      "Vector backend request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers Prometheus backend metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	backendMetricsRegistered = true
}
