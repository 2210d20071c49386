// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FunctionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "function_requests_total",
			Help: "Total number of function invocations by status code",
		},
		[]string{"function", "status_code"},
	)

	FunctionRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "function_request_duration_seconds",
			Help: "Duration of function invocations in seconds",
		},
		[]string{"function"},
	)

	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_calls_total",
			Help: "Total number of upstream API calls by outcome",
		},
		[]string{"api", "outcome"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "upstream_call_duration_seconds",
			Help: "Duration of upstream API calls in seconds",
		},
		[]string{"api"},
	)
)
