package metrics

import "github.com/prometheus/client_golang/prometheus"

// Web search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragtools",
			Name:      "search_requests_total",
			Help:      "Total number of web search requests",
		},
		[]string{"provider", "status"}, // success / empty / error / disabled
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragtools",
			Name:      "search_request_duration_seconds",
			Help:      "Web search provider request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragtools",
			Name:      "search_errors_total",
			Help:      "Total web search provider errors",
		},
		[]string{"provider", "error_type"},
	)

	SearchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragtools",
			Name:      "search_results_total",
			Help:      "Total search results returned by providers",
		},
		[]string{"provider"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus web search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchErrorsTotal)
	prometheus.MustRegister(SearchResultsTotal)
	searchMetricsRegistered = true
}
