package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and indexing Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediasearch",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by serving backend and outcome",
		},
		[]string{"backend", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mediasearch",
			Name:      "search_request_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediasearch",
			Name:      "search_fallbacks_total",
			Help:      "Searches re-run on the fallback backend, by reason",
		},
		[]string{"reason"},
	)

	DatastoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediasearch",
			Name:      "datastore_operations_total",
			Help:      "Primary store lifecycle operations",
		},
		[]string{"op", "status"},
	)

	IndexItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediasearch",
			Name:      "index_items_total",
			Help:      "Indexed items by outcome",
		},
		[]string{"status"}, // "created" / "updated" / "error"
	)

	ExpansionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediasearch",
			Name:      "expansion_requests_total",
			Help:      "Query expansion requests by outcome",
		},
		[]string{"status"}, // "ok" / "error" / "cache_hit" / "skipped"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search Prometheus metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(DatastoreOperationsTotal)
	prometheus.MustRegister(IndexItemsTotal)
	prometheus.MustRegister(ExpansionRequestsTotal)
	searchMetricsRegistered = true
}
