package metrics

import "github.com/prometheus/client_golang/prometheus"

// Knowledge retrieval metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Knowledge retrieval requests by outcome",
		},
		[]string{"status"}, // ok, empty, error
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Number of results returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	RetrievalFiltered = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_location_filtered",
			Help:      "Candidates dropped by the location filter per retrieval",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Documents currently held by the similarity index",
		},
	)
)
