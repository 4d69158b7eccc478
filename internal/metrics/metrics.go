// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wayfarer"

var registerOnce sync.Once

// Register registers every collector with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			embeddingRequests,
			embeddingLatency,
			embeddingTokens,
			embeddingFailures,
			EmbeddingCacheTotal,
			RetrievalRequestsTotal,
			RetrievalResults,
			RetrievalFiltered,
			IndexDocuments,
			RiskAssessmentsTotal,
			QualityScore,
			SourceRequestsTotal,
			PlanDecisionsTotal,
		)
	})
}
