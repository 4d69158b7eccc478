package metrics

import "github.com/prometheus/client_golang/prometheus"

// Risk scoring and trip planning metrics.
var (
	RiskAssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Risk levels produced, by category",
		},
		[]string{"category", "level"}, // budget|weather|crowding|comfort x low|medium|high
	)

	QualityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quality_score",
			Help:      "Distribution of overall trip quality scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	SourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "External data source calls",
		},
		[]string{"source", "kind", "status"}, // live|mock x weather|events|rates|holidays x ok|error
	)

	PlanDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_decisions_total",
			Help:      "Trip plan approval gate decisions",
		},
		[]string{"decision"},
	)
)
