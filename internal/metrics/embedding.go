package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const embeddingSubsystem = "embedding"

var (
	embeddingLabels = []string{"provider", "model"}

	embeddingRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: embeddingSubsystem,
		Name:      "requests_total",
		Help:      "Embedding provider calls by outcome",
	}, append(embeddingLabels, "status"))

	// Local Ollama calls finish in milliseconds, hosted APIs in hundreds of them.
	embeddingLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: embeddingSubsystem,
		Name:      "request_duration_seconds",
		Help:      "Latency of successful embedding provider calls",
		Buckets:   prometheus.ExponentialBuckets(0.004, 2.5, 8),
	}, embeddingLabels)

	embeddingTokens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: embeddingSubsystem,
		Name:      "tokens_total",
		Help:      "Tokens billed by the embedding provider",
	}, append(embeddingLabels, "type"))

	embeddingFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: embeddingSubsystem,
		Name:      "errors_total",
		Help:      "Embedding provider failures by kind",
	}, append(embeddingLabels, "error_type"))

	// EmbeddingCacheTotal counts cache lookups by result ("hit" or "miss").
	EmbeddingCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: embeddingSubsystem,
		Name:      "cache_total",
		Help:      "Embedding cache lookups by result",
	}, []string{"result"})
)

// EmbeddingRecorder records provider calls for one provider/model pair.
// The zero value is not usable; build it with NewEmbeddingRecorder.
type EmbeddingRecorder struct {
	provider string
	model    string
}

// NewEmbeddingRecorder binds the provider and model labels.
func NewEmbeddingRecorder(provider, model string) EmbeddingRecorder {
	return EmbeddingRecorder{provider: provider, model: model}
}

// Success records a completed call. Token counters move only when the provider reports usage.
func (r EmbeddingRecorder) Success(elapsed time.Duration, promptTokens, totalTokens int) {
	embeddingRequests.WithLabelValues(r.provider, r.model, "success").Inc()
	embeddingLatency.WithLabelValues(r.provider, r.model).Observe(elapsed.Seconds())
	if totalTokens <= 0 {
		return
	}
	embeddingTokens.WithLabelValues(r.provider, r.model, "prompt").Add(float64(promptTokens))
	embeddingTokens.WithLabelValues(r.provider, r.model, "total").Add(float64(totalTokens))
}

// Failure records a failed call under kind (api_error, count_mismatch).
func (r EmbeddingRecorder) Failure(kind string) {
	embeddingRequests.WithLabelValues(r.provider, r.model, "error").Inc()
	embeddingFailures.WithLabelValues(r.provider, r.model, kind).Inc()
}
