package wayfarer

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder Embedder

	dimensions    int
	model         string
	interestBoost float64
	defaultTopK   int
	maxTopK       int
	riskTables    *RiskTables

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the text embedding provider. Required for AddDocuments
// on documents without vectors and for Retrieve.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the index vector dimension.
// Defaults to 384 (all-MiniLM-L6-v2).
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithModel records the embedding model name in saved snapshots.
func WithModel(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = name
	})
}

// WithInterestBoost sets the score multiplier increment per matching category.
// Default: 0.2.
func WithInterestBoost(boost float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.interestBoost = boost
	})
}

// WithTopK sets the default and maximum number of results per query.
// Defaults: 3 and 50.
func WithTopK(defaultK, maxK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultTopK = defaultK
		c.maxTopK = maxK
	})
}

// WithRiskTables replaces the scorer cost and weight tables.
// Unset parts fall back to DefaultRiskTables.
func WithRiskTables(t RiskTables) Option {
	return optionFunc(func(c *clientConfig) {
		c.riskTables = &t
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
