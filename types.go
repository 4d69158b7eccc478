package wayfarer

import (
	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

// Source describes where a knowledge snippet came from.
type Source struct {
	Name string
	URL  string
	Type string
}

// Document is a travel knowledge snippet.
// ID may be empty; AddDocuments then assigns doc_<n> by insertion order.
// A non-empty Vector skips embedding and must match the client dimension.
type Document struct {
	ID          string
	Text        string
	Destination string
	Categories  []string
	Locations   []string
	Source      Source
	Vector      []float32
}

// Query is a retrieval request.
// TopK of zero means the configured default; larger values are clamped to the maximum.
type Query struct {
	Text      string
	Location  string
	Interests []string
	TopK      int
}

// Result is a single ranked hit.
type Result struct {
	Document      Document
	Distance      float64
	RawScore      float64
	InterestScore int
	Score         float64
	// Sentiment is a keyword tone annotation of the text; it does not affect ranking.
	Sentiment Sentiment
}

// Risk scoring types shared with the internal scorer.
type (
	RiskInput       = riskuc.AssessInput
	RiskTables      = riskuc.Tables
	CrowdingWeights = riskuc.CrowdingWeights
	Assessment      = domrisk.Assessment
	ForecastDay     = domrisk.ForecastDay
	Event           = domrisk.Event
	Holiday         = domrisk.Holiday
	DateRange       = domrisk.DateRange
	Level           = domrisk.Level
	Tier            = domrisk.Tier
)

// Sentiment types of retrieved snippets.
type (
	Sentiment      = result.Sentiment
	SentimentLabel = result.SentimentLabel
)

// DefaultRiskTables returns the built-in cost and crowding weight tables.
func DefaultRiskTables() RiskTables { return riskuc.DefaultTables() }
