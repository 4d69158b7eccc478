package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/document"
)

// Retrieval parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength = 4096
	DefaultTopK    = 3
	MaxTopK        = 50
)

// Limits bounds top_k. Zero fields fall back to the package defaults.
type Limits struct {
	DefaultTopK int
	MaxTopK     int
}

func (l Limits) normalized() Limits {
	if l.DefaultTopK <= 0 {
		l.DefaultTopK = DefaultTopK
	}
	if l.MaxTopK <= 0 {
		l.MaxTopK = MaxTopK
	}
	if l.DefaultTopK > l.MaxTopK {
		l.DefaultTopK = l.MaxTopK
	}
	return l
}

// Request is a validated knowledge retrieval query.
type Request struct {
	query     string
	location  string
	interests []string
	topK      int
}

// New validates and normalizes retrieval parameters with default limits.
func New(query, location string, interests []string, topK int) (Request, error) {
	return NewWithLimits(query, location, interests, topK, Limits{})
}

// NewWithLimits validates and normalizes retrieval parameters.
// topK 0 means the default; negative topK is rejected; values above the max are clamped.
// Interests are lower-cased and de-duplicated in first-seen order.
func NewWithLimits(query, location string, interests []string, topK int, lim Limits) (Request, error) {
	lim = lim.normalized()

	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, domain.NewFieldError("query", "is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, domain.NewFieldError("query", fmt.Sprintf("too long (max %d chars)", MaxQueryLength))
	}
	if topK < 0 {
		return Request{}, domain.NewFieldError("top_k", "must not be negative")
	}
	if topK == 0 {
		topK = lim.DefaultTopK
	}
	if topK > lim.MaxTopK {
		topK = lim.MaxTopK
	}

	norm, err := document.NormalizeTerms("interests", interests)
	if err != nil {
		return Request{}, err
	}

	return Request{
		query:     query,
		location:  strings.TrimSpace(location),
		interests: norm,
		topK:      topK,
	}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Location returns the destination filter.
func (r *Request) Location() string { return r.location }

// Interests returns the normalized interests.
func (r *Request) Interests() []string { return r.interests }

// TopK returns the number of results to return.
func (r *Request) TopK() int { return r.topK }

// EnhancedQuery joins location, query and interests with single spaces, skipping empty parts.
func (r *Request) EnhancedQuery() string {
	parts := make([]string, 0, 3)
	if r.location != "" {
		parts = append(parts, r.location)
	}
	parts = append(parts, r.query)
	if len(r.interests) > 0 {
		parts = append(parts, strings.Join(r.interests, " "))
	}
	return strings.Join(parts, " ")
}

// FetchK is the over-fetch size used before location filtering.
func (r *Request) FetchK() int { return 2 * r.topK }
