package retrieval

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/document"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/request"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	"github.com/kailas-cloud/wayfarer/internal/index"
	"github.com/kailas-cloud/wayfarer/internal/logger"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
)

// DefaultInterestBoost is the per-matching-category score multiplier increment.
const DefaultInterestBoost = 0.2

// Options tunes ranking.
type Options struct {
	InterestBoost float64
	Limits        request.Limits
}

// Service indexes knowledge snippets and answers ranked retrieval queries.
type Service struct {
	idx        Index
	docEmbed   Embedder
	queryEmbed Embedder
	boost      float64
	limits     request.Limits
}

// New creates a retrieval service. queryEmbed may be nil, in which case docEmbed
// is used for queries as well.
func New(idx Index, docEmbed, queryEmbed Embedder, opts Options) *Service {
	if queryEmbed == nil {
		queryEmbed = docEmbed
	}
	boost := opts.InterestBoost
	if boost <= 0 {
		boost = DefaultInterestBoost
	}
	return &Service{
		idx:        idx,
		docEmbed:   docEmbed,
		queryEmbed: queryEmbed,
		boost:      boost,
		limits:     opts.Limits,
	}
}

// NewRequest builds a request with the limits configured on this service.
func (s *Service) NewRequest(query, location string, interests []string, topK int) (request.Request, error) {
	return request.NewWithLimits(query, location, interests, topK, s.limits)
}

// Len returns the number of indexed documents.
func (s *Service) Len() int { return s.idx.Len() }

// AddDocuments embeds document texts in one batch and appends them to the index.
// Documents that already carry a vector are added as is.
func (s *Service) AddDocuments(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var (
		texts []string
		slots []int
	)
	for i := range docs {
		if len(docs[i].Vector()) == 0 {
			texts = append(texts, docs[i].Text())
			slots = append(slots, i)
		}
	}

	if len(texts) > 0 {
		res, err := domain.BatchOf(ctx, s.docEmbed, texts)
		if err != nil {
			return fmt.Errorf("vectorize documents: %w", err)
		}
		if len(res.Embeddings) != len(texts) {
			return fmt.Errorf("vectorize documents: %w: expected %d vectors, got %d",
				domain.ErrModelUnavailable, len(texts), len(res.Embeddings))
		}
		embedded := make([]document.Document, len(docs))
		copy(embedded, docs)
		for j, slot := range slots {
			embedded[slot] = embedded[slot].WithVector(res.Embeddings[j])
		}
		docs = embedded
	}

	if err := s.idx.Add(docs...); err != nil {
		return fmt.Errorf("add to index: %w", err)
	}
	metrics.IndexDocuments.Set(float64(s.idx.Len()))

	logger.From(ctx).Debug("Documents indexed",
		zap.Int("added", len(docs)),
		zap.Int("embedded", len(texts)),
		zap.Int("total", s.idx.Len()),
	)
	return nil
}

// Retrieve returns up to TopK snippets ranked by similarity boosted with interest overlap.
// Only documents whose destination contains the requested location survive.
func (s *Service) Retrieve(ctx context.Context, req *request.Request) ([]result.Result, error) {
	results, err := s.retrieve(ctx, req)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(results) == 0 {
		metrics.RetrievalRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.RetrievalRequestsTotal.WithLabelValues("ok").Inc()
	}
	metrics.RetrievalResults.Observe(float64(len(results)))
	return results, nil
}

func (s *Service) retrieve(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if s.idx.Len() == 0 {
		return []result.Result{}, nil
	}

	emb, err := s.queryEmbed.Embed(ctx, req.EnhancedQuery())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.idx.Search(emb.Embedding, req.FetchK())
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := s.rank(req, hits)

	logger.From(ctx).Debug("Knowledge retrieved",
		zap.String("location", req.Location()),
		zap.Int("candidates", len(hits)),
		zap.Int("returned", len(results)),
	)
	return results, nil
}

// rank filters hits by location, applies the interest boost and keeps the top k.
func (s *Service) rank(req *request.Request, hits []index.Hit) []result.Result {
	results := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		meta := h.Document.Metadata()
		if !meta.MatchesLocation(req.Location()) {
			continue
		}
		raw := index.Similarity(h.Distance)
		overlap := meta.InterestOverlap(req.Interests())
		final := raw * (1 + float64(overlap)*s.boost)
		results = append(results, result.New(h.Document, h.Distance, raw, overlap, final))
	}
	metrics.RetrievalFiltered.Observe(float64(len(hits) - len(results)))

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore() > results[j].FinalScore()
	})

	if len(results) > req.TopK() {
		results = results[:req.TopK()]
	}
	return results
}
