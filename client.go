package wayfarer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/db/sqlite"
	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/request"
	"github.com/kailas-cloud/wayfarer/internal/index"
	"github.com/kailas-cloud/wayfarer/internal/logger"
	retrievaluc "github.com/kailas-cloud/wayfarer/internal/usecase/retrieval"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

// Client is the wayfarer SDK entry point. It is safe for concurrent use.
type Client struct {
	idx       *index.Flat
	retrieval *retrievaluc.Service
	scorer    *riskuc.Scorer
	obs       *observer
}

// New creates a Client with an empty index.
func New(opts ...Option) (*Client, error) {
	vec := domain.DefaultVectorConfig()
	cfg := &clientConfig{
		dimensions: vec.Dimensions,
		model:      vec.Model,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dimensions <= 0 {
		return nil, fmt.Errorf("wayfarer: %w: dimensions must be positive, got %d",
			domain.ErrInvalidInput, cfg.dimensions)
	}

	idx, err := index.New(cfg.dimensions, cfg.model, sqlite.SnapshotStore{})
	if err != nil {
		return nil, fmt.Errorf("wayfarer: create index: %w", err)
	}

	tables := riskuc.DefaultTables()
	if cfg.riskTables != nil {
		tables = *cfg.riskTables
	}
	scorer, err := riskuc.NewScorer(tables)
	if err != nil {
		return nil, fmt.Errorf("wayfarer: risk tables: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	emb := domain.NewDimensionGuard(wrapEmbedder(cfg.embedder), cfg.dimensions)
	svc := retrievaluc.New(idx, emb, nil, retrievaluc.Options{
		InterestBoost: cfg.interestBoost,
		Limits:        request.Limits{DefaultTopK: cfg.defaultTopK, MaxTopK: cfg.maxTopK},
	})

	return &Client{idx: idx, retrieval: svc, scorer: scorer, obs: obs}, nil
}

// Close releases resources. The index lives in memory, so this is a no-op today.
func (c *Client) Close() {}

// Len returns the number of indexed documents.
func (c *Client) Len() int { return c.idx.Len() }

// Dimension returns the index vector dimension.
func (c *Client) Dimension() int { return c.idx.Dimension() }

// Save writes the index to a SQLite snapshot at path, creating parent directories.
func (c *Client) Save(ctx context.Context, path string) (err error) {
	defer func(start time.Time) { c.obs.observe("save", start, err) }(time.Now())

	if dir := filepath.Dir(path); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return c.idx.Save(c.withLogger(ctx), path)
}

// Load replaces the index contents with the snapshot at path.
// A missing file fails with ErrNotFound, a snapshot of another dimension with ErrVectorDimMismatch
// and one saved under another model (see WithModel) with ErrModelMismatch.
func (c *Client) Load(ctx context.Context, path string) (err error) {
	defer func(start time.Time) { c.obs.observe("load", start, err) }(time.Now())
	return c.idx.Load(c.withLogger(ctx), path)
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	if c.obs.logger == nil {
		return ctx
	}
	return logger.Into(ctx, c.obs.logger)
}

func wrapEmbedder(e Embedder) domain.Embedder {
	if e == nil {
		return noEmbedder{}
	}
	base := &embedderAdapter{inner: e}
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: base, batch: be}
	}
	return base
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

type batchEmbedderAdapter struct {
	*embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noEmbedder is installed when no embedder is configured.
type noEmbedder struct{}

func (noEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"wayfarer: %w: embedder not configured (use WithEmbedder)", domain.ErrModelUnavailable)
}
