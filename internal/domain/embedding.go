package domain

import (
	"context"
	"fmt"
)

// DefaultDimensions is the vector size of the default sentence model (all-MiniLM-L6-v2).
const DefaultDimensions = 384

// Embedder is the shared text vectorization contract between layers.
// Implementations must not invent vectors when the model is unreachable:
// they return an error wrapping ErrModelUnavailable instead.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single call. Output order matches input order.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// BatchFallback calls Embed once per text, for providers without a native batch endpoint.
func BatchFallback(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))
	var totalPrompt, totalTokens int

	for i, text := range texts {
		res, err := e.Embed(ctx, text)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback embed [%d]: %w", i, err)
		}
		embeddings[i] = res.Embedding
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	return BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

// BatchOf returns a batch-capable view of e, falling back to per-text calls.
func BatchOf(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	if be, ok := e.(BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return BatchFallback(ctx, e, texts)
}

// CheckDimension fails with ErrVectorDimMismatch when len(vec) != dim.
func CheckDimension(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrVectorDimMismatch, dim, len(vec))
	}
	return nil
}

// DimensionGuard rejects provider output whose length differs from the configured dimension.
type DimensionGuard struct {
	inner Embedder
	dim   int
}

// NewDimensionGuard wraps inner with a fixed-dimension check.
func NewDimensionGuard(inner Embedder, dim int) *DimensionGuard {
	return &DimensionGuard{inner: inner, dim: dim}
}

// Embed delegates and validates the vector length.
func (g *DimensionGuard) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := g.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	if err := CheckDimension(res.Embedding, g.dim); err != nil {
		return EmbeddingResult{}, err
	}
	return res, nil
}

// BatchEmbed delegates and validates every vector length.
func (g *DimensionGuard) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	res, err := BatchOf(ctx, g.inner, texts)
	if err != nil {
		return BatchEmbeddingResult{}, err
	}
	if len(res.Embeddings) != len(texts) {
		return BatchEmbeddingResult{}, fmt.Errorf("%w: expected %d vectors, got %d",
			ErrModelUnavailable, len(texts), len(res.Embeddings))
	}
	for i, vec := range res.Embeddings {
		if err := CheckDimension(vec, g.dim); err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("vector [%d]: %w", i, err)
		}
	}
	return res, nil
}

// HealthCheck forwards to the wrapped embedder when it supports health checks.
func (g *DimensionGuard) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// InstructionEmbedder is a domain decorator that prepends instruction text before embedding.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends instruction and delegates to inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// BatchEmbed prepends instruction to each text and delegates to inner.
func (e *InstructionEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.instruction + t
	}

	res, err := BatchOf(ctx, e.inner, prefixed)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("instruction batch embed: %w", err)
	}
	return res, nil
}
