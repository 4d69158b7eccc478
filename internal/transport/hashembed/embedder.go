// Package hashembed is a deterministic feature-hashing embedder for offline use.
// It needs no model server, so it backs local development and CLI demos.
// Vectors capture token overlap only, not meaning.
package hashembed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Embedder hashes lower-cased word unigrams and bigrams into dim signed buckets
// and L2-normalises the result.
type Embedder struct {
	dim int
}

// New creates a hashing embedder producing dim-sized vectors.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = domain.DefaultDimensions
	}
	return &Embedder{dim: dim}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	tokens := tokenize(text)
	return domain.EmbeddingResult{Embedding: e.vector(tokens), TotalTokens: len(tokens)}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		res, err := e.Embed(ctx, t)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = res.Embedding
		out.TotalTokens += res.TotalTokens
	}
	out.PromptTokens = out.TotalTokens
	return out, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vector(tokens []string) []float32 {
	acc := make([]float64, e.dim)
	add := func(feature string, weight float64) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(feature))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dim))
		if sum>>63 == 1 {
			weight = -weight
		}
		acc[bucket] += weight
	}

	for i, tok := range tokens {
		add(tok, 1)
		if i > 0 {
			add(tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, e.dim)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
