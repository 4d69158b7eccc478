package retrieval

import (
	"context"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/document"
	"github.com/kailas-cloud/wayfarer/internal/index"
)

// Index is the similarity index contract used by retrieval.
type Index interface {
	Add(docs ...document.Document) error
	Search(vector []float32, k int) ([]index.Hit, error)
	Len() int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
