package wayfarer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// --- Mocks ---

// keywordEmbedder counts a few keywords into a 4-dim vector; the last slot is a constant bias.
type keywordEmbedder struct {
	calls int
	err   error
}

var keywords = []string{"food", "temple", "beach"}

func (e *keywordEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return EmbeddingResult{}, e.err
	}
	vec := make([]float32, len(keywords)+1)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		for i, k := range keywords {
			if w == k {
				vec[i]++
			}
		}
	}
	vec[len(keywords)] = 1
	return EmbeddingResult{Embedding: vec, PromptTokens: 1, TotalTokens: 1}, nil
}

type batchKeywordEmbedder struct {
	keywordEmbedder
	batches int
}

func (e *batchKeywordEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	e.batches++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, err := e.keywordEmbedder.Embed(ctx, t)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = r.Embedding
	}
	return out, nil
}

type wrongDimEmbedder struct{}

func (wrongDimEmbedder) Embed(context.Context, string) (EmbeddingResult, error) {
	return EmbeddingResult{Embedding: []float32{1, 2}}, nil
}

// --- Helpers ---

func sampleDocs() []Document {
	return []Document{
		{ID: "bkk_food", Text: "Bangkok street food stalls", Destination: "Bangkok", Categories: []string{"food"}},
		{ID: "kyoto_temple", Text: "Kyoto temple walk", Destination: "Kyoto", Categories: []string{"culture"}},
		{ID: "phuket_beach", Text: "Phuket beach days", Destination: "Phuket, Thailand", Categories: []string{"nature"}},
	}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithEmbedder(&keywordEmbedder{}), WithDimensions(4)}, opts...)
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// --- Tests ---

func TestNew_Defaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if c.Dimension() != 384 {
		t.Errorf("dimension = %d, want 384", c.Dimension())
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
	if got := c.RiskTables().BaseCosts["mid-range"]; got != 150 {
		t.Errorf("mid-range base cost = %v, want 150", got)
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	_, err := New(WithDimensions(0))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNew_InvalidRiskTables(t *testing.T) {
	tables := DefaultRiskTables()
	tables.BaseCosts["budget"] = -1
	_, err := New(WithRiskTables(tables))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNoEmbedder_ModelUnavailable(t *testing.T) {
	c, err := New(WithDimensions(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = c.AddDocuments(context.Background(), sampleDocs()[0])
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("AddDocuments: expected ErrModelUnavailable, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("len = %d after failed add, want 0", c.Len())
	}

	// Pre-computed vectors skip the embedder; querying still needs it.
	doc := sampleDocs()[0]
	doc.Vector = []float32{1, 0, 0, 1}
	if err := c.AddDocuments(context.Background(), doc); err != nil {
		t.Fatalf("AddDocuments with vector: %v", err)
	}
	_, err = c.Retrieve(context.Background(), Query{Text: "food"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("Retrieve: expected ErrModelUnavailable, got %v", err)
	}
}

func TestAddDocuments_DefaultIDs(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	docs := sampleDocs()
	for i := range docs {
		docs[i].ID = ""
	}
	if err := c.AddDocuments(ctx, docs...); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	res, err := c.Retrieve(ctx, Query{Text: "temple", Location: "kyoto"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 1 || res[0].Document.ID != "doc_1" {
		t.Errorf("results = %+v, want doc_1", res)
	}
}

func TestAddDocuments_Duplicate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.AddDocuments(ctx, sampleDocs()...); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	err := c.AddDocuments(ctx, sampleDocs()[1])
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
}

func TestAddDocuments_Invalid(t *testing.T) {
	c := newTestClient(t)

	err := c.AddDocuments(context.Background(), Document{ID: "x", Text: "no destination"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddDocuments_DimensionMismatch(t *testing.T) {
	c, err := New(WithEmbedder(wrongDimEmbedder{}), WithDimensions(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.AddDocuments(context.Background(), sampleDocs()...)
	if !errors.Is(err, ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestAddDocuments_UsesBatchEmbedder(t *testing.T) {
	emb := &batchKeywordEmbedder{}
	c, err := New(WithEmbedder(emb), WithDimensions(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.AddDocuments(context.Background(), sampleDocs()...); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if emb.batches != 1 {
		t.Errorf("batches = %d, want 1", emb.batches)
	}
	if emb.calls != 3 {
		t.Errorf("calls = %d, want 3", emb.calls)
	}
}

func TestAddDocuments_EmbedderError(t *testing.T) {
	c, err := New(WithEmbedder(&keywordEmbedder{err: ErrModelUnavailable}), WithDimensions(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.AddDocuments(context.Background(), sampleDocs()...)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	c := newTestClient(t)

	res, err := c.Retrieve(context.Background(), Query{Text: "anything"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if res == nil || len(res) != 0 {
		t.Errorf("results = %#v, want empty slice", res)
	}
}

func TestRetrieve_Ranking(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.AddDocuments(ctx, sampleDocs()...); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	res, err := c.Retrieve(ctx, Query{Text: "temple", TopK: 3})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("got %d results, want 3", len(res))
	}
	if res[0].Document.ID != "kyoto_temple" || res[0].Distance != 0 || res[0].RawScore != 1 {
		t.Errorf("top = %+v, want exact kyoto_temple match", res[0])
	}

	// Query "temple food" sits at distance 1 from both Bangkok and Kyoto;
	// the food interest lifts Bangkok above Kyoto.
	res, err = c.Retrieve(ctx, Query{Text: "temple", Interests: []string{"Food", "food"}, TopK: 2})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[0].Document.ID != "bkk_food" || res[0].InterestScore != 1 {
		t.Errorf("top = %+v, want boosted bkk_food", res[0])
	}
	if res[0].Score <= res[1].Score {
		t.Errorf("scores not descending: %v, %v", res[0].Score, res[1].Score)
	}
}

func TestRetrieve_LocationFilter(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.AddDocuments(ctx, sampleDocs()...); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	res, err := c.Retrieve(ctx, Query{Text: "beach", Location: "thailand", TopK: 3})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 1 || res[0].Document.Destination != "Phuket, Thailand" {
		t.Errorf("results = %+v, want only Phuket", res)
	}
}

func TestRetrieve_SentimentAnnotation(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	err := c.AddDocuments(ctx,
		Document{ID: "crowded", Text: "beach is crowded and expensive", Destination: "Bali"},
		Document{ID: "lovely", Text: "beach sunsets are amazing", Destination: "Bali"},
	)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	res, err := c.Retrieve(ctx, Query{Text: "beach", TopK: 2})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 2 || res[0].Document.ID != "crowded" {
		t.Fatalf("results = %+v, want insertion order on equal distance", res)
	}
	if s := res[0].Sentiment; s.Label != "negative" || s.Score != -1 || s.Helpful {
		t.Errorf("crowded sentiment = %+v", s)
	}
	if s := res[1].Sentiment; s.Label != "positive" || !s.Helpful {
		t.Errorf("lovely sentiment = %+v", s)
	}
}

func TestRetrieve_InvalidQuery(t *testing.T) {
	c := newTestClient(t)

	if _, err := c.Retrieve(context.Background(), Query{Text: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty query: expected ErrInvalidInput, got %v", err)
	}
	if _, err := c.Retrieve(context.Background(), Query{Text: "food", TopK: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative top_k: expected ErrInvalidInput, got %v", err)
	}
}

func TestRetrieve_TopKClamped(t *testing.T) {
	c := newTestClient(t, WithTopK(1, 2))
	ctx := context.Background()
	if err := c.AddDocuments(ctx, sampleDocs()...); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	res, err := c.Retrieve(ctx, Query{Text: "food"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 1 {
		t.Errorf("default top_k: got %d results, want 1", len(res))
	}

	res, err = c.Retrieve(ctx, Query{Text: "food", TopK: 10})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 2 {
		t.Errorf("clamped top_k: got %d results, want 2", len(res))
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "knowledge.db")

	c := newTestClient(t)
	if err := c.AddDocuments(ctx, sampleDocs()...); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if err := c.Save(ctx, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := newTestClient(t)
	if err := restored.Load(ctx, path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Len() != 3 {
		t.Fatalf("len = %d, want 3", restored.Len())
	}
	res, err := restored.Retrieve(ctx, Query{Text: "beach", TopK: 1})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res) != 1 || res[0].Document.ID != "phuket_beach" {
		t.Errorf("results = %+v", res)
	}
	if got := res[0].Document.Categories; len(got) != 1 || got[0] != "nature" {
		t.Errorf("categories = %v, want [nature]", got)
	}

	other, err := New(WithEmbedder(&keywordEmbedder{}), WithDimensions(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := other.Load(ctx, path); !errors.Is(err, ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}

	renamed := newTestClient(t, WithModel("bge-small"))
	if err := renamed.Load(ctx, path); !errors.Is(err, ErrModelMismatch) {
		t.Errorf("expected ErrModelMismatch, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	c := newTestClient(t)
	err := c.Load(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(nil); got != "No relevant travel knowledge found." {
		t.Errorf("empty summary = %q", got)
	}

	got := Summary([]Result{
		{Document: Document{ID: "a", Text: "Night markets", Destination: "Bangkok"}},
		{Document: Document{ID: "b", Text: "Temples at dawn", Destination: "Kyoto"}},
	})
	want := "Travel knowledge summary:\n1. [Bangkok] Night markets\n2. [Kyoto] Temples at dawn"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}
