// Package index implements exact (brute-force) L2 nearest-neighbour search over knowledge documents.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/db"
	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/document"
)

// Hit is a single search candidate.
type Hit struct {
	Document document.Document
	Distance float64
}

// Similarity maps an L2 distance to (0, 1]: 1/(1+d).
func Similarity(distance float64) float64 {
	return 1 / (1 + distance)
}

// Flat is an exact L2 index. Documents are kept in insertion order; concurrent
// searches are safe, writes are serialized.
type Flat struct {
	mu    sync.RWMutex
	dim   int
	model string
	docs  []document.Document
	ids   map[string]int
	store db.SnapshotStore
}

// New creates an empty index of the given dimension.
// model is recorded in snapshots for provenance; store persists Save/Load.
func New(dim int, model string, store db.SnapshotStore) (*Flat, error) {
	if dim <= 0 {
		return nil, domain.NewFieldError("dimension", "must be positive")
	}
	return &Flat{dim: dim, model: model, ids: make(map[string]int), store: store}, nil
}

// Dimension returns the vector size D.
func (f *Flat) Dimension() int { return f.dim }

// Model returns the embedding model the vectors were produced with.
func (f *Flat) Model() string { return f.model }

// Len returns the number of stored documents.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.docs)
}

// Add appends documents in order. The batch is rejected as a whole when any
// vector has the wrong dimension or any id already exists.
func (f *Flat) Add(docs ...document.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		d := &docs[i]
		if err := domain.CheckDimension(d.Vector(), f.dim); err != nil {
			return fmt.Errorf("document %q: %w", d.ID(), err)
		}
		if _, ok := f.ids[d.ID()]; ok {
			return fmt.Errorf("document %q: %w", d.ID(), domain.ErrAlreadyExists)
		}
		if _, ok := seen[d.ID()]; ok {
			return fmt.Errorf("document %q repeated in batch: %w", d.ID(), domain.ErrAlreadyExists)
		}
		seen[d.ID()] = struct{}{}
	}

	for _, d := range docs {
		f.ids[d.ID()] = len(f.docs)
		f.docs = append(f.docs, d.WithVector(slices.Clone(d.Vector())))
	}
	return nil
}

// Get returns a document by id.
func (f *Flat) Get(id string) (document.Document, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	i, ok := f.ids[id]
	if !ok {
		return document.Document{}, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	return f.docs[i], nil
}

// Documents returns a copy of all documents in insertion order.
func (f *Flat) Documents() []document.Document {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]document.Document, len(f.docs))
	copy(out, f.docs)
	return out
}

// Search returns up to k hits ordered by ascending L2 distance; ties keep insertion order.
// An empty index or k <= 0 yields an empty result.
func (f *Flat) Search(vector []float32, k int) ([]Hit, error) {
	if err := domain.CheckDimension(vector, f.dim); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if k <= 0 || len(f.docs) == 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, len(f.docs))
	for i, d := range f.docs {
		hits[i] = Hit{Document: d, Distance: l2(vector, d.Vector())}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Save persists every document and vector to path.
func (f *Flat) Save(ctx context.Context, path string) error {
	if f.store == nil {
		return fmt.Errorf("save index: %w", domain.ErrNotImplemented)
	}

	f.mu.RLock()
	snap := &db.Snapshot{
		Meta: db.SnapshotMeta{
			Dimension: f.dim,
			Model:     f.model,
			CreatedAt: time.Now().UTC(),
		},
		Records: make([]db.SnapshotRecord, len(f.docs)),
	}
	for i := range f.docs {
		snap.Records[i] = toRecord(&f.docs[i])
	}
	f.mu.RUnlock()

	if err := f.store.WriteSnapshot(ctx, path, snap); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Load replaces the index contents with the snapshot at path.
// A snapshot with a different dimension fails with ErrVectorDimMismatch, one recorded
// under a different model with ErrModelMismatch; both leave the index untouched.
// An empty model on either side skips the model check.
func (f *Flat) Load(ctx context.Context, path string) error {
	if f.store == nil {
		return fmt.Errorf("load index: %w", domain.ErrNotImplemented)
	}

	snap, err := f.store.ReadSnapshot(ctx, path)
	if err != nil {
		if errors.Is(err, db.ErrSnapshotNotFound) {
			return fmt.Errorf("load index %s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("load index: %w", err)
	}
	if snap.Meta.Dimension != f.dim {
		return fmt.Errorf("load index: %w: snapshot has %d, index expects %d",
			domain.ErrVectorDimMismatch, snap.Meta.Dimension, f.dim)
	}
	if snap.Meta.Model != "" && f.model != "" && snap.Meta.Model != f.model {
		return fmt.Errorf("load index: %w: snapshot built with %q, index uses %q",
			domain.ErrModelMismatch, snap.Meta.Model, f.model)
	}

	docs := make([]document.Document, len(snap.Records))
	ids := make(map[string]int, len(snap.Records))
	for i, r := range snap.Records {
		if _, dup := ids[r.ID]; dup {
			return fmt.Errorf("load index: %w: duplicate id %q", db.ErrSnapshotCorrupt, r.ID)
		}
		ids[r.ID] = i
		docs[i] = fromRecord(r)
	}

	f.mu.Lock()
	f.docs = docs
	f.ids = ids
	f.mu.Unlock()
	return nil
}

func toRecord(d *document.Document) db.SnapshotRecord {
	m := d.Metadata()
	src := m.Source()
	return db.SnapshotRecord{
		ID:          d.ID(),
		Text:        d.Text(),
		Destination: m.Destination(),
		Categories:  m.Categories(),
		Locations:   m.Locations(),
		SourceName:  src.Name,
		SourceURL:   src.URL,
		SourceType:  src.Type,
		Embedding:   d.Vector(),
	}
}

func fromRecord(r db.SnapshotRecord) document.Document {
	meta := document.ReconstructMetadata(r.Destination, r.Categories, r.Locations, document.Source{
		Name: r.SourceName, URL: r.SourceURL, Type: r.SourceType,
	})
	return document.Reconstruct(r.ID, r.Text, r.Embedding, meta)
}
