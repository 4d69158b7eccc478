package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// MaxTextSize is the maximum knowledge text size in bytes.
const MaxTextSize = 163840 // 160KB

// Document is a knowledge snippet with its embedding (immutable value object).
type Document struct {
	id       string
	text     string
	vector   []float32
	metadata Metadata
}

// New validates and creates a Document without a vector.
// ID: ^[a-zA-Z0-9_.:-]+$, 1-256 chars. Text: non-empty, max 160KB.
func New(id, text string, meta Metadata) (Document, error) {
	if id == "" {
		return Document{}, domain.NewFieldError("id", "is required")
	}
	if len(id) > 256 {
		return Document{}, domain.NewFieldError("id", "too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, domain.NewFieldError("id", "must be alphanumeric with _ . : -")
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, domain.NewFieldError("text", "is required")
	}
	if len(text) > MaxTextSize {
		return Document{}, domain.NewFieldError("text", fmt.Sprintf("too large (max %d bytes)", MaxTextSize))
	}
	if meta.destination == "" {
		return Document{}, domain.NewFieldError("metadata.destination", "is required")
	}

	return Document{id: id, text: text, metadata: meta}, nil
}

// DefaultID returns the positional identifier used when a source document carries none.
func DefaultID(n int) string { return fmt.Sprintf("doc_%d", n) }

// Reconstruct creates a Document without validation (snapshot hydration).
func Reconstruct(id, text string, vector []float32, meta Metadata) Document {
	return Document{id: id, text: text, vector: vector, metadata: meta}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the knowledge text.
func (d *Document) Text() string { return d.text }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// Metadata returns the document metadata.
func (d *Document) Metadata() Metadata { return d.metadata }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	return Document{id: d.id, text: d.text, metadata: d.metadata, vector: v}
}
