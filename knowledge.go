package wayfarer

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain/document"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	retrievaluc "github.com/kailas-cloud/wayfarer/internal/usecase/retrieval"
)

// AddDocuments validates, embeds and indexes docs in one batch.
// The batch is all-or-nothing: an invalid document, a duplicate id or an
// embedding failure leaves the index unchanged.
func (c *Client) AddDocuments(ctx context.Context, docs ...Document) (err error) {
	defer func(start time.Time) { c.obs.observe("add_documents", start, err) }(time.Now())

	base := c.idx.Len()
	internal := make([]document.Document, len(docs))
	for i := range docs {
		d, convErr := toDomainDocument(&docs[i], base+i)
		if convErr != nil {
			return fmt.Errorf("document %d: %w", i, convErr)
		}
		internal[i] = d
	}
	return c.retrieval.AddDocuments(c.withLogger(ctx), internal)
}

// Retrieve returns the snippets nearest to q, restricted to q.Location when
// set and boosted by overlap between document categories and q.Interests.
// An empty index yields an empty slice.
func (c *Client) Retrieve(ctx context.Context, q Query) (out []Result, err error) {
	defer func(start time.Time) { c.obs.observe("retrieve", start, err) }(time.Now())

	req, err := c.retrieval.NewRequest(q.Text, q.Location, q.Interests, q.TopK)
	if err != nil {
		return nil, err
	}
	results, err := c.retrieval.Retrieve(c.withLogger(ctx), &req)
	if err != nil {
		return nil, err
	}

	out = make([]Result, len(results))
	for i := range results {
		out[i] = fromDomainResult(&results[i])
	}
	return out, nil
}

// Summary renders results as the plain-text digest used in planner prompts.
func Summary(results []Result) string {
	internal := make([]result.Result, len(results))
	for i := range results {
		r := &results[i]
		meta := document.ReconstructMetadata(r.Document.Destination, nil, nil, document.Source{})
		doc := document.Reconstruct(r.Document.ID, r.Document.Text, nil, meta)
		internal[i] = result.New(doc, r.Distance, r.RawScore, r.InterestScore, r.Score)
	}
	return retrievaluc.Summary(internal)
}

func toDomainDocument(d *Document, position int) (document.Document, error) {
	meta, err := document.NewMetadata(d.Destination, d.Categories, d.Locations, document.Source{
		Name: d.Source.Name,
		URL:  d.Source.URL,
		Type: d.Source.Type,
	})
	if err != nil {
		return document.Document{}, err
	}
	id := d.ID
	if id == "" {
		id = document.DefaultID(position)
	}
	doc, err := document.New(id, d.Text, meta)
	if err != nil {
		return document.Document{}, err
	}
	if len(d.Vector) > 0 {
		doc = doc.WithVector(d.Vector)
	}
	return doc, nil
}

func fromDomainResult(r *result.Result) Result {
	doc := r.Document()
	meta := doc.Metadata()
	src := meta.Source()
	return Result{
		Document: Document{
			ID:          doc.ID(),
			Text:        doc.Text(),
			Destination: meta.Destination(),
			Categories:  meta.Categories(),
			Locations:   meta.Locations(),
			Source:      Source{Name: src.Name, URL: src.URL, Type: src.Type},
		},
		Distance:      r.Distance(),
		RawScore:      r.RawScore(),
		InterestScore: r.InterestScore(),
		Score:         r.FinalScore(),
		Sentiment:     r.Sentiment(),
	}
}
