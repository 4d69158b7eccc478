package result

import "github.com/kailas-cloud/wayfarer/internal/domain/document"

// Result is a single ranked retrieval hit.
type Result struct {
	doc           document.Document
	distance      float64
	rawScore      float64
	interestScore int
	finalScore    float64
	sentiment     Sentiment
}

// New creates a ranked result. rawScore is the index similarity, finalScore the boosted score.
// The sentiment annotation is derived from the document text.
func New(doc document.Document, distance, rawScore float64, interestScore int, finalScore float64) Result {
	return Result{
		doc: doc, distance: distance, rawScore: rawScore,
		interestScore: interestScore, finalScore: finalScore,
		sentiment: AnalyzeSentiment(doc.Text()),
	}
}

// Document returns the matched document.
func (r *Result) Document() document.Document { return r.doc }

// Distance returns the L2 distance to the query vector.
func (r *Result) Distance() float64 { return r.distance }

// RawScore returns 1/(1+distance).
func (r *Result) RawScore() float64 { return r.rawScore }

// InterestScore returns the number of document categories matching the interests.
func (r *Result) InterestScore() int { return r.interestScore }

// FinalScore returns the interest-boosted score used for ranking.
func (r *Result) FinalScore() float64 { return r.finalScore }

// Sentiment returns the keyword tone of the document text.
func (r *Result) Sentiment() Sentiment { return r.sentiment }

// Snippet returns at most n bytes of the text, cut on a rune boundary, with "..." when truncated.
func (r *Result) Snippet(n int) string {
	text := r.doc.Text()
	if len(text) <= n {
		return text
	}
	cut := 0
	for i := range text {
		if i > n {
			break
		}
		cut = i
	}
	return text[:cut] + "..."
}
