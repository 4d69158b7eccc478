package retrieval

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
)

const (
	summaryResults = 3
	summarySnippet = 200
)

// Summary renders the top results as a short plain-text digest.
func Summary(results []result.Result) string {
	if len(results) == 0 {
		return "No relevant travel knowledge found."
	}

	var b strings.Builder
	b.WriteString("Travel knowledge summary:\n")
	for i := range results {
		if i == summaryResults {
			break
		}
		r := &results[i]
		doc := r.Document()
		meta := doc.Metadata()
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, meta.Destination(), r.Snippet(summarySnippet))
	}
	return strings.TrimRight(b.String(), "\n")
}
