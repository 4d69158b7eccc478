package planner

import (
	"slices"
	"strings"
	"unicode"

	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
)

const (
	maxTips      = 5
	minTipLength = 20
)

var tipIndicators = []string{
	"tip:", "recommend", "suggest", "should", "best time", "avoid", "make sure", "don't forget",
}

// ExtractTips collects advice-like sentences from retrieved snippets, in result order.
func ExtractTips(results []result.Result) []string {
	tips := []string{}
	for i := range results {
		doc := results[i].Document()
		for _, sentence := range splitSentences(doc.Text()) {
			if len(sentence) <= minTipLength || !isTip(sentence) || slices.Contains(tips, sentence) {
				continue
			}
			tips = append(tips, sentence)
			if len(tips) == maxTips {
				return tips
			}
		}
	}
	return tips
}

func isTip(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, ind := range tipIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimFunc(text[start:i+1], isTrimmable); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimFunc(text[start:], isTrimmable); s != "" {
		out = append(out, s)
	}
	return out
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '*' || r == '•'
}
