package result

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// SentimentLabel grades the tone of a snippet.
type SentimentLabel string

const (
	Positive SentimentLabel = "positive"
	Neutral  SentimentLabel = "neutral"
	Negative SentimentLabel = "negative"
)

// labelThreshold is the score magnitude above which a snippet is no longer neutral.
const labelThreshold = 0.3

var (
	inflections = []string{"", "s", "d", "ed", "ing", "ly"}

	positiveKeywords = []string{
		"amazing", "excellent", "beautiful", "wonderful", "great",
		"fantastic", "perfect", "love", "recommend", "best",
	}
	negativeKeywords = []string{
		"terrible", "awful", "bad", "worst", "avoid",
		"disappointing", "crowded", "expensive", "overrated", "waste",
	}
)

// Sentiment is a keyword-based tone annotation. It never affects ranking.
type Sentiment struct {
	Score   float64 // -1..1, rounded to two decimals
	Label   SentimentLabel
	Helpful bool // Score >= 0
}

// AnalyzeSentiment counts which positive and negative keywords occur in text.
// A keyword matches a word equal to it or to it plus a simple inflection
// ("recommended", "loved"), and each keyword counts at most once. Text without keywords is neutral with score 0.
func AnalyzeSentiment(text string) Sentiment {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	pos := countKeywords(words, positiveKeywords)
	neg := countKeywords(words, negativeKeywords)

	var score float64
	if total := pos + neg; total > 0 {
		score = float64(pos-neg) / float64(total)
	}

	label := Neutral
	switch {
	case score > labelThreshold:
		label = Positive
	case score < -labelThreshold:
		label = Negative
	}
	return Sentiment{
		Score:   math.Round(score*100) / 100,
		Label:   label,
		Helpful: score >= 0,
	}
}

func countKeywords(words, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if slices.ContainsFunc(words, func(w string) bool { return inflectionOf(w, kw) }) {
			n++
		}
	}
	return n
}

func inflectionOf(word, keyword string) bool {
	rest, ok := strings.CutPrefix(word, keyword)
	return ok && slices.Contains(inflections, rest)
}
