package risk

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
)

// OtherInterest is the cost table key applied to interests without their own entry.
const OtherInterest = "other"

// CrowdingWeights are the density contributions of holidays and events by popularity.
type CrowdingWeights struct {
	Holiday float64
	High    float64
	Medium  float64
	Low     float64
}

// Tables holds the configurable constants of the scorer.
type Tables struct {
	BudgetDestinations []string
	LuxuryDestinations []string
	BaseCosts          map[domrisk.Tier]float64
	InterestCosts      map[string]float64
	Crowding           CrowdingWeights
}

// DefaultTables returns the built-in cost and weight tables.
func DefaultTables() Tables {
	return Tables{
		BudgetDestinations: []string{
			"bangkok", "bali", "cairo", "delhi", "hanoi",
			"ho chi minh", "kathmandu", "lima", "marrakech", "mexico city",
		},
		LuxuryDestinations: []string{
			"dubai", "geneva", "maldives", "monaco", "oslo", "reykjavik", "zurich",
		},
		BaseCosts: map[domrisk.Tier]float64{
			domrisk.TierBudget:   50,
			domrisk.TierMidRange: 150,
			domrisk.TierLuxury:   300,
		},
		InterestCosts: map[string]float64{
			"food":        30,
			"culture":     20,
			"shopping":    50,
			"nightlife":   40,
			"adventure":   60,
			OtherInterest: 10,
		},
		Crowding: CrowdingWeights{Holiday: 4, High: 2, Medium: 1, Low: 0.5},
	}
}

// WithDefaults fills every unset part of t from DefaultTables.
// Keys are lower-cased and trimmed, destination lists are sorted.
func (t Tables) WithDefaults() Tables {
	def := DefaultTables()

	out := Tables{
		BudgetDestinations: normalizeKeys(t.BudgetDestinations),
		LuxuryDestinations: normalizeKeys(t.LuxuryDestinations),
		BaseCosts:          make(map[domrisk.Tier]float64, len(def.BaseCosts)),
		InterestCosts:      make(map[string]float64),
		Crowding:           t.Crowding,
	}
	if len(out.BudgetDestinations) == 0 {
		out.BudgetDestinations = normalizeKeys(def.BudgetDestinations)
	}
	if len(out.LuxuryDestinations) == 0 {
		out.LuxuryDestinations = normalizeKeys(def.LuxuryDestinations)
	}

	for tier, cost := range def.BaseCosts {
		out.BaseCosts[tier] = cost
	}
	for tier, cost := range t.BaseCosts {
		out.BaseCosts[tier] = cost
	}

	if len(t.InterestCosts) == 0 {
		for k, v := range def.InterestCosts {
			out.InterestCosts[k] = v
		}
	} else {
		for k, v := range t.InterestCosts {
			out.InterestCosts[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
	if _, ok := out.InterestCosts[OtherInterest]; !ok {
		out.InterestCosts[OtherInterest] = def.InterestCosts[OtherInterest]
	}

	if out.Crowding == (CrowdingWeights{}) {
		out.Crowding = def.Crowding
	}
	return out
}

// Validate checks that every cost and weight is a finite non-negative number
// and that base costs are positive.
func (t Tables) Validate() error {
	for _, tier := range []domrisk.Tier{domrisk.TierBudget, domrisk.TierMidRange, domrisk.TierLuxury} {
		cost, ok := t.BaseCosts[tier]
		if !ok || !finite(cost) || cost <= 0 {
			return domain.NewFieldError("risk.base_costs."+string(tier), "must be a positive number")
		}
	}
	for k, v := range t.InterestCosts {
		if !finite(v) || v < 0 {
			return domain.NewFieldError("risk.interest_costs."+k, "must be a non-negative number")
		}
	}
	weights := map[string]float64{
		"holiday": t.Crowding.Holiday,
		"high":    t.Crowding.High,
		"medium":  t.Crowding.Medium,
		"low":     t.Crowding.Low,
	}
	for k, v := range weights {
		if !finite(v) || v < 0 {
			return domain.NewFieldError("risk.crowding_weights."+k, "must be a non-negative number")
		}
	}
	return nil
}

// Tier classifies a destination: luxury keys are tried first, then budget keys.
// A key matches when its words appear as consecutive whole words of the destination,
// so "Lima, Peru" is budget while "Limassol" is not. Everything else is mid-range.
func (t *Tables) Tier(destination string) domrisk.Tier {
	dest := words(destination)
	if len(dest) == 0 {
		return domrisk.TierMidRange
	}
	for _, key := range t.LuxuryDestinations {
		if containsPhrase(dest, words(key)) {
			return domrisk.TierLuxury
		}
	}
	for _, key := range t.BudgetDestinations {
		if containsPhrase(dest, words(key)) {
			return domrisk.TierBudget
		}
	}
	return domrisk.TierMidRange
}

// words lower-cases s and splits it on anything that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsPhrase(haystack, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(haystack) {
		return false
	}
	for i := 0; i+len(phrase) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

// InterestCost returns the per-day cost of one normalized interest.
func (t *Tables) InterestCost(interest string) float64 {
	if c, ok := t.InterestCosts[interest]; ok {
		return c
	}
	return t.InterestCosts[OtherInterest]
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validateFinite(field string, v float64) error {
	if !finite(v) {
		return domain.NewFieldError(field, fmt.Sprintf("must be a finite number, got %v", v))
	}
	return nil
}
