// Package trip holds the validated trip request consumed by the planner.
package trip

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/document"
	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
)

// MaxDays is the longest trip the planner accepts.
const MaxDays = 30

// DefaultCurrency applies when the request names none.
const DefaultCurrency = "USD"

// Trip is a validated trip request (immutable value object).
type Trip struct {
	destination string
	window      risk.DateRange
	budget      float64
	currency    string
	interests   []string
}

// New validates a trip request. Dates are YYYY-MM-DD; the window is inclusive.
func New(destination, startDate, endDate string, budget float64, currency string, interests []string) (Trip, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return Trip{}, domain.NewFieldError("destination", "is required")
	}

	start, err := risk.ParseDate(strings.TrimSpace(startDate))
	if err != nil {
		return Trip{}, domain.NewFieldError("start_date", "must be YYYY-MM-DD")
	}
	end, err := risk.ParseDate(strings.TrimSpace(endDate))
	if err != nil {
		return Trip{}, domain.NewFieldError("end_date", "must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return Trip{}, domain.NewFieldError("end_date", "must not be before start_date")
	}
	window := risk.DateRange{Start: start, End: end}
	if window.Days() > MaxDays {
		return Trip{}, domain.NewFieldError("end_date", fmt.Sprintf("trip longer than %d days", MaxDays))
	}

	if math.IsNaN(budget) || math.IsInf(budget, 0) || budget <= 0 {
		return Trip{}, domain.NewFieldError("budget", "must be a positive number")
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return Trip{}, domain.NewFieldError("currency", "must be a 3-letter code")
	}

	norm, err := document.NormalizeTerms("interests", interests)
	if err != nil {
		return Trip{}, err
	}

	return Trip{
		destination: destination,
		window:      window,
		budget:      budget,
		currency:    currency,
		interests:   norm,
	}, nil
}

// Destination returns the trip destination.
func (t *Trip) Destination() string { return t.destination }

// Window returns the inclusive trip dates.
func (t *Trip) Window() risk.DateRange { return t.window }

// Days returns the trip length in days, counting both ends.
func (t *Trip) Days() int { return t.window.Days() }

// Budget returns the budget in Currency.
func (t *Trip) Budget() float64 { return t.budget }

// Currency returns the ISO currency code of the budget.
func (t *Trip) Currency() string { return t.currency }

// Interests returns the normalized interests.
func (t *Trip) Interests() []string { return t.interests }
