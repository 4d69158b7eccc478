// Package risk holds the value types produced and consumed by the trip risk scorer.
package risk

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Level is a discrete risk or comfort grade.
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// IsValid reports whether l is one of the known levels.
func (l Level) IsValid() bool {
	switch l {
	case Low, Medium, High:
		return true
	}
	return false
}

// Tier is a destination cost tier.
type Tier string

const (
	TierBudget   Tier = "budget"
	TierMidRange Tier = "mid-range"
	TierLuxury   Tier = "luxury"
)

// DateLayout is the calendar date format used across the API.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DateRange is an inclusive calendar window. The zero value is unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unbounded.
func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Validate rejects a bounded range whose end is before its start.
// Open-ended ranges are always valid.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return nil
	}
	if truncateDay(r.End).Before(truncateDay(r.Start)) {
		return domain.NewFieldError("window", "end must not be before start")
	}
	return nil
}

// Contains reports whether t falls inside the window (day granularity).
// Zero dates are always inside.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() || t.IsZero() {
		return true
	}
	d := truncateDay(t)
	if !r.Start.IsZero() && d.Before(truncateDay(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(truncateDay(r.End)) {
		return false
	}
	return true
}

// Days returns the inclusive number of days in a bounded range, 0 otherwise.
func (r DateRange) Days() int {
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}
	return int(truncateDay(r.End).Sub(truncateDay(r.Start)).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ForecastDay is one day of a weather forecast.
// Temperatures are optional (nil when the source does not report them), in degrees Celsius.
type ForecastDay struct {
	Date                time.Time
	Condition           string
	PrecipitationChance int // percent, 0..100
	TemperatureHigh     *float64
	TemperatureLow      *float64
}

// Popularity grades how much crowding an event causes.
type Popularity string

const (
	PopularityLow    Popularity = "low"
	PopularityMedium Popularity = "medium"
	PopularityHigh   Popularity = "high"
)

// Event is a local happening during the trip.
type Event struct {
	Name       string
	Date       time.Time
	Category   string
	Popularity Popularity
}

// Holiday is a public holiday.
type Holiday struct {
	Name string
	Date time.Time
}

// BudgetRisk is the outcome of the budget rule.
type BudgetRisk struct {
	Tier              Tier
	DailyCost         float64 // base + interests, before exchange rate
	EstimatedCost     float64
	BudgetRatio       float64
	OverrunPercentage int
	Level             Level
	Recommendations   []string
}

// WeatherRisk is the outcome of the weather rule.
type WeatherRisk struct {
	RainyDays       int
	TotalDays       int
	RainPercentage  float64
	HotDays         int
	ColdDays        int
	ExtremeDays     int
	BestDay         *time.Time
	Level           Level
	Recommendations []string
}

// CrowdingRisk is the outcome of the crowding rule.
type CrowdingRisk struct {
	Score              float64
	Level              Level
	ContributingEvents []string
	Recommendations    []string
}

// QualityScore is the aggregated trip quality.
type QualityScore struct {
	Overall      int
	Budget       float64
	Weather      float64
	Crowding       float64
	ComfortLevel   Level
	Recommendation string
}

// Safety is a travel advisory for a destination. Score runs 0..100, higher is safer.
type Safety struct {
	Location       string
	OverallRisk    Level
	Score          int
	Advisories     []string
	HealthWarnings []string
	Source         string
	UpdatedAt      time.Time
}

// Assessment bundles every rule outcome.
type Assessment struct {
	Budget   BudgetRisk
	Weather  WeatherRisk
	Crowding CrowdingRisk
	Quality  QualityScore
}

// HighRisks lists the categories graded high, in budget, weather, crowding order.
func (a Assessment) HighRisks() []string {
	var out []string
	if a.Budget.Level == High {
		out = append(out, "budget")
	}
	if a.Weather.Level == High {
		out = append(out, "weather")
	}
	if a.Crowding.Level == High {
		out = append(out, "crowding")
	}
	return out
}
