// Package risk scores trip budget, weather and crowding risk and folds them
// into a 0..100 quality score.
package risk

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/document"
	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
)

// Level thresholds.
const (
	budgetHighRatio   = 1.5
	budgetMediumRatio = 1.2
	budgetRoomRatio   = 0.8

	rainyDayChance    = 60
	rainHighPercent   = 40
	rainMediumPercent = 20

	crowdingHighScore   = 4
	crowdingMediumScore = 2

	comfortHigh   = 75
	comfortMedium = 50

	hotDayC         = 32
	coldDayC        = 5
	extremeHotC     = 35
	extremeColdC    = 0
	bestDayMaxRain  = 30
	bestDayMinHighC = 18
	bestDayMaxHighC = 30

	crowdedQualityComponent = 60
)

// Scorer applies the rule tables. All methods are pure.
type Scorer struct {
	tables Tables
}

// NewScorer fills missing tables with defaults and validates them.
func NewScorer(t Tables) (*Scorer, error) {
	t = t.WithDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{tables: t}, nil
}

// Tables returns the effective tables.
func (s *Scorer) Tables() Tables { return s.tables }

// BudgetRisk estimates the trip cost against the budget.
func (s *Scorer) BudgetRisk(
	budget float64, destination string, durationDays int, interests []string, exchangeRate float64,
) (domrisk.BudgetRisk, error) {
	if err := validateFinite("budget", budget); err != nil {
		return domrisk.BudgetRisk{}, err
	}
	if budget <= 0 {
		return domrisk.BudgetRisk{}, domain.NewFieldError("budget", "must be positive")
	}
	if durationDays < 1 {
		return domrisk.BudgetRisk{}, domain.NewFieldError("duration_days", "must be at least 1")
	}
	if err := validateFinite("exchange_rate", exchangeRate); err != nil {
		return domrisk.BudgetRisk{}, err
	}
	if exchangeRate <= 0 {
		return domrisk.BudgetRisk{}, domain.NewFieldError("exchange_rate", "must be positive")
	}
	norm, err := document.NormalizeTerms("interests", interests)
	if err != nil {
		return domrisk.BudgetRisk{}, err
	}

	tier := s.tables.Tier(destination)
	daily := s.tables.BaseCosts[tier]
	for _, i := range norm {
		daily += s.tables.InterestCost(i)
	}

	estimated := daily * float64(durationDays) * exchangeRate
	ratio := estimated / budget

	level := domrisk.Low
	switch {
	case ratio > budgetHighRatio:
		level = domrisk.High
	case ratio > budgetMediumRatio:
		level = domrisk.Medium
	}

	overrun := 0
	if level != domrisk.Low {
		overrun = int((ratio - 1) * 100)
	}

	return domrisk.BudgetRisk{
		Tier:              tier,
		DailyCost:         daily,
		EstimatedCost:     estimated,
		BudgetRatio:       ratio,
		OverrunPercentage: overrun,
		Level:             level,
		Recommendations:   budgetRecommendations(level, ratio, overrun, norm),
	}, nil
}

// WeatherRisk grades the share of rainy days in the forecast. An empty forecast is low risk.
func (s *Scorer) WeatherRisk(forecast []domrisk.ForecastDay) (domrisk.WeatherRisk, error) {
	out := domrisk.WeatherRisk{TotalDays: len(forecast), Level: domrisk.Low}

	for i := range forecast {
		day := &forecast[i]
		if day.PrecipitationChance < 0 || day.PrecipitationChance > 100 {
			return domrisk.WeatherRisk{}, domain.NewFieldError(
				fmt.Sprintf("forecast[%d].precipitation_chance", i), "must be within 0..100")
		}
		if day.TemperatureHigh != nil {
			if err := validateFinite(fmt.Sprintf("forecast[%d].temperature_high", i), *day.TemperatureHigh); err != nil {
				return domrisk.WeatherRisk{}, err
			}
		}
		if day.TemperatureLow != nil {
			if err := validateFinite(fmt.Sprintf("forecast[%d].temperature_low", i), *day.TemperatureLow); err != nil {
				return domrisk.WeatherRisk{}, err
			}
		}
	}

	if len(forecast) == 0 {
		return out, nil
	}

	for i := range forecast {
		day := &forecast[i]
		if day.PrecipitationChance > rainyDayChance {
			out.RainyDays++
		}
		high, low := day.TemperatureHigh, day.TemperatureLow
		if high != nil && *high > hotDayC {
			out.HotDays++
		}
		if low != nil && *low < coldDayC {
			out.ColdDays++
		}
		if (high != nil && *high > extremeHotC) || (low != nil && *low < extremeColdC) {
			out.ExtremeDays++
		}
		if out.BestDay == nil && day.PrecipitationChance < bestDayMaxRain &&
			high != nil && *high > bestDayMinHighC && *high < bestDayMaxHighC && !day.Date.IsZero() {
			d := day.Date
			out.BestDay = &d
		}
	}

	out.RainPercentage = 100 * float64(out.RainyDays) / float64(out.TotalDays)
	switch {
	case out.RainPercentage > rainHighPercent:
		out.Level = domrisk.High
	case out.RainPercentage > rainMediumPercent:
		out.Level = domrisk.Medium
	}
	out.Recommendations = weatherRecommendations(&out)
	return out, nil
}

// CrowdingRisk scores event and holiday density inside the trip window.
// A zero window counts everything.
func (s *Scorer) CrowdingRisk(
	events []domrisk.Event, holidays []domrisk.Holiday, window domrisk.DateRange,
) domrisk.CrowdingRisk {
	w := s.tables.Crowding
	out := domrisk.CrowdingRisk{Level: domrisk.Low, ContributingEvents: []string{}}

	var major []string
	for _, e := range events {
		if !window.Contains(e.Date) {
			continue
		}
		switch e.Popularity {
		case domrisk.PopularityHigh:
			out.Score += w.High
		case domrisk.PopularityLow:
			out.Score += w.Low
		default:
			out.Score += w.Medium
		}
		if e.Popularity != domrisk.PopularityLow {
			out.ContributingEvents = append(out.ContributingEvents, e.Name)
			major = append(major, e.Name)
		}
	}

	holidaysInWindow := 0
	for _, h := range holidays {
		if !window.Contains(h.Date) {
			continue
		}
		out.Score += w.Holiday
		out.ContributingEvents = append(out.ContributingEvents, h.Name)
		holidaysInWindow++
	}

	switch {
	case out.Score >= crowdingHighScore:
		out.Level = domrisk.High
	case out.Score >= crowdingMediumScore:
		out.Level = domrisk.Medium
	}
	out.Recommendations = crowdingRecommendations(out.Level, holidaysInWindow, major)
	return out
}

// QualityScore folds the three risks into an overall 0..100 score.
func (s *Scorer) QualityScore(
	budget domrisk.BudgetRisk, weather domrisk.WeatherRisk, crowding domrisk.CrowdingRisk,
) domrisk.QualityScore {
	b := clamp(100-(budget.BudgetRatio-1)*50, 0, 100)
	w := clamp(100-weather.RainPercentage, 0, 100)
	c := 100.0
	if crowding.Level != domrisk.Low {
		c = crowdedQualityComponent
	}

	overall := int(math.Round((b + w + c) / 3))
	overall = max(0, min(100, overall))

	comfort := domrisk.Low
	switch {
	case overall > comfortHigh:
		comfort = domrisk.High
	case overall > comfortMedium:
		comfort = domrisk.Medium
	}

	return domrisk.QualityScore{
		Overall:        overall,
		Budget:         b,
		Weather:        w,
		Crowding:       c,
		ComfortLevel:   comfort,
		Recommendation: qualityRecommendation(overall),
	}
}

// AssessInput carries everything needed for a full assessment.
type AssessInput struct {
	Budget       float64
	Destination  string
	DurationDays int
	Interests    []string
	ExchangeRate float64
	Forecast     []domrisk.ForecastDay
	Events       []domrisk.Event
	Holidays     []domrisk.Holiday
	Window       domrisk.DateRange
}

// Assess runs every rule. Any invalid input aborts the whole assessment.
func (s *Scorer) Assess(in AssessInput) (domrisk.Assessment, error) {
	if err := in.Window.Validate(); err != nil {
		return domrisk.Assessment{}, err
	}
	budget, err := s.BudgetRisk(in.Budget, in.Destination, in.DurationDays, in.Interests, in.ExchangeRate)
	if err != nil {
		return domrisk.Assessment{}, fmt.Errorf("budget risk: %w", err)
	}
	weather, err := s.WeatherRisk(in.Forecast)
	if err != nil {
		return domrisk.Assessment{}, fmt.Errorf("weather risk: %w", err)
	}
	crowding := s.CrowdingRisk(in.Events, in.Holidays, in.Window)
	quality := s.QualityScore(budget, weather, crowding)

	metrics.RiskAssessmentsTotal.WithLabelValues("budget", string(budget.Level)).Inc()
	metrics.RiskAssessmentsTotal.WithLabelValues("weather", string(weather.Level)).Inc()
	metrics.RiskAssessmentsTotal.WithLabelValues("crowding", string(crowding.Level)).Inc()
	metrics.RiskAssessmentsTotal.WithLabelValues("comfort", string(quality.ComfortLevel)).Inc()
	metrics.QualityScore.Observe(float64(quality.Overall))

	return domrisk.Assessment{
		Budget:   budget,
		Weather:  weather,
		Crowding: crowding,
		Quality:  quality,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
