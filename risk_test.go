package wayfarer

import (
	"errors"
	"testing"
	"time"
)

func TestAssessRisk_BudgetOnly(t *testing.T) {
	c := newTestClient(t)

	a, err := c.AssessRisk(RiskInput{
		Budget:       900,
		Destination:  "Tokyo",
		DurationDays: 3,
		Interests:    []string{"food"},
		ExchangeRate: 1,
	})
	if err != nil {
		t.Fatalf("AssessRisk: %v", err)
	}
	if a.Budget.Tier != "mid-range" || a.Budget.EstimatedCost != 540 || a.Budget.Level != "low" {
		t.Errorf("budget = %+v", a.Budget)
	}
	if a.Weather.Level != "low" || a.Crowding.Level != "low" {
		t.Errorf("weather %s, crowding %s, want low", a.Weather.Level, a.Crowding.Level)
	}
	if len(a.HighRisks()) != 0 {
		t.Errorf("high risks = %v", a.HighRisks())
	}
}

func TestAssessRisk_WeatherAndCrowding(t *testing.T) {
	c := newTestClient(t)
	day := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)

	forecast := make([]ForecastDay, 4)
	for i := range forecast {
		forecast[i] = ForecastDay{Date: day.AddDate(0, 0, i), Condition: "Rain", PrecipitationChance: 80}
	}
	a, err := c.AssessRisk(RiskInput{
		Budget:       5000,
		Destination:  "Paris",
		DurationDays: 4,
		ExchangeRate: 1,
		Forecast:     forecast,
		Holidays:     []Holiday{{Name: "Christmas", Date: day.AddDate(0, 0, 1)}},
		Events: []Event{
			{Name: "Winter Market", Date: day, Popularity: "high"},
			{Name: "Concert", Date: day.AddDate(0, 0, 2), Popularity: "high"},
		},
		Window: DateRange{Start: day, End: day.AddDate(0, 0, 3)},
	})
	if err != nil {
		t.Fatalf("AssessRisk: %v", err)
	}
	if a.Weather.Level != "high" || a.Weather.RainyDays != 4 {
		t.Errorf("weather = %+v", a.Weather)
	}
	if a.Crowding.Level != "high" {
		t.Errorf("crowding = %+v", a.Crowding)
	}
	if a.Quality.Overall >= 80 {
		t.Errorf("quality = %d, expected a penalty for rain and crowds", a.Quality.Overall)
	}
}

func TestAssessRisk_InvalidInput(t *testing.T) {
	c := newTestClient(t)

	tests := []struct {
		name string
		in   RiskInput
	}{
		{"zero budget", RiskInput{Budget: 0, Destination: "Tokyo", DurationDays: 3, ExchangeRate: 1}},
		{"zero duration", RiskInput{Budget: 100, Destination: "Tokyo", DurationDays: 0, ExchangeRate: 1}},
		{"zero rate", RiskInput{Budget: 100, Destination: "Tokyo", DurationDays: 1}},
		{"bad precipitation", RiskInput{
			Budget: 100, Destination: "Tokyo", DurationDays: 1, ExchangeRate: 1,
			Forecast: []ForecastDay{{PrecipitationChance: 120}},
		}},
		{"reversed window", RiskInput{
			Budget: 100, Destination: "Tokyo", DurationDays: 1, ExchangeRate: 1,
			Window: DateRange{
				Start: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.AssessRisk(tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
