package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
)

// mockForecastDays bounds an open window for generated forecasts.
const mockForecastDays = 5

var (
	mockConditions = []string{"Clear", "Partly Cloudy", "Cloudy", "Rain", "Sunny"}
	mockEventTypes = []string{"Concert", "Festival", "Exhibition", "Workshop", "Conference", "Sports"}
	mockPopularity = []risk.Popularity{risk.PopularityLow, risk.PopularityMedium, risk.PopularityHigh}

	mockRates = map[string]float64{
		"USD/EUR": 0.92,
		"USD/GBP": 0.79,
		"USD/JPY": 149.5,
		"EUR/USD": 1.09,
		"GBP/USD": 1.27,
	}
)

// Mock generates deterministic data: the same location and window always
// produce the same forecast and events.
type Mock struct {
	calendar *Calendar
	now      func() time.Time
}

// NewMock creates a generator backed by the given holiday calendar.
func NewMock(cal *Calendar, now func() time.Time) *Mock {
	if now == nil {
		now = time.Now
	}
	return &Mock{calendar: cal, now: now}
}

// Name implements DataSource.
func (m *Mock) Name() string { return ModeMock }

func (m *Mock) rng(kind, location string, window risk.DateRange) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(location))))
	return rand.New(rand.NewPCG(h.Sum64(), uint64(window.Start.Unix())))
}

// Forecast implements DataSource.
func (m *Mock) Forecast(_ context.Context, location string, window risk.DateRange) ([]risk.ForecastDay, error) {
	window = windowOrDefault(window, m.now(), mockForecastDays)
	r := m.rng(kindWeather, location, window)

	n := window.Days()
	out := make([]risk.ForecastDay, 0, n)
	for i := range n {
		high := float64(20 + r.IntN(13))
		low := float64(15 + r.IntN(8))
		if low > high {
			low = high
		}
		out = append(out, risk.ForecastDay{
			Date:                window.Start.AddDate(0, 0, i),
			Condition:           mockConditions[r.IntN(len(mockConditions))],
			PrecipitationChance: r.IntN(81),
			TemperatureHigh:     &high,
			TemperatureLow:      &low,
		})
	}
	observe(ModeMock, kindWeather, nil)
	return out, nil
}

// Events implements DataSource. It yields 3 to 8 events inside the window, sorted by date.
func (m *Mock) Events(_ context.Context, location string, window risk.DateRange) ([]risk.Event, error) {
	window = windowOrDefault(window, m.now(), mockForecastDays)
	r := m.rng(kindEvents, location, window)
	name := strings.TrimSpace(location)

	n := 3 + r.IntN(6)
	span := window.Days()
	out := make([]risk.Event, 0, n)
	for range n {
		kind := mockEventTypes[r.IntN(len(mockEventTypes))]
		out = append(out, risk.Event{
			Name:       fmt.Sprintf("%s in %s", kind, name),
			Date:       window.Start.AddDate(0, 0, r.IntN(span)),
			Category:   strings.ToLower(kind),
			Popularity: mockPopularity[r.IntN(len(mockPopularity))],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	observe(ModeMock, kindEvents, nil)
	return out, nil
}

// Holidays implements DataSource from the configured calendar.
func (m *Mock) Holidays(_ context.Context, _ string, window risk.DateRange) ([]risk.Holiday, error) {
	observe(ModeMock, kindHolidays, nil)
	return m.calendar.Between(windowOrDefault(window, m.now(), 365)), nil
}

// ExchangeRate implements DataSource from a fixed table; unknown pairs are 1.0.
func (m *Mock) ExchangeRate(_ context.Context, from, to string) (float64, error) {
	from, err := normalizeCurrency(from)
	if err == nil {
		to, err = normalizeCurrency(to)
	}
	observe(ModeMock, kindRates, err)
	if err != nil {
		return 0, err
	}
	if rate, ok := mockRates[from+"/"+to]; ok {
		return rate, nil
	}
	return 1, nil
}

// Safety implements DataSource with a generated advisory.
func (m *Mock) Safety(_ context.Context, location string) (risk.Safety, error) {
	s, err := generateSafety(location, m.now())
	observe(ModeMock, kindSafety, err)
	return s, err
}
