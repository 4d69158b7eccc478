package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
)

// Default endpoints.
const (
	DefaultWeatherBaseURL = "https://api.openweathermap.org"
	DefaultRatesBaseURL   = "https://v6.exchangerate-api.com"
	DefaultTimeout        = 10 * time.Second
)

const maxBodyBytes = 4 << 20

// Live queries OpenWeatherMap and exchangerate-api. It has no events provider.
type Live struct {
	client     *http.Client
	weatherKey string
	weatherURL string
	ratesKey   string
	ratesURL   string
	calendar   *Calendar
	now        func() time.Time
	logger     *zap.Logger
}

// NewLive creates a live data source. Both API keys are required.
func NewLive(cfg Config, cal *Calendar) (*Live, error) {
	if strings.TrimSpace(cfg.WeatherAPIKey) == "" {
		return nil, domain.NewFieldError("sources.openweather_api_key", "is required in live mode")
	}
	if strings.TrimSpace(cfg.RatesAPIKey) == "" {
		return nil, domain.NewFieldError("sources.exchangerate_api_key", "is required in live mode")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	weatherURL := cfg.WeatherBaseURL
	if weatherURL == "" {
		weatherURL = DefaultWeatherBaseURL
	}
	ratesURL := cfg.RatesBaseURL
	if ratesURL == "" {
		ratesURL = DefaultRatesBaseURL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Live{
		client:     client,
		weatherKey: cfg.WeatherAPIKey,
		weatherURL: strings.TrimRight(weatherURL, "/"),
		ratesKey:   cfg.RatesAPIKey,
		ratesURL:   strings.TrimRight(ratesURL, "/"),
		calendar:   cal,
		now:        now,
		logger:     logger,
	}, nil
}

// Name implements DataSource.
func (l *Live) Name() string { return ModeLive }

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

type forecastResponse struct {
	List []forecastSlot `json:"list"`
}

type forecastSlot struct {
	Dt   int64 `json:"dt"`
	Main struct {
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Rain map[string]float64 `json:"rain"`
}

// Forecast geocodes the location and aggregates the 3-hourly forecast per day.
// Days outside the window are dropped; OpenWeatherMap covers five days ahead.
func (l *Live) Forecast(ctx context.Context, location string, window risk.DateRange) ([]risk.ForecastDay, error) {
	days, err := l.forecast(ctx, location, window)
	observe(ModeLive, kindWeather, err)
	return days, err
}

func (l *Live) forecast(ctx context.Context, location string, window risk.DateRange) ([]risk.ForecastDay, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, domain.NewFieldError("location", "is required")
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("limit", "1")
	q.Set("appid", l.weatherKey)

	var geo []geoResult
	if err := l.getJSON(ctx, l.weatherURL+"/geo/1.0/direct?"+q.Encode(), &geo); err != nil {
		return nil, unavailable("geocode", err)
	}
	if len(geo) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", location, domain.ErrNotFound)
	}

	q = url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", geo[0].Lat))
	q.Set("lon", fmt.Sprintf("%.4f", geo[0].Lon))
	q.Set("units", "metric")
	q.Set("appid", l.weatherKey)

	var resp forecastResponse
	if err := l.getJSON(ctx, l.weatherURL+"/data/2.5/forecast?"+q.Encode(), &resp); err != nil {
		return nil, unavailable("forecast", err)
	}

	days := aggregateDays(resp.List)
	out := make([]risk.ForecastDay, 0, len(days))
	for _, d := range days {
		if window.Contains(d.Date) {
			out = append(out, d)
		}
	}

	l.logger.Debug("Forecast fetched",
		zap.String("location", location),
		zap.String("resolved", geo[0].Name),
		zap.Int("slots", len(resp.List)),
		zap.Int("days", len(out)),
	)
	return out, nil
}

type dayAgg struct {
	date       time.Time
	slots      int
	rainy      int
	high, low  float64
	conditions map[string]int
	order      []string
}

// aggregateDays folds 3-hour slots into calendar days (UTC). Precipitation
// chance is the truncated percentage of slots reporting a 3h rain amount above zero;
// the weather condition alone does not count.
func aggregateDays(slots []forecastSlot) []risk.ForecastDay {
	byDay := map[time.Time]*dayAgg{}
	var keys []time.Time

	for _, s := range slots {
		t := time.Unix(s.Dt, 0).UTC()
		key := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		agg, ok := byDay[key]
		if !ok {
			agg = &dayAgg{date: key, high: s.Main.TempMax, low: s.Main.TempMin, conditions: map[string]int{}}
			byDay[key] = agg
			keys = append(keys, key)
		}
		agg.slots++
		agg.high = max(agg.high, s.Main.TempMax)
		agg.low = min(agg.low, s.Main.TempMin)

		cond := ""
		if len(s.Weather) > 0 {
			cond = s.Weather[0].Main
		}
		if s.Rain["3h"] > 0 {
			agg.rainy++
		}
		if cond != "" {
			if agg.conditions[cond] == 0 {
				agg.order = append(agg.order, cond)
			}
			agg.conditions[cond]++
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]risk.ForecastDay, 0, len(keys))
	for _, k := range keys {
		agg := byDay[k]
		high, low := agg.high, agg.low
		out = append(out, risk.ForecastDay{
			Date:                agg.date,
			Condition:           agg.dominant(),
			PrecipitationChance: 100 * agg.rainy / agg.slots,
			TemperatureHigh:     &high,
			TemperatureLow:      &low,
		})
	}
	return out
}

func (a *dayAgg) dominant() string {
	best, n := "", 0
	for _, c := range a.order {
		if a.conditions[c] > n {
			best, n = c, a.conditions[c]
		}
	}
	return best
}

// Events implements DataSource. No live events provider is wired; the result is always empty.
func (l *Live) Events(_ context.Context, _ string, _ risk.DateRange) ([]risk.Event, error) {
	observe(ModeLive, kindEvents, nil)
	return []risk.Event{}, nil
}

// Safety implements DataSource. No live advisory provider is wired, so the
// generated advisory is served and its Source says so.
func (l *Live) Safety(_ context.Context, location string) (risk.Safety, error) {
	s, err := generateSafety(location, l.now())
	observe(ModeLive, kindSafety, err)
	return s, err
}

// Holidays implements DataSource from the configured calendar.
func (l *Live) Holidays(_ context.Context, _ string, window risk.DateRange) ([]risk.Holiday, error) {
	observe(ModeLive, kindHolidays, nil)
	return l.calendar.Between(windowOrDefault(window, l.now(), 365)), nil
}

type pairResponse struct {
	Result         string  `json:"result"`
	ErrorType      string  `json:"error-type"`
	ConversionRate float64 `json:"conversion_rate"`
}

// ExchangeRate returns how many units of `to` one unit of `from` buys.
func (l *Live) ExchangeRate(ctx context.Context, from, to string) (float64, error) {
	rate, err := l.exchangeRate(ctx, from, to)
	observe(ModeLive, kindRates, err)
	return rate, err
}

func (l *Live) exchangeRate(ctx context.Context, from, to string) (float64, error) {
	from, err := normalizeCurrency(from)
	if err != nil {
		return 0, err
	}
	to, err = normalizeCurrency(to)
	if err != nil {
		return 0, err
	}
	if from == to {
		return 1, nil
	}

	var resp pairResponse
	endpoint := fmt.Sprintf("%s/v6/%s/pair/%s/%s", l.ratesURL, url.PathEscape(l.ratesKey), from, to)
	if err := l.getJSON(ctx, endpoint, &resp); err != nil {
		return 0, unavailable("exchange rate", err)
	}
	if resp.Result != "success" {
		return 0, fmt.Errorf("exchange rate %s/%s: %w: %s", from, to, domain.ErrSourceUnavailable, resp.ErrorType)
	}
	if math.IsNaN(resp.ConversionRate) || math.IsInf(resp.ConversionRate, 0) || resp.ConversionRate <= 0 {
		return 0, fmt.Errorf("exchange rate %s/%s: %w: bad rate %v",
			from, to, domain.ErrSourceUnavailable, resp.ConversionRate)
	}
	return resp.ConversionRate, nil
}

func (l *Live) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet(body))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func snippet(b []byte) string {
	const n = 200
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n]
	}
	return s
}
