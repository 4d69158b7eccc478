// Package source provides the external trip data used by risk scoring:
// weather forecasts, local events, public holidays, exchange rates and
// safety advisories.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
)

// Modes.
const (
	ModeLive = "live"
	ModeMock = "mock"
)

// Request kinds, used as metric labels.
const (
	kindWeather  = "weather"
	kindEvents   = "events"
	kindHolidays = "holidays"
	kindRates    = "rates"
	kindSafety   = "safety"
)

// DataSource supplies trip context data.
type DataSource interface {
	Name() string
	Forecast(ctx context.Context, location string, window risk.DateRange) ([]risk.ForecastDay, error)
	Events(ctx context.Context, location string, window risk.DateRange) ([]risk.Event, error)
	Holidays(ctx context.Context, location string, window risk.DateRange) ([]risk.Holiday, error)
	ExchangeRate(ctx context.Context, from, to string) (float64, error)
	Safety(ctx context.Context, location string) (risk.Safety, error)
}

// Config selects and configures a DataSource.
type Config struct {
	Mode           string
	WeatherAPIKey  string
	WeatherBaseURL string
	RatesAPIKey    string
	RatesBaseURL   string
	Timeout        time.Duration
	Holidays       []CalendarEntry
	HTTPClient     *http.Client
	Logger         *zap.Logger
	Now            func() time.Time
}

// New builds the DataSource for cfg.Mode.
func New(cfg Config) (DataSource, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cal, err := NewCalendar(cfg.Holidays)
	if err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case ModeMock, "":
		return NewMock(cal, cfg.Now), nil
	case ModeLive:
		live, err := NewLive(cfg, cal)
		if err != nil {
			return nil, err
		}
		return live, nil
	default:
		return nil, domain.NewFieldError("sources.mode", fmt.Sprintf("unknown mode %q", cfg.Mode))
	}
}

func observe(source, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SourceRequestsTotal.WithLabelValues(source, kind, status).Inc()
}

func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", domain.NewFieldError("currency", fmt.Sprintf("%q is not a 3-letter code", code))
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", domain.NewFieldError("currency", fmt.Sprintf("%q is not a 3-letter code", code))
		}
	}
	return code, nil
}

// unavailable wraps err as ErrSourceUnavailable unless it already is an input error.
func unavailable(op string, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrSourceUnavailable, err)
}

// windowOrDefault bounds an open window to n days starting today.
func windowOrDefault(w risk.DateRange, now time.Time, n int) risk.DateRange {
	if !w.Start.IsZero() && !w.End.IsZero() {
		return w
	}
	start := w.Start
	if start.IsZero() {
		y, m, d := now.UTC().Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	end := w.End
	if end.IsZero() || end.Before(start) {
		end = start.AddDate(0, 0, n-1)
	}
	return risk.DateRange{Start: start, End: end}
}
