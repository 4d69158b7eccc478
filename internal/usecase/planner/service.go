// Package planner runs the trip planning pipeline:
// validate, fetch data, assess risk, retrieve knowledge, approval gate.
package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	"github.com/kailas-cloud/wayfarer/internal/logger"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

const (
	knowledgeTopK   = 5
	minQualityScore = 50
	neutralRate     = 1.0
)

// Options configures the planner.
type Options struct {
	// BaseCurrency is the currency of the cost tables.
	BaseCurrency string
	Now          func() time.Time
}

// Service plans trips.
type Service struct {
	source    DataSource
	assessor  Assessor
	retriever Retriever
	base      string
	now       func() time.Time
}

// New creates a planner. retriever may be nil, in which case plans carry no knowledge.
func New(source DataSource, assessor Assessor, retriever Retriever, opts Options) *Service {
	base := strings.ToUpper(strings.TrimSpace(opts.BaseCurrency))
	if base == "" {
		base = trip.DefaultCurrency
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{source: source, assessor: assessor, retriever: retriever, base: base, now: now}
}

// Plan runs the pipeline for a validated trip.
// Data source and retrieval failures degrade to warnings; invalid risk input aborts.
func (s *Service) Plan(ctx context.Context, t trip.Trip) (*Plan, error) {
	plan := &Plan{
		ID:        uuid.NewString(),
		Trip:      t,
		Source:    s.source.Name(),
		CreatedAt: s.now().UTC(),
	}
	ctx, log := logger.With(ctx, zap.String("plan_id", plan.ID), zap.String("destination", t.Destination()))

	s.fetch(ctx, &t, plan)

	assessment, err := s.assessor.Assess(riskuc.AssessInput{
		Budget:       t.Budget(),
		Destination:  t.Destination(),
		DurationDays: t.Days(),
		Interests:    t.Interests(),
		ExchangeRate: plan.ExchangeRate,
		Forecast:     plan.Forecast,
		Events:       plan.Events,
		Holidays:     plan.Holidays,
		Window:       t.Window(),
	})
	if err != nil {
		return nil, fmt.Errorf("assess risk: %w", err)
	}
	plan.Assessment = assessment

	plan.Knowledge = s.retrieve(ctx, &t, plan)
	plan.Tips = ExtractTips(plan.Knowledge)
	plan.Gate = Decide(assessment)
	metrics.PlanDecisionsTotal.WithLabelValues(string(plan.Gate.Decision)).Inc()

	for _, w := range plan.Warnings {
		log.Warn("Trip plan degraded", zap.String("warning", w))
	}
	log.Info("Trip planned",
		zap.String("decision", string(plan.Gate.Decision)),
		zap.Int("quality", assessment.Quality.Overall),
		zap.Int("knowledge", len(plan.Knowledge)),
	)
	return plan, nil
}

// fetch loads forecast, events, holidays, the exchange rate and the safety advisory concurrently.
// Failures leave neutral defaults and a warning.
func (s *Service) fetch(ctx context.Context, t *trip.Trip, plan *Plan) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		warnings = map[string]string{}
	)
	warn := func(kind string, err error) {
		mu.Lock()
		warnings[kind] = fmt.Sprintf("%s unavailable: %v", kind, err)
		mu.Unlock()
	}

	dest, window := t.Destination(), t.Window()
	plan.Forecast = []risk.ForecastDay{}
	plan.Events = []risk.Event{}
	plan.Holidays = []risk.Holiday{}
	plan.ExchangeRate = neutralRate

	wg.Add(5)
	go func() {
		defer wg.Done()
		if days, err := s.source.Forecast(ctx, dest, window); err != nil {
			warn("weather", err)
		} else {
			plan.Forecast = days
		}
	}()
	go func() {
		defer wg.Done()
		if events, err := s.source.Events(ctx, dest, window); err != nil {
			warn("events", err)
		} else {
			plan.Events = events
		}
	}()
	go func() {
		defer wg.Done()
		if hs, err := s.source.Holidays(ctx, dest, window); err != nil {
			warn("holidays", err)
		} else {
			plan.Holidays = hs
		}
	}()
	go func() {
		defer wg.Done()
		if rate, err := s.source.ExchangeRate(ctx, s.base, t.Currency()); err != nil {
			warn("exchange rate", err)
		} else {
			plan.ExchangeRate = rate
		}
	}()
	go func() {
		defer wg.Done()
		if safety, err := s.source.Safety(ctx, dest); err != nil {
			warn("safety", err)
		} else {
			plan.Safety = &safety
		}
	}()
	wg.Wait()

	// Fixed order keeps warnings stable across runs.
	for _, kind := range []string{"weather", "events", "holidays", "exchange rate", "safety"} {
		if w, ok := warnings[kind]; ok {
			plan.Warnings = append(plan.Warnings, w)
		}
	}
}

func (s *Service) retrieve(ctx context.Context, t *trip.Trip, plan *Plan) []result.Result {
	if s.retriever == nil {
		return []result.Result{}
	}

	query := strings.TrimSpace("Travel to " + t.Destination() + " " + strings.Join(t.Interests(), " "))
	req, err := s.retriever.NewRequest(query, t.Destination(), t.Interests(), knowledgeTopK)
	if err == nil {
		var results []result.Result
		results, err = s.retriever.Retrieve(ctx, &req)
		if err == nil {
			return results
		}
	}
	plan.Warnings = append(plan.Warnings, fmt.Sprintf("knowledge unavailable: %v", err))
	return []result.Result{}
}

// Decide applies the approval gate: any high risk or a quality score below 50
// requires human approval.
func Decide(a risk.Assessment) Gate {
	var reasons []string
	for _, category := range a.HighRisks() {
		reasons = append(reasons, category+" risk is high")
	}
	if a.Quality.Overall < minQualityScore {
		reasons = append(reasons, fmt.Sprintf("quality score %d is below %d", a.Quality.Overall, minQualityScore))
	}
	if len(reasons) > 0 {
		return Gate{Decision: NeedsApproval, Reasons: reasons}
	}
	return Gate{Decision: Proceed, Reasons: []string{}}
}
