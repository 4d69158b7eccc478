package api

import (
	"strings"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/wayfarer/internal/usecase/health"
	planneruc "github.com/kailas-cloud/wayfarer/internal/usecase/planner"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

// KnowledgeFromResults converts ranked results, keeping their order.
func KnowledgeFromResults(results []result.Result) []KnowledgeItem {
	items := make([]KnowledgeItem, len(results))
	for i := range results {
		items[i] = knowledgeItem(&results[i])
	}
	return items
}

func knowledgeItem(r *result.Result) KnowledgeItem {
	doc := r.Document()
	meta := doc.Metadata()
	src := meta.Source()
	sentiment := r.Sentiment()
	return KnowledgeItem{
		ID:             doc.ID(),
		Text:           doc.Text(),
		Destination:    meta.Destination(),
		Categories:     nonNil(meta.Categories()),
		Locations:      nonNil(meta.Locations()),
		Source:         Source{Name: src.Name, URL: src.URL, Type: src.Type},
		Distance:       r.Distance(),
		RawScore:       r.RawScore(),
		InterestScore:  r.InterestScore(),
		Score:          r.FinalScore(),
		SentimentScore: sentiment.Score,
		Sentiment:      string(sentiment.Label),
		IsHelpful:      sentiment.Helpful,
	}
}

// AssessInputFromAPI validates wire input and converts it for the scorer.
// A missing exchange rate means the budget is already in the cost currency.
func AssessInputFromAPI(req *AssessRequest) (riskuc.AssessInput, error) {
	in := riskuc.AssessInput{
		Budget:       req.Budget,
		Destination:  req.Destination,
		DurationDays: req.DurationDays,
		Interests:    req.Interests,
		ExchangeRate: 1,
	}
	if req.ExchangeRate != nil {
		in.ExchangeRate = *req.ExchangeRate
	}

	var err error
	if in.Window.Start, err = optionalDate("start_date", req.StartDate); err != nil {
		return riskuc.AssessInput{}, err
	}
	if in.Window.End, err = optionalDate("end_date", req.EndDate); err != nil {
		return riskuc.AssessInput{}, err
	}
	if err = in.Window.Validate(); err != nil {
		return riskuc.AssessInput{}, err
	}

	in.Forecast = make([]risk.ForecastDay, len(req.Forecast))
	for i, f := range req.Forecast {
		date, err := optionalDate("forecast.date", f.Date)
		if err != nil {
			return riskuc.AssessInput{}, err
		}
		in.Forecast[i] = risk.ForecastDay{
			Date:                date,
			Condition:           f.Condition,
			PrecipitationChance: f.PrecipitationChance,
			TemperatureHigh:     f.TemperatureHigh,
			TemperatureLow:      f.TemperatureLow,
		}
	}

	in.Events = make([]risk.Event, len(req.Events))
	for i, e := range req.Events {
		date, err := optionalDate("events.date", e.Date)
		if err != nil {
			return riskuc.AssessInput{}, err
		}
		in.Events[i] = risk.Event{
			Name:       e.Name,
			Date:       date,
			Category:   e.Category,
			Popularity: risk.Popularity(strings.ToLower(e.Popularity)),
		}
	}

	in.Holidays = make([]risk.Holiday, len(req.Holidays))
	for i, h := range req.Holidays {
		date, err := optionalDate("holidays.date", h.Date)
		if err != nil {
			return riskuc.AssessInput{}, err
		}
		in.Holidays[i] = risk.Holiday{Name: h.Name, Date: date}
	}
	return in, nil
}

func optionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := risk.ParseDate(s)
	if err != nil {
		return time.Time{}, domain.NewFieldError(field, "must be YYYY-MM-DD")
	}
	return t, nil
}

// AssessmentToAPI converts a risk assessment.
func AssessmentToAPI(a *risk.Assessment) Assessment {
	w := a.Weather
	var best *string
	if w.BestDay != nil {
		s := formatDate(*w.BestDay)
		best = &s
	}
	return Assessment{
		Budget: BudgetRisk{
			Tier:              string(a.Budget.Tier),
			DailyCost:         a.Budget.DailyCost,
			EstimatedCost:     a.Budget.EstimatedCost,
			BudgetRatio:       a.Budget.BudgetRatio,
			OverrunPercentage: a.Budget.OverrunPercentage,
			Level:             string(a.Budget.Level),
			Recommendations:   nonNil(a.Budget.Recommendations),
		},
		Weather: WeatherRisk{
			RainyDays:       w.RainyDays,
			TotalDays:       w.TotalDays,
			RainPercentage:  w.RainPercentage,
			HotDays:         w.HotDays,
			ColdDays:        w.ColdDays,
			ExtremeDays:     w.ExtremeDays,
			BestDay:         best,
			Level:           string(w.Level),
			Recommendations: nonNil(w.Recommendations),
		},
		Crowding: CrowdingRisk{
			Score:              a.Crowding.Score,
			Level:              string(a.Crowding.Level),
			ContributingEvents: nonNil(a.Crowding.ContributingEvents),
			Recommendations:    nonNil(a.Crowding.Recommendations),
		},
		Quality: QualityScore{
			Overall:        a.Quality.Overall,
			Budget:         a.Quality.Budget,
			Weather:        a.Quality.Weather,
			Crowding:       a.Quality.Crowding,
			ComfortLevel:   string(a.Quality.ComfortLevel),
			Recommendation: a.Quality.Recommendation,
		},
		HighRisks: nonNil(a.HighRisks()),
	}
}

// PlanToAPI converts a trip plan.
func PlanToAPI(p *planneruc.Plan) PlanResponse {
	window := p.Trip.Window()

	forecast := make([]ForecastDay, len(p.Forecast))
	for i, f := range p.Forecast {
		forecast[i] = ForecastDay{
			Date:                formatDate(f.Date),
			Condition:           f.Condition,
			PrecipitationChance: f.PrecipitationChance,
			TemperatureHigh:     f.TemperatureHigh,
			TemperatureLow:      f.TemperatureLow,
		}
	}
	events := make([]Event, len(p.Events))
	for i, e := range p.Events {
		events[i] = Event{
			Name:       e.Name,
			Date:       formatDate(e.Date),
			Category:   e.Category,
			Popularity: string(e.Popularity),
		}
	}
	holidays := make([]Holiday, len(p.Holidays))
	for i, h := range p.Holidays {
		holidays[i] = Holiday{Name: h.Name, Date: formatDate(h.Date)}
	}

	return PlanResponse{
		ID:           p.ID,
		Destination:  p.Trip.Destination(),
		StartDate:    formatDate(window.Start),
		EndDate:      formatDate(window.End),
		Days:         p.Trip.Days(),
		Budget:       p.Trip.Budget(),
		Currency:     p.Trip.Currency(),
		Interests:    nonNil(p.Trip.Interests()),
		Source:       p.Source,
		ExchangeRate: p.ExchangeRate,
		Forecast:     forecast,
		Events:       events,
		Holidays:     holidays,
		Assessment:   AssessmentToAPI(&p.Assessment),
		Knowledge:    KnowledgeFromResults(p.Knowledge),
		Safety:       safetyToAPI(p.Safety),
		Tips:         nonNil(p.Tips),
		Gate: Gate{
			Decision: string(p.Gate.Decision),
			Reasons:  nonNil(p.Gate.Reasons),
		},
		Warnings:  nonNil(p.Warnings),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func safetyToAPI(s *risk.Safety) *Safety {
	if s == nil {
		return nil
	}
	return &Safety{
		Location:       s.Location,
		OverallRisk:    string(s.OverallRisk),
		Score:          s.Score,
		Advisories:     nonNil(s.Advisories),
		HealthWarnings: nonNil(s.HealthWarnings),
		Source:         s.Source,
		UpdatedAt:      formatDate(s.UpdatedAt),
	}
}

// HealthToAPI converts a health report.
func HealthToAPI(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Documents: r.Documents, Checks: checks}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(risk.DateLayout)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
