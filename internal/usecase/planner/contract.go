package planner

import (
	"context"

	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/request"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

// DataSource supplies weather, events, holidays, exchange rates and safety advisories.
type DataSource interface {
	Name() string
	Forecast(ctx context.Context, location string, window risk.DateRange) ([]risk.ForecastDay, error)
	Events(ctx context.Context, location string, window risk.DateRange) ([]risk.Event, error)
	Holidays(ctx context.Context, location string, window risk.DateRange) ([]risk.Holiday, error)
	ExchangeRate(ctx context.Context, from, to string) (float64, error)
	Safety(ctx context.Context, location string) (risk.Safety, error)
}

// Assessor scores trip risk.
type Assessor interface {
	Assess(in riskuc.AssessInput) (risk.Assessment, error)
}

// Retriever looks up travel knowledge.
type Retriever interface {
	NewRequest(query, location string, interests []string, topK int) (request.Request, error)
	Retrieve(ctx context.Context, req *request.Request) ([]result.Result, error)
}
