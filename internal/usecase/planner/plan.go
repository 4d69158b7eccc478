package planner

import (
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
)

// Decision is the outcome of the approval gate.
type Decision string

const (
	Proceed       Decision = "proceed"
	NeedsApproval Decision = "needs_approval"
)

// Gate is the approval decision with the reasons that triggered it.
type Gate struct {
	Decision Decision
	Reasons  []string
}

// Plan is the assembled output of one pipeline run.
type Plan struct {
	ID           string
	Trip         trip.Trip
	Source       string
	Forecast     []risk.ForecastDay
	Events       []risk.Event
	Holidays     []risk.Holiday
	ExchangeRate float64
	Safety       *risk.Safety // nil when the advisory could not be fetched
	Assessment   risk.Assessment
	Knowledge    []result.Result
	Tips         []string
	Gate         Gate
	Warnings     []string
	CreatedAt    time.Time
}
