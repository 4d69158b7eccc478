// Package api holds the JSON wire types shared by the HTTP and MCP transports.
package api

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeAlreadyExists     ErrorCode = "already_exists"
	ErrorCodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	ErrorCodeModelUnavailable  ErrorCode = "model_unavailable"
	ErrorCodeSourceUnavailable ErrorCode = "source_unavailable"
	ErrorCodeNotImplemented    ErrorCode = "not_implemented"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RetrieveRequest is the body of POST /api/v1/knowledge/retrieve.
type RetrieveRequest struct {
	Query     string   `json:"query"`
	Location  string   `json:"location,omitempty"`
	Interests []string `json:"interests,omitempty"`
	TopK      *int     `json:"top_k,omitempty"`
}

// SearchParams are the query parameters of GET /api/v1/knowledge/search.
type SearchParams struct {
	Query     string    `form:"q" json:"q"`
	Location  *string   `form:"location" json:"location,omitempty"`
	Interests *[]string `form:"interests" json:"interests,omitempty"`
	TopK      *int      `form:"top_k" json:"top_k,omitempty"`
}

// Source is the provenance of a knowledge snippet.
type Source struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
}

// KnowledgeItem is one ranked knowledge snippet.
type KnowledgeItem struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	Destination    string   `json:"destination"`
	Categories     []string `json:"categories"`
	Locations      []string `json:"locations"`
	Source         Source   `json:"source"`
	Distance       float64  `json:"distance"`
	RawScore       float64  `json:"raw_score"`
	InterestScore  int      `json:"interest_score"`
	Score          float64  `json:"score"`
	SentimentScore float64  `json:"sentiment_score"`
	Sentiment      string   `json:"sentiment"`
	IsHelpful      bool     `json:"is_helpful"`
}

// RetrieveResponse lists ranked knowledge.
type RetrieveResponse struct {
	Items   []KnowledgeItem `json:"items"`
	Total   int             `json:"total"`
	Summary string          `json:"summary"`
}

// StatsResponse describes the similarity index.
type StatsResponse struct {
	Documents  int    `json:"documents"`
	Dimensions int    `json:"dimensions"`
	Model      string `json:"model"`
}

// ForecastDay is one forecast day on the wire. Temperatures are optional.
type ForecastDay struct {
	Date                string   `json:"date"`
	Condition           string   `json:"condition"`
	PrecipitationChance int      `json:"precipitation_chance"`
	TemperatureHigh     *float64 `json:"temperature_high,omitempty"`
	TemperatureLow      *float64 `json:"temperature_low,omitempty"`
}

// Event is a local event on the wire.
type Event struct {
	Name       string `json:"name"`
	Date       string `json:"date,omitempty"`
	Category   string `json:"category,omitempty"`
	Popularity string `json:"popularity,omitempty"`
}

// Holiday is a public holiday on the wire.
type Holiday struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// AssessRequest is the body of POST /api/v1/risk/assess.
// The caller supplies every input; no data source is consulted.
type AssessRequest struct {
	Destination  string        `json:"destination"`
	Budget       float64       `json:"budget"`
	DurationDays int           `json:"duration_days"`
	Interests    []string      `json:"interests,omitempty"`
	ExchangeRate *float64      `json:"exchange_rate,omitempty"`
	StartDate    string        `json:"start_date,omitempty"`
	EndDate      string        `json:"end_date,omitempty"`
	Forecast     []ForecastDay `json:"forecast,omitempty"`
	Events       []Event       `json:"events,omitempty"`
	Holidays     []Holiday     `json:"holidays,omitempty"`
}

// BudgetRisk is the budget rule outcome.
type BudgetRisk struct {
	Tier              string   `json:"tier"`
	DailyCost         float64  `json:"daily_cost"`
	EstimatedCost     float64  `json:"estimated_cost"`
	BudgetRatio       float64  `json:"budget_ratio"`
	OverrunPercentage int      `json:"overrun_percentage"`
	Level             string   `json:"level"`
	Recommendations   []string `json:"recommendations"`
}

// WeatherRisk is the weather rule outcome.
type WeatherRisk struct {
	RainyDays       int      `json:"rainy_days"`
	TotalDays       int      `json:"total_days"`
	RainPercentage  float64  `json:"rain_percentage"`
	HotDays         int      `json:"hot_days"`
	ColdDays        int      `json:"cold_days"`
	ExtremeDays     int      `json:"extreme_days"`
	BestDay         *string  `json:"best_day,omitempty"`
	Level           string   `json:"level"`
	Recommendations []string `json:"recommendations"`
}

// CrowdingRisk is the crowding rule outcome.
type CrowdingRisk struct {
	Score              float64  `json:"score"`
	Level              string   `json:"level"`
	ContributingEvents []string `json:"contributing_events"`
	Recommendations    []string `json:"recommendations"`
}

// QualityScore is the aggregated trip quality.
type QualityScore struct {
	Overall        int     `json:"overall"`
	Budget         float64 `json:"budget"`
	Weather        float64 `json:"weather"`
	Crowding       float64 `json:"crowding"`
	ComfortLevel   string  `json:"comfort_level"`
	Recommendation string  `json:"recommendation"`
}

// Assessment bundles every rule outcome.
type Assessment struct {
	Budget    BudgetRisk   `json:"budget"`
	Weather   WeatherRisk  `json:"weather"`
	Crowding  CrowdingRisk `json:"crowding"`
	Quality   QualityScore `json:"quality"`
	HighRisks []string     `json:"high_risks"`
}

// PlanRequest is the body of POST /api/v1/trips/plan.
type PlanRequest struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Budget      float64  `json:"budget"`
	Currency    string   `json:"currency,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// Gate is the approval decision.
type Gate struct {
	Decision string   `json:"decision"`
	Reasons  []string `json:"reasons"`
}

// PlanResponse is an assembled trip plan.
type PlanResponse struct {
	ID           string          `json:"id"`
	Destination  string          `json:"destination"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Days         int             `json:"days"`
	Budget       float64         `json:"budget"`
	Currency     string          `json:"currency"`
	Interests    []string        `json:"interests"`
	Source       string          `json:"source"`
	ExchangeRate float64         `json:"exchange_rate"`
	Forecast     []ForecastDay   `json:"forecast"`
	Events       []Event         `json:"events"`
	Holidays     []Holiday       `json:"holidays"`
	Assessment   Assessment      `json:"assessment"`
	Knowledge    []KnowledgeItem `json:"knowledge"`
	Safety       *Safety         `json:"safety,omitempty"`
	Tips         []string        `json:"tips"`
	Gate         Gate            `json:"gate"`
	Warnings     []string        `json:"warnings"`
	CreatedAt    string          `json:"created_at"`
}

// Safety is a destination travel advisory.
type Safety struct {
	Location       string   `json:"location"`
	OverallRisk    string   `json:"overall_risk"`
	Score          int      `json:"safety_score"`
	Advisories     []string `json:"advisories"`
	HealthWarnings []string `json:"health_warnings"`
	Source         string   `json:"source"`
	UpdatedAt      string   `json:"last_updated"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Documents int               `json:"documents"`
	Checks    map[string]string `json:"checks"`
}
