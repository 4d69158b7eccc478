package risk

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(Tables{})
	require.NoError(t, err)
	return s
}

func fp(v float64) *float64 { return &v }

func day(s string) time.Time {
	d, err := domrisk.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTier(t *testing.T) {
	s := newScorer(t)
	tests := []struct {
		dest string
		want domrisk.Tier
	}{
		{"Tokyo", domrisk.TierMidRange},
		{"  BANGKOK ", domrisk.TierBudget},
		{"Ho Chi Minh City", domrisk.TierBudget},
		{"Zurich", domrisk.TierLuxury},
		{"Dubai Marina", domrisk.TierLuxury},
		{"", domrisk.TierMidRange},
		{"Atlantis", domrisk.TierMidRange},
		{"Lima, Peru", domrisk.TierBudget},
		{"Limassol", domrisk.TierMidRange},
		{"Oslob", domrisk.TierMidRange},
		{"Oslo", domrisk.TierLuxury},
		{"Chi Minh", domrisk.TierMidRange},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			assert.Equal(t, tt.want, s.tables.Tier(tt.dest))
		})
	}
}

func TestTier_LuxuryBeforeBudget(t *testing.T) {
	s, err := NewScorer(Tables{
		BudgetDestinations: []string{"lake"},
		LuxuryDestinations: []string{"geneva"},
	})
	require.NoError(t, err)
	assert.Equal(t, domrisk.TierLuxury, s.tables.Tier("Lake Geneva"))
}

func TestBudgetRisk_Tokyo(t *testing.T) {
	s := newScorer(t)

	br, err := s.BudgetRisk(1000, "Tokyo", 5, []string{"food"}, 1.0)
	require.NoError(t, err)

	assert.Equal(t, domrisk.TierMidRange, br.Tier)
	assert.InDelta(t, 180.0, br.DailyCost, 1e-9)
	assert.InDelta(t, 900.0, br.EstimatedCost, 1e-9)
	assert.InDelta(t, 0.9, br.BudgetRatio, 1e-9)
	assert.Equal(t, domrisk.Low, br.Level)
	assert.Zero(t, br.OverrunPercentage)
	assert.NotEmpty(t, br.Recommendations)
}

func TestBudgetRisk_Levels(t *testing.T) {
	s := newScorer(t)
	tests := []struct {
		name      string
		budget    float64
		dest      string
		days      int
		interests []string
		rate      float64
		level     domrisk.Level
		overrun   int
	}{
		// luxury 300 * 3 = 900
		{"exactly 1.5 is medium", 600, "Oslo", 3, nil, 1, domrisk.Medium, 50},
		{"above 1.5 is high", 500, "Oslo", 3, nil, 1, domrisk.High, 80},
		{"exactly 1.2 is low", 750, "Oslo", 3, nil, 1, domrisk.Low, 0},
		// budget 50 + other 10 = 60 * 2 * 149.5 = 17940
		{"exchange rate applies", 10000, "Bali", 2, []string{"surfing"}, 149.5, domrisk.High, 79},
		// mid-range 150 + food 30 (deduplicated) = 180
		{"duplicate interests count once", 180, "Paris", 1, []string{"food", "FOOD "}, 1, domrisk.Low, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br, err := s.BudgetRisk(tt.budget, tt.dest, tt.days, tt.interests, tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.level, br.Level)
			assert.Equal(t, tt.overrun, br.OverrunPercentage)
		})
	}
}

func TestBudgetRisk_InvalidInput(t *testing.T) {
	s := newScorer(t)
	tests := []struct {
		name      string
		budget    float64
		days      int
		interests []string
		rate      float64
	}{
		{"zero budget", 0, 3, nil, 1},
		{"negative budget", -10, 3, nil, 1},
		{"nan budget", math.NaN(), 3, nil, 1},
		{"inf budget", math.Inf(1), 3, nil, 1},
		{"zero duration", 100, 0, nil, 1},
		{"negative duration", 100, -2, nil, 1},
		{"zero rate", 100, 3, nil, 0},
		{"nan rate", 100, 3, nil, math.NaN()},
		{"empty interest", 100, 3, []string{"food", " "}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.BudgetRisk(tt.budget, "Rome", tt.days, tt.interests, tt.rate)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBudgetRisk_Recommendations(t *testing.T) {
	s := newScorer(t)

	br, err := s.BudgetRisk(100, "Paris", 3, []string{"food", "shopping"}, 1)
	require.NoError(t, err)
	require.Equal(t, domrisk.High, br.Level)
	assert.Len(t, br.Recommendations, 4)
	assert.Contains(t, br.Recommendations[0], "%")

	br, err = s.BudgetRisk(10000, "Paris", 1, nil, 1)
	require.NoError(t, err)
	assert.Len(t, br.Recommendations, 2, "headroom hint expected below 0.8")
}

func TestWeatherRisk_Empty(t *testing.T) {
	s := newScorer(t)

	wr, err := s.WeatherRisk(nil)
	require.NoError(t, err)
	assert.Zero(t, wr.RainyDays)
	assert.Zero(t, wr.RainPercentage)
	assert.Equal(t, domrisk.Low, wr.Level)
}

func TestWeatherRisk_Levels(t *testing.T) {
	s := newScorer(t)
	mk := func(chances ...int) []domrisk.ForecastDay {
		out := make([]domrisk.ForecastDay, len(chances))
		for i, c := range chances {
			out[i] = domrisk.ForecastDay{PrecipitationChance: c}
		}
		return out
	}
	tests := []struct {
		name  string
		days  []domrisk.ForecastDay
		rainy int
		pct   float64
		level domrisk.Level
	}{
		{"60 is not rainy", mk(60, 60, 60), 0, 0, domrisk.Low},
		{"one of five is 20 percent", mk(61, 0, 0, 0, 0), 1, 20, domrisk.Low},
		{"one of four is medium", mk(61, 0, 0, 0), 1, 25, domrisk.Medium},
		{"two of five is 40 percent", mk(90, 90, 0, 0, 0), 2, 40, domrisk.Medium},
		{"half is high", mk(100, 0), 1, 50, domrisk.High},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wr, err := s.WeatherRisk(tt.days)
			require.NoError(t, err)
			assert.Equal(t, tt.rainy, wr.RainyDays)
			assert.InDelta(t, tt.pct, wr.RainPercentage, 1e-9)
			assert.Equal(t, tt.level, wr.Level)
			assert.Equal(t, len(tt.days), wr.TotalDays)
		})
	}
}

func TestWeatherRisk_Temperatures(t *testing.T) {
	s := newScorer(t)
	forecast := []domrisk.ForecastDay{
		{Date: day("2026-07-01"), PrecipitationChance: 10, TemperatureHigh: fp(36), TemperatureLow: fp(25)},
		{Date: day("2026-07-02"), PrecipitationChance: 10, TemperatureHigh: fp(24), TemperatureLow: fp(15)},
		{Date: day("2026-07-03"), PrecipitationChance: 80, TemperatureHigh: fp(20), TemperatureLow: fp(-1)},
		{Date: day("2026-07-04"), PrecipitationChance: 5},
	}

	wr, err := s.WeatherRisk(forecast)
	require.NoError(t, err)
	assert.Equal(t, 1, wr.HotDays)
	assert.Equal(t, 1, wr.ColdDays)
	assert.Equal(t, 2, wr.ExtremeDays)
	require.NotNil(t, wr.BestDay)
	assert.Equal(t, "2026-07-02", wr.BestDay.Format(domrisk.DateLayout))
	assert.Equal(t, domrisk.Medium, wr.Level)
}

func TestWeatherRisk_InvalidChance(t *testing.T) {
	s := newScorer(t)
	for _, c := range []int{-1, 101} {
		_, err := s.WeatherRisk([]domrisk.ForecastDay{{PrecipitationChance: c}})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	_, err := s.WeatherRisk([]domrisk.ForecastDay{{TemperatureHigh: fp(math.NaN())}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCrowdingRisk(t *testing.T) {
	s := newScorer(t)
	window := domrisk.DateRange{Start: day("2026-12-20"), End: day("2026-12-27")}

	t.Run("empty is low", func(t *testing.T) {
		cr := s.CrowdingRisk(nil, nil, window)
		assert.Equal(t, domrisk.Low, cr.Level)
		assert.Zero(t, cr.Score)
		assert.Empty(t, cr.ContributingEvents)
	})

	t.Run("holiday in window is high", func(t *testing.T) {
		cr := s.CrowdingRisk(nil, []domrisk.Holiday{
			{Name: "Christmas", Date: day("2026-12-25")},
			{Name: "New Year's Day", Date: day("2027-01-01")},
		}, window)
		assert.InDelta(t, 4.0, cr.Score, 1e-9)
		assert.Equal(t, domrisk.High, cr.Level)
		assert.Equal(t, []string{"Christmas"}, cr.ContributingEvents)
	})

	t.Run("weighted events", func(t *testing.T) {
		events := []domrisk.Event{
			{Name: "Jazz Night", Date: day("2026-12-21"), Popularity: domrisk.PopularityLow},
			{Name: "Food Fair", Date: day("2026-12-22"), Popularity: domrisk.PopularityMedium},
			{Name: "Street Market", Date: day("2026-12-23"), Popularity: "unknown"},
			{Name: "Outside", Date: day("2026-11-01"), Popularity: domrisk.PopularityHigh},
		}
		cr := s.CrowdingRisk(events, nil, window)
		assert.InDelta(t, 2.5, cr.Score, 1e-9)
		assert.Equal(t, domrisk.Medium, cr.Level)
		assert.Equal(t, []string{"Food Fair", "Street Market"}, cr.ContributingEvents)
	})

	t.Run("zero window counts everything", func(t *testing.T) {
		cr := s.CrowdingRisk([]domrisk.Event{
			{Name: "A", Date: day("2020-01-01"), Popularity: domrisk.PopularityHigh},
			{Name: "B", Date: day("2030-01-01"), Popularity: domrisk.PopularityHigh},
		}, nil, domrisk.DateRange{})
		assert.Equal(t, domrisk.High, cr.Level)
	})
}

func TestCrowdingRisk_Monotonic(t *testing.T) {
	s := newScorer(t)
	rng := rand.New(rand.NewPCG(7, 11))
	pops := []domrisk.Popularity{domrisk.PopularityLow, domrisk.PopularityMedium, domrisk.PopularityHigh}
	rank := map[domrisk.Level]int{domrisk.Low: 0, domrisk.Medium: 1, domrisk.High: 2}

	var events []domrisk.Event
	prev := s.CrowdingRisk(nil, nil, domrisk.DateRange{})
	for range 50 {
		events = append(events, domrisk.Event{Name: "e", Popularity: pops[rng.IntN(len(pops))]})
		cur := s.CrowdingRisk(events, nil, domrisk.DateRange{})
		require.GreaterOrEqual(t, cur.Score, prev.Score)
		require.GreaterOrEqual(t, rank[cur.Level], rank[prev.Level])
		prev = cur
	}
}

func TestQualityScore(t *testing.T) {
	s := newScorer(t)

	q := s.QualityScore(
		domrisk.BudgetRisk{BudgetRatio: 0.9},
		domrisk.WeatherRisk{RainPercentage: 0},
		domrisk.CrowdingRisk{Level: domrisk.Low},
	)
	assert.Equal(t, 100, q.Overall)
	assert.Equal(t, domrisk.High, q.ComfortLevel)

	// budget 100-(2-1)*50=50, weather 40, crowding 60 -> 50, exactly at the medium boundary
	q = s.QualityScore(
		domrisk.BudgetRisk{BudgetRatio: 2},
		domrisk.WeatherRisk{RainPercentage: 60},
		domrisk.CrowdingRisk{Level: domrisk.High},
	)
	assert.Equal(t, 50, q.Overall)
	assert.Equal(t, domrisk.Low, q.ComfortLevel)
	assert.InDelta(t, 50.0, q.Budget, 1e-9)
	assert.InDelta(t, 40.0, q.Weather, 1e-9)
	assert.InDelta(t, 60.0, q.Crowding, 1e-9)

	// (75 + 100 + 60) / 3 = 78.33
	q = s.QualityScore(
		domrisk.BudgetRisk{BudgetRatio: 1.5},
		domrisk.WeatherRisk{},
		domrisk.CrowdingRisk{Level: domrisk.Medium},
	)
	assert.Equal(t, 78, q.Overall)
	assert.Equal(t, domrisk.High, q.ComfortLevel)
}

func TestQualityRecommendation(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{100, "excellent"},
		{80, "excellent"},
		{79, "looks good"},
		{65, "looks good"},
		{64, "feasible"},
		{50, "feasible"},
		{49, "significant challenges"},
		{0, "significant challenges"},
	}
	for _, tt := range tests {
		got := qualityRecommendation(tt.overall)
		assert.Contains(t, got, tt.want, "overall %d", tt.overall)
	}

	s := newScorer(t)
	q := s.QualityScore(domrisk.BudgetRisk{BudgetRatio: 0.9}, domrisk.WeatherRisk{}, domrisk.CrowdingRisk{Level: domrisk.Low})
	assert.Equal(t, qualityRecommendation(100), q.Recommendation)
}

func TestQualityScore_RandomInputsStayInRange(t *testing.T) {
	s := newScorer(t)
	rng := rand.New(rand.NewPCG(42, 1024))
	levels := []domrisk.Level{domrisk.Low, domrisk.Medium, domrisk.High}

	for range 1000 {
		q := s.QualityScore(
			domrisk.BudgetRisk{BudgetRatio: rng.Float64() * 10},
			domrisk.WeatherRisk{RainPercentage: rng.Float64() * 100},
			domrisk.CrowdingRisk{Level: levels[rng.IntN(len(levels))]},
		)
		require.GreaterOrEqual(t, q.Overall, 0)
		require.LessOrEqual(t, q.Overall, 100)
		require.True(t, q.ComfortLevel.IsValid())
	}
}

func TestAssess(t *testing.T) {
	s := newScorer(t)
	before := testutil.ToFloat64(metrics.RiskAssessmentsTotal.WithLabelValues("budget", "low"))

	a, err := s.Assess(AssessInput{
		Budget:       1000,
		Destination:  "Tokyo",
		DurationDays: 5,
		Interests:    []string{"food"},
		ExchangeRate: 1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, domrisk.Low, a.Budget.Level)
	assert.Equal(t, domrisk.Low, a.Weather.Level)
	assert.Equal(t, domrisk.Low, a.Crowding.Level)
	assert.Equal(t, 100, a.Quality.Overall)
	assert.Empty(t, a.HighRisks())

	after := testutil.ToFloat64(metrics.RiskAssessmentsTotal.WithLabelValues("budget", "low"))
	assert.InDelta(t, before+1, after, 1e-9)
}

func TestAssess_InvalidInput(t *testing.T) {
	s := newScorer(t)
	valid := func() AssessInput {
		return AssessInput{Budget: 1000, Destination: "Tokyo", DurationDays: 5, ExchangeRate: 1}
	}

	tests := []struct {
		name  string
		in    func() AssessInput
		field string
	}{
		{
			name:  "zero budget",
			in:    func() AssessInput { in := valid(); in.Budget = 0; return in },
			field: "budget",
		},
		{
			name: "precipitation out of range",
			in: func() AssessInput {
				in := valid()
				in.Forecast = []domrisk.ForecastDay{{PrecipitationChance: 150}}
				return in
			},
			field: "forecast[0].precipitation_chance",
		},
		{
			name: "window end before start",
			in: func() AssessInput {
				in := valid()
				in.Holidays = []domrisk.Holiday{{Name: "Christmas", Date: day("2026-12-25")}}
				in.Window = domrisk.DateRange{Start: day("2026-12-31"), End: day("2026-12-20")}
				return in
			},
			field: "window",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Assess(tt.in())
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var fe *domain.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestAssess_SingleDayWindow(t *testing.T) {
	s := newScorer(t)
	a, err := s.Assess(AssessInput{
		Budget: 1000, Destination: "Tokyo", DurationDays: 1, ExchangeRate: 1,
		Holidays: []domrisk.Holiday{{Name: "Christmas", Date: day("2026-12-25")}},
		Window:   domrisk.DateRange{Start: day("2026-12-25"), End: day("2026-12-25")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Christmas"}, a.Crowding.ContributingEvents)
}

func TestNewScorer_InvalidTables(t *testing.T) {
	_, err := NewScorer(Tables{BaseCosts: map[domrisk.Tier]float64{domrisk.TierLuxury: -1}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewScorer(Tables{Crowding: CrowdingWeights{Holiday: math.Inf(1)}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWithDefaults_PartialOverride(t *testing.T) {
	tbl := Tables{
		BaseCosts:     map[domrisk.Tier]float64{domrisk.TierMidRange: 200},
		InterestCosts: map[string]float64{" Food ": 45},
	}.WithDefaults()

	assert.InDelta(t, 200.0, tbl.BaseCosts[domrisk.TierMidRange], 1e-9)
	assert.InDelta(t, 50.0, tbl.BaseCosts[domrisk.TierBudget], 1e-9)
	assert.InDelta(t, 45.0, tbl.InterestCost("food"), 1e-9)
	assert.InDelta(t, 10.0, tbl.InterestCost("culture"), 1e-9, "unknown interests fall back to other")
	assert.True(t, len(tbl.LuxuryDestinations) > 0)
}
