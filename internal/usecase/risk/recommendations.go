package risk

import (
	"fmt"
	"slices"
	"strings"

	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
)

func budgetRecommendations(level domrisk.Level, ratio float64, overrun int, interests []string) []string {
	if level == domrisk.Low {
		recs := []string{"The budget looks sufficient for this trip."}
		if ratio < budgetRoomRatio {
			recs = append(recs, "There is headroom for extra experiences or upgrades.")
		}
		return recs
	}

	recs := []string{
		fmt.Sprintf("Estimated costs exceed the budget by %d%%.", overrun),
		"Cut back on expensive activities or increase the budget.",
	}
	if slices.Contains(interests, "food") {
		recs = append(recs, "Balance restaurant meals with street food and markets.")
	}
	if slices.Contains(interests, "shopping") {
		recs = append(recs, "Set a separate shopping allowance before you go.")
	}
	return recs
}

func weatherRecommendations(w *domrisk.WeatherRisk) []string {
	var recs []string
	switch w.Level {
	case domrisk.High:
		recs = append(recs,
			fmt.Sprintf("Rain is likely on %d of %d days. Plan indoor activities.", w.RainyDays, w.TotalDays),
			"Pack waterproof gear and keep indoor alternatives ready.")
	case domrisk.Medium:
		recs = append(recs,
			fmt.Sprintf("Some rain expected (%d days). Bring an umbrella and a backup plan.", w.RainyDays))
	}
	if w.HotDays > 0 {
		recs = append(recs,
			fmt.Sprintf("%d hot days expected. Stay hydrated and stay indoors at midday.", w.HotDays))
	}
	if w.ColdDays > 0 {
		recs = append(recs, fmt.Sprintf("%d cold days expected. Pack warm layers.", w.ColdDays))
	}
	if w.ExtremeDays > 0 {
		recs = append(recs,
			fmt.Sprintf("%d days with extreme temperatures. Check local advisories.", w.ExtremeDays))
	}
	if w.BestDay != nil {
		recs = append(recs,
			fmt.Sprintf("%s looks best for outdoor activities.", w.BestDay.Format(domrisk.DateLayout)))
	}
	return recs
}

func crowdingRecommendations(level domrisk.Level, holidays int, major []string) []string {
	var recs []string
	switch level {
	case domrisk.High:
		recs = append(recs,
			"Expect heavy crowds around events and holidays.",
			"Reserve attractions and restaurants ahead and visit popular sites early or late.")
		if holidays > 0 {
			recs = append(recs, "Some sites may close on public holidays. Check opening hours.")
		}
	case domrisk.Medium:
		recs = append(recs, "Moderate crowds expected. Book popular attractions ahead.")
	}
	if len(major) > 0 {
		names := major[:min(2, len(major))]
		recs = append(recs,
			fmt.Sprintf("Notable events: %s. Availability and prices may be affected.", strings.Join(names, ", ")))
	}
	return recs
}

// Quality advice bands.
const (
	qualityExcellent = 80
	qualityGood      = 65
	qualityFeasible  = 50
)

func qualityRecommendation(overall int) string {
	switch {
	case overall >= qualityExcellent:
		return "This trip looks excellent. Conditions favour a great experience."
	case overall >= qualityGood:
		return "This trip looks good with minor considerations. Review the risk factors."
	case overall >= qualityFeasible:
		return "This trip is feasible but has some concerns. Consider adjustments."
	default:
		return "This trip has significant challenges. Consider rescheduling or major changes."
	}
}
