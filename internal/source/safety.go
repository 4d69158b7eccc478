package source

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
)

var (
	safetyLevels     = []risk.Level{risk.Low, risk.Medium}
	safetyAdvisories = []string{
		"Be aware of pickpockets in tourist areas.",
		"Keep copies of your passport and travel insurance.",
		"Check the local emergency number before you travel.",
	}
	safetyHealthWarnings = []string{"Routine vaccinations recommended."}
)

// generateSafety builds a deterministic advisory for location: the same
// location always gets the same risk grade and a score in 60..95.
// High risk is never generated.
func generateSafety(location string, now time.Time) (risk.Safety, error) {
	name := strings.TrimSpace(location)
	if name == "" {
		return risk.Safety{}, domain.NewFieldError("location", "is required")
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(kindSafety))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.ToLower(name)))
	r := rand.New(rand.NewPCG(h.Sum64(), 0))

	y, m, d := now.UTC().Date()
	return risk.Safety{
		Location:       name,
		OverallRisk:    safetyLevels[r.IntN(len(safetyLevels))],
		Score:          60 + r.IntN(36),
		Advisories:     append([]string(nil), safetyAdvisories...),
		HealthWarnings: append([]string(nil), safetyHealthWarnings...),
		Source:         ModeMock,
		UpdatedAt:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}, nil
}
