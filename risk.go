package wayfarer

import "time"

// AssessRisk scores budget, weather and crowding for a trip and combines them
// into a quality score. Invalid input (non-positive budget or exchange rate,
// duration under one day, precipitation outside 0..100, a window ending before
// it starts) fails with ErrInvalidInput.
func (c *Client) AssessRisk(in RiskInput) (a Assessment, err error) {
	defer func(start time.Time) { c.obs.observe("assess_risk", start, err) }(time.Now())
	return c.scorer.Assess(in)
}

// RiskTables returns the effective scorer tables after defaults are applied.
func (c *Client) RiskTables() RiskTables { return c.scorer.Tables() }
