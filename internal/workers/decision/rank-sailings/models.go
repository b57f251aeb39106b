// internal/workers/decision/rank-sailings/models.go
package ranksailings

import "cruise-decision-workers/internal/models"

type Input struct {
	DecisionInput models.DecisionInput `json:"decisionInput"`
	// Weights optionally overrides aggregation weights for this job only.
	// Values may be numbers or numeric strings.
	Weights map[string]interface{} `json:"weights,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
}

type Output struct {
	RankedSailings []models.DecisionResult `json:"rankedSailings"`
	ResultCount    int                     `json:"resultCount"`
	InputHash      string                  `json:"inputHash"`
}
