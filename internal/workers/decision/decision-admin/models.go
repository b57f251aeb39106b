// internal/workers/decision/decision-admin/models.go
package decisionadmin

import (
	"cruise-decision-workers/internal/decision"
	"cruise-decision-workers/internal/models"
)

type Input struct {
	Operation string                 `json:"operation"`
	Weights   map[string]interface{} `json:"weights,omitempty"`
	Override  *models.Override       `json:"override,omitempty"`
	Limit     int                    `json:"limit,omitempty"`
}

// Output carries only the field relevant to the operation.
type Output struct {
	Operation string               `json:"operation"`
	Weights   *decision.Weights    `json:"weights,omitempty"`
	Overrides []models.Override    `json:"overrides,omitempty"`
	Override  *models.Override     `json:"override,omitempty"`
	Audits    []models.AuditRecord `json:"audits,omitempty"`
}
