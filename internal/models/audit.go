// internal/models/audit.go
package models

import "time"

// AuditRecord summarizes one ranking run. Records are append-only.
type AuditRecord struct {
	ID            string    `json:"id"`
	InputHash     string    `json:"inputHash"`
	TopSailingID  string    `json:"topSailingId"`
	ScoreSpread   float64   `json:"scoreSpread"`
	TopConfidence float64   `json:"topConfidence"`
	ResultCount   int       `json:"resultCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
