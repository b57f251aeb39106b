// internal/models/override.go
package models

import "time"

type Override struct {
	SailingID   string    `json:"sailingId"`
	Disabled    bool      `json:"disabled"`
	ForceReview bool      `json:"forceReview"`
	Note        string    `json:"note,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}
