// internal/workers/decision/rank-sailings/config.go
package ranksailings

import (
	"time"

	"cruise-decision-workers/internal/decision"
)

type Config struct {
	Timeout time.Duration
	// BaseWeights fills keys missing from per-job weight overrides.
	BaseWeights decision.Weights
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		BaseWeights: decision.DefaultWeights(),
	}
}
