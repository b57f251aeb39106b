// internal/decision/confidence_test.go
package decision

import (
	"testing"

	"cruise-decision-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDataCompleteness(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		expected  float64
	}{
		{"nothing", Candidate{}, 0},
		{"pricing only", Candidate{Pricing: &models.PricingSnapshot{}}, 0.34},
		{"empty cabin list", Candidate{Availability: &models.AvailabilitySnapshot{DemandPressure: ptr(0.5)}}, 0},
		{"cabins only", Candidate{Availability: &models.AvailabilitySnapshot{CabinTypes: []string{"suite"}}}, 0.33},
		{"risk snapshot without score", Candidate{Risk: &models.RiskSnapshot{}}, 0},
		{"everything", Candidate{
			Pricing:      &models.PricingSnapshot{},
			Availability: &models.AvailabilitySnapshot{CabinTypes: []string{"suite"}},
			Risk:         &models.RiskSnapshot{RiskScore: ptr(0.1)},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DataCompleteness(tt.candidate), 1e-9)
		})
	}
}

func TestMedianAndSpread(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 0.5, Median([]float64{0.9, 0.1, 0.5}))
	assert.InDelta(t, 0.4, Median([]float64{0.2, 0.6, 0.3, 0.5}), 1e-9)

	assert.Equal(t, 0.0, ScoreSpread(nil))
	assert.Equal(t, 0.0, ScoreSpread([]float64{0.7}))
	assert.InDelta(t, 0.4, ScoreSpread([]float64{0.1, 0.9, 0.5}), 1e-9)
	assert.InDelta(t, 0.2, ScoreSpread([]float64{0.2, 0.6, 0.3, 0.5}), 1e-9)
}

func TestRuleStability(t *testing.T) {
	eligible := createSailing("s1", "Miami", "2026-03-07")
	ineligible := eligible
	ineligible.Eligible = false

	prefs := &models.Preferences{CruiseLines: []string{"Carnival"}}
	onlyEligible := &models.Constraints{EligibleOnly: true}

	tests := []struct {
		name     string
		start    string
		end      string
		budget   bool
		prefs    *models.Preferences
		cons     *models.Constraints
		sailing  models.Sailing
		expected float64
	}{
		{"narrow with budget", "2026-03-01", "2026-03-11", true, nil, nil, eligible, 1.0},
		{"narrow with preferences", "2026-03-01", "2026-03-11", false, prefs, nil, eligible, 1.0},
		{"narrow underspecified", "2026-03-01", "2026-03-11", false, nil, nil, eligible, 0.8},
		{"exactly sixty days", "2026-03-01", "2026-04-30", true, nil, nil, eligible, 1.0},
		{"wide", "2026-03-01", "2026-05-15", true, nil, nil, eligible, 0.85},
		{"very wide", "2026-03-01", "2026-09-17", true, nil, nil, eligible, 0.6375},
		{"very wide underspecified", "2026-03-01", "2026-09-17", false, nil, nil, eligible, 0.51},
		{"eligible only bonus", "2026-03-01", "2026-03-11", true, nil, onlyEligible, eligible, 1.05},
		{"eligible only without eligible flag", "2026-03-01", "2026-03-11", true, nil, onlyEligible, ineligible, 1.0},
		{"unparseable range", "soon", "later", true, nil, nil, eligible, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createInput("Miami", tt.start, tt.end)
			if tt.budget {
				input = withBudget(input, 1000)
			}
			input.Preferences = tt.prefs
			input.Constraints = tt.cons
			assert.InDelta(t, tt.expected, RuleStability(input, tt.sailing), 1e-9)
		})
	}
}

func TestConfidence_Clamped(t *testing.T) {
	assert.Equal(t, 1.0, Confidence(1, 1, 1.05))
	assert.Equal(t, 0.0, Confidence(1, 0, 1))
	assert.InDelta(t, 0.25, Confidence(0.5, 0.5, 1), 1e-9)
}
