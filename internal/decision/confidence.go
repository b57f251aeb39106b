// internal/decision/confidence.go
package decision

import (
	"sort"

	"cruise-decision-workers/internal/models"
)

const (
	pricingCompleteness = 0.34
	cabinCompleteness   = 0.33
	riskCompleteness    = 0.33

	wideRangeDays         = 60
	veryWideRangeDays     = 120
	wideRangePenalty      = 0.85
	veryWideRangePenalty  = 0.75
	underSpecifiedPenalty = 0.8
	eligibleOnlyBonus     = 1.05
)

// DataCompleteness scores how much snapshot data backs a candidate.
func DataCompleteness(c Candidate) float64 {
	v := 0.0
	if c.Pricing != nil {
		v += pricingCompleteness
	}
	if len(c.cabinTypes()) > 0 {
		v += cabinCompleteness
	}
	if c.Risk != nil && c.Risk.RiskScore != nil {
		v += riskCompleteness
	}
	return Clamp01(v)
}

func averageCompleteness(candidates []Candidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candidates {
		sum += DataCompleteness(c)
	}
	return sum / float64(len(candidates))
}

// Median of scores; the mean of the two middle values for an even count.
func Median(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ScoreSpread is the gap between the best and the median score.
func ScoreSpread(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	top := scores[0]
	for _, s := range scores[1:] {
		if s > top {
			top = s
		}
	}
	return Clamp01(top - Median(scores))
}

// RuleStability penalizes broad or under-specified queries. The budget and
// preference check is a single multiplier on purpose.
func RuleStability(input models.DecisionInput, sailing models.Sailing) float64 {
	stability := 1.0

	days := rangeDays(parseBounds(input.DateRange))
	if days > wideRangeDays {
		stability *= wideRangePenalty
	}
	if days > veryWideRangeDays {
		stability *= veryWideRangePenalty
	}

	if _, hasBudget := input.BudgetCeiling(); !hasBudget && !input.HasPreferences() {
		stability *= underSpecifiedPenalty
	}

	if input.EligibleOnly() && sailing.Eligible {
		stability *= eligibleOnlyBonus
	}
	return stability
}

// Confidence combines the run-level completeness and spread with the
// candidate's own rule stability.
func Confidence(avgCompleteness, spread, stability float64) float64 {
	return Clamp01(avgCompleteness * spread * stability)
}
