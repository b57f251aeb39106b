// internal/decision/explain.go
package decision

import "cruise-decision-workers/internal/models"

const maxReasons = 4

const (
	ReasonStrongValue       = "strong value"
	ReasonFitsTargetPrice   = "fits target price"
	ReasonUpgradeLikely     = "upgrade likely"
	ReasonGoodAvailability  = "good availability"
	ReasonMatchesPrefs      = "matches preferences"
	ReasonHighDemand        = "high demand/limited availability"
	ReasonLowCancelRisk     = "low cancellation risk"
	ReasonHigherPolicyRisk  = "higher policy risk"
	ReasonFallbackBudget    = "closest match to your budget"
	ReasonFallbackNoBudget  = "balanced overall option"
	FlagMissingPricing      = "missing_pricing"
	FlagMissingAvailability = "missing_availability"
	FlagHighDemand          = "high_demand"
	FlagHighRisk            = "high_risk"
	FlagForceReview         = "force_review"
)

// reasonFacts is what the reason rules look at besides the sub-scores.
// Demand and risk reasons only fire on observed values, never on defaults.
type reasonFacts struct {
	hasBudget bool
	hasDemand bool
	hasRisk   bool
}

type reasonRule struct {
	reason string
	when   func(s SubScores, f reasonFacts) bool
}

// Evaluated top to bottom; order decides which reasons survive the cap.
var reasonRules = []reasonRule{
	{ReasonStrongValue, func(s SubScores, _ reasonFacts) bool { return s.Price >= 0.8 }},
	{ReasonFitsTargetPrice, func(s SubScores, f reasonFacts) bool { return f.hasBudget && s.Price >= 0.7 }},
	{ReasonUpgradeLikely, func(s SubScores, _ reasonFacts) bool { return s.Cabin >= 0.85 }},
	{ReasonGoodAvailability, func(s SubScores, _ reasonFacts) bool { return s.Cabin >= 0.65 && s.Cabin < 0.85 }},
	{ReasonMatchesPrefs, func(s SubScores, _ reasonFacts) bool { return s.Preference >= 0.75 }},
	{ReasonHighDemand, func(s SubScores, f reasonFacts) bool { return f.hasDemand && s.Demand >= 0.7 }},
	{ReasonLowCancelRisk, func(s SubScores, f reasonFacts) bool { return f.hasRisk && s.Risk <= 0.35 }},
	{ReasonHigherPolicyRisk, func(s SubScores, f reasonFacts) bool { return f.hasRisk && s.Risk >= 0.7 }},
}

// Reasons returns at most four distinct human-readable reasons for the
// candidate's sub-scores s.
func Reasons(c Candidate, s SubScores, input models.DecisionInput) []string {
	_, hasBudget := input.BudgetCeiling()
	facts := reasonFacts{
		hasBudget: hasBudget,
		hasDemand: c.Availability != nil && c.Availability.DemandPressure != nil,
		hasRisk:   c.Risk != nil && c.Risk.RiskScore != nil,
	}

	var reasons []string
	for _, rule := range reasonRules {
		if rule.when(s, facts) {
			reasons = appendUnique(reasons, rule.reason)
		}
		if len(reasons) == maxReasons {
			break
		}
	}
	if len(reasons) > 0 {
		return reasons
	}
	if hasBudget {
		return []string{ReasonFallbackBudget}
	}
	return []string{ReasonFallbackNoBudget}
}

// Flags returns machine-readable data-quality and risk tags for a candidate.
func Flags(c Candidate, s SubScores) []string {
	var flags []string
	if c.Pricing == nil {
		flags = append(flags, FlagMissingPricing)
	}
	if c.Availability == nil {
		flags = append(flags, FlagMissingAvailability)
	}
	if s.Demand >= 0.75 {
		flags = append(flags, FlagHighDemand)
	}
	if s.Risk >= 0.75 {
		flags = append(flags, FlagHighRisk)
	}
	return flags
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
