// internal/decision/engine.go
package decision

import (
	"sort"

	"cruise-decision-workers/internal/models"
)

// Pool is the materialized inventory for one run. Snapshot maps hold at most
// one (latest) snapshot per sailing id; missing keys mean no data.
type Pool struct {
	Sailings     []models.Sailing
	Ships        map[string]models.Ship
	Pricing      map[string]models.PricingSnapshot
	Availability map[string]models.AvailabilitySnapshot
	Risk         map[string]models.RiskSnapshot
}

func (p Pool) candidate(s models.Sailing) Candidate {
	c := Candidate{Sailing: s}
	if ship, ok := p.Ships[s.ShipID]; ok {
		c.Ship = &ship
	}
	if snap, ok := p.Pricing[s.ID]; ok {
		c.Pricing = &snap
	}
	if snap, ok := p.Availability[s.ID]; ok {
		c.Availability = &snap
	}
	if snap, ok := p.Risk[s.ID]; ok {
		c.Risk = &snap
	}
	return c
}

// Rank scores every eligible sailing in the pool and returns the results
// sorted by descending score. Ties keep pool order. Rank has no side effects.
func Rank(input models.DecisionInput, pool Pool, weights Weights) []models.DecisionResult {
	eligible := FilterEligible(pool.Sailings, input)
	if len(eligible) == 0 {
		return []models.DecisionResult{}
	}

	candidates := make([]Candidate, len(eligible))
	subs := make([]SubScores, len(eligible))
	scores := make([]float64, len(eligible))
	for i, s := range eligible {
		candidates[i] = pool.candidate(s)
		subs[i] = Score(candidates[i], input)
		scores[i] = Aggregate(subs[i], weights)
	}

	completeness := averageCompleteness(candidates)
	spread := ScoreSpread(scores)

	results := make([]models.DecisionResult, len(candidates))
	for i, c := range candidates {
		breakdown := subs[i]
		results[i] = models.DecisionResult{
			SailingID:  c.Sailing.ID,
			Score:      scores[i],
			Confidence: Confidence(completeness, spread, RuleStability(input, c.Sailing)),
			Reasons:    Reasons(c, breakdown, input),
			Flags:      Flags(c, breakdown),
			Breakdown:  &breakdown,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Truncate returns the first limit results. A non-positive limit keeps all.
func Truncate(results []models.DecisionResult, limit int) []models.DecisionResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
