// internal/decision/scoring.go
package decision

import "cruise-decision-workers/internal/models"

// Neutral defaults used when the data a sub-score needs is absent.
const (
	DefaultPriceScore      = 0.45
	DefaultCabinScore      = 0.5
	DefaultPreferenceScore = 0.6
	DefaultDemandScore     = 0.4
	DefaultRiskScore       = 0.3

	noPreferenceMatchScore = 0.2
	basePriceScore         = 0.6
	budgetFitBonus         = 0.1
	preferredCabinBonus    = 0.05
	unknownCabinScore      = 0.5
)

var cabinDesirability = map[string]float64{
	"suite":      1.0,
	"balcony":    0.85,
	"ocean view": 0.65,
	"interior":   0.45,
}

type SubScores = models.ScoreBreakdown

// Candidate is one sailing together with whatever related data was found
// for it. Any pointer may be nil.
type Candidate struct {
	Sailing      models.Sailing
	Ship         *models.Ship
	Pricing      *models.PricingSnapshot
	Availability *models.AvailabilitySnapshot
	Risk         *models.RiskSnapshot
}

func (c Candidate) cabinTypes() []string {
	if c.Availability == nil {
		return nil
	}
	return c.Availability.CabinTypes
}

// Score computes all five sub-scores for c.
func Score(c Candidate, input models.DecisionInput) SubScores {
	return SubScores{
		Price:      PriceScore(c.Pricing, input),
		Cabin:      CabinScore(c.Availability, input),
		Preference: PreferenceScore(c, input),
		Demand:     DemandScore(c.Availability),
		Risk:       RiskScore(c.Risk),
	}
}

func PriceScore(p *models.PricingSnapshot, input models.DecisionInput) float64 {
	if p == nil || p.MinPricePerPerson <= 0 {
		return DefaultPriceScore
	}
	score := basePriceScore
	if p.MedianPricePerPerson != nil && *p.MedianPricePerPerson > 0 {
		score = Clamp01(1.15 - p.MinPricePerPerson/(*p.MedianPricePerPerson))
	}
	if ceiling, ok := input.BudgetCeiling(); ok && p.MinPricePerPerson <= ceiling {
		score += budgetFitBonus
	}
	return Clamp01(score)
}

func CabinScore(a *models.AvailabilitySnapshot, input models.DecisionInput) float64 {
	if a == nil || len(a.CabinTypes) == 0 {
		return DefaultCabinScore
	}
	best := 0.0
	available := normalizeAll(a.CabinTypes)
	for _, cabin := range available {
		v, ok := cabinDesirability[cabin]
		if !ok {
			v = unknownCabinScore
		}
		if v > best {
			best = v
		}
	}
	if input.Preferences != nil && intersects(available, input.Preferences.CabinTypes) {
		best += preferredCabinBonus
	}
	return Clamp01(best)
}

// PreferenceScore is the share of specified preference dimensions the
// candidate satisfies, mapped onto [0.2, 1].
func PreferenceScore(c Candidate, input models.DecisionInput) float64 {
	p := input.Preferences
	if p == nil {
		return DefaultPreferenceScore
	}

	specified, matched := 0, 0
	if len(p.CruiseLines) > 0 {
		specified++
		if intersects([]string{c.Sailing.Line}, p.CruiseLines) {
			matched++
		}
	}
	if len(p.ShipClasses) > 0 {
		specified++
		if c.Ship != nil && intersects([]string{c.Ship.Class}, p.ShipClasses) {
			matched++
		}
	}
	if len(p.ItineraryTags) > 0 {
		specified++
		if intersects(c.Sailing.ItineraryTags, p.ItineraryTags) {
			matched++
		}
	}
	if len(p.CabinTypes) > 0 {
		specified++
		if intersects(c.cabinTypes(), p.CabinTypes) {
			matched++
		}
	}

	if specified == 0 {
		return DefaultPreferenceScore
	}
	if matched == 0 {
		return noPreferenceMatchScore
	}
	return Clamp01(noPreferenceMatchScore + 0.8*float64(matched)/float64(specified))
}

func DemandScore(a *models.AvailabilitySnapshot) float64 {
	if a == nil || a.DemandPressure == nil {
		return DefaultDemandScore
	}
	return Clamp01(*a.DemandPressure)
}

func RiskScore(r *models.RiskSnapshot) float64 {
	if r == nil || r.RiskScore == nil {
		return DefaultRiskScore
	}
	return Clamp01(*r.RiskScore)
}

func intersects(values, wanted []string) bool {
	if len(values) == 0 || len(wanted) == 0 {
		return false
	}
	set := normalizedSet(wanted)
	for _, v := range values {
		if _, ok := set[Normalize(v)]; ok {
			return true
		}
	}
	return false
}
