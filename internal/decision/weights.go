// internal/decision/weights.go
package decision

import "math"

// Weights are the aggregation coefficients. They need not sum to 1.
type Weights struct {
	Price      float64 `json:"price"`
	Cabin      float64 `json:"cabin"`
	Preference float64 `json:"preference"`
	Demand     float64 `json:"demand"`
	Risk       float64 `json:"risk"`
}

// DefaultWeights returns the preset used when no weights are configured.
func DefaultWeights() Weights {
	return Weights{
		Price:      0.25,
		Cabin:      0.20,
		Preference: 0.20,
		Demand:     0.15,
		Risk:       0.20,
	}
}

// Sanitized returns a copy with negative, NaN and infinite coefficients set to 0.
func (w Weights) Sanitized() Weights {
	return Weights{
		Price:      nonNegative(w.Price),
		Cabin:      nonNegative(w.Cabin),
		Preference: nonNegative(w.Preference),
		Demand:     nonNegative(w.Demand),
		Risk:       nonNegative(w.Risk),
	}
}

// AsMap keys each coefficient by its JSON name.
func (w Weights) AsMap() map[string]float64 {
	return map[string]float64{
		"price":      w.Price,
		"cabin":      w.Cabin,
		"preference": w.Preference,
		"demand":     w.Demand,
		"risk":       w.Risk,
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Aggregate combines the sub-scores into the final ranking score. Demand and
// risk are subtracted: scarcity and instability lower the rank.
func Aggregate(b SubScores, w Weights) float64 {
	w = w.Sanitized()
	return Clamp01(b.Price*w.Price +
		b.Cabin*w.Cabin +
		b.Preference*w.Preference -
		b.Demand*w.Demand -
		b.Risk*w.Risk)
}
