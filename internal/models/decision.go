// internal/models/decision.go
package models

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Passengers struct {
	Adults   int  `json:"adults"`
	Children *int `json:"children,omitempty"`
}

type Budget struct {
	MaxPerPerson *float64 `json:"maxPerPerson,omitempty"`
	Flexible     bool     `json:"flexible"`
}

type Preferences struct {
	CruiseLines   []string `json:"cruiseLines,omitempty"`
	ShipClasses   []string `json:"shipClasses,omitempty"`
	ItineraryTags []string `json:"itineraryTags,omitempty"`
	CabinTypes    []string `json:"cabinTypes,omitempty"`
}

type Constraints struct {
	MustSailWeekend bool `json:"mustSailWeekend"`
	EligibleOnly    bool `json:"eligibleOnly"`
}

// DecisionInput is the traveler intent for one ranking run.
type DecisionInput struct {
	DeparturePort string       `json:"departurePort"`
	DateRange     DateRange    `json:"dateRange"`
	Passengers    Passengers   `json:"passengers"`
	Budget        *Budget      `json:"budget,omitempty"`
	Preferences   *Preferences `json:"preferences,omitempty"`
	Constraints   *Constraints `json:"constraints,omitempty"`
	ShipID        string       `json:"shipId,omitempty"`
}

// BudgetCeiling returns the per-person ceiling when one was given.
func (in DecisionInput) BudgetCeiling() (float64, bool) {
	if in.Budget == nil || in.Budget.MaxPerPerson == nil || *in.Budget.MaxPerPerson <= 0 {
		return 0, false
	}
	return *in.Budget.MaxPerPerson, true
}

// HasPreferences reports whether any preference dimension is non-empty.
func (in DecisionInput) HasPreferences() bool {
	p := in.Preferences
	if p == nil {
		return false
	}
	return len(p.CruiseLines) > 0 || len(p.ShipClasses) > 0 ||
		len(p.ItineraryTags) > 0 || len(p.CabinTypes) > 0
}

func (in DecisionInput) MustSailWeekend() bool {
	return in.Constraints != nil && in.Constraints.MustSailWeekend
}

func (in DecisionInput) EligibleOnly() bool {
	return in.Constraints != nil && in.Constraints.EligibleOnly
}

type ScoreBreakdown struct {
	Price      float64 `json:"price"`
	Cabin      float64 `json:"cabin"`
	Preference float64 `json:"preference"`
	Demand     float64 `json:"demand"`
	Risk       float64 `json:"risk"`
}

type DecisionResult struct {
	SailingID  string          `json:"sailingId"`
	Score      float64         `json:"score"`
	Confidence float64         `json:"confidence"`
	Reasons    []string        `json:"reasons"`
	Flags      []string        `json:"flags,omitempty"`
	Breakdown  *ScoreBreakdown `json:"breakdown,omitempty"`
	ReviewNote string          `json:"reviewNote,omitempty"`
}
