// internal/models/sailing.go
package models

import "time"

type Sailing struct {
	ID               string   `json:"id"`
	DeparturePort    string   `json:"departurePort"`
	DepartDate       string   `json:"departDate"`
	ReturnDate       string   `json:"returnDate"`
	Nights           int      `json:"nights"`
	Line             string   `json:"line"`
	ShipID           string   `json:"shipId"`
	ItineraryTags    []string `json:"itineraryTags"`
	ItineraryLabel   string   `json:"itineraryLabel,omitempty"`
	ItinerarySummary string   `json:"itinerarySummary,omitempty"`
	Eligible         bool     `json:"eligible"`
}

type Ship struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Line  string `json:"line"`
	Class string `json:"class,omitempty"`
}

type PricingSnapshot struct {
	SailingID            string    `json:"sailingId"`
	ObservedAt           time.Time `json:"observedAt"`
	MinPricePerPerson    float64   `json:"minPricePerPerson"`
	MedianPricePerPerson *float64  `json:"medianPricePerPerson,omitempty"`
}

type AvailabilitySnapshot struct {
	SailingID      string    `json:"sailingId"`
	ObservedAt     time.Time `json:"observedAt"`
	DemandPressure *float64  `json:"demandPressure,omitempty"`
	CabinTypes     []string  `json:"cabinTypes,omitempty"`
}

type RiskSnapshot struct {
	SailingID  string    `json:"sailingId"`
	ObservedAt time.Time `json:"observedAt"`
	RiskScore  *float64  `json:"riskScore,omitempty"`
}
