// internal/decision/eligibility.go
package decision

import (
	"time"

	"cruise-decision-workers/internal/models"
)

type dateBounds struct {
	start time.Time
	end   time.Time
	ok    bool
}

func parseBounds(r models.DateRange) dateBounds {
	start, okStart := ParseDate(r.Start)
	end, okEnd := ParseDate(r.End)
	return dateBounds{start: start, end: end, ok: okStart && okEnd}
}

func (b dateBounds) contains(t time.Time) bool {
	return b.ok && !t.Before(b.start) && !t.After(b.end)
}

// FilterEligible keeps the sailings that satisfy every hard constraint of the
// input, preserving their order. A sailing or range whose dates do not parse
// is excluded.
func FilterEligible(sailings []models.Sailing, input models.DecisionInput) []models.Sailing {
	port := Normalize(input.DeparturePort)
	bounds := parseBounds(input.DateRange)
	weekendOnly := input.MustSailWeekend()
	eligibleOnly := input.EligibleOnly()

	out := make([]models.Sailing, 0, len(sailings))
	for _, s := range sailings {
		if Normalize(s.DeparturePort) != port {
			continue
		}
		depart, ok := ParseDate(s.DepartDate)
		if !ok || !bounds.contains(depart) {
			continue
		}
		if weekendOnly && !IsWeekend(depart) {
			continue
		}
		if eligibleOnly && !s.Eligible {
			continue
		}
		out = append(out, s)
	}
	return out
}
