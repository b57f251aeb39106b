// internal/decision/normalize.go
package decision

import (
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Normalize lowercases s and collapses every whitespace run to a single space.
// Eligibility, preference matching and cabin lookup all compare through it.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range normalizeAll(values) {
		set[v] = struct{}{}
	}
	return set
}

// Clamp01 bounds v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseDate accepts a calendar date or an RFC3339 timestamp and returns the
// UTC day it falls on.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// IsWeekend reports whether t is a Saturday or Sunday in UTC.
func IsWeekend(t time.Time) bool {
	switch t.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// rangeDays is the number of days between start and end, or 0 when either
// bound does not parse.
func rangeDays(r dateBounds) int {
	if !r.ok {
		return 0
	}
	return int(r.end.Sub(r.start).Hours() / 24)
}
