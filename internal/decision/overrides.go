// internal/decision/overrides.go
package decision

import "cruise-decision-workers/internal/models"

// ApplyOverrides drops disabled sailings and flags force-review ones. Scores
// and order are left untouched.
func ApplyOverrides(results []models.DecisionResult, overrides map[string]models.Override) []models.DecisionResult {
	if len(overrides) == 0 {
		return results
	}

	out := make([]models.DecisionResult, 0, len(results))
	for _, r := range results {
		o, ok := overrides[r.SailingID]
		if !ok {
			out = append(out, r)
			continue
		}
		if o.Disabled {
			continue
		}
		if o.ForceReview {
			r.Flags = appendUnique(append([]string(nil), r.Flags...), FlagForceReview)
			r.ReviewNote = o.Note
		}
		out = append(out, r)
	}
	return out
}
