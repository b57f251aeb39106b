// internal/decision/overrides_test.go
package decision

import (
	"testing"

	"cruise-decision-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedResults() []models.DecisionResult {
	return []models.DecisionResult{
		{SailingID: "a", Score: 0.8, Confidence: 0.3, Reasons: []string{ReasonStrongValue}},
		{SailingID: "b", Score: 0.6, Confidence: 0.3, Reasons: []string{ReasonGoodAvailability}, Flags: []string{FlagHighRisk}},
		{SailingID: "c", Score: 0.4, Confidence: 0.3, Reasons: []string{ReasonFallbackNoBudget}},
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]models.Override
		expectIDs []string
	}{
		{"no overrides", nil, []string{"a", "b", "c"}},
		{"disable top", map[string]models.Override{"a": {SailingID: "a", Disabled: true}}, []string{"b", "c"}},
		{"disable wins over review", map[string]models.Override{"b": {SailingID: "b", Disabled: true, ForceReview: true}}, []string{"a", "c"}},
		{"unknown id ignored", map[string]models.Override{"zzz": {SailingID: "zzz", Disabled: true}}, []string{"a", "b", "c"}},
		{"disable all", map[string]models.Override{
			"a": {Disabled: true}, "b": {Disabled: true}, "c": {Disabled: true},
		}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyOverrides(rankedResults(), tt.overrides)
			ids := make([]string, 0, len(out))
			for _, r := range out {
				ids = append(ids, r.SailingID)
			}
			assert.Equal(t, tt.expectIDs, ids)
		})
	}
}

func TestApplyOverrides_ForceReviewKeepsScore(t *testing.T) {
	in := rankedResults()
	out := ApplyOverrides(in, map[string]models.Override{
		"b": {SailingID: "b", ForceReview: true, Note: "supplier dispute"},
	})

	require.Len(t, out, 3)
	b := findResult(out, "b")
	require.NotNil(t, b)
	assert.Equal(t, 0.6, b.Score)
	assert.Equal(t, 0.3, b.Confidence)
	assert.Equal(t, []string{FlagHighRisk, FlagForceReview}, b.Flags)
	assert.Equal(t, "supplier dispute", b.ReviewNote)

	// the input slice's flags are not shared with the output
	assert.Equal(t, []string{FlagHighRisk}, in[1].Flags)

	again := ApplyOverrides(out, map[string]models.Override{"b": {ForceReview: true}})
	assert.Equal(t, []string{FlagHighRisk, FlagForceReview}, findResult(again, "b").Flags)
}
