// internal/inventory/repository.go
package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"cruise-decision-workers/internal/models"
)

var (
	ErrNotConfigured = errors.New("INVENTORY_UNAVAILABLE")
)

// Repository is the read-only inventory port used by the decision service.
// Latest lookups return at most one snapshot per sailing id, the most recently
// observed; ids without data are absent from the map.
type Repository interface {
	FetchSailings(ctx context.Context, port, dateStart, dateEnd, shipID string) ([]models.Sailing, error)
	FetchShipsByIDs(ctx context.Context, ids []string) (map[string]models.Ship, error)
	FetchLatestPricing(ctx context.Context, sailingIDs []string) (map[string]models.PricingSnapshot, error)
	FetchLatestAvailability(ctx context.Context, sailingIDs []string) (map[string]models.AvailabilitySnapshot, error)
	FetchLatestRisk(ctx context.Context, sailingIDs []string) (map[string]models.RiskSnapshot, error)
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// normalizePort lowercases the port and collapses whitespace runs, matching
// the comparison the eligibility filter applies.
func normalizePort(port string) string {
	return strings.Join(strings.Fields(strings.ToLower(port)), " ")
}

// departDay returns the UTC calendar day of a YYYY-MM-DD or RFC3339 date.
func departDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(dateLayout), true
	}
	return "", false
}
