// internal/inventory/memory.go
package inventory

import (
	"context"
	"sync"

	"cruise-decision-workers/internal/models"
)

// MemoryRepository is an in-process Repository used for fixtures and tests.
// Snapshots may be added in any order; lookups return the latest per sailing.
type MemoryRepository struct {
	mu           sync.RWMutex
	sailings     []models.Sailing
	ships        map[string]models.Ship
	pricing      map[string]models.PricingSnapshot
	availability map[string]models.AvailabilitySnapshot
	risk         map[string]models.RiskSnapshot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		ships:        make(map[string]models.Ship),
		pricing:      make(map[string]models.PricingSnapshot),
		availability: make(map[string]models.AvailabilitySnapshot),
		risk:         make(map[string]models.RiskSnapshot),
	}
}

func (m *MemoryRepository) AddSailings(sailings ...models.Sailing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sailings = append(m.sailings, sailings...)
}

func (m *MemoryRepository) AddShips(ships ...models.Ship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range ships {
		m.ships[s.ID] = s
	}
}

func (m *MemoryRepository) AddPricing(snaps ...models.PricingSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snaps {
		if cur, ok := m.pricing[s.SailingID]; ok && cur.ObservedAt.After(s.ObservedAt) {
			continue
		}
		m.pricing[s.SailingID] = s
	}
}

func (m *MemoryRepository) AddAvailability(snaps ...models.AvailabilitySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snaps {
		if cur, ok := m.availability[s.SailingID]; ok && cur.ObservedAt.After(s.ObservedAt) {
			continue
		}
		m.availability[s.SailingID] = s
	}
}

func (m *MemoryRepository) AddRisk(snaps ...models.RiskSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snaps {
		if cur, ok := m.risk[s.SailingID]; ok && cur.ObservedAt.After(s.ObservedAt) {
			continue
		}
		m.risk[s.SailingID] = s
	}
}

// FetchSailings mirrors the Postgres query: case-insensitive port with
// whitespace runs collapsed, inclusive window over the UTC departure day,
// optional ship. Unparseable departure dates are skipped.
func (m *MemoryRepository) FetchSailings(ctx context.Context, port, dateStart, dateEnd, shipID string) ([]models.Sailing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := normalizePort(port)
	var out []models.Sailing
	for _, s := range m.sailings {
		if normalizePort(s.DeparturePort) != want {
			continue
		}
		day, ok := departDay(s.DepartDate)
		if !ok || day < dateStart || day > dateEnd {
			continue
		}
		if shipID != "" && s.ShipID != shipID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *MemoryRepository) FetchShipsByIDs(ctx context.Context, ids []string) (map[string]models.Ship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.ships, ids), nil
}

func (m *MemoryRepository) FetchLatestPricing(ctx context.Context, sailingIDs []string) (map[string]models.PricingSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.pricing, sailingIDs), nil
}

func (m *MemoryRepository) FetchLatestAvailability(ctx context.Context, sailingIDs []string) (map[string]models.AvailabilitySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.availability, sailingIDs), nil
}

func (m *MemoryRepository) FetchLatestRisk(ctx context.Context, sailingIDs []string) (map[string]models.RiskSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.risk, sailingIDs), nil
}

func pick[T any](src map[string]T, ids []string) map[string]T {
	ids = uniqueNonEmpty(ids)
	out := make(map[string]T, len(ids))
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out
}
