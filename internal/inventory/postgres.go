// internal/inventory/postgres.go
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cruise-decision-workers/internal/models"

	"github.com/lib/pq"
)

const dateLayout = "2006-01-02"

// PostgresRepository reads inventory from the sailings, ships and *_snapshots
// tables (see migrations/001_inventory.sql).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	if db == nil {
		return nil, ErrNotConfigured
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) FetchSailings(ctx context.Context, port, dateStart, dateEnd, shipID string) ([]models.Sailing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, departure_port, depart_date, return_date, nights, line, ship_id,
		       itinerary_tags, itinerary_label, itinerary_summary, is_eligible
		FROM sailings
		WHERE regexp_replace(lower(btrim(departure_port)), '\s+', ' ', 'g') = $1
		  AND depart_date BETWEEN $2::date AND $3::date
		  AND ($4 = '' OR ship_id = $4)
		ORDER BY depart_date, id`, normalizePort(port), dateStart, dateEnd, shipID)
	if err != nil {
		return nil, fmt.Errorf("query sailings: %w", err)
	}
	defer rows.Close()

	var sailings []models.Sailing
	for rows.Next() {
		var (
			s              models.Sailing
			depart, ret    time.Time
			tags           pq.StringArray
			label, summary sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.DeparturePort, &depart, &ret, &s.Nights, &s.Line, &s.ShipID,
			&tags, &label, &summary, &s.Eligible); err != nil {
			return nil, fmt.Errorf("scan sailing: %w", err)
		}
		s.DepartDate = depart.Format(dateLayout)
		s.ReturnDate = ret.Format(dateLayout)
		s.ItineraryTags = []string(tags)
		s.ItineraryLabel = label.String
		s.ItinerarySummary = summary.String
		sailings = append(sailings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sailings: %w", err)
	}
	return sailings, nil
}

func (r *PostgresRepository) FetchShipsByIDs(ctx context.Context, ids []string) (map[string]models.Ship, error) {
	ids = uniqueNonEmpty(ids)
	ships := make(map[string]models.Ship, len(ids))
	if len(ids) == 0 {
		return ships, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, line, class
		FROM ships
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query ships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Ship
		var class sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Line, &class); err != nil {
			return nil, fmt.Errorf("scan ship: %w", err)
		}
		s.Class = class.String
		ships[s.ID] = s
	}
	return ships, rows.Err()
}

func (r *PostgresRepository) FetchLatestPricing(ctx context.Context, sailingIDs []string) (map[string]models.PricingSnapshot, error) {
	sailingIDs = uniqueNonEmpty(sailingIDs)
	out := make(map[string]models.PricingSnapshot, len(sailingIDs))
	if len(sailingIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (sailing_id) sailing_id, observed_at, min_price_pp, median_price_pp
		FROM pricing_snapshots
		WHERE sailing_id = ANY($1)
		ORDER BY sailing_id, observed_at DESC`, pq.Array(sailingIDs))
	if err != nil {
		return nil, fmt.Errorf("query pricing snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PricingSnapshot
		var median sql.NullFloat64
		if err := rows.Scan(&p.SailingID, &p.ObservedAt, &p.MinPricePerPerson, &median); err != nil {
			return nil, fmt.Errorf("scan pricing snapshot: %w", err)
		}
		p.MedianPricePerPerson = nullFloat(median)
		out[p.SailingID] = p
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FetchLatestAvailability(ctx context.Context, sailingIDs []string) (map[string]models.AvailabilitySnapshot, error) {
	sailingIDs = uniqueNonEmpty(sailingIDs)
	out := make(map[string]models.AvailabilitySnapshot, len(sailingIDs))
	if len(sailingIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (sailing_id) sailing_id, observed_at, demand_pressure, cabin_types
		FROM availability_snapshots
		WHERE sailing_id = ANY($1)
		ORDER BY sailing_id, observed_at DESC`, pq.Array(sailingIDs))
	if err != nil {
		return nil, fmt.Errorf("query availability snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.AvailabilitySnapshot
		var demand sql.NullFloat64
		var cabins pq.StringArray
		if err := rows.Scan(&a.SailingID, &a.ObservedAt, &demand, &cabins); err != nil {
			return nil, fmt.Errorf("scan availability snapshot: %w", err)
		}
		a.DemandPressure = nullFloat(demand)
		a.CabinTypes = []string(cabins)
		out[a.SailingID] = a
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FetchLatestRisk(ctx context.Context, sailingIDs []string) (map[string]models.RiskSnapshot, error) {
	sailingIDs = uniqueNonEmpty(sailingIDs)
	out := make(map[string]models.RiskSnapshot, len(sailingIDs))
	if len(sailingIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (sailing_id) sailing_id, observed_at, risk_score
		FROM risk_snapshots
		WHERE sailing_id = ANY($1)
		ORDER BY sailing_id, observed_at DESC`, pq.Array(sailingIDs))
	if err != nil {
		return nil, fmt.Errorf("query risk snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rs models.RiskSnapshot
		var score sql.NullFloat64
		if err := rows.Scan(&rs.SailingID, &rs.ObservedAt, &score); err != nil {
			return nil, fmt.Errorf("scan risk snapshot: %w", err)
		}
		rs.RiskScore = nullFloat(score)
		out[rs.SailingID] = rs
	}
	return out, rows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
