// internal/admin/overrides.go
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cruise-decision-workers/internal/models"

	"github.com/lib/pq"
)

var ErrInvalidOverride = errors.New("INVALID_OVERRIDE")

// OverrideStore reads and writes candidate_overrides. A nil db behaves as an
// empty store for reads.
type OverrideStore struct {
	db *sql.DB
}

func NewOverrideStore(db *sql.DB) *OverrideStore {
	return &OverrideStore{db: db}
}

// List returns overrides for the given sailings, keyed by sailing id.
func (s *OverrideStore) List(ctx context.Context, sailingIDs []string) (map[string]models.Override, error) {
	out := make(map[string]models.Override)
	if s.db == nil || len(sailingIDs) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sailing_id, disabled, force_review, note, updated_at
		FROM candidate_overrides
		WHERE sailing_id = ANY($1)`, pq.Array(sailingIDs))
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out[o.SailingID] = o
	}
	return out, rows.Err()
}

// ListAll returns every override, most recently updated first.
func (s *OverrideStore) ListAll(ctx context.Context) ([]models.Override, error) {
	if s.db == nil {
		return []models.Override{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sailing_id, disabled, force_review, note, updated_at
		FROM candidate_overrides
		ORDER BY updated_at DESC, sailing_id`)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	out := []models.Override{}
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Upsert creates or replaces the override for o.SailingID and returns the
// stored row.
func (s *OverrideStore) Upsert(ctx context.Context, o models.Override) (models.Override, error) {
	o.SailingID = strings.TrimSpace(o.SailingID)
	if o.SailingID == "" {
		return models.Override{}, fmt.Errorf("%w: sailingId is required", ErrInvalidOverride)
	}
	if s.db == nil {
		return models.Override{}, ErrStoreUnavailable
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO candidate_overrides (sailing_id, disabled, force_review, note, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (sailing_id) DO UPDATE
		SET disabled = EXCLUDED.disabled,
		    force_review = EXCLUDED.force_review,
		    note = EXCLUDED.note,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at`,
		o.SailingID, o.Disabled, o.ForceReview, o.Note).Scan(&o.UpdatedAt)
	if err != nil {
		return models.Override{}, fmt.Errorf("upsert override: %w", err)
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOverride(row rowScanner) (models.Override, error) {
	var o models.Override
	var note sql.NullString
	if err := row.Scan(&o.SailingID, &o.Disabled, &o.ForceReview, &note, &o.UpdatedAt); err != nil {
		return models.Override{}, fmt.Errorf("scan override: %w", err)
	}
	o.Note = note.String
	return o, nil
}
