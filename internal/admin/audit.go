// internal/admin/audit.go
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cruise-decision-workers/internal/decision"
	"cruise-decision-workers/internal/models"
)

const (
	DefaultAuditListLimit = 20
	MaxAuditListLimit     = 200
)

// AuditLister returns the most recent audit records, newest first.
type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditRecord, error)
}

// PostgresAuditStore appends to and reads from decision_audit. Rows are
// never updated or deleted.
type PostgresAuditStore struct {
	db *sql.DB
}

func NewPostgresAuditStore(db *sql.DB) (*PostgresAuditStore, error) {
	if db == nil {
		return nil, ErrStoreUnavailable
	}
	return &PostgresAuditStore{db: db}, nil
}

func (s *PostgresAuditStore) Append(ctx context.Context, r models.AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decision_audit (id, input_hash, top_sailing_id, score_spread, top_confidence, result_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.InputHash, nullString(r.TopSailingID), r.ScoreSpread, r.TopConfidence, r.ResultCount, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *PostgresAuditStore) ListRecent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input_hash, top_sailing_id, score_spread, top_confidence, result_count, created_at
		FROM decision_audit
		ORDER BY created_at DESC
		LIMIT $1`, ClampAuditLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	out := []models.AuditRecord{}
	for rows.Next() {
		var r models.AuditRecord
		var top sql.NullString
		if err := rows.Scan(&r.ID, &r.InputHash, &top, &r.ScoreSpread, &r.TopConfidence, &r.ResultCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		r.TopSailingID = top.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClampAuditLimit applies the default for non-positive limits and caps
// large ones.
func ClampAuditLimit(limit int) int {
	if limit <= 0 {
		return DefaultAuditListLimit
	}
	if limit > MaxAuditListLimit {
		return MaxAuditListLimit
	}
	return limit
}

// MultiSink fans one record out to every sink. All sinks are attempted; the
// joined error reports each failure.
type MultiSink []decision.AuditSink

func (m MultiSink) Append(ctx context.Context, r models.AuditRecord) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Append(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
