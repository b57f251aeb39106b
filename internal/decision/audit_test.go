// internal/decision/audit_test.go
package decision

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	records []models.AuditRecord
	err     error
	delay   time.Duration
}

func (s *recordingSink) Append(ctx context.Context, record models.AuditRecord) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestHashInput(t *testing.T) {
	base := withBudget(createInput("Miami", "2026-03-01", "2026-03-31"), 900)
	base.Preferences = &models.Preferences{
		CruiseLines: []string{"Carnival", "Royal Caribbean"},
		CabinTypes:  []string{"balcony", "suite"},
	}

	reordered := base
	reordered.DeparturePort = "  MIAMI "
	reordered.Preferences = &models.Preferences{
		CruiseLines: []string{"royal   caribbean", "CARNIVAL"},
		CabinTypes:  []string{"Suite", "Balcony"},
	}

	h := HashInput(base)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), h)
	assert.Equal(t, h, HashInput(base))
	assert.Equal(t, h, HashInput(reordered))

	different := base
	different.DateRange.End = "2026-04-01"
	assert.NotEqual(t, h, HashInput(different))

	noBudget := base
	noBudget.Budget = nil
	assert.NotEqual(t, h, HashInput(noBudget))
}

func TestBuildAuditRecord(t *testing.T) {
	input := createInput("Miami", "2026-03-01", "2026-03-31")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("EST", -5*3600))

	record := BuildAuditRecord(input, rankedResults(), now)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, HashInput(input), record.InputHash)
	assert.Equal(t, "a", record.TopSailingID)
	assert.Equal(t, 0.3, record.TopConfidence)
	assert.InDelta(t, 0.2, record.ScoreSpread, 1e-9)
	assert.Equal(t, 3, record.ResultCount)
	assert.Equal(t, time.UTC, record.CreatedAt.Location())

	empty := BuildAuditRecord(input, nil, now)
	assert.Empty(t, empty.TopSailingID)
	assert.Zero(t, empty.ScoreSpread)
	assert.Zero(t, empty.ResultCount)
}

func TestAuditWriter_Sync(t *testing.T) {
	sink := &recordingSink{}
	w := NewAuditWriter(sink, false, time.Second, logger.NewTestLogger(t))

	w.Write(context.Background(), models.AuditRecord{ID: "r1"})

	assert.Equal(t, 1, sink.count())
}

func TestAuditWriter_AsyncDrainsOnClose(t *testing.T) {
	sink := &recordingSink{delay: 20 * time.Millisecond}
	w := NewAuditWriter(sink, true, time.Second, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		w.Write(ctx, models.AuditRecord{ID: "r"})
	}
	cancel()
	w.Close()

	assert.Equal(t, 3, sink.count())
}

func TestAuditWriter_FailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	w := NewAuditWriter(sink, false, time.Second, logger.NewTestLogger(t))

	require.NotPanics(t, func() {
		w.Write(context.Background(), models.AuditRecord{ID: "r1"})
	})
	assert.Equal(t, 0, sink.count())
}

func TestAuditWriter_NilIsNoOp(t *testing.T) {
	var w *AuditWriter
	w.Write(context.Background(), models.AuditRecord{})
	w.Close()

	empty := NewAuditWriter(nil, true, 0, logger.NewNoOpLogger())
	empty.Write(context.Background(), models.AuditRecord{})
	empty.Close()
}
