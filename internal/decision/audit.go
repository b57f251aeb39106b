// internal/decision/audit.go
package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/common/metrics"
	"cruise-decision-workers/internal/models"

	"github.com/google/uuid"
)

// AuditSink is the append-only store that receives one record per run.
type AuditSink interface {
	Append(ctx context.Context, record models.AuditRecord) error
}

// HashInput returns the FNV-1a 32-bit hash of the canonical JSON form of
// input as 8 hex characters. Key order, list order within preferences and
// case/whitespace in port and preference values do not affect the hash.
func HashInput(input models.DecisionInput) string {
	canonical := canonicalInput(input)

	// Round-trip through a map so every object is serialized with sorted keys.
	raw, err := json.Marshal(canonical)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", canonical))
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err == nil {
		if sorted, err := json.Marshal(generic); err == nil {
			raw = sorted
		}
	}

	h := fnv.New32a()
	_, _ = h.Write(raw)
	return fmt.Sprintf("%08x", h.Sum32())
}

func canonicalInput(input models.DecisionInput) models.DecisionInput {
	out := input
	out.DeparturePort = Normalize(input.DeparturePort)
	if input.Preferences != nil {
		out.Preferences = &models.Preferences{
			CruiseLines:   sortedNormalized(input.Preferences.CruiseLines),
			ShipClasses:   sortedNormalized(input.Preferences.ShipClasses),
			ItineraryTags: sortedNormalized(input.Preferences.ItineraryTags),
			CabinTypes:    sortedNormalized(input.Preferences.CabinTypes),
		}
	}
	return out
}

func sortedNormalized(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := normalizeAll(values)
	sort.Strings(out)
	return out
}

// BuildAuditRecord summarizes the post-override results of one run.
func BuildAuditRecord(input models.DecisionInput, results []models.DecisionResult, now time.Time) models.AuditRecord {
	record := models.AuditRecord{
		ID:          uuid.New().String(),
		InputHash:   HashInput(input),
		ResultCount: len(results),
		CreatedAt:   now.UTC(),
	}
	if len(results) == 0 {
		return record
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	record.TopSailingID = results[0].SailingID
	record.TopConfidence = results[0].Confidence
	record.ScoreSpread = ScoreSpread(scores)
	return record
}

// AuditWriter delivers audit records to a sink without ever failing the
// ranking call. In async mode writes run in the background; Close waits for
// them.
type AuditWriter struct {
	sink    AuditSink
	async   bool
	timeout time.Duration
	logger  logger.Logger
	wg      sync.WaitGroup
}

func NewAuditWriter(sink AuditSink, async bool, timeout time.Duration, log logger.Logger) *AuditWriter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuditWriter{
		sink:    sink,
		async:   async,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "audit-writer"}),
	}
}

// Write records one audit row. Errors are logged and counted, never returned.
func (w *AuditWriter) Write(ctx context.Context, record models.AuditRecord) {
	if w == nil || w.sink == nil {
		return
	}
	if !w.async {
		w.write(ctx, record)
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.write(context.WithoutCancel(ctx), record)
	}()
}

func (w *AuditWriter) write(ctx context.Context, record models.AuditRecord) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.sink.Append(ctx, record); err != nil {
		metrics.AuditWriteFailures.Inc()
		w.logger.Warn("audit write failed", map[string]interface{}{
			"auditId":   record.ID,
			"inputHash": record.InputHash,
			"error":     err.Error(),
		})
		return
	}
	w.logger.Debug("audit record written", map[string]interface{}{
		"auditId":      record.ID,
		"topSailingId": record.TopSailingID,
	})
}

// Close blocks until in-flight asynchronous writes finish.
func (w *AuditWriter) Close() {
	if w == nil {
		return
	}
	w.wg.Wait()
}
