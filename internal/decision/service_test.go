// internal/decision/service_test.go
package decision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/inventory"
	"cruise-decision-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Fakes
// ==========================

type staticOverrides struct {
	overrides map[string]models.Override
	err       error
	calls     int
}

func (s *staticOverrides) List(ctx context.Context, ids []string) (map[string]models.Override, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := map[string]models.Override{}
	for _, id := range ids {
		if o, ok := s.overrides[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

type staticWeights struct {
	weights Weights
	err     error
}

func (s staticWeights) Current(ctx context.Context) (Weights, error) {
	return s.weights, s.err
}

// failingRepository wraps a working repository and fails the named call.
type failingRepository struct {
	inventory.Repository
	failOn string
	calls  map[string]int
	mu     sync.Mutex
}

func (f *failingRepository) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	if f.failOn == name {
		return errors.New("connection reset")
	}
	return nil
}

func (f *failingRepository) FetchSailings(ctx context.Context, port, start, end, shipID string) ([]models.Sailing, error) {
	if err := f.hit("sailings"); err != nil {
		return nil, err
	}
	return f.Repository.FetchSailings(ctx, port, start, end, shipID)
}

func (f *failingRepository) FetchLatestRisk(ctx context.Context, ids []string) (map[string]models.RiskSnapshot, error) {
	if err := f.hit("risk"); err != nil {
		return nil, err
	}
	return f.Repository.FetchLatestRisk(ctx, ids)
}

// portRecorder remembers the port each sailings query was issued for.
type portRecorder struct {
	inventory.Repository
	ports []string
}

func (p *portRecorder) FetchSailings(ctx context.Context, port, start, end, shipID string) ([]models.Sailing, error) {
	p.ports = append(p.ports, port)
	return p.Repository.FetchSailings(ctx, port, start, end, shipID)
}

func seededRepository() *inventory.MemoryRepository {
	repo := inventory.NewMemoryRepository()
	repo.AddSailings(
		createSailing("s1", "Miami", "2026-03-07"),
		createSailing("s2", "Miami", "2026-03-14"),
		createSailing("s3", "Miami", "2026-03-21"),
		createSailing("s4", "Galveston", "2026-03-07"),
		createSailing("s5", "Miami", "2026-05-02"),
	)
	repo.AddShips(models.Ship{ID: "ship-s1", Name: "Wonder", Line: "Royal Caribbean", Class: "Oasis"})
	repo.AddPricing(
		models.PricingSnapshot{SailingID: "s1", ObservedAt: observed, MinPricePerPerson: 450, MedianPricePerPerson: ptr(700)},
		models.PricingSnapshot{SailingID: "s2", ObservedAt: observed, MinPricePerPerson: 900, MedianPricePerPerson: ptr(700)},
	)
	repo.AddAvailability(
		models.AvailabilitySnapshot{SailingID: "s1", ObservedAt: observed, DemandPressure: ptr(0.2), CabinTypes: []string{"balcony"}},
		models.AvailabilitySnapshot{SailingID: "s3", ObservedAt: observed, DemandPressure: ptr(0.95)},
	)
	repo.AddRisk(models.RiskSnapshot{SailingID: "s1", ObservedAt: observed, RiskScore: ptr(0.1)})
	return repo
}

func createTestService(t *testing.T, repo inventory.Repository, overrides OverrideSource, weights WeightsSource, sink AuditSink) *Service {
	log := logger.NewTestLogger(t)
	audit := NewAuditWriter(sink, false, time.Second, log)
	return NewService(repo, overrides, weights, audit, ServiceConfig{
		DefaultWeights: DefaultWeights(),
		DefaultLimit:   10,
		MaxLimit:       50,
	}, log)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestService_Rank_Success(t *testing.T) {
	sink := &recordingSink{}
	svc := createTestService(t, seededRepository(), nil, nil, sink)

	results, err := svc.Rank(context.Background(), createInput("miami", "2026-03-01", "2026-03-31"), RankOptions{})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "s1", results[0].SailingID)
	assert.Equal(t, "s3", results[1].SailingID)
	assert.Equal(t, "s2", results[2].SailingID)
	assert.Contains(t, results[1].Flags, FlagHighDemand)

	require.Equal(t, 1, sink.count())
	record := sink.records[0]
	assert.Equal(t, "s1", record.TopSailingID)
	assert.Equal(t, 3, record.ResultCount)
	assert.Equal(t, results[0].Confidence, record.TopConfidence)
}

func TestService_Rank_MatchesPureRank(t *testing.T) {
	repo := seededRepository()
	svc := createTestService(t, repo, nil, nil, nil)
	input := createInput("Miami", "2026-03-01", "2026-03-31")

	results, err := svc.Rank(context.Background(), input, RankOptions{})
	require.NoError(t, err)

	sailings, _ := repo.FetchSailings(context.Background(), "Miami", "2026-03-01", "2026-03-31", "")
	ids := []string{"s1", "s2", "s3"}
	ships, _ := repo.FetchShipsByIDs(context.Background(), []string{"ship-s1", "ship-s2", "ship-s3"})
	pricing, _ := repo.FetchLatestPricing(context.Background(), ids)
	availability, _ := repo.FetchLatestAvailability(context.Background(), ids)
	risk, _ := repo.FetchLatestRisk(context.Background(), ids)

	expected := Rank(input, Pool{
		Sailings: sailings, Ships: ships, Pricing: pricing, Availability: availability, Risk: risk,
	}, DefaultWeights())
	assert.Equal(t, expected, results)
}

func TestService_Rank_Limit(t *testing.T) {
	sink := &recordingSink{}
	svc := createTestService(t, seededRepository(), nil, nil, sink)
	input := createInput("Miami", "2026-03-01", "2026-03-31")

	results, err := svc.Rank(context.Background(), input, RankOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "s1", results[0].SailingID)

	// audit covers the untruncated set
	assert.Equal(t, 3, sink.records[0].ResultCount)

	svc.cfg.MaxLimit = 1
	results, err = svc.Rank(context.Background(), input, RankOptions{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestService_Rank_ShipFilter(t *testing.T) {
	svc := createTestService(t, seededRepository(), nil, nil, nil)
	input := createInput("Miami", "2026-03-01", "2026-03-31")
	input.ShipID = "ship-s2"

	results, err := svc.Rank(context.Background(), input, RankOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s2", results[0].SailingID)
}

func TestService_Rank_PortWithExtraWhitespace(t *testing.T) {
	mem := inventory.NewMemoryRepository()
	mem.AddSailings(createSailing("pc1", "Port Canaveral", "2026-03-07"))
	repo := &portRecorder{Repository: mem}
	svc := createTestService(t, repo, nil, nil, nil)

	results, err := svc.Rank(context.Background(), createInput(" port   Canaveral\t", "2026-03-01", "2026-03-31"), RankOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pc1", results[0].SailingID)
	assert.Equal(t, []string{"port canaveral"}, repo.ports)
}

func TestService_Rank_Overrides(t *testing.T) {
	sink := &recordingSink{}
	overrides := &staticOverrides{overrides: map[string]models.Override{
		"s1": {SailingID: "s1", Disabled: true},
		"s3": {SailingID: "s3", ForceReview: true, Note: "itinerary change pending"},
	}}
	svc := createTestService(t, seededRepository(), overrides, nil, sink)

	results, err := svc.Rank(context.Background(), createInput("Miami", "2026-03-01", "2026-03-31"), RankOptions{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Nil(t, findResult(results, "s1"))
	s3 := findResult(results, "s3")
	require.NotNil(t, s3)
	assert.Contains(t, s3.Flags, FlagForceReview)
	assert.Equal(t, "itinerary change pending", s3.ReviewNote)

	assert.NotEqual(t, "s1", sink.records[0].TopSailingID)
	assert.Equal(t, 2, sink.records[0].ResultCount)
}

func TestService_Rank_Weights(t *testing.T) {
	input := createInput("Miami", "2026-03-01", "2026-03-31")
	priceOnly := Weights{Price: 1}

	stored := createTestService(t, seededRepository(), nil, staticWeights{weights: priceOnly}, nil)
	fromStore, err := stored.Rank(context.Background(), input, RankOptions{})
	require.NoError(t, err)

	perCall := createTestService(t, seededRepository(), nil, staticWeights{weights: DefaultWeights()}, nil)
	fromOpts, err := perCall.Rank(context.Background(), input, RankOptions{Weights: &priceOnly})
	require.NoError(t, err)

	assert.Equal(t, fromStore, fromOpts)
	assert.InDelta(t, 1.15-450.0/700.0, fromStore[0].Score, 1e-9)

	broken := createTestService(t, seededRepository(), nil, staticWeights{err: errors.New("redis down")}, nil)
	fallback, err := broken.Rank(context.Background(), input, RankOptions{})
	require.NoError(t, err)

	defaults := createTestService(t, seededRepository(), nil, nil, nil)
	expected, err := defaults.Rank(context.Background(), input, RankOptions{})
	require.NoError(t, err)
	assert.Equal(t, expected, fallback)
}

// ==========================
// Degraded and Error Cases
// ==========================

func TestService_Rank_NoRepository(t *testing.T) {
	sink := &recordingSink{}
	svc := createTestService(t, nil, nil, nil, sink)

	results, err := svc.Rank(context.Background(), createInput("Miami", "2026-03-01", "2026-03-31"), RankOptions{})

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 0, sink.count())
}

func TestService_Rank_UnparseableDatesFailClosed(t *testing.T) {
	repo := &failingRepository{Repository: seededRepository(), failOn: "sailings"}
	svc := createTestService(t, repo, nil, nil, nil)

	results, err := svc.Rank(context.Background(), createInput("Miami", "March", "2026-03-31"), RankOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, repo.calls["sailings"])
}

func TestService_Rank_FetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
	}{
		{"sailings", "sailings"},
		{"risk snapshots", "risk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			repo := &failingRepository{Repository: seededRepository(), failOn: tt.failOn}
			svc := createTestService(t, repo, nil, nil, sink)

			results, err := svc.Rank(context.Background(), createInput("Miami", "2026-03-01", "2026-03-31"), RankOptions{})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInventoryFetch)
			assert.Contains(t, err.Error(), "connection reset")
			assert.Nil(t, results)
			assert.Equal(t, 0, sink.count())
		})
	}
}

func TestService_Rank_OverrideStoreError(t *testing.T) {
	overrides := &staticOverrides{err: errors.New("timeout")}
	svc := createTestService(t, seededRepository(), overrides, nil, nil)

	_, err := svc.Rank(context.Background(), createInput("Miami", "2026-03-01", "2026-03-31"), RankOptions{})

	assert.ErrorIs(t, err, ErrOverrideFetch)
}

func TestService_Rank_NoCandidatesSkipsOverrides(t *testing.T) {
	overrides := &staticOverrides{}
	sink := &recordingSink{}
	svc := createTestService(t, seededRepository(), overrides, nil, sink)

	results, err := svc.Rank(context.Background(), createInput("Seattle", "2026-03-01", "2026-03-31"), RankOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, overrides.calls)
	require.Equal(t, 1, sink.count())
	assert.Empty(t, sink.records[0].TopSailingID)
}

func TestService_Rank_ConcurrentCalls(t *testing.T) {
	svc := createTestService(t, seededRepository(), nil, nil, nil)
	input := createInput("Miami", "2026-03-01", "2026-03-31")
	expected, err := svc.Rank(context.Background(), input, RankOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Rank(context.Background(), input, RankOptions{})
			if err != nil {
				errs <- err
				return
			}
			if len(got) != len(expected) || got[0].SailingID != expected[0].SailingID {
				errs <- errors.New("result mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
