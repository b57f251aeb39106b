// internal/decision/service.go
package decision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/common/metrics"
	"cruise-decision-workers/internal/inventory"
	"cruise-decision-workers/internal/models"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInventoryFetch = errors.New("INVENTORY_FETCH_FAILED")
	ErrOverrideFetch  = errors.New("OVERRIDE_STORE_FAILED")
)

// OverrideSource returns the operator overrides for the given sailings.
type OverrideSource interface {
	List(ctx context.Context, sailingIDs []string) (map[string]models.Override, error)
}

// WeightsSource returns the currently configured aggregation weights.
type WeightsSource interface {
	Current(ctx context.Context) (Weights, error)
}

type ServiceConfig struct {
	DefaultWeights   Weights
	DefaultLimit     int
	MaxLimit         int
	SlowRunThreshold time.Duration
}

// RankOptions are per-call settings. A nil Weights uses the configured
// weights; a non-positive Limit uses the configured default.
type RankOptions struct {
	Weights *Weights
	Limit   int
}

// Service runs the full ranking flow: fetch, rank, override, audit, truncate.
// It holds no per-run state and is safe for concurrent use.
type Service struct {
	repo      inventory.Repository
	overrides OverrideSource
	weights   WeightsSource
	audit     *AuditWriter
	cfg       ServiceConfig
	logger    logger.Logger
	now       func() time.Time
}

// NewService wires the ranking flow. repo may be nil, in which case every
// Rank call returns an empty result list. overrides, weights and audit are
// optional.
func NewService(repo inventory.Repository, overrides OverrideSource, weights WeightsSource, audit *AuditWriter, cfg ServiceConfig, log logger.Logger) *Service {
	if cfg.SlowRunThreshold <= 0 {
		cfg.SlowRunThreshold = 500 * time.Millisecond
	}
	return &Service{
		repo:      repo,
		overrides: overrides,
		weights:   weights,
		audit:     audit,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "decision-service"}),
		now:       time.Now,
	}
}

func (s *Service) Rank(ctx context.Context, input models.DecisionInput, opts RankOptions) ([]models.DecisionResult, error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.DecisionRunsTotal.WithLabelValues(status).Inc()
		metrics.DecisionDuration.Observe(time.Since(start).Seconds())
	}()

	if s.repo == nil {
		status = "unavailable"
		s.logger.Warn("inventory repository not configured, returning no results", nil)
		return []models.DecisionResult{}, nil
	}

	bounds := parseBounds(input.DateRange)
	if !bounds.ok {
		status = "empty"
		s.logger.Debug("unparseable date range, nothing is eligible", map[string]interface{}{
			"start": input.DateRange.Start,
			"end":   input.DateRange.End,
		})
		return []models.DecisionResult{}, nil
	}

	sailings, err := s.repo.FetchSailings(ctx, Normalize(input.DeparturePort),
		bounds.start.Format(dateLayout), bounds.end.Format(dateLayout), input.ShipID)
	if err != nil {
		return nil, fmt.Errorf("%w: sailings: %w", ErrInventoryFetch, err)
	}
	metrics.DecisionCandidates.WithLabelValues("fetched").Observe(float64(len(sailings)))

	eligible := FilterEligible(sailings, input)
	metrics.DecisionCandidates.WithLabelValues("eligible").Observe(float64(len(eligible)))

	pool, err := s.loadPool(ctx, eligible)
	if err != nil {
		return nil, err
	}

	weights := s.resolveWeights(ctx, opts)
	results := Rank(input, pool, weights)

	results, err = s.applyOverrides(ctx, results)
	if err != nil {
		return nil, err
	}

	s.audit.Write(ctx, BuildAuditRecord(input, results, s.now()))

	results = Truncate(results, s.limit(opts.Limit))
	metrics.DecisionCandidates.WithLabelValues("returned").Observe(float64(len(results)))

	status = "ok"
	if len(results) == 0 {
		status = "empty"
	}

	elapsed := time.Since(start)
	fields := map[string]interface{}{
		"port":       Normalize(input.DeparturePort),
		"fetched":    len(sailings),
		"eligible":   len(eligible),
		"returned":   len(results),
		"durationMs": elapsed.Milliseconds(),
	}
	if elapsed > s.cfg.SlowRunThreshold {
		s.logger.Warn("slow ranking run", fields)
	} else {
		s.logger.Debug("ranking run completed", fields)
	}
	return results, nil
}

// loadPool fetches ships and the three snapshot kinds concurrently.
func (s *Service) loadPool(ctx context.Context, sailings []models.Sailing) (Pool, error) {
	pool := Pool{Sailings: sailings}
	if len(sailings) == 0 {
		return pool, nil
	}

	ids := make([]string, len(sailings))
	shipIDs := make([]string, len(sailings))
	for i, sl := range sailings {
		ids[i] = sl.ID
		shipIDs[i] = sl.ShipID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ships, err := s.repo.FetchShipsByIDs(gctx, shipIDs)
		if err != nil {
			return fmt.Errorf("%w: ships: %w", ErrInventoryFetch, err)
		}
		pool.Ships = ships
		return nil
	})
	g.Go(func() error {
		pricing, err := s.repo.FetchLatestPricing(gctx, ids)
		if err != nil {
			return fmt.Errorf("%w: pricing: %w", ErrInventoryFetch, err)
		}
		pool.Pricing = pricing
		return nil
	})
	g.Go(func() error {
		availability, err := s.repo.FetchLatestAvailability(gctx, ids)
		if err != nil {
			return fmt.Errorf("%w: availability: %w", ErrInventoryFetch, err)
		}
		pool.Availability = availability
		return nil
	})
	g.Go(func() error {
		risk, err := s.repo.FetchLatestRisk(gctx, ids)
		if err != nil {
			return fmt.Errorf("%w: risk: %w", ErrInventoryFetch, err)
		}
		pool.Risk = risk
		return nil
	})

	if err := g.Wait(); err != nil {
		return Pool{}, err
	}
	return pool, nil
}

func (s *Service) resolveWeights(ctx context.Context, opts RankOptions) Weights {
	if opts.Weights != nil {
		return opts.Weights.Sanitized()
	}
	if s.weights != nil {
		w, err := s.weights.Current(ctx)
		if err == nil {
			return w.Sanitized()
		}
		s.logger.Warn("weights lookup failed, using configured defaults", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return s.cfg.DefaultWeights.Sanitized()
}

func (s *Service) applyOverrides(ctx context.Context, results []models.DecisionResult) ([]models.DecisionResult, error) {
	if s.overrides == nil || len(results) == 0 {
		return results, nil
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.SailingID
	}
	overrides, err := s.overrides.List(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOverrideFetch, err)
	}

	for _, o := range overrides {
		switch {
		case o.Disabled:
			metrics.OverridesApplied.WithLabelValues("disabled").Inc()
		case o.ForceReview:
			metrics.OverridesApplied.WithLabelValues("force_review").Inc()
		}
	}
	return ApplyOverrides(results, overrides), nil
}

func (s *Service) limit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && (limit <= 0 || limit > s.cfg.MaxLimit) {
		limit = s.cfg.MaxLimit
	}
	return limit
}
