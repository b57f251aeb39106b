// internal/admin/weights.go
package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/common/metrics"
	"cruise-decision-workers/internal/decision"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
)

const (
	weightsSettingKey = "weights"
	weightsCacheKey   = "decision:weights"
)

var (
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE")
	ErrInvalidWeight    = errors.New("INVALID_WEIGHT")
)

// WeightsStore keeps the aggregation weights in decision_settings and
// caches the current value in Redis. Both backends are optional: without a
// database Current returns the defaults, without Redis every read hits
// Postgres.
type WeightsStore struct {
	db       *sql.DB
	cache    redis.Cmdable
	cacheTTL time.Duration
	defaults decision.Weights
	logger   logger.Logger
}

func NewWeightsStore(db *sql.DB, cache redis.Cmdable, cacheTTL time.Duration, defaults decision.Weights, log logger.Logger) *WeightsStore {
	return &WeightsStore{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		defaults: defaults.Sanitized(),
		logger:   log.WithFields(map[string]interface{}{"component": "weights-store"}),
	}
}

func (s *WeightsStore) Defaults() decision.Weights {
	return s.defaults
}

// Current returns the stored weights, falling back to the defaults for
// missing keys or when nothing has been stored yet.
func (s *WeightsStore) Current(ctx context.Context) (decision.Weights, error) {
	if w, ok := s.fromCache(ctx); ok {
		return w, nil
	}
	if s.db == nil {
		return s.defaults, nil
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM decision_settings WHERE key = $1`, weightsSettingKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaults, nil
	}
	if err != nil {
		return decision.Weights{}, fmt.Errorf("load weights: %w", err)
	}

	var stored map[string]interface{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return decision.Weights{}, fmt.Errorf("decode weights: %w", err)
	}
	w, err := CoerceWeights(stored, s.defaults)
	if err != nil {
		return decision.Weights{}, err
	}

	s.toCache(ctx, w)
	return w, nil
}

// Update merges raw over the current weights, stores the result and drops
// the cached copy.
func (s *WeightsStore) Update(ctx context.Context, raw map[string]interface{}) (decision.Weights, error) {
	if s.db == nil {
		return decision.Weights{}, ErrStoreUnavailable
	}

	current, err := s.Current(ctx)
	if err != nil {
		return decision.Weights{}, err
	}
	next, err := CoerceWeights(raw, current)
	if err != nil {
		return decision.Weights{}, err
	}
	next = next.Sanitized()

	value, err := json.Marshal(next)
	if err != nil {
		return decision.Weights{}, fmt.Errorf("encode weights: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO decision_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		weightsSettingKey, value); err != nil {
		return decision.Weights{}, fmt.Errorf("store weights: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, weightsCacheKey).Err(); err != nil {
			s.logger.Warn("failed to invalidate weights cache", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("decision weights updated", map[string]interface{}{"weights": next.AsMap()})
	return next, nil
}

func (s *WeightsStore) fromCache(ctx context.Context) (decision.Weights, bool) {
	if s.cache == nil {
		return decision.Weights{}, false
	}
	data, err := s.cache.Get(ctx, weightsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.WeightsCacheLookups.WithLabelValues("miss").Inc()
		return decision.Weights{}, false
	}
	if err != nil {
		metrics.WeightsCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("weights cache read failed", map[string]interface{}{"error": err.Error()})
		return decision.Weights{}, false
	}

	var w decision.Weights
	if err := json.Unmarshal(data, &w); err != nil {
		metrics.WeightsCacheLookups.WithLabelValues("error").Inc()
		return decision.Weights{}, false
	}
	metrics.WeightsCacheLookups.WithLabelValues("hit").Inc()
	return w, true
}

func (s *WeightsStore) toCache(ctx context.Context, w decision.Weights) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(w)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, weightsCacheKey, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("weights cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// CoerceWeights reads the five coefficients from raw, accepting numbers,
// numeric strings and booleans. Keys absent from raw keep their value from
// base; unknown keys are ignored.
func CoerceWeights(raw map[string]interface{}, base decision.Weights) (decision.Weights, error) {
	out := base
	fields := map[string]*float64{
		"price":      &out.Price,
		"cabin":      &out.Cabin,
		"preference": &out.Preference,
		"demand":     &out.Demand,
		"risk":       &out.Risk,
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return decision.Weights{}, fmt.Errorf("%w: %s: %v", ErrInvalidWeight, key, err)
		}
		*dst = f
	}
	return out, nil
}
