// internal/admin/weights_test.go
package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/decision"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const selectWeights = `SELECT value FROM decision_settings WHERE key = \$1`

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func createWeightsStore(t *testing.T, db *sql.DB, cache redis.Cmdable) *WeightsStore {
	return NewWeightsStore(db, cache, time.Minute, decision.DefaultWeights(), logger.NewTestLogger(t))
}

// ==========================
// Current
// ==========================

func TestWeightsStore_Current_NoBackends(t *testing.T) {
	store := createWeightsStore(t, nil, nil)

	w, err := store.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, decision.DefaultWeights(), w)
}

func TestWeightsStore_Current_ReadThroughCache(t *testing.T) {
	db, mock := setupMockDB(t)
	cache, mr := setupRedis(t)
	store := createWeightsStore(t, db, cache)

	mock.ExpectQuery(selectWeights).
		WithArgs("weights").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"price":0.5,"risk":"0.1"}`)))

	first, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.5, first.Price)
	assert.Equal(t, 0.1, first.Risk)
	assert.Equal(t, 0.20, first.Cabin)
	assert.True(t, mr.Exists(weightsCacheKey))

	// served from cache; no second query is expected
	second, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightsStore_Current_NothingStored(t *testing.T) {
	db, mock := setupMockDB(t)
	store := createWeightsStore(t, db, nil)

	mock.ExpectQuery(selectWeights).WithArgs("weights").WillReturnRows(sqlmock.NewRows([]string{"value"}))

	w, err := store.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, decision.DefaultWeights(), w)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightsStore_Current_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := createWeightsStore(t, db, nil)

	mock.ExpectQuery(selectWeights).WithArgs("weights").WillReturnError(errors.New("connection refused"))

	_, err := store.Current(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load weights")
}

func TestWeightsStore_Current_CacheErrorFallsBackToDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	cache, redisMock := redismock.NewClientMock()
	store := createWeightsStore(t, db, cache)

	expected := decision.DefaultWeights()
	expected.Demand = 0.3
	data, err := json.Marshal(expected)
	require.NoError(t, err)

	redisMock.ExpectGet(weightsCacheKey).SetErr(errors.New("READONLY"))
	mock.ExpectQuery(selectWeights).
		WithArgs("weights").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"demand":0.3}`)))
	redisMock.ExpectSet(weightsCacheKey, data, time.Minute).SetVal("OK")

	w, err := store.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, expected, w)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestWeightsStore_Current_CacheMiss(t *testing.T) {
	db, mock := setupMockDB(t)
	cache, redisMock := redismock.NewClientMock()
	store := createWeightsStore(t, db, cache)

	data, err := json.Marshal(decision.DefaultWeights())
	require.NoError(t, err)

	redisMock.ExpectGet(weightsCacheKey).RedisNil()
	mock.ExpectQuery(selectWeights).
		WithArgs("weights").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{}`)))
	redisMock.ExpectSet(weightsCacheKey, data, time.Minute).SetVal("OK")

	w, err := store.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, decision.DefaultWeights(), w)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// ==========================
// Update
// ==========================

func TestWeightsStore_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	cache, mr := setupRedis(t)
	store := createWeightsStore(t, db, cache)

	cached, err := json.Marshal(decision.DefaultWeights())
	require.NoError(t, err)
	require.NoError(t, mr.Set(weightsCacheKey, string(cached)))

	mock.ExpectExec(`INSERT INTO decision_settings`).
		WithArgs("weights", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w, err := store.Update(context.Background(), map[string]interface{}{
		"price":   "0.4",
		"demand":  0,
		"risk":    -1,
		"unknown": 12,
	})

	require.NoError(t, err)
	assert.Equal(t, 0.4, w.Price)
	assert.Equal(t, 0.20, w.Cabin)
	assert.Equal(t, 0.0, w.Demand)
	assert.Equal(t, 0.0, w.Risk)
	assert.False(t, mr.Exists(weightsCacheKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightsStore_Update_Invalid(t *testing.T) {
	db, mock := setupMockDB(t)
	store := createWeightsStore(t, db, nil)

	mock.ExpectQuery(selectWeights).WithArgs("weights").WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := store.Update(context.Background(), map[string]interface{}{"price": "cheap"})

	assert.ErrorIs(t, err, ErrInvalidWeight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightsStore_Update_NoDatabase(t *testing.T) {
	store := createWeightsStore(t, nil, nil)

	_, err := store.Update(context.Background(), map[string]interface{}{"price": 1})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

// ==========================
// CoerceWeights
// ==========================

func TestCoerceWeights(t *testing.T) {
	base := decision.DefaultWeights()

	tests := []struct {
		name     string
		raw      map[string]interface{}
		expected decision.Weights
		wantErr  bool
	}{
		{"empty keeps base", map[string]interface{}{}, base, false},
		{"nil value keeps base", map[string]interface{}{"price": nil}, base, false},
		{"numeric string", map[string]interface{}{"cabin": "0.35"}, decision.Weights{Price: 0.25, Cabin: 0.35, Preference: 0.2, Demand: 0.15, Risk: 0.2}, false},
		{"integer", map[string]interface{}{"risk": 1}, decision.Weights{Price: 0.25, Cabin: 0.2, Preference: 0.2, Demand: 0.15, Risk: 1}, false},
		{"json number", map[string]interface{}{"preference": json.Number("0.5")}, decision.Weights{Price: 0.25, Cabin: 0.2, Preference: 0.5, Demand: 0.15, Risk: 0.2}, false},
		{"not a number", map[string]interface{}{"demand": "high"}, decision.Weights{}, true},
		{"wrong type", map[string]interface{}{"demand": []int{1}}, decision.Weights{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := CoerceWeights(tt.raw, base)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWeight)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected.Price, w.Price, 1e-9)
			assert.InDelta(t, tt.expected.Cabin, w.Cabin, 1e-9)
			assert.InDelta(t, tt.expected.Preference, w.Preference, 1e-9)
			assert.InDelta(t, tt.expected.Demand, w.Demand, 1e-9)
			assert.InDelta(t, tt.expected.Risk, w.Risk, 1e-9)
		})
	}
}
