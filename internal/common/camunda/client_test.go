// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"cruise-decision-workers/internal/common/config"
	"cruise-decision-workers/internal/common/errors"
	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg       string
		retryable bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"broken pipe", true},
		{"NOT_FOUND: process not found", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	c := testClient(3)
	attempts := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, stderrors.New("connection reset by peer")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_MapsPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		code errors.ErrorCode
	}{
		{"unavailable", "unavailable", "EXTERNAL_SERVICE_ERROR"},
		{"timeout", "deadline exceeded", "TIMEOUT_ERROR"},
		{"not found", "job not found", "RESOURCE_NOT_FOUND"},
		{"unauthorized", "unauthorized", "AUTHENTICATION_ERROR"},
		{"duplicate", "resource already exists", "BUSINESS_RULE_VIOLATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(1)

			_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
				return nil, stderrors.New(tt.msg)
			}, "complete-job")

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Contains(t, stdErr.Details, "complete-job")
		})
	}
}

func TestExecuteWithRetry_StopsOnCancel(t *testing.T) {
	c := testClient(5)
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, stderrors.New("timeout")
	}, "topology")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInstrument(t *testing.T) {
	const taskType = "instrument-test"
	var seen int64

	handler := Instrument(taskType, func(_ worker.JobClient, job entities.Job) {
		seen = job.Key
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
	}, nil)

	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42}})

	assert.Equal(t, int64(42), seen)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}

func TestStartWorker_Disabled(t *testing.T) {
	w := StartWorker(nil, "rank-sailings", config.WorkerConfig{Enabled: false}, nil, nil, logger.NewTestLogger(t))

	assert.Nil(t, w)
}
