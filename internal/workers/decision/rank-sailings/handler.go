// internal/workers/decision/rank-sailings/handler.go
package ranksailings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"cruise-decision-workers/internal/admin"
	apperrors "cruise-decision-workers/internal/common/errors"
	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/common/metrics"
	"cruise-decision-workers/internal/common/observability"
	"cruise-decision-workers/internal/decision"
	"cruise-decision-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-sailings"
)

// Ranker is the decision service surface this worker needs.
type Ranker interface {
	Rank(ctx context.Context, input models.DecisionInput, opts decision.RankOptions) ([]models.DecisionResult, error)
}

type Handler struct {
	config     *Config
	ranker     Ranker
	weights    decision.WeightsSource
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the worker. weights may be nil, in which case per-job
// weight overrides apply on top of config.BaseWeights.
func NewHandler(config *Config, ranker Ranker, weights decision.WeightsSource, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ranker:     ranker,
		weights:    weights,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.Decode(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Decode validates raw job variables against the input schema and decodes
// them.
func (h *Handler) Decode(variables string) (*Input, error) {
	result, err := inputSchema.ValidateJSON(variables)
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidDecisionInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidDecisionInputError("input cannot be nil")
	}

	opts := decision.RankOptions{Limit: input.Limit}
	if len(input.Weights) > 0 {
		w, err := admin.CoerceWeights(input.Weights, h.baseWeights(ctx))
		if err != nil {
			return nil, apperrors.NewInvalidWeightError(err.Error())
		}
		opts.Weights = &w
	}

	results, err := h.ranker.Rank(ctx, input.DecisionInput, opts)
	if err != nil {
		return nil, classify(err)
	}
	if results == nil {
		results = []models.DecisionResult{}
	}

	h.obs.RecordResults(ctx, len(results))

	return &Output{
		RankedSailings: results,
		ResultCount:    len(results),
		InputHash:      decision.HashInput(input.DecisionInput),
	}, nil
}

// baseWeights returns the operator-stored weights that per-job overrides
// apply to, or config.BaseWeights when the store is absent or failing.
func (h *Handler) baseWeights(ctx context.Context) decision.Weights {
	if h.weights == nil {
		return h.config.BaseWeights
	}
	w, err := h.weights.Current(ctx)
	if err != nil {
		h.logger.Warn("stored weights unavailable, overlaying on base weights", map[string]interface{}{
			"error": err.Error(),
		})
		return h.config.BaseWeights
	}
	return w
}

func classify(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, decision.ErrOverrideFetch):
		return apperrors.NewOverrideStoreFailedError(err)
	case errors.Is(err, decision.ErrInventoryFetch):
		return apperrors.NewInventoryFetchFailedError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("inventory", err)
	default:
		return apperrors.NewInventoryFetchFailedError(err)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
