// internal/workers/decision/decision-admin/registry.go
package decisionadmin

import (
	"context"
	"errors"

	"cruise-decision-workers/internal/admin"
	apperrors "cruise-decision-workers/internal/common/errors"
	"cruise-decision-workers/internal/decision"
	"cruise-decision-workers/internal/models"
)

type WeightsStore interface {
	Current(ctx context.Context) (decision.Weights, error)
	Update(ctx context.Context, raw map[string]interface{}) (decision.Weights, error)
}

type OverrideStore interface {
	ListAll(ctx context.Context) ([]models.Override, error)
	Upsert(ctx context.Context, o models.Override) (models.Override, error)
}

// Dependencies are the admin stores. Audits may be nil when no audit store
// is readable.
type Dependencies struct {
	Weights   WeightsStore
	Overrides OverrideStore
	Audits    admin.AuditLister
}

// OperationFunc runs one admin operation.
type OperationFunc func(ctx context.Context, deps Dependencies, input *Input) (*Output, error)

var Registry = map[models.AdminOperation]OperationFunc{
	models.AdminOperationGetWeights:     getWeights,
	models.AdminOperationUpdateWeights:  updateWeights,
	models.AdminOperationListOverrides:  listOverrides,
	models.AdminOperationUpsertOverride: upsertOverride,
	models.AdminOperationListAudits:     listAudits,
}

func Dispatch(ctx context.Context, deps Dependencies, input *Input) (*Output, error) {
	op := models.AdminOperation(input.Operation)
	fn, exists := Registry[op]
	if !exists {
		return nil, apperrors.NewUnknownAdminOperationError(input.Operation)
	}
	out, err := fn(ctx, deps, input)
	if err != nil {
		return nil, err
	}
	out.Operation = input.Operation
	return out, nil
}

func getWeights(ctx context.Context, deps Dependencies, _ *Input) (*Output, error) {
	w, err := deps.Weights.Current(ctx)
	if err != nil {
		return nil, apperrors.NewWeightsStoreFailedError(err)
	}
	return &Output{Weights: &w}, nil
}

func updateWeights(ctx context.Context, deps Dependencies, input *Input) (*Output, error) {
	if len(input.Weights) == 0 {
		return nil, apperrors.NewInvalidWeightError("weights are required")
	}
	w, err := deps.Weights.Update(ctx, input.Weights)
	if err != nil {
		return nil, storeError(err, "weights", apperrors.NewWeightsStoreFailedError)
	}
	return &Output{Weights: &w}, nil
}

func listOverrides(ctx context.Context, deps Dependencies, _ *Input) (*Output, error) {
	all, err := deps.Overrides.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewOverrideStoreFailedError(err)
	}
	return &Output{Overrides: all}, nil
}

func upsertOverride(ctx context.Context, deps Dependencies, input *Input) (*Output, error) {
	if input.Override == nil {
		return nil, apperrors.NewInvalidOverrideError("override is required")
	}
	stored, err := deps.Overrides.Upsert(ctx, *input.Override)
	if err != nil {
		return nil, storeError(err, "overrides", apperrors.NewOverrideStoreFailedError)
	}
	return &Output{Override: &stored}, nil
}

func listAudits(ctx context.Context, deps Dependencies, input *Input) (*Output, error) {
	if deps.Audits == nil {
		return nil, apperrors.NewStoreUnavailableError("audit")
	}
	records, err := deps.Audits.ListRecent(ctx, admin.ClampAuditLimit(input.Limit))
	if err != nil {
		return nil, apperrors.NewAuditStoreFailedError(err)
	}
	return &Output{Audits: records}, nil
}

// storeError maps the admin sentinels to business errors and everything
// else to the retryable store failure.
func storeError(err error, store string, fallback func(error) *apperrors.StandardError) *apperrors.StandardError {
	switch {
	case errors.Is(err, admin.ErrInvalidWeight):
		return apperrors.NewInvalidWeightError(err.Error())
	case errors.Is(err, admin.ErrInvalidOverride):
		return apperrors.NewInvalidOverrideError(err.Error())
	case errors.Is(err, admin.ErrStoreUnavailable):
		return apperrors.NewStoreUnavailableError(store)
	default:
		return fallback(err)
	}
}
