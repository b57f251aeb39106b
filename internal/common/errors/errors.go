// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParseError           ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidDecisionInput ErrorCode = "INVALID_DECISION_INPUT"

	ErrCodeInventoryFetchFailed ErrorCode = "INVENTORY_FETCH_FAILED"
	ErrCodeInventoryUnavailable ErrorCode = "INVENTORY_UNAVAILABLE"

	ErrCodeWeightsStoreFailed  ErrorCode = "WEIGHTS_STORE_FAILED"
	ErrCodeOverrideStoreFailed ErrorCode = "OVERRIDE_STORE_FAILED"
	ErrCodeAuditStoreFailed    ErrorCode = "AUDIT_STORE_FAILED"
	ErrCodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"

	ErrCodeInvalidWeight         ErrorCode = "INVALID_WEIGHT"
	ErrCodeInvalidOverride       ErrorCode = "INVALID_OVERRIDE"
	ErrCodeUnknownAdminOperation ErrorCode = "UNKNOWN_ADMIN_OPERATION"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError is returned when job variables cannot be decoded.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false)
}

// NewInvalidDecisionInputError creates a non-retryable input validation error.
func NewInvalidDecisionInputError(details string) *StandardError {
	return newError(ErrCodeInvalidDecisionInput, "Decision input failed validation", details, false)
}

// NewInventoryFetchFailedError creates a retryable repository transport error.
func NewInventoryFetchFailedError(err error) *StandardError {
	return newError(ErrCodeInventoryFetchFailed, "Inventory repository request failed", err.Error(), true)
}

func NewInventoryUnavailableError() *StandardError {
	return newError(ErrCodeInventoryUnavailable, "Inventory repository is not configured", "", false)
}

func NewWeightsStoreFailedError(err error) *StandardError {
	return newError(ErrCodeWeightsStoreFailed, "Weights store request failed", err.Error(), true)
}

func NewOverrideStoreFailedError(err error) *StandardError {
	return newError(ErrCodeOverrideStoreFailed, "Override store request failed", err.Error(), true)
}

func NewAuditStoreFailedError(err error) *StandardError {
	return newError(ErrCodeAuditStoreFailed, "Audit store request failed", err.Error(), true)
}

func NewStoreUnavailableError(store string) *StandardError {
	return newError(ErrCodeStoreUnavailable, "Backing store is not configured", fmt.Sprintf("store: %s", store), false)
}

func NewInvalidWeightError(details string) *StandardError {
	return newError(ErrCodeInvalidWeight, "Weight value is not numeric", details, false)
}

func NewInvalidOverrideError(details string) *StandardError {
	return newError(ErrCodeInvalidOverride, "Override is invalid", details, false)
}

// NewUnknownAdminOperationError creates a non-retryable dispatch error.
func NewUnknownAdminOperationError(operation string) *StandardError {
	return newError(ErrCodeUnknownAdminOperation, "Unsupported admin operation", fmt.Sprintf("operation: %s", operation), false)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBusinessRuleError reports a request the broker rejected as conflicting,
// such as a duplicate resource. Retrying cannot succeed.
func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeInventoryFetchFailed,
		ErrCodeWeightsStoreFailed,
		ErrCodeOverrideStoreFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3 // Retryable technical errors

	case ErrCodeAuditStoreFailed, "TIMEOUT_ERROR":
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN codes are the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVENTORY"):
		return "INVENTORY"
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "EXTERNAL"):
		return "EXTERNAL"
	default:
		return "OTHER"
	}
}
