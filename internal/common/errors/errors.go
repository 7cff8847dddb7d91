// Package errors provides standardized error handling for the pricing service.
package errors

import (
	"errors"
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
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	ErrCodeAdminTransportFailed ErrorCode = "ADMIN_API_TRANSPORT_FAILED"
	ErrCodeAdminStatusFailed    ErrorCode = "ADMIN_API_STATUS_FAILED"
	ErrCodeAdminParseFailed     ErrorCode = "ADMIN_API_PARSE_FAILED"
	ErrCodeAdminUserErrors      ErrorCode = "ADMIN_API_USER_ERRORS"
	ErrCodeAdminMissingResult   ErrorCode = "ADMIN_API_MISSING_RESULT"

	ErrCodeReservationHeld ErrorCode = "VARIANT_RESERVATION_HELD"

	ErrCodeCartAddFailed   ErrorCode = "CART_ADD_FAILED"
	ErrCodeCartFetchFailed ErrorCode = "CART_FETCH_FAILED"

	ErrCodePriceUnavailable ErrorCode = "PRICE_UNAVAILABLE"

	ErrCodeSweepListFailed ErrorCode = "SWEEP_LIST_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Stage is the machine-readable error-stage tag surfaced to clients so they
// can offer a stage-appropriate retry.
type Stage string

const (
	StageVariant Stage = "variant"
	StageCart    Stage = "cart"
	StageUnknown Stage = "unknown"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Stage     Stage                  `json:"stage"`
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
// 2. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Stage:     StageVariant,
		Message:   "Invalid request payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdminTransportError creates a retryable Admin API transport error.
func NewAdminTransportError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdminTransportFailed,
		Stage:     StageVariant,
		Message:   "Admin API request failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdminStatusError creates a retryable non-success response status error.
func NewAdminStatusError(operation string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdminStatusFailed,
		Stage:     StageVariant,
		Message:   fmt.Sprintf("Admin API returned status %d", status),
		Details:   fmt.Sprintf("operation: %s, body: %s", operation, truncate(body, 512)),
		Retryable: status >= 500 || status == 429,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdminParseError creates a retryable malformed-response error.
func NewAdminParseError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdminParseFailed,
		Stage:     StageVariant,
		Message:   "Admin API response could not be parsed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdminUserErrorsError creates a non-retryable platform validation error.
func NewAdminUserErrorsError(operation string, messages []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdminUserErrors,
		Stage:     StageVariant,
		Message:   strings.Join(messages, ", "),
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdminMissingResultError creates a retryable missing-payload error.
func NewAdminMissingResultError(operation, detail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdminMissingResult,
		Stage:     StageVariant,
		Message:   "Admin API response is missing the expected result payload",
		Details:   fmt.Sprintf("operation: %s, %s", operation, detail),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReservationHeldError creates a retryable conflict error for a dimension
// signature that is being provisioned by a concurrent request.
func NewReservationHeldError(productID, signature string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReservationHeld,
		Stage:     StageVariant,
		Message:   "An identical variant is being provisioned, retry shortly",
		Details:   fmt.Sprintf("productId: %s, signature: %s", productID, signature),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCartAddError creates a retryable cart-stage error.
func NewCartAddError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCartAddFailed,
		Stage:     StageCart,
		Message:   "Adding the item to the cart failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCartFetchError creates a retryable cart-stage error.
func NewCartFetchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCartFetchFailed,
		Stage:     StageCart,
		Message:   "Fetching the cart contents failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPriceUnavailableError creates a non-retryable pricing error.
func NewPriceUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePriceUnavailable,
		Stage:     StageVariant,
		Message:   "Price is unavailable for the given inputs",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSweepListError creates a retryable error for a failed variant listing,
// which aborts the whole cleanup pass.
func NewSweepListError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSweepListFailed,
		Stage:     StageVariant,
		Message:   "Listing temporary variants failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// Normalize ensures any error is represented as a StandardError, tagging
// unrecognized errors with the given stage.
func Normalize(err error, stage Stage) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Stage:     stage,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
