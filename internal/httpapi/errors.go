// internal/httpapi/errors.go

// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"net/http"

	"custom-pricing-service/internal/common/errors"
	"custom-pricing-service/internal/common/validation"
)

// errorResponse is the JSON error payload. Stage and Retryable let the
// storefront decide which step to retry.
type errorResponse struct {
	Success   bool             `json:"success"`
	Error     string           `json:"error"`
	Code      errors.ErrorCode `json:"code"`
	Stage     errors.Stage     `json:"stage"`
	Retryable bool             `json:"retryable"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a JSON error payload, normalizing non-standard
// errors to the unknown stage.
func WriteError(w http.ResponseWriter, err error, stage errors.Stage) {
	stdErr := errors.Normalize(err, stage)
	WriteJSON(w, statusForError(stdErr), errorResponse{
		Success:   false,
		Error:     stdErr.Message,
		Code:      stdErr.Code,
		Stage:     stdErr.Stage,
		Retryable: stdErr.Retryable,
	})
}

// WriteValidationError writes the field errors from a failed schema check.
func WriteValidationError(w http.ResponseWriter, fieldErrors []validation.FieldError) {
	WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success":     false,
		"error":       "request validation failed",
		"code":        errors.ErrCodeInvalidRequest,
		"stage":       errors.StageUnknown,
		"retryable":   false,
		"fieldErrors": fieldErrors,
	})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Success:   false,
		Error:     "method not allowed",
		Code:      errors.ErrCodeInvalidRequest,
		Stage:     errors.StageUnknown,
		Retryable: false,
	})
}

func statusForError(err *errors.StandardError) int {
	switch err.Code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeAdminUserErrors:
		return http.StatusBadRequest
	case errors.ErrCodeReservationHeld:
		return http.StatusConflict
	case errors.ErrCodePriceUnavailable:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeCartAddFailed, errors.ErrCodeCartFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
