package domain

import (
	"fmt"
	"time"
)

// Error codes for the prediction pipeline
const (
	ErrCodeInvalidCategory  = "INVALID_CATEGORY"
	ErrCodeIncompleteInput  = "INCOMPLETE_INPUT"
	ErrCodeModelUnavailable = "MODEL_UNAVAILABLE"
	ErrCodeUnknownDomain    = "UNKNOWN_DOMAIN"
	ErrCodeInferenceFailed  = "INFERENCE_FAILED"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
)

// Sentinels for errors.Is; matching is by code only.
var (
	ErrInvalidCategory  = &PredictionError{Code: ErrCodeInvalidCategory}
	ErrIncompleteInput  = &PredictionError{Code: ErrCodeIncompleteInput}
	ErrModelUnavailable = &PredictionError{Code: ErrCodeModelUnavailable}
	ErrUnknownDomain    = &PredictionError{Code: ErrCodeUnknownDomain}
	ErrInferenceFailed  = &PredictionError{Code: ErrCodeInferenceFailed}
)

// PredictionError is a failure raised by one of the pipeline stages
type PredictionError struct {
	Code    string
	Domain  Domain
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *PredictionError) Error() string {
	msg := e.Code
	if e.Domain != "" {
		msg += fmt.Sprintf(" [%s]", e.Domain)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *PredictionError) Unwrap() error {
	return e.Err
}

// Is matches any PredictionError with the same code
func (e *PredictionError) Is(target error) bool {
	t, ok := target.(*PredictionError)
	return ok && t.Code == e.Code
}

// NewInvalidCategoryError reports a label missing from a field's encoding table
func NewInvalidCategoryError(d Domain, field, label string) *PredictionError {
	return &PredictionError{
		Code:    ErrCodeInvalidCategory,
		Domain:  d,
		Field:   field,
		Message: fmt.Sprintf("label %q is not a valid option", label),
	}
}

// NewIncompleteInputError reports a required field that is absent or unusable
func NewIncompleteInputError(d Domain, field, message string) *PredictionError {
	return &PredictionError{
		Code:    ErrCodeIncompleteInput,
		Domain:  d,
		Field:   field,
		Message: message,
	}
}

// NewModelUnavailableError reports a domain whose model failed to load
func NewModelUnavailableError(d Domain, cause error) *PredictionError {
	return &PredictionError{
		Code:    ErrCodeModelUnavailable,
		Domain:  d,
		Message: "model is not loaded",
		Err:     cause,
	}
}

// NewUnknownDomainError reports a selection outside the dispatch table
func NewUnknownDomainError(selection string) *PredictionError {
	return &PredictionError{
		Code:    ErrCodeUnknownDomain,
		Message: fmt.Sprintf("no prediction page for %q", selection),
	}
}

// NewInferenceError reports a failed call to a remote classifier
func NewInferenceError(d Domain, cause error) *PredictionError {
	return &PredictionError{
		Code:    ErrCodeInferenceFailed,
		Domain:  d,
		Message: "inference call failed",
		Err:     cause,
	}
}

// ErrorResponse represents a standardized API error body
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// NewErrorResponse creates a new ErrorResponse with timestamp
func NewErrorResponse(code, message, details, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError represents an out-of-range or malformed form value
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
