package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/middleware"
)

// statusFor maps a pipeline error to its HTTP status and error code
func statusFor(err error) (int, string) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, domain.ErrCodeValidation
	}

	var predErr *domain.PredictionError
	if !errors.As(err, &predErr) {
		return http.StatusInternalServerError, domain.ErrCodeInternalServer
	}

	switch predErr.Code {
	case domain.ErrCodeInvalidCategory, domain.ErrCodeIncompleteInput:
		return http.StatusBadRequest, predErr.Code
	case domain.ErrCodeUnknownDomain:
		return http.StatusNotFound, predErr.Code
	case domain.ErrCodeModelUnavailable:
		return http.StatusServiceUnavailable, predErr.Code
	case domain.ErrCodeInferenceFailed:
		return http.StatusBadGateway, predErr.Code
	default:
		return http.StatusInternalServerError, domain.ErrCodeInternalServer
	}
}

var messages = map[string]string{
	domain.ErrCodeValidation:       "Input value out of range",
	domain.ErrCodeInvalidCategory:  "Invalid category selection",
	domain.ErrCodeIncompleteInput:  "Incomplete input",
	domain.ErrCodeUnknownDomain:    "Unknown prediction domain",
	domain.ErrCodeModelUnavailable: "Model unavailable",
	domain.ErrCodeInferenceFailed:  "Model inference failed",
	domain.ErrCodeNotFound:         "Resource not found",
	domain.ErrCodeInternalServer:   "Internal server error",
}

// respondError writes the standard error body. Internal errors are logged
// with their cause but answered without details.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	_ = c.Error(err)

	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}
	c.JSON(status, domain.NewErrorResponse(code, messages[code], details, c.GetString(middleware.CorrelationIDKey)))
}

func respondNotFound(c *gin.Context, details string) {
	c.JSON(http.StatusNotFound, domain.NewErrorResponse(
		domain.ErrCodeNotFound,
		messages[domain.ErrCodeNotFound],
		details,
		c.GetString(middleware.CorrelationIDKey),
	))
}
