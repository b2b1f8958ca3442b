// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carrier-rates/backend/internal/importer"
	"github.com/carrier-rates/backend/internal/models"
	"github.com/carrier-rates/backend/internal/parser"
)

// ShowErrorDetails controls whether unexpected errors expose their text.
var ShowErrorDetails = true

// APIError represents a structured API error response
type APIError struct {
	Status     int                      `json:"-"`
	Code       string                   `json:"code"`
	Message    string                   `json:"message"`
	Details    string                   `json:"details,omitempty"`
	Validation *models.ValidationResult `json:"validation,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewImportInvalidError creates a 422 error carrying the validation result
func NewImportInvalidError(result *models.ValidationResult) *APIError {
	return &APIError{
		Status:     http.StatusUnprocessableEntity,
		Code:       "IMPORT_INVALID",
		Message:    "the file does not match the template",
		Validation: result,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// serviceError maps importer errors onto API errors. resource and id name
// the thing the request addressed.
func serviceError(err error, resource, id string) *APIError {
	var vErr *importer.ValidationError
	switch {
	case errors.As(err, &vErr):
		return NewImportInvalidError(vErr.Result)
	case errors.Is(err, importer.ErrTemplateNotFound):
		return NewNotFoundError("template", id)
	case errors.Is(err, importer.ErrRateCardNotFound):
		return NewNotFoundError("rate card", id)
	case errors.Is(err, importer.ErrNoValidRows):
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "NO_VALID_ROWS",
			Message: "every data row was rejected",
			Details: err.Error(),
		}
	case errors.Is(err, importer.ErrInvalidTemplate), errors.Is(err, importer.ErrNoHeaders):
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("invalid %s", resource),
			Details: err.Error(),
		}
	case errors.Is(err, parser.ErrEmptyFile),
		errors.Is(err, parser.ErrUnsupportedEncoding),
		errors.Is(err, parser.ErrInvalidDelimiter):
		return NewBadRequestError("could not read the uploaded file", err)
	}
	return NewInternalError(fmt.Sprintf("failed to process %s", resource), err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	if !ShowErrorDetails && apiErr.Status >= http.StatusInternalServerError {
		apiErr.Details = ""
	}
	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		c.Logger().Error(err)
	}
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
