// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/target-creator/backend/internal/exchange"
	"github.com/target-creator/backend/internal/griditems"
	"github.com/target-creator/backend/internal/pathcreation"
	"github.com/target-creator/backend/internal/scene"
	"github.com/target-creator/backend/internal/storage"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// showErrorDetails controls whether unexpected errors expose their cause.
var showErrorDetails = true

// SetErrorDetails toggles cause details on unexpected errors.
func SetErrorDetails(enabled bool) {
	showErrorDetails = enabled
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

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
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

// fromDomainError maps errors returned by the scene layers onto API errors.
func fromDomainError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validation *exchange.ValidationError
	switch {
	case errors.As(err, &validation):
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "INVALID_DOCUMENT",
			Message: "document failed validation",
			Details: err.Error(),
		}
	case errors.Is(err, griditems.ErrDuplicateID):
		return NewConflictError(err.Error())
	case errors.Is(err, griditems.ErrPathNotFound),
		errors.Is(err, griditems.ErrTargetNotFound),
		errors.Is(err, griditems.ErrCoordinateNotFound),
		errors.Is(err, scene.ErrTargetNotFound),
		errors.Is(err, scene.ErrPathNotFound),
		errors.Is(err, scene.ErrCoordinateNotFound),
		errors.Is(err, storage.ErrFileNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, scene.ErrInvalidPosition),
		errors.Is(err, pathcreation.ErrUnsupportedShape),
		errors.Is(err, pathcreation.ErrInvalidStart):
		return NewBadRequestError(err.Error(), nil)
	}
	return NewInternalError("unexpected error", err)
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
		if showErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}
