package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrProjectNotFound is returned when a project is not found.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNotProjectOwner is returned when a user acts on a project they did not create.
	ErrNotProjectOwner = errors.New("only the project owner may do this")
	// ErrProjectCompleted is returned when mutating a project that is already completed.
	ErrProjectCompleted = errors.New("project is already completed")
)

// ErrorResponse represents a standardized error response. The Detail field name
// matches what API clients scan for first.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Detail: e.Message,
		Code:   e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrProjectNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "PROJECT_NOT_FOUND")
	case ErrNotProjectOwner:
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_PROJECT_OWNER")
	case ErrProjectCompleted:
		return NewHTTPError(http.StatusConflict, err.Error(), "PROJECT_COMPLETED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
