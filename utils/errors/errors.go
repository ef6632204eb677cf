package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an APIError of the same kind, so that
// errors.Is(err, ErrNotFound) matches any not-found error regardless of message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeAccessDenied     = "ACCESS_DENIED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

var (
	ErrValidation       = NewAPIError(CodeValidation, "Invalid request data", http.StatusBadRequest)
	ErrNotFound         = NewAPIError(CodeNotFound, "Resource not found", http.StatusNotFound)
	ErrInvalidOperation = NewAPIError(CodeInvalidOperation, "Operation not allowed", http.StatusConflict)
	ErrAccessDenied     = NewAPIError(CodeAccessDenied, "Access denied", http.StatusForbidden)
	ErrInternal         = NewAPIError(CodeInternal, "Internal server error", http.StatusInternalServerError)
)

func Validation(format string, args ...any) *APIError {
	return NewAPIError(CodeValidation, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

func NotFound(format string, args ...any) *APIError {
	return NewAPIError(CodeNotFound, fmt.Sprintf(format, args...), http.StatusNotFound)
}

func InvalidOperation(format string, args ...any) *APIError {
	return NewAPIError(CodeInvalidOperation, fmt.Sprintf(format, args...), http.StatusConflict)
}

func AccessDenied(format string, args ...any) *APIError {
	return NewAPIError(CodeAccessDenied, fmt.Sprintf(format, args...), http.StatusForbidden)
}

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}

// Internal wraps an unexpected failure (usually from the store) as a 500.
func Internal(err error, message string) *APIError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}
