package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "skillswap-server/utils/errors"
)

// ErrorResponse is the failure envelope every error is written as.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorMiddleware recovers from panics in later handlers and answers 500.
func ErrorMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
					WriteError(w, logger, apperrors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as a JSON failure envelope and logs server errors to
// logger. Errors that are not an APIError are reported as internal errors
// without leaking their text.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apperrors.Internal(err, apperrors.ErrInternal.Message)
	}
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("server error", "code", apiErr.Code, "message", apiErr.Message, "details", apiErr.Details)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}
