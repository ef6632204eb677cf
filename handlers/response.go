package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "skillswap-server/utils/errors"
)

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data, Message: message})
}

// listOf keeps empty results serialized as [] rather than null.
func listOf[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("Request body is required")
		}
		return apperrors.Validation("Invalid request body: %v", err)
	}
	return nil
}

// requiredQuery returns the named query parameter or a ValidationError when
// it is absent.
func requiredQuery(r *http.Request, name string) (string, error) {
	q := r.URL.Query()
	if !q.Has(name) {
		return "", apperrors.Validation("Required request parameter '%s' is not present", name)
	}
	return q.Get(name), nil
}
