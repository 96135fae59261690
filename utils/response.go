package utils

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteValidationErrors emits the field-level error map with a 422 status.
func WriteValidationErrors(w http.ResponseWriter, errs map[string]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// GetStringValue returns the value of a nullable string pointer or empty string if nil
func GetStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PtrString returns a pointer to s, or nil when s is empty.
func PtrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
