package utils

import (
	"encoding/json"
	"net/http"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIResponse is the envelope for bodies that carry no payload of their own
// and for every failure.
type APIResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func SuccessResponse(message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
	}
}

func ErrorResponse(message, error string, details ...FieldError) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   error,
		Details: details,
	}
}

// WriteJSON sends data with the given status. Encoding errors after the
// header is written cannot be reported to the client and are dropped.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, message, error string, details ...FieldError) {
	WriteJSON(w, status, ErrorResponse(message, error, details...))
}
