package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the envelope for every failed request: domain rejections
// carry their message here with a 4xx status, internal faults use code
// "INTERNAL_ERROR" with a 500 so callers can tell the two apart.
type ErrorResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Code    string        `json:"code,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status. Handlers build explicit view
// structs and pass them here; there is no reflection-driven serialization.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONError(w http.ResponseWriter, statusCode int, message string, details []ErrorDetail) {
	WriteJSON(w, statusCode, ErrorResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}

// JSONInternalError hides the cause from the caller; the recovery and access
// log middleware carry the details.
func JSONInternalError(w http.ResponseWriter) {
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Message: "Internal server error",
		Code:    "INTERNAL_ERROR",
	})
}
