// Package httpx provides HTTP response utilities.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error envelope returned by every endpoint.
type ErrorBody struct {
	StatusCode int `json:"status_code"`
	Detail     any `json:"detail"`
}

// ErrorDetail is the structured form of ErrorBody.Detail.
type ErrorDetail struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Type    string `json:"type"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Raw writes an already-encoded JSON payload unchanged.
func Raw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// Fail sends an error envelope.
func Fail(w http.ResponseWriter, status int, detail any) {
	JSON(w, status, ErrorBody{StatusCode: status, Detail: detail})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return Wrap(ErrValidation, "Invalid JSON body", err)
	}
	return nil
}
