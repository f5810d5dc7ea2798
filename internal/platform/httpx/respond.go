// Package httpx provides the JSON response envelope shared by all handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope is the wire format every endpoint responds with.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// OK sends a success envelope with the given status code.
func OK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// OKCount sends a success envelope carrying a collection and its length.
func OKCount(w http.ResponseWriter, status int, message string, data any, count int) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data, Count: &count})
}

// Fail sends a failure envelope with the given status code.
func Fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

// FailFields sends a failure envelope with per-field validation messages.
func FailFields(w http.ResponseWriter, status int, message string, fields map[string][]string) {
	writeJSON(w, status, Envelope{Success: false, Message: message, Errors: fields})
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// maxBodyBytes caps request bodies; the API only ever receives small JSON documents.
const maxBodyBytes = 1 << 20

// DecodeJSON parses a JSON request body into target, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}
