package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as-is with the given status code. Handlers that must match
// an externally defined wire shape (payment callbacks, the client app's
// expectations) use this instead of the envelope helpers.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON response.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 JSON response.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends a JSON error response: {"message": ...}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message ...string) {
	msg := "unauthorized access"
	if len(message) > 0 {
		msg = message[0]
	}
	Error(w, http.StatusUnauthorized, msg)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message ...string) {
	msg := "forbidden access"
	if len(message) > 0 {
		msg = message[0]
	}
	Error(w, http.StatusForbidden, msg)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message ...string) {
	msg := "not found"
	if len(message) > 0 {
		msg = message[0]
	}
	Error(w, http.StatusNotFound, msg)
}

// BadGateway sends a 502 for upstream (payment gateway) failures.
func BadGateway(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadGateway, message)
}
