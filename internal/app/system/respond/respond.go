// Package respond writes JSON responses.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// Failure is the body of every error response.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Fail writes {"success":false,"message":msg}.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Failure{Success: false, Message: msg})
}
