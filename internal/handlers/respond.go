// Package handlers implements the remote function endpoints of the USSD
// dashboard: add-ussd-code, execute-ussd-code and list-ussd-codes.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jawadev0/ussd-magician/internal/metrics"
)

// TokenVerifier resolves an Authorization header to a user id.
type TokenVerifier interface {
	VerifyHeader(ctx context.Context, header string) (string, error)
}

// FieldError describes a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// The handlers are served cross-origin by the dashboard frontend.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

func applyCORS(w http.ResponseWriter) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	applyCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeValidationError(w http.ResponseWriter, details []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Invalid input",
		"details": details,
	})
}

func observe(m *metrics.Metrics, handler string, status int) {
	if m == nil {
		return
	}
	m.HandlerRequests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
}
