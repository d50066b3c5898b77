package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jawadev0/ussd-magician/internal/auth"
	"github.com/jawadev0/ussd-magician/internal/metrics"
	"github.com/jawadev0/ussd-magician/internal/repo"
)

// Canonical carrier responses for server-side execution, keyed by exact
// dial string.
var executeResponses = map[string]string{
	"*100#":     "Your balance is 25.50 MAD. Valid until 2024-12-31.",
	"*101#":     "Recharge successful. New balance: 50.00 MAD.",
	"*121#":     "Your number is +212 6XX XXX XXX",
	"*555#":     "Data bundle activated. 1GB valid for 7 days.",
	"*555*100#": "Mobile Credit Top-up successful. Amount: 100 MAD",
	"*123*1#":   "Orange menu: 1-Balance 2-Recharge 3-Offers",
	"*580#":     "Inwi services: Your balance is 15.75 MAD",
	"*123#":     "Your balance is $25.50. Thank you for using our service.",
	"*131*4#":   "Data Balance: 2.5GB remaining. Valid until 31-Dec-2024.",
	"*131*1*1#": "Please enter the recipient number followed by the amount.",
}

// ExecuteCode handles POST /functions/execute-ussd-code: authenticate,
// validate, resolve the canned response and record the result on the code.
// Result recording is best-effort; a failed update is logged, not surfaced,
// so the caller still sees the dispatch outcome.
type ExecuteCode struct {
	repo     repo.Repository
	verifier TokenVerifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewExecuteCode creates the execute-ussd-code handler.
func NewExecuteCode(repository repo.Repository, verifier TokenVerifier, metricRegistry *metrics.Metrics, logger *slog.Logger) *ExecuteCode {
	return &ExecuteCode{
		repo:     repository,
		verifier: verifier,
		metrics:  metricRegistry,
		logger:   logger.With("component", "execute_code"),
	}
}

type executeCodeRequest struct {
	CodeID   string `json:"code_id"`
	USSDCode string `json:"ussd_code"`
}

// ServeHTTP satisfies http.Handler.
func (h *ExecuteCode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		applyCORS(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		observe(h.metrics, "execute_code", http.StatusMethodNotAllowed)
		return
	}

	userID, err := h.verifier.VerifyHeader(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			h.logger.Error("token verification failed", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		observe(h.metrics, "execute_code", http.StatusUnauthorized)
		return
	}

	var body executeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeValidationError(w, []FieldError{{Field: "body", Message: "invalid JSON body"}})
		observe(h.metrics, "execute_code", http.StatusBadRequest)
		return
	}

	var details []FieldError
	if _, err := uuid.Parse(body.CodeID); err != nil {
		details = append(details, FieldError{Field: "code_id", Message: "code_id must be a valid uuid"})
	}
	dialString := strings.TrimSpace(body.USSDCode)
	if dialString == "" {
		details = append(details, FieldError{Field: "ussd_code", Message: "ussd_code is required"})
	} else if len(dialString) > 50 {
		details = append(details, FieldError{Field: "ussd_code", Message: "ussd_code must be at most 50 characters"})
	}
	if len(details) > 0 {
		writeValidationError(w, details)
		observe(h.metrics, "execute_code", http.StatusBadRequest)
		return
	}

	h.logger.Info("executing ussd code", "code", dialString, "user", userID)

	result, ok := executeResponses[dialString]
	if !ok {
		result = fmt.Sprintf("USSD code %s executed successfully. Service response received.", dialString)
	}

	// Best-effort: the dispatch result is returned even when recording fails.
	if err := h.repo.SetExecutionResult(r.Context(), body.CodeID, userID, repo.StatusDone, result); err != nil {
		h.logger.Error("failed updating ussd code", "error", err, "id", body.CodeID)
		if h.metrics != nil {
			h.metrics.Errors.WithLabelValues("execute_code_update").Inc()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
		"code":    dialString,
	})
	observe(h.metrics, "execute_code", http.StatusOK)
}
