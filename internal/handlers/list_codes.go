package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jawadev0/ussd-magician/internal/auth"
	"github.com/jawadev0/ussd-magician/internal/metrics"
	"github.com/jawadev0/ussd-magician/internal/repo"
)

// ListCodes handles GET /functions/list-ussd-codes, returning every code
// owned by the caller.
type ListCodes struct {
	repo     repo.Repository
	verifier TokenVerifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewListCodes creates the list-ussd-codes handler.
func NewListCodes(repository repo.Repository, verifier TokenVerifier, metricRegistry *metrics.Metrics, logger *slog.Logger) *ListCodes {
	return &ListCodes{
		repo:     repository,
		verifier: verifier,
		metrics:  metricRegistry,
		logger:   logger.With("component", "list_codes"),
	}
}

// ServeHTTP satisfies http.Handler.
func (h *ListCodes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		applyCORS(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		observe(h.metrics, "list_codes", http.StatusMethodNotAllowed)
		return
	}

	userID, err := h.verifier.VerifyHeader(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			h.logger.Error("token verification failed", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		observe(h.metrics, "list_codes", http.StatusUnauthorized)
		return
	}

	codes, err := h.repo.ListCodes(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed listing ussd codes", "error", err)
		if h.metrics != nil {
			h.metrics.Errors.WithLabelValues("list_codes").Inc()
		}
		writeError(w, http.StatusInternalServerError, "Failed to list USSD codes")
		observe(h.metrics, "list_codes", http.StatusInternalServerError)
		return
	}
	if codes == nil {
		codes = []repo.USSDCode{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": codes})
	observe(h.metrics, "list_codes", http.StatusOK)
}
