package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jawadev0/ussd-magician/internal/auth"
	"github.com/jawadev0/ussd-magician/internal/metrics"
	"github.com/jawadev0/ussd-magician/internal/repo"
)

// AddCode handles POST /functions/add-ussd-code: authenticate, validate,
// insert a pending record scoped to the caller.
type AddCode struct {
	repo     repo.Repository
	verifier TokenVerifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAddCode creates the add-ussd-code handler.
func NewAddCode(repository repo.Repository, verifier TokenVerifier, metricRegistry *metrics.Metrics, logger *slog.Logger) *AddCode {
	return &AddCode{
		repo:     repository,
		verifier: verifier,
		metrics:  metricRegistry,
		logger:   logger.With("component", "add_code"),
	}
}

type addCodeRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	SIM         *int    `json:"sim"`
	Operator    *string `json:"operator"`
	Device      *string `json:"device"`
}

// ServeHTTP satisfies http.Handler.
func (h *AddCode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		applyCORS(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		observe(h.metrics, "add_code", http.StatusMethodNotAllowed)
		return
	}

	userID, err := h.verifier.VerifyHeader(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			h.logger.Error("token verification failed", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		observe(h.metrics, "add_code", http.StatusUnauthorized)
		return
	}

	var body addCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeValidationError(w, []FieldError{{Field: "body", Message: "invalid JSON body"}})
		observe(h.metrics, "add_code", http.StatusBadRequest)
		return
	}

	newCode, details := validateAddCode(userID, body)
	if len(details) > 0 {
		writeValidationError(w, details)
		observe(h.metrics, "add_code", http.StatusBadRequest)
		return
	}

	created, err := h.repo.CreateCode(r.Context(), *newCode)
	if err != nil {
		h.logger.Error("failed inserting ussd code", "error", err)
		if h.metrics != nil {
			h.metrics.Errors.WithLabelValues("add_code").Inc()
		}
		writeError(w, http.StatusInternalServerError, "Failed to add USSD code")
		observe(h.metrics, "add_code", http.StatusInternalServerError)
		return
	}

	h.logger.Info("ussd code added", "id", created.ID, "user", userID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": created})
	observe(h.metrics, "add_code", http.StatusOK)
}

func validateAddCode(userID string, body addCodeRequest) (*repo.NewCode, []FieldError) {
	var details []FieldError

	name := strings.TrimSpace(body.Name)
	if name == "" {
		details = append(details, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 100 {
		details = append(details, FieldError{Field: "name", Message: "name must be at most 100 characters"})
	}

	code := strings.TrimSpace(body.Code)
	if code == "" {
		details = append(details, FieldError{Field: "code", Message: "code is required"})
	} else if len(code) > 50 {
		details = append(details, FieldError{Field: "code", Message: "code must be at most 50 characters"})
	}

	codeType := repo.CodeType(strings.TrimSpace(body.Type))
	if codeType != repo.CodeTypeActivation && codeType != repo.CodeTypeTopup {
		details = append(details, FieldError{Field: "type", Message: "type must be ACTIVATION or TOPUP"})
	}

	if body.Description != nil && len(strings.TrimSpace(*body.Description)) > 500 {
		details = append(details, FieldError{Field: "description", Message: "description must be at most 500 characters"})
	}
	if body.Category != nil && len(strings.TrimSpace(*body.Category)) > 100 {
		details = append(details, FieldError{Field: "category", Message: "category must be at most 100 characters"})
	}

	simSlot := 1
	if body.SIM != nil {
		if *body.SIM != 1 && *body.SIM != 2 {
			details = append(details, FieldError{Field: "sim", Message: "sim must be 1 or 2"})
		} else {
			simSlot = *body.SIM
		}
	}

	operator := ""
	if body.Operator != nil {
		operator = strings.TrimSpace(*body.Operator)
		if len(operator) > 50 {
			details = append(details, FieldError{Field: "operator", Message: "operator must be at most 50 characters"})
		}
	}

	device := ""
	if body.Device != nil {
		device = strings.TrimSpace(*body.Device)
		if len(device) > 100 {
			details = append(details, FieldError{Field: "device", Message: "device must be at most 100 characters"})
		}
	}

	if len(details) > 0 {
		return nil, details
	}

	newCode := &repo.NewCode{
		UserID:   userID,
		Name:     name,
		Code:     code,
		Type:     codeType,
		SIM:      simSlot,
		Operator: repo.Operator(operator),
		Device:   device,
	}
	if body.Description != nil {
		d := strings.TrimSpace(*body.Description)
		newCode.Description = &d
	}
	if body.Category != nil {
		c := strings.TrimSpace(*body.Category)
		newCode.Category = &c
	}
	return newCode, nil
}
