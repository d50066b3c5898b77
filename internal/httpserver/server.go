package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jawadev0/ussd-magician/internal/cache"
	"github.com/jawadev0/ussd-magician/internal/dispatch"
	"github.com/jawadev0/ussd-magician/internal/eligibility"
	"github.com/jawadev0/ussd-magician/internal/metrics"
	"github.com/jawadev0/ussd-magician/internal/repo"
	"github.com/jawadev0/ussd-magician/internal/sim"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the function endpoints to mount.
type Handlers struct {
	AddCode     http.Handler
	ExecuteCode http.Handler
	ListCodes   http.Handler
}

// Dependencies exposes core dependencies to admin handlers that need them.
type Dependencies struct {
	Repository repo.Repository
	Redis      *cache.Redis
	SIM        sim.Provider
	Dispatcher dispatch.Dispatcher
}

// Server wraps an http.Server with predefined routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *metrics.Metrics
	handlers   Handlers
	deps       Dependencies
	basePath   string
}

// New creates a new HTTP server listening on addr with health and metrics endpoints.
func New(addr string, logger *slog.Logger, metricRegistry *metrics.Metrics, handlers Handlers, basePath string) *Server {
	server := &Server{
		logger:   logger.With("component", "http"),
		metrics:  metricRegistry,
		handlers: handlers,
		basePath: normaliseBasePath(basePath),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", server.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/admin/sim-status", server.handleSIMStatus)
	mux.HandleFunc("/admin/sim-toggle", server.handleSIMToggle)
	mux.HandleFunc("/admin/dispatch", server.handleDispatch)
	mux.HandleFunc("/admin/eligibility", server.handleEligibility)
	mux.HandleFunc("/admin/code", server.handleCode)
	mux.HandleFunc("/admin/clear-pending", server.handleClearPending)

	if handlers.AddCode != nil {
		mux.Handle("/functions/add-ussd-code", handlers.AddCode)
	}
	if handlers.ExecuteCode != nil {
		mux.Handle("/functions/execute-ussd-code", handlers.ExecuteCode)
	}
	if handlers.ListCodes != nil {
		mux.Handle("/functions/list-ussd-codes", handlers.ListCodes)
	}

	handler := mountWithBasePath(server.basePath, mux)

	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.basePath != "" {
		server.logger.Info("http server configured with base path", "base_path", server.basePath)
	}

	return server
}

// SetDependencies makes dependencies accessible to admin handlers.
func (s *Server) SetDependencies(deps Dependencies) {
	s.deps = deps
}

// Start begins listening for incoming HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSIMStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.SIM == nil {
		http.Error(w, "sim provider unavailable", http.StatusServiceUnavailable)
		return
	}

	status, err := s.deps.SIM.Status(r.Context())
	if err != nil {
		s.logger.Error("failed reading sim status", "error", err)
		http.Error(w, "failed reading sim status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleSIMToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.SIM == nil {
		http.Error(w, "sim provider unavailable", http.StatusServiceUnavailable)
		return
	}

	slot, err := strconv.Atoi(r.URL.Query().Get("slot"))
	if err != nil || (slot != 1 && slot != 2) {
		http.Error(w, "slot must be 1 or 2", http.StatusBadRequest)
		return
	}

	var ok bool
	switch r.URL.Query().Get("state") {
	case "active":
		ok = s.deps.SIM.Activate(r.Context(), slot)
	case "inactive":
		ok = s.deps.SIM.Deactivate(r.Context(), slot)
	default:
		http.Error(w, "state must be active or inactive", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{"slot": slot, "success": ok})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Dispatcher == nil {
		http.Error(w, "dispatcher unavailable", http.StatusServiceUnavailable)
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	result := s.deps.Dispatcher.Execute(r.Context(), code)
	writeJSON(w, result)
}

// handleEligibility runs the advisory check for a stored code against a slot.
func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.SIM == nil || s.deps.Repository == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	slot, err := strconv.Atoi(r.URL.Query().Get("slot"))
	if id == "" || userID == "" || err != nil || (slot != 1 && slot != 2) {
		http.Error(w, "id, user and slot (1 or 2) are required", http.StatusBadRequest)
		return
	}

	code, err := s.deps.Repository.GetCode(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "code not found", http.StatusNotFound)
			return
		}
		s.logger.Error("failed loading code", "error", err, "id", id)
		http.Error(w, "failed loading code", http.StatusInternalServerError)
		return
	}

	status, err := s.deps.SIM.Status(r.Context())
	if err != nil {
		s.logger.Error("failed reading sim status", "error", err)
		http.Error(w, "failed reading sim status", http.StatusInternalServerError)
		return
	}

	writeJSON(w, eligibility.CanExecute(*code, slot, status))
}

type codePatch struct {
	Name        *string          `json:"name"`
	Code        *string          `json:"code"`
	Type        *repo.CodeType   `json:"type"`
	SIM         *int             `json:"sim"`
	Operator    *repo.Operator   `json:"operator"`
	Device      *string          `json:"device"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Status      *repo.CodeStatus `json:"status"`
}

// handleCode updates (PATCH) or removes (DELETE) a stored code.
func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	if s.deps.Repository == nil {
		http.Error(w, "repository unavailable", http.StatusServiceUnavailable)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if id == "" || userID == "" {
		http.Error(w, "id and user are required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if err := s.deps.Repository.DeleteCode(r.Context(), id, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				http.Error(w, "code not found", http.StatusNotFound)
				return
			}
			s.logger.Error("failed deleting code", "error", err, "id", id)
			http.Error(w, "failed deleting code", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"deleted": id})

	case http.MethodPatch:
		var patch codePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		updated, err := s.deps.Repository.UpdateCode(r.Context(), id, userID, repo.CodeUpdate{
			Name:        patch.Name,
			Code:        patch.Code,
			Type:        patch.Type,
			SIM:         patch.SIM,
			Operator:    patch.Operator,
			Device:      patch.Device,
			Category:    patch.Category,
			Description: patch.Description,
			Status:      patch.Status,
		})
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				http.Error(w, "code not found", http.StatusNotFound)
				return
			}
			s.logger.Error("failed updating code", "error", err, "id", id)
			http.Error(w, "failed updating code", http.StatusInternalServerError)
			return
		}
		writeJSON(w, updated)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleClearPending bulk-removes a user's pending codes.
func (s *Server) handleClearPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Repository == nil {
		http.Error(w, "repository unavailable", http.StatusServiceUnavailable)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		http.Error(w, "user is required", http.StatusBadRequest)
		return
	}

	removed, err := s.deps.Repository.ClearPending(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed clearing pending codes", "error", err, "user", userID)
		http.Error(w, "failed clearing pending codes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"removed": removed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode json", http.StatusInternalServerError)
	}
}

func mountWithBasePath(basePath string, handler http.Handler) http.Handler {
	if basePath == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, basePath) {
			http.NotFound(w, r)
			return
		}
		if len(r.URL.Path) > len(basePath) && r.URL.Path[len(basePath)] != '/' {
			http.NotFound(w, r)
			return
		}
		trimmed := strings.TrimPrefix(r.URL.Path, basePath)
		if trimmed == "" {
			trimmed = "/"
		}
		r.URL.Path = trimmed
		if r.URL.RawPath != "" {
			rawTrimmed := strings.TrimPrefix(r.URL.RawPath, basePath)
			if rawTrimmed == "" {
				rawTrimmed = "/"
			}
			r.URL.RawPath = rawTrimmed
		}
		handler.ServeHTTP(w, r)
	})
}

func normaliseBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}
