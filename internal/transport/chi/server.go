// Package chi exposes the assistant over a JSON HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/domain"
	"github.com/kailas-cloud/shopmate/internal/domain/preference"
	conversationuc "github.com/kailas-cloud/shopmate/internal/usecase/conversation"
	"github.com/kailas-cloud/shopmate/internal/usecase/session"
)

const maxMessageBytes = 4096

// Error codes returned in the JSON error body.
const (
	codeBadRequest      = "bad_request"
	codeSessionNotFound = "session_not_found"
	codeInternalError   = "internal_error"
)

// CheckFunc adapts a plain probe function to domain.HealthChecker.
type CheckFunc func(ctx context.Context) error

// HealthCheck implements domain.HealthChecker.
func (f CheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the assistant API.
type Server struct {
	sessions      *session.Manager
	turns         *conversationuc.Service
	checks        map[string]domain.HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. checks maps dependency names to
// health probes; a nil map reports a healthy service unconditionally.
func NewServer(
	sessions *session.Manager,
	turns *conversationuc.Service,
	checks map[string]domain.HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		sessions: sessions,
		turns:    turns,
		checks:   checks,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
	}
	return s
}

// RegisterRoutes mounts the API handlers on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", s.CreateSession)
	r.Post("/sessions/{session}/messages", s.PostMessage)
	r.Get("/sessions/{session}/preferences", s.GetPreferences)
	r.Delete("/sessions/{session}", s.DeleteSession)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type preferencesResponse struct {
	SessionID   string           `json:"session_id"`
	Summary     string           `json:"summary"`
	Preferences preference.Delta `json:"preferences"`
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sess.ID})
}

// PostMessage handles POST /sessions/{session}/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Message is required")
		return
	}

	resp := s.turns.ProcessTurn(r.Context(), sess, req.Message)
	writeJSON(w, http.StatusOK, resp)
}

// GetPreferences handles GET /sessions/{session}/preferences.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sess.Lock()
	resp := preferencesResponse{
		SessionID:   sess.ID,
		Summary:     sess.Prefs.Summary(),
		Preferences: sess.Prefs.Snapshot(),
	}
	sess.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /sessions/{session}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")
	if _, err := s.sessions.Get(id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.checks))

	for name, check := range s.checks {
		if err := check.HealthCheck(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unhealthy"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrLLMUnavailable,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
