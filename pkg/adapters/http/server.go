// Package http exposes the mission service as a JSON REST API with a
// Server-Sent Events stream of lifecycle events.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/internal/logging"
	"github.com/aretw0/missions/internal/presentation/graph"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/ports"
	"github.com/aretw0/missions/pkg/workflow"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Error codes returned in Error.Code.
const (
	codeInvalidRequest    = "invalid_request"
	codeValidation        = "validation_error"
	codeNotFound          = "not_found"
	codeIllegalTransition = "illegal_transition"
	codeUnknownTrigger    = "unknown_trigger"
	codeUnknownState      = "unknown_state"
	codeInternal          = "internal_error"
)

// Server implements ServerInterface on top of a ports.MissionService.
type Server struct {
	Service ports.MissionService
	Streams *StreamManager
	logger  *slog.Logger
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the handler built by NewHandler.
type Option func(*handlerConfig)

type handlerConfig struct {
	streams     *StreamManager
	logger      *slog.Logger
	cors        bool
	metricsPath string
	metrics     http.Handler
}

// WithStreams shares a StreamManager whose Hooks are registered on the service.
// Without it the /events endpoint only sends the initial ping.
func WithStreams(sm *StreamManager) Option {
	return func(c *handlerConfig) {
		c.streams = sm
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithCORS toggles the permissive CORS middleware (default on).
func WithCORS(enabled bool) Option {
	return func(c *handlerConfig) {
		c.cors = enabled
	}
}

// WithMetrics mounts a metrics handler (typically promhttp) at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(c *handlerConfig) {
		c.metricsPath = path
		c.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(service ports.MissionService, opts ...Option) http.Handler {
	cfg := handlerConfig{cors: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.streams == nil {
		cfg.streams = NewStreamManager(cfg.logger)
	}

	server := &Server{
		Service: service,
		Streams: cfg.streams,
		logger:  cfg.logger,
	}
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			server.logger.Error("Failed to load OpenAPI spec", "error", err)
			return
		}
		w.Write(spec)
	})
	if cfg.metrics != nil && cfg.metricsPath != "" {
		r.Handle(cfg.metricsPath, cfg.metrics)
	}

	handler := HandlerFromMux(server, r)
	if cfg.cors {
		return enableCORS(handler)
	}
	return handler
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListMissions handles the GET /missions request.
func (s *Server) ListMissions(w http.ResponseWriter, r *http.Request, params ListMissionsParams) {
	var filter domain.State
	if params.State != nil && *params.State != "" {
		state, err := domain.ParseState(*params.State)
		if err != nil {
			writeError(w, http.StatusBadRequest, Error{Code: codeUnknownState, Message: err.Error()})
			return
		}
		filter = state
	}

	all, err := s.Service.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := make([]Mission, 0, len(all))
	for _, m := range all {
		if filter != "" && m.State != filter {
			continue
		}
		resp = append(resp, mapMissionFromDomain(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateMission handles the POST /missions request.
func (s *Server) CreateMission(w http.ResponseWriter, r *http.Request) {
	var body CreateMissionRequest
	if !s.decode(w, r, &body) {
		return
	}
	description := ""
	if body.Description != nil {
		description = *body.Description
	}

	id, err := s.Service.Create(r.Context(), body.Title, description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	m, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/missions/"+id)
	writeJSON(w, http.StatusCreated, mapMissionFromDomain(m))
}

// GetMission handles the GET /missions/{id} request.
func (s *Server) GetMission(w http.ResponseWriter, r *http.Request, id string) {
	m, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapMissionFromDomain(m))
}

// GetAvailableTriggers handles the GET /missions/{id}/triggers request.
// State and triggers come from the same snapshot.
func (s *Server) GetAvailableTriggers(w http.ResponseWriter, r *http.Request, id string) {
	m, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TriggersResponse{
		State:    m.State.String(),
		Triggers: triggerNames(workflow.TriggersFor(m.State)),
	})
}

// ApplyTransition handles the POST /missions/{id}/transitions request.
func (s *Server) ApplyTransition(w http.ResponseWriter, r *http.Request, id string) {
	var body TransitionRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Trigger == "" {
		writeError(w, http.StatusBadRequest, Error{Code: codeInvalidRequest, Message: "trigger is required"})
		return
	}

	if _, err := s.Service.Transition(r.Context(), id, domain.NormalizeTrigger(body.Trigger)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	m, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapMissionFromDomain(m))
}

// GetWorkflow handles the GET /workflow request.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	rules := s.Service.Graph()
	resp := Workflow{
		Initial:  workflow.Initial().String(),
		States:   make([]string, 0, len(workflow.States())),
		Triggers: triggerNames(workflow.Triggers()),
		Rules:    make([]Rule, 0, len(rules)),
	}
	for _, st := range workflow.States() {
		resp.States = append(resp.States, st.String())
	}
	for _, rule := range rules {
		resp.Rules = append(resp.Rules, Rule{
			Trigger: rule.Trigger.String(),
			From:    rule.From.String(),
			To:      rule.To.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetWorkflowMermaid handles the GET /workflow/mermaid request.
func (s *Server) GetWorkflowMermaid(w http.ResponseWriter, r *http.Request, params GetWorkflowMermaidParams) {
	var overlay *graph.GraphOverlay
	if params.MissionId != nil && *params.MissionId != "" {
		m, err := s.Service.Get(r.Context(), *params.MissionId)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		overlay = graph.OverlayFor(m)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, graph.GenerateMermaid(s.Service.Graph(), overlay))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "missions-http",
		"version":     missions.Version,
		"api_version": apiVersion,
	})
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, Error{Code: codeInvalidRequest, Message: "invalid request body"})
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

// writeServiceError maps domain errors to status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		illegal *domain.IllegalTransitionError
		unknown *domain.UnknownTriggerError
	)
	switch {
	case errors.As(err, &illegal):
		state, trigger := illegal.State.String(), illegal.Trigger.String()
		writeError(w, http.StatusConflict, Error{Code: codeIllegalTransition, Message: err.Error(), State: &state, Trigger: &trigger})
	case errors.As(err, &unknown):
		writeError(w, http.StatusBadRequest, Error{Code: codeUnknownTrigger, Message: err.Error(), Trigger: &unknown.Name})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, Error{Code: codeValidation, Message: err.Error()})
	case errors.Is(err, domain.ErrMissionNotFound):
		writeError(w, http.StatusNotFound, Error{Code: codeNotFound, Message: err.Error()})
	default:
		writeError(w, http.StatusInternalServerError, Error{Code: codeInternal, Message: "internal error"})
		s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e Error) {
	writeJSON(w, status, e)
}

func triggerNames(triggers []domain.Trigger) []string {
	out := make([]string, 0, len(triggers))
	for _, t := range triggers {
		out = append(out, t.String())
	}
	return out
}

func mapMissionFromDomain(m domain.Mission) Mission {
	history := make([]HistoryEntry, 0, len(m.History))
	for _, h := range m.History {
		history = append(history, HistoryEntry{
			Trigger: h.Trigger.String(),
			From:    h.From.String(),
			To:      h.To.String(),
			At:      h.At,
		})
	}
	return Mission{
		Id:          m.ID,
		ShortId:     m.ShortID(),
		Title:       m.Title,
		Description: m.Description,
		State:       m.State.String(),
		StateLabel:  m.State.Label(),
		History:     history,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
