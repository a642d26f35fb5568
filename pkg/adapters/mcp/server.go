// Package mcp exposes the mission service as Model Context Protocol tools so
// that agents can create missions and drive them through the workflow.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/internal/logging"
	"github.com/aretw0/missions/internal/presentation/graph"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/ports"
	"github.com/aretw0/missions/pkg/workflow"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// WorkflowResourceURI is the URI of the workflow graph resource.
const WorkflowResourceURI = "missions://workflow"

// MissionResponse is the structured view of a mission returned by every tool.
type MissionResponse struct {
	ID                string                `json:"id" jsonschema_description:"Full mission identifier"`
	ShortID           string                `json:"short_id" jsonschema_description:"Display form of the identifier"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	State             domain.State          `json:"state" jsonschema_description:"Current workflow state"`
	StateLabel        string                `json:"state_label"`
	AvailableTriggers []domain.Trigger      `json:"available_triggers" jsonschema_description:"Triggers legal from the current state"`
	History           []domain.HistoryEntry `json:"history" jsonschema_description:"Applied transitions, oldest first"`
}

// ListResponse wraps the list_missions result.
type ListResponse struct {
	Missions []MissionResponse `json:"missions"`
}

// TriggersResponse is the available_triggers result.
type TriggersResponse struct {
	MissionID string           `json:"mission_id"`
	State     domain.State     `json:"state"`
	Triggers  []domain.Trigger `json:"triggers"`
}

// WorkflowResponse is the get_workflow result.
type WorkflowResponse struct {
	Initial domain.State    `json:"initial"`
	Rules   []workflow.Rule `json:"rules"`
	Mermaid string          `json:"mermaid" jsonschema_description:"Mermaid flowchart of the workflow"`
}

// CreateArgs are the create_mission arguments.
type CreateArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListArgs are the list_missions arguments.
type ListArgs struct {
	State string `json:"state"`
}

// MissionArgs address a single mission.
type MissionArgs struct {
	MissionID string `json:"mission_id"`
}

// ApplyArgs are the apply_trigger arguments.
type ApplyArgs struct {
	MissionID string `json:"mission_id"`
	Trigger   string `json:"trigger"`
}

// Server wraps the mission service and exposes it as an MCP Server.
type Server struct {
	service   ports.MissionService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. It must not write to stdout when serving stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(service ports.MissionService, opts ...Option) *Server {
	s := &Server{
		service:   service,
		mcpServer: server.NewMCPServer("missions-mcp", missions.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	triggerNames := make([]string, 0, len(workflow.Triggers()))
	for _, t := range workflow.Triggers() {
		triggerNames = append(triggerNames, t.String())
	}
	stateNames := make([]string, 0, len(workflow.States()))
	for _, st := range workflow.States() {
		stateNames = append(stateNames, st.String())
	}

	// TOOL: create_mission
	s.mcpServer.AddTool(mcp.NewTool("create_mission",
		mcp.WithDescription("Create a new mission. It starts in the Created state."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short non-empty title")),
		mcp.WithString("description", mcp.Description("Free-form description (optional)")),
		mcp.WithOutputSchema[MissionResponse](),
	), mcp.NewStructuredToolHandler(s.handleCreate))

	// TOOL: list_missions
	s.mcpServer.AddTool(mcp.NewTool("list_missions",
		mcp.WithDescription("List missions in creation order, optionally only those in one state."),
		mcp.WithString("state", mcp.Description("Filter by state (optional)"), mcp.Enum(stateNames...)),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	// TOOL: get_mission
	s.mcpServer.AddTool(mcp.NewTool("get_mission",
		mcp.WithDescription("Get a mission with its history and the triggers it accepts now."),
		mcp.WithString("mission_id", mcp.Required(), mcp.Description("Mission identifier")),
		mcp.WithOutputSchema[MissionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	// TOOL: available_triggers
	s.mcpServer.AddTool(mcp.NewTool("available_triggers",
		mcp.WithDescription("List the triggers that are legal from the mission's current state."),
		mcp.WithString("mission_id", mcp.Required(), mcp.Description("Mission identifier")),
		mcp.WithOutputSchema[TriggersResponse](),
	), mcp.NewStructuredToolHandler(s.handleTriggers))

	// TOOL: apply_trigger
	s.mcpServer.AddTool(mcp.NewTool("apply_trigger",
		mcp.WithDescription("Apply a trigger to a mission. Illegal or unknown triggers leave the mission unchanged."),
		mcp.WithString("mission_id", mcp.Required(), mcp.Description("Mission identifier")),
		mcp.WithString("trigger", mcp.Required(), mcp.Description("Trigger name"), mcp.Enum(triggerNames...)),
		mcp.WithOutputSchema[MissionResponse](),
	), mcp.NewStructuredToolHandler(s.handleApply))

	// TOOL: get_workflow
	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Get the static workflow graph."),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleWorkflow))
}

// Handler methods for structured tools

func (s *Server) handleCreate(ctx context.Context, _ mcp.CallToolRequest, args CreateArgs) (MissionResponse, error) {
	id, err := s.service.Create(ctx, args.Title, args.Description)
	if err != nil {
		return MissionResponse{}, describe(err)
	}
	return s.mission(ctx, id)
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest, args ListArgs) (ListResponse, error) {
	var filter domain.State
	if args.State != "" {
		st, err := domain.ParseState(args.State)
		if err != nil {
			return ListResponse{}, err
		}
		filter = st
	}

	all, err := s.service.List(ctx)
	if err != nil {
		return ListResponse{}, describe(err)
	}
	resp := ListResponse{Missions: make([]MissionResponse, 0, len(all))}
	for _, m := range all {
		if filter != "" && m.State != filter {
			continue
		}
		resp.Missions = append(resp.Missions, toResponse(m))
	}
	return resp, nil
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args MissionArgs) (MissionResponse, error) {
	return s.mission(ctx, args.MissionID)
}

func (s *Server) handleTriggers(ctx context.Context, _ mcp.CallToolRequest, args MissionArgs) (TriggersResponse, error) {
	m, err := s.service.Get(ctx, args.MissionID)
	if err != nil {
		return TriggersResponse{}, describe(err)
	}
	return TriggersResponse{
		MissionID: m.ID,
		State:     m.State,
		Triggers:  workflow.TriggersFor(m.State),
	}, nil
}

func (s *Server) handleApply(ctx context.Context, _ mcp.CallToolRequest, args ApplyArgs) (MissionResponse, error) {
	if args.Trigger == "" {
		return MissionResponse{}, errors.New("trigger is required")
	}
	if _, err := s.service.Transition(ctx, args.MissionID, domain.NormalizeTrigger(args.Trigger)); err != nil {
		s.logger.Info("MCP apply_trigger rejected", "mission_id", args.MissionID, "trigger", args.Trigger, "error", err)
		return MissionResponse{}, describe(err)
	}
	return s.mission(ctx, args.MissionID)
}

func (s *Server) handleWorkflow(_ context.Context, _ mcp.CallToolRequest, _ struct{}) (WorkflowResponse, error) {
	rules := s.service.Graph()
	return WorkflowResponse{
		Initial: workflow.Initial(),
		Rules:   rules,
		Mermaid: graph.GenerateMermaid(rules, nil),
	}, nil
}

func (s *Server) mission(ctx context.Context, id string) (MissionResponse, error) {
	m, err := s.service.Get(ctx, id)
	if err != nil {
		return MissionResponse{}, describe(err)
	}
	return toResponse(m), nil
}

func (s *Server) registerResources() {
	// EXPOSE: missions://workflow
	s.mcpServer.AddResource(mcp.NewResource(WorkflowResourceURI, "Mission Workflow",
		mcp.WithResourceDescription("States and legal transitions of the mission workflow"),
		mcp.WithMIMEType("application/json"),
	), s.readWorkflow)
}

func (s *Server) readWorkflow(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.service.Graph())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      WorkflowResourceURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// describe prefixes err with a stable kind so agents can branch on it.
func describe(err error) error {
	switch {
	case errors.Is(err, domain.ErrIllegalTransition):
		return fmt.Errorf("illegal_transition: %w", err)
	case errors.Is(err, domain.ErrUnknownTrigger):
		return fmt.Errorf("unknown_trigger: %w", err)
	case errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("validation_error: %w", err)
	case errors.Is(err, domain.ErrMissionNotFound):
		return fmt.Errorf("not_found: %w", err)
	}
	return err
}

func toResponse(m domain.Mission) MissionResponse {
	return MissionResponse{
		ID:                m.ID,
		ShortID:           m.ShortID(),
		Title:             m.Title,
		Description:       m.Description,
		State:             m.State,
		StateLabel:        m.State.Label(),
		AvailableTriggers: workflow.TriggersFor(m.State),
		History:           m.History,
	}
}
