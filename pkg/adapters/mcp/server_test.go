package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/workflow"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *missions.Tracker) {
	t.Helper()
	tracker, err := missions.New()
	require.NoError(t, err)
	return NewServer(tracker), tracker
}

func call(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.MCPServer().GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func structured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, "unexpected tool error: %v", res.Content)
	v, ok := res.StructuredContent.(T)
	require.True(t, ok, "structured content is %T", res.StructuredContent)
	return v
}

func errorText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestTools_Registered(t *testing.T) {
	s, _ := newTestServer(t)
	for _, name := range []string{"create_mission", "list_missions", "get_mission", "available_triggers", "apply_trigger", "get_workflow"} {
		assert.NotNil(t, s.MCPServer().GetTool(name), name)
	}
}

func TestCreateAndApply(t *testing.T) {
	s, tracker := newTestServer(t)

	created := structured[MissionResponse](t, call(t, s, "create_mission", map[string]any{
		"title":       "Investigate Incident",
		"description": "Check logs",
	}))
	assert.Equal(t, domain.StateCreated, created.State)
	assert.Equal(t, []domain.Trigger{domain.TriggerAssign}, created.AvailableTriggers)

	moved := structured[MissionResponse](t, call(t, s, "apply_trigger", map[string]any{
		"mission_id": created.ID,
		"trigger":    "assign",
	}))
	assert.Equal(t, domain.StateAssigned, moved.State)
	require.Len(t, moved.History, 1)
	assert.Equal(t, domain.StateCreated, moved.History[0].From)

	stored, err := tracker.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAssigned, stored.State)
}

func TestApply_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	m := structured[MissionResponse](t, call(t, s, "create_mission", map[string]any{"title": "Errors"}))

	assert.Contains(t, errorText(t, call(t, s, "apply_trigger", map[string]any{"mission_id": m.ID, "trigger": "approve"})), "illegal_transition")
	assert.Contains(t, errorText(t, call(t, s, "apply_trigger", map[string]any{"mission_id": m.ID, "trigger": "launch"})), "unknown_trigger")
	assert.Contains(t, errorText(t, call(t, s, "apply_trigger", map[string]any{"mission_id": "nope", "trigger": "assign"})), "not_found")
	assert.Contains(t, errorText(t, call(t, s, "apply_trigger", map[string]any{"mission_id": m.ID})), "trigger is required")
	assert.Contains(t, errorText(t, call(t, s, "create_mission", map[string]any{"title": " "})), "validation_error")

	again := structured[MissionResponse](t, call(t, s, "get_mission", map[string]any{"mission_id": m.ID}))
	assert.Equal(t, domain.StateCreated, again.State)
	assert.Empty(t, again.History)
}

func TestListAndTriggers(t *testing.T) {
	s, tracker := newTestServer(t)
	ctx := context.Background()
	a, err := tracker.Create(ctx, "A", "")
	require.NoError(t, err)
	b, err := tracker.Create(ctx, "B", "")
	require.NoError(t, err)
	_, err = tracker.Transition(ctx, b, domain.TriggerAssign)
	require.NoError(t, err)

	list := structured[ListResponse](t, call(t, s, "list_missions", nil))
	require.Len(t, list.Missions, 2)
	assert.Equal(t, a, list.Missions[0].ID)
	assert.Equal(t, b, list.Missions[1].ID)

	filtered := structured[ListResponse](t, call(t, s, "list_missions", map[string]any{"state": "Assigned"}))
	require.Len(t, filtered.Missions, 1)
	assert.Equal(t, b, filtered.Missions[0].ID)

	assert.True(t, call(t, s, "list_missions", map[string]any{"state": "Archived"}).IsError)

	triggers := structured[TriggersResponse](t, call(t, s, "available_triggers", map[string]any{"mission_id": b}))
	assert.Equal(t, domain.StateAssigned, triggers.State)
	assert.Equal(t, []domain.Trigger{domain.TriggerStart}, triggers.Triggers)
}

func TestGetWorkflow(t *testing.T) {
	s, _ := newTestServer(t)
	wf := structured[WorkflowResponse](t, call(t, s, "get_workflow", nil))
	assert.Equal(t, domain.StateCreated, wf.Initial)
	assert.Equal(t, workflow.Rules(), wf.Rules)
	assert.Contains(t, wf.Mermaid, "graph TD")
}

func TestWorkflowResource(t *testing.T) {
	s, _ := newTestServer(t)

	contents, err := s.readWorkflow(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, WorkflowResourceURI, text.URI)

	var rules []workflow.Rule
	require.NoError(t, json.Unmarshal([]byte(text.Text), &rules))
	assert.Equal(t, workflow.Rules(), rules)
}
