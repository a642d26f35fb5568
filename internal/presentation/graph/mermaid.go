// Package graph renders the mission workflow as Mermaid or Graphviz text.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/workflow"
)

// GraphOverlay contains per-mission data to highlight on the graph.
type GraphOverlay struct {
	VisitedStates []domain.State
	CurrentState  domain.State
}

// OverlayFor builds the overlay of a mission: every state on its path is
// visited and its current state is highlighted.
func OverlayFor(m domain.Mission) *GraphOverlay {
	return &GraphOverlay{
		VisitedStates: m.Path(),
		CurrentState:  m.State,
	}
}

// GenerateMermaid produces a Mermaid flowchart from the workflow rules.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Terminal state: (((Double circle)))
// - Default: (Rounded)
// The pause/resume loop is drawn with dotted arrows.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(rules []workflow.Rule, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, state := range statesOf(rules) {
		opener, closer := "(", ")"
		switch {
		case state == workflow.Initial():
			opener, closer = "((", "))"
		case isTerminal(rules, state):
			opener, closer = "(((", ")))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(state), opener, state.Label(), closer))
	}

	for _, r := range rules {
		arrow := fmt.Sprintf("-- \"%s\" -->", r.Trigger)
		if isHoldEdge(r) {
			arrow = fmt.Sprintf("-. \"%s\" .->", r.Trigger)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(r.From), arrow, sanitizeMermaidID(r.To)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, s := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(s)
			if !seen[safeID] && safeID != "" && s != overlay.CurrentState {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
		}
	}

	return sb.String()
}

// statesOf lists every state touched by rules, sources first, in rule order.
func statesOf(rules []workflow.Rule) []domain.State {
	var out []domain.State
	seen := make(map[domain.State]bool)
	add := func(s domain.State) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, r := range rules {
		add(r.From)
		add(r.To)
	}
	return out
}

func isTerminal(rules []workflow.Rule, s domain.State) bool {
	for _, r := range rules {
		if r.From == s {
			return false
		}
	}
	return true
}

func isHoldEdge(r workflow.Rule) bool {
	return r.Trigger == domain.TriggerPause || r.Trigger == domain.TriggerResume
}

func sanitizeMermaidID(s domain.State) string {
	id := strings.ReplaceAll(string(s), " ", "_")
	id = strings.ReplaceAll(id, "-", "_")
	return id
}
