package graph_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/missions/internal/presentation/graph"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/workflow"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "State Shapes",
			contains: []string{
				"graph TD\n",
				`Created(("Created"))`,
				`InProgress("In Progress")`,
				`UnderReview("Under Review")`,
				`Closed((("Closed")))`,
			},
			excludes: []string{"classDef"},
		},
		{
			name: "Trigger Edges",
			contains: []string{
				`Created -- "assign" --> Assigned`,
				`InProgress -- "submit_review" --> UnderReview`,
				`Completed -- "close" --> Closed`,
			},
		},
		{
			name: "Hold Loop Is Dotted",
			contains: []string{
				`InProgress -. "pause" .-> OnHold`,
				`OnHold -. "resume" .-> InProgress`,
			},
		},
		{
			name: "Overlay",
			overlay: &graph.GraphOverlay{
				VisitedStates: []domain.State{domain.StateCreated, domain.StateAssigned, domain.StateAssigned},
				CurrentState:  domain.StateInProgress,
			},
			contains: []string{
				"classDef visited",
				"class Created visited;",
				"class Assigned visited;",
				"class InProgress current;",
			},
			excludes: []string{"class InProgress visited;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(workflow.Rules(), tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
		})
	}
}

func TestGenerateMermaid_VisitedDeduplicated(t *testing.T) {
	overlay := &graph.GraphOverlay{
		VisitedStates: []domain.State{domain.StateInProgress, domain.StateOnHold, domain.StateInProgress, domain.StateOnHold},
		CurrentState:  domain.StateInProgress,
	}
	got := graph.GenerateMermaid(workflow.Rules(), overlay)
	if n := strings.Count(got, "class OnHold visited;"); n != 1 {
		t.Errorf("expected OnHold styled once, got %d", n)
	}
}

func TestOverlayFor(t *testing.T) {
	now := time.Now()
	m := domain.NewMission("m1", "Investigate Incident", "", now)
	m.Record(domain.TriggerAssign, domain.StateAssigned, now)
	m.Record(domain.TriggerStart, domain.StateInProgress, now)

	overlay := graph.OverlayFor(*m)
	if overlay.CurrentState != domain.StateInProgress {
		t.Errorf("current = %s, want InProgress", overlay.CurrentState)
	}
	want := []domain.State{domain.StateCreated, domain.StateAssigned, domain.StateInProgress}
	if len(overlay.VisitedStates) != len(want) {
		t.Fatalf("visited = %v, want %v", overlay.VisitedStates, want)
	}
	for i := range want {
		if overlay.VisitedStates[i] != want[i] {
			t.Errorf("visited[%d] = %s, want %s", i, overlay.VisitedStates[i], want[i])
		}
	}
}
