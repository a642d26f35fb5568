package ports

import (
	"context"

	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/workflow"
)

// MissionService is the command/query contract of the engine.
// Presentation adapters depend on this interface only.
type MissionService interface {
	// Create validates the title, assigns a fresh ID and stores a mission in Created.
	Create(ctx context.Context, title, description string) (string, error)

	// Get returns a snapshot of the mission or domain.ErrMissionNotFound.
	Get(ctx context.Context, id string) (domain.Mission, error)

	// List returns snapshots of all missions in insertion order.
	List(ctx context.Context) ([]domain.Mission, error)

	// AvailableTriggers returns the triggers legal from the mission's current state.
	AvailableTriggers(ctx context.Context, id string) ([]domain.Trigger, error)

	// Transition atomically applies trigger to the mission and returns the new state.
	Transition(ctx context.Context, id string, trigger domain.Trigger) (domain.State, error)

	// Graph returns the static workflow rules, for diagram rendering.
	Graph() []workflow.Rule
}

// EventPublisher delivers transition events to external subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.TransitionEvent) error
}
