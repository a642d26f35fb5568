package ports

import (
	"context"

	"github.com/aretw0/missions/pkg/domain"
)

// MissionStore defines how mission records are kept.
// Implementations must be safe for concurrent use and must never hand out
// references to their internal records: every returned mission is a copy.
type MissionStore interface {
	// Insert stores a new mission.
	// Returns domain.ErrMissionExists if the ID is already taken.
	Insert(ctx context.Context, mission *domain.Mission) error

	// Load retrieves a copy of the mission.
	// Returns domain.ErrMissionNotFound if the mission does not exist.
	Load(ctx context.Context, id string) (*domain.Mission, error)

	// Save replaces an existing mission.
	// Returns domain.ErrMissionNotFound if the mission does not exist.
	Save(ctx context.Context, mission *domain.Mission) error

	// List returns copies of all missions in insertion order.
	List(ctx context.Context) ([]*domain.Mission, error)
}
