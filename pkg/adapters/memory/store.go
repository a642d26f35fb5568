package memory

import (
	"context"
	"sync"

	"github.com/aretw0/missions/pkg/domain"
)

// Store implements ports.MissionStore in memory.
// Safe for concurrent use. Missions are copied on the way in and on the way
// out, so readers never observe a record while it is being replaced.
type Store struct {
	data  map[string]*domain.Mission
	order []string // insertion order
	mu    sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Mission),
	}
}

// Insert stores a copy of the mission.
func (s *Store) Insert(ctx context.Context, mission *domain.Mission) error {
	copied := mission.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[mission.ID]; exists {
		return domain.ErrMissionExists
	}
	s.data[mission.ID] = copied
	s.order = append(s.order, mission.ID)
	return nil
}

// Load retrieves a copy of the mission.
func (s *Store) Load(ctx context.Context, id string) (*domain.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mission, ok := s.data[id]
	if !ok {
		return nil, domain.ErrMissionNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer
	return mission.Snapshot(), nil
}

// Save replaces an existing mission with a copy of the given one.
func (s *Store) Save(ctx context.Context, mission *domain.Mission) error {
	copied := mission.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[mission.ID]; !exists {
		return domain.ErrMissionNotFound
	}
	s.data[mission.ID] = copied
	return nil
}

// List returns copies of all missions in insertion order.
func (s *Store) List(ctx context.Context) ([]*domain.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	missions := make([]*domain.Mission, 0, len(s.order))
	for _, id := range s.order {
		missions = append(missions, s.data[id].Snapshot())
	}
	return missions, nil
}

// Len returns the number of stored missions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
