package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/missions/internal/logging"
	"github.com/aretw0/missions/pkg/adapters/memory"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/ports"
	"github.com/aretw0/missions/pkg/workflow"
	"github.com/google/uuid"
)

// maxIDAttempts bounds ID regeneration when a generator returns a taken ID.
const maxIDAttempts = 3

// IDGenerator returns a new mission identifier.
type IDGenerator func() string

// Repository owns every mission and serializes mutations per mission ID.
// It implements ports.MissionService.
type Repository struct {
	store  ports.MissionStore
	locks  *lockTable
	newID  IDGenerator
	now    func() time.Time
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

var _ ports.MissionService = (*Repository)(nil)

// Option configures the Repository.
type Option func(*Repository)

// WithStore replaces the default in-memory store.
func WithStore(store ports.MissionStore) Option {
	return func(r *Repository) {
		r.store = store
	}
}

// WithIDGenerator overrides the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Repository) {
		r.newID = gen
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Repository) {
		r.hooks = hooks
	}
}

// WithLogger configures a logger for the Repository.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// New creates a Repository. By default missions live in memory and receive
// random 128-bit UUIDs.
func New(opts ...Option) *Repository {
	r := &Repository{
		locks:  newLockTable(),
		newID:  uuid.NewString,
		now:    time.Now,
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = memory.NewStore()
	}
	return r
}

// Create validates the input, assigns a fresh ID and stores a new mission in Created.
// Title and description are trimmed; a blank title yields a *domain.ValidationError.
func (r *Repository) Create(ctx context.Context, title, description string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	now := r.now()
	var mission *domain.Mission
	for attempt := 1; ; attempt++ {
		mission = domain.NewMission(r.newID(), title, description, now)
		err := r.store.Insert(ctx, mission)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrMissionExists) || attempt == maxIDAttempts {
			return "", fmt.Errorf("failed to store mission: %w", err)
		}
		r.logger.Warn("Mission ID collision, regenerating", "mission_id", mission.ID, "attempt", attempt)
	}

	r.logger.Debug("Mission created", "mission_id", mission.ID, "title", title)
	if r.hooks.OnCreate != nil {
		r.hooks.OnCreate(ctx, &domain.CreatedEvent{
			Timestamp: now,
			Type:      domain.EventMissionCreated,
			MissionID: mission.ID,
			Title:     title,
		})
	}
	return mission.ID, nil
}

// Get returns a snapshot of the mission.
func (r *Repository) Get(ctx context.Context, id string) (domain.Mission, error) {
	if err := ctx.Err(); err != nil {
		return domain.Mission{}, err
	}
	m, err := r.store.Load(ctx, id)
	if err != nil {
		return domain.Mission{}, wrapLoadErr(id, err)
	}
	return *m, nil
}

// List returns snapshots of all missions in insertion order.
func (r *Repository) List(ctx context.Context) ([]domain.Mission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	out := make([]domain.Mission, 0, len(all))
	for _, m := range all {
		out = append(out, *m)
	}
	return out, nil
}

// AvailableTriggers returns the triggers legal from the mission's current state.
// The result is empty (not nil) for a Closed mission.
func (r *Repository) AvailableTriggers(ctx context.Context, id string) ([]domain.Trigger, error) {
	m, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return workflow.TriggersFor(m.State), nil
}

// Transition applies trigger to the mission identified by id.
//
// Load, decision, mutation and history append happen under the mission's
// lock, so concurrent transitions on one mission are strictly serialized.
// On any error the stored mission is left exactly as it was.
func (r *Repository) Transition(ctx context.Context, id string, trigger domain.Trigger) (domain.State, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		event   *domain.TransitionEvent
		current domain.State
	)
	err := r.locks.with(id, func() error {
		m, err := r.store.Load(ctx, id)
		if err != nil {
			return wrapLoadErr(id, err)
		}
		current = m.State

		next, err := workflow.Apply(m.State, trigger)
		if err != nil {
			return err
		}

		entry := m.Record(trigger, next, r.now())
		if err := r.store.Save(ctx, m); err != nil {
			return fmt.Errorf("failed to save mission %s: %w", id, err)
		}

		event = &domain.TransitionEvent{
			Timestamp: entry.At,
			Type:      domain.EventMissionTransitioned,
			MissionID: id,
			Trigger:   trigger,
			From:      entry.From,
			To:        entry.To,
		}
		return nil
	})

	if err != nil {
		r.logger.Info("Transition rejected",
			"mission_id", id,
			"trigger", string(trigger),
			"state", string(current),
			"err", err,
		)
		if r.hooks.OnReject != nil {
			r.hooks.OnReject(ctx, &domain.RejectionEvent{
				Timestamp: r.now(),
				Type:      domain.EventTransitionRejected,
				MissionID: id,
				Trigger:   string(trigger),
				State:     current,
				Err:       err,
			})
		}
		return "", err
	}

	r.logger.Debug("Transition applied",
		"mission_id", id,
		"trigger", string(trigger),
		"from", string(event.From),
		"to", string(event.To),
	)
	if r.hooks.OnTransition != nil {
		r.hooks.OnTransition(ctx, event)
	}
	return event.To, nil
}

// Graph returns the static workflow rules.
func (r *Repository) Graph() []workflow.Rule {
	return workflow.Rules()
}

func wrapLoadErr(id string, err error) error {
	if errors.Is(err, domain.ErrMissionNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrMissionNotFound, id)
	}
	return fmt.Errorf("failed to load mission %s: %w", id, err)
}
