package missions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/missions/internal/logging"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/ports"
	"github.com/aretw0/missions/pkg/repository"
	"github.com/aretw0/missions/pkg/workflow"
)

// Tracker is the high-level entry point of the library.
// It wraps the mission repository and implements ports.MissionService.
type Tracker struct {
	repo   *repository.Repository
	store  ports.MissionStore
	newID  repository.IDGenerator
	now    func() time.Time
	hooks  []domain.LifecycleHooks
	logger *slog.Logger
}

var _ ports.MissionService = (*Tracker)(nil)

// Option defines a functional option for configuring the Tracker.
type Option func(*Tracker)

// WithLifecycleHooks registers observability hooks.
// It may be given several times; every set of hooks is called in order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tracker) {
		t.hooks = append(t.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithStore injects a custom MissionStore (default: in-memory).
func WithStore(store ports.MissionStore) Option {
	return func(t *Tracker) {
		t.store = store
	}
}

// WithIDGenerator overrides the default UUID generator.
func WithIDGenerator(gen repository.IDGenerator) Option {
	return func(t *Tracker) {
		t.newID = gen
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New initializes a Tracker. It fails if the built-in workflow is inconsistent.
func New(opts ...Option) (*Tracker, error) {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}

	if err := workflow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	if t.logger == nil {
		t.logger = logging.NewNop()
	}

	repoOpts := []repository.Option{repository.WithLogger(t.logger)}
	if t.store != nil {
		repoOpts = append(repoOpts, repository.WithStore(t.store))
	}
	if t.newID != nil {
		repoOpts = append(repoOpts, repository.WithIDGenerator(t.newID))
	}
	if t.now != nil {
		repoOpts = append(repoOpts, repository.WithClock(t.now))
	}
	switch len(t.hooks) {
	case 0:
	case 1:
		repoOpts = append(repoOpts, repository.WithLifecycleHooks(t.hooks[0]))
	default:
		repoOpts = append(repoOpts, repository.WithLifecycleHooks(domain.CombineHooks(t.hooks...)))
	}

	t.repo = repository.New(repoOpts...)
	return t, nil
}

// Create stores a new mission in Created and returns its ID.
func (t *Tracker) Create(ctx context.Context, title, description string) (string, error) {
	return t.repo.Create(ctx, title, description)
}

// Get returns a snapshot of the mission.
func (t *Tracker) Get(ctx context.Context, id string) (domain.Mission, error) {
	return t.repo.Get(ctx, id)
}

// List returns snapshots of all missions in creation order.
func (t *Tracker) List(ctx context.Context) ([]domain.Mission, error) {
	return t.repo.List(ctx)
}

// ListByState returns the missions currently in state, in creation order.
func (t *Tracker) ListByState(ctx context.Context, state domain.State) ([]domain.Mission, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownState, state)
	}
	all, err := t.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Mission, 0, len(all))
	for _, m := range all {
		if m.State == state {
			out = append(out, m)
		}
	}
	return out, nil
}

// AvailableTriggers returns the triggers legal from the mission's current state.
func (t *Tracker) AvailableTriggers(ctx context.Context, id string) ([]domain.Trigger, error) {
	return t.repo.AvailableTriggers(ctx, id)
}

// Transition applies trigger to the mission and returns its new state.
func (t *Tracker) Transition(ctx context.Context, id string, trigger domain.Trigger) (domain.State, error) {
	return t.repo.Transition(ctx, id, trigger)
}

// Fire applies the trigger named raw ("submit_review", "SubmitReview", ...)
// and returns the mission as observed right after the transition.
func (t *Tracker) Fire(ctx context.Context, id, raw string) (domain.Mission, error) {
	if _, err := t.repo.Transition(ctx, id, domain.NormalizeTrigger(raw)); err != nil {
		return domain.Mission{}, err
	}
	return t.repo.Get(ctx, id)
}

// Graph returns the static workflow rules.
func (t *Tracker) Graph() []workflow.Rule {
	return t.repo.Graph()
}

// Logger returns the logger the Tracker was configured with.
func (t *Tracker) Logger() *slog.Logger {
	return t.logger
}
