// Package redis publishes mission lifecycle events on a Redis pub/sub channel.
//
// Publishing is fire-and-forget: subscribers that are offline miss events and
// nothing is retained.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/missions/internal/logging"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultChannel is the channel used when none is configured.
const DefaultChannel = "missions:events"

// Publisher implements ports.EventPublisher using Redis PUBLISH.
type Publisher struct {
	client  *backend.Client
	channel string
	logger  *slog.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Option configures a Publisher.
type Option func(*Publisher)

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) Option {
	return func(p *Publisher) {
		if channel != "" {
			p.channel = channel
		}
	}
}

// WithLogger sets the logger used to report publish failures from Hooks.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a Publisher connected to addr.
func New(addr, password string, db int, opts ...Option) *Publisher {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Publisher using an existing Redis client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		channel: DefaultChannel,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the channel events are published on.
func (p *Publisher) Channel() string {
	return p.channel
}

// Ping checks connectivity to the Redis server.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish sends the event as JSON.
func (p *Publisher) Publish(ctx context.Context, event domain.TransitionEvent) error {
	return p.publish(ctx, event)
}

// PublishCreated sends a creation event as JSON.
func (p *Publisher) PublishCreated(ctx context.Context, event domain.CreatedEvent) error {
	return p.publish(ctx, event)
}

func (p *Publisher) publish(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", p.channel, err)
	}
	return nil
}

// Hooks adapts the Publisher to lifecycle hooks. Failures are logged and
// never reach the caller of the mutating operation.
func (p *Publisher) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCreate: func(ctx context.Context, e *domain.CreatedEvent) {
			if err := p.PublishCreated(ctx, *e); err != nil {
				p.logger.Warn("Event publish failed", "mission_id", e.MissionID, "error", err)
			}
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			if err := p.Publish(ctx, *e); err != nil {
				p.logger.Warn("Event publish failed", "mission_id", e.MissionID, "error", err)
			}
		},
	}
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
