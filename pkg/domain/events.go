package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMissionCreated      EventType = "mission_created"
	EventMissionTransitioned EventType = "mission_transitioned"
	EventTransitionRejected  EventType = "transition_rejected"
)

// CreatedEvent is emitted after a mission has been stored.
type CreatedEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	MissionID string    `json:"mission_id"`
	Title     string    `json:"title"`
}

// TransitionEvent is emitted after a transition has been applied.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	MissionID string    `json:"mission_id"`
	Trigger   Trigger   `json:"trigger"`
	From      State     `json:"from"`
	To        State     `json:"to"`
}

// RejectionEvent is emitted when a transition request fails.
// State is empty when the mission could not be found.
type RejectionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	MissionID string    `json:"mission_id"`
	Trigger   string    `json:"trigger"`
	State     State     `json:"state,omitempty"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously after the mission lock has been released.
type LifecycleHooks struct {
	OnCreate     func(context.Context, *CreatedEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnReject     func(context.Context, *RejectionEvent)
}

// CombineHooks fans every callback out to all non-nil hooks in order.
func CombineHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCreate: func(ctx context.Context, e *CreatedEvent) {
			for _, h := range hooks {
				if h.OnCreate != nil {
					h.OnCreate(ctx, e)
				}
			}
		},
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnReject: func(ctx context.Context, e *RejectionEvent) {
			for _, h := range hooks {
				if h.OnReject != nil {
					h.OnReject(ctx, e)
				}
			}
		},
	}
}
