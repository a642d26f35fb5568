package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/missions/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCreate: func(ctx context.Context, e *domain.CreatedEvent) {
			logger.InfoContext(ctx, "mission_created",
				"mission_id", e.MissionID,
				"title", e.Title,
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "mission_transitioned",
				"mission_id", e.MissionID,
				"trigger", e.Trigger,
				"from", e.From,
				"to", e.To,
			)
		},
		OnReject: func(ctx context.Context, e *domain.RejectionEvent) {
			logger.WarnContext(ctx, "transition_rejected",
				"mission_id", e.MissionID,
				"trigger", e.Trigger,
				"state", e.State,
				"error", e.Err,
			)
		},
	}
}
