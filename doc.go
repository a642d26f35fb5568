/*
Package missions is an in-process workflow engine that moves missions through a
fixed lifecycle.

A mission starts in Created and advances only through named triggers:

	Created --assign--> Assigned --start--> InProgress --submit_review--> UnderReview
	UnderReview --approve--> Completed --close--> Closed
	InProgress --pause--> OnHold --resume--> InProgress

The Tracker is the library entry point. It owns every mission, assigns
identifiers, serializes transitions per mission and keeps an append-only
history of every applied trigger. Reads return snapshots, so callers can never
mutate a stored mission behind the engine's back.

# Usage

	tracker, err := missions.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	id, err := tracker.Create(ctx, "Investigate Incident", "Check the logs")
	if err != nil {
		log.Fatal(err)
	}

	if _, err := tracker.Transition(ctx, id, domain.TriggerAssign); err != nil {
		log.Fatal(err)
	}

	triggers, _ := tracker.AvailableTriggers(ctx, id) // [start]

Errors are classified by sentinel: domain.ErrValidation, domain.ErrMissionNotFound,
domain.ErrIllegalTransition and domain.ErrUnknownTrigger. Use errors.Is to
branch on them and errors.As to reach the typed details.

# Observability

Lifecycle hooks (domain.LifecycleHooks) fire after every creation, transition
and rejection. The pkg/observability package turns them into Prometheus
metrics and structured logs, and pkg/adapters/redis publishes them on a
pub/sub channel.
*/
package missions
