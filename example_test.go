package missions_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/pkg/domain"
)

// ExampleTracker walks a mission through part of its lifecycle and shows how
// rejected triggers are reported.
func ExampleTracker() {
	tracker, err := missions.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	id, err := tracker.Create(ctx, "Investigate Incident", "Check the logs")
	if err != nil {
		log.Fatal(err)
	}

	for _, trigger := range []domain.Trigger{domain.TriggerAssign, domain.TriggerStart, domain.TriggerPause} {
		state, err := tracker.Transition(ctx, id, trigger)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s -> %s\n", trigger, state.Label())
	}

	_, err = tracker.Transition(ctx, id, domain.TriggerApprove)
	if errors.Is(err, domain.ErrIllegalTransition) {
		fmt.Println("rejected:", err)
	}

	triggers, _ := tracker.AvailableTriggers(ctx, id)
	fmt.Println("available:", triggers)
	// Output:
	// assign -> Assigned
	// start -> In Progress
	// pause -> On Hold
	// rejected: illegal transition: trigger "approve" is not allowed from state OnHold
	// available: [resume]
}
