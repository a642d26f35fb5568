package workflow

import (
	"fmt"

	"github.com/aretw0/missions/pkg/domain"
)

// Apply computes the state reached by firing trigger from current.
//
// It fails with ErrUnknownState for a state outside the workflow, with an
// *domain.UnknownTriggerError for a trigger outside the trigger set, and with
// an *domain.IllegalTransitionError when the trigger exists but no rule leaves
// current with it. Apply is deterministic and has no side effects.
func Apply(current domain.State, trigger domain.Trigger) (domain.State, error) {
	if !current.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownState, current)
	}
	if !trigger.IsValid() {
		return "", &domain.UnknownTriggerError{Name: string(trigger)}
	}
	for _, r := range RulesFor(current) {
		if r.Trigger == trigger {
			return r.To, nil
		}
	}
	return "", &domain.IllegalTransitionError{State: current, Trigger: trigger}
}

// CanApply reports whether Apply(current, trigger) would succeed.
func CanApply(current domain.State, trigger domain.Trigger) bool {
	_, err := Apply(current, trigger)
	return err == nil
}
