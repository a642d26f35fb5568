package domain

import (
	"fmt"
	"strings"
)

// State is a workflow state of a Mission.
type State string

const (
	StateCreated     State = "Created"
	StateAssigned    State = "Assigned"
	StateInProgress  State = "InProgress"
	StateOnHold      State = "OnHold"
	StateUnderReview State = "UnderReview"
	StateCompleted   State = "Completed"
	StateClosed      State = "Closed" // Sink state
)

// allStates keeps the declaration order, which is also the display order.
var allStates = []State{
	StateCreated,
	StateAssigned,
	StateInProgress,
	StateOnHold,
	StateUnderReview,
	StateCompleted,
	StateClosed,
}

// stateLabels maps states to the human readable labels used by UIs.
var stateLabels = map[State]string{
	StateCreated:     "Created",
	StateAssigned:    "Assigned",
	StateInProgress:  "In Progress",
	StateOnHold:      "On Hold",
	StateUnderReview: "Under Review",
	StateCompleted:   "Completed",
	StateClosed:      "Closed",
}

// AllStates returns every valid State in declaration order.
func AllStates() []State {
	out := make([]State, len(allStates))
	copy(out, allStates)
	return out
}

// IsValid reports whether s belongs to the closed set of states.
func (s State) IsValid() bool {
	_, ok := stateLabels[s]
	return ok
}

// Label returns the display label ("In Progress" for InProgress).
func (s State) Label() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s State) String() string { return string(s) }

// ParseState converts a raw string to a State.
// Both the canonical name ("InProgress") and the display label ("In Progress")
// are accepted, case-insensitively.
func ParseState(raw string) (State, error) {
	key := normalizeName(raw)
	for _, s := range allStates {
		if normalizeName(string(s)) == key {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, raw)
}

// normalizeName lowercases and strips separators so that
// "Under Review", "under_review" and "UnderReview" compare equal.
func normalizeName(raw string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}
