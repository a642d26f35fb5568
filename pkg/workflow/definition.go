package workflow

import (
	"fmt"

	"github.com/aretw0/missions/pkg/domain"
)

// Rule is a single allowed edge of the workflow graph.
type Rule struct {
	Trigger domain.Trigger `json:"trigger" yaml:"trigger"`
	From    domain.State   `json:"from" yaml:"from"`
	To      domain.State   `json:"to" yaml:"to"`
}

var rulesTable = []Rule{
	{Trigger: domain.TriggerAssign, From: domain.StateCreated, To: domain.StateAssigned},
	{Trigger: domain.TriggerStart, From: domain.StateAssigned, To: domain.StateInProgress},
	{Trigger: domain.TriggerPause, From: domain.StateInProgress, To: domain.StateOnHold},
	{Trigger: domain.TriggerResume, From: domain.StateOnHold, To: domain.StateInProgress},
	{Trigger: domain.TriggerSubmitReview, From: domain.StateInProgress, To: domain.StateUnderReview},
	{Trigger: domain.TriggerApprove, From: domain.StateUnderReview, To: domain.StateCompleted},
	{Trigger: domain.TriggerClose, From: domain.StateCompleted, To: domain.StateClosed},
}

// Initial returns the state every new mission starts in.
func Initial() domain.State {
	return domain.StateCreated
}

// States returns every workflow state in declaration order.
func States() []domain.State {
	return domain.AllStates()
}

// Triggers returns every workflow trigger in declaration order.
func Triggers() []domain.Trigger {
	return domain.AllTriggers()
}

// Rules returns a copy of the full rule table, in declaration order.
func Rules() []Rule {
	out := make([]Rule, len(rulesTable))
	copy(out, rulesTable)
	return out
}

// RulesFor returns all rules whose source is state.
// The result is empty for Closed and for unknown states.
func RulesFor(state domain.State) []Rule {
	var out []Rule
	for _, r := range rulesTable {
		if r.From == state {
			out = append(out, r)
		}
	}
	return out
}

// TriggersFor returns the triggers that are legal from state.
func TriggersFor(state domain.State) []domain.Trigger {
	rules := RulesFor(state)
	out := make([]domain.Trigger, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Trigger)
	}
	return out
}

// IsValidState reports whether s is a workflow state.
func IsValidState(s domain.State) bool {
	return s.IsValid()
}

// IsValidTrigger reports whether t is a workflow trigger.
func IsValidTrigger(t domain.Trigger) bool {
	return t.IsValid()
}

// IsTerminal reports whether no rule leaves s.
func IsTerminal(s domain.State) bool {
	return s.IsValid() && len(RulesFor(s)) == 0
}

// Validate checks the structural invariants of the rule table:
// every rule references known states and triggers, (trigger, from) pairs are
// unique, every state is reachable from Initial, Closed is the only terminal
// state and the only cycle is InProgress <-> OnHold.
func Validate() error {
	return validate(rulesTable)
}

func validate(rules []Rule) error {
	seen := make(map[Rule]bool)
	edges := make(map[domain.State][]domain.State)
	for _, r := range rules {
		if !r.Trigger.IsValid() {
			return fmt.Errorf("rule %v: %w", r, domain.ErrUnknownTrigger)
		}
		if !r.From.IsValid() || !r.To.IsValid() {
			return fmt.Errorf("rule %v: %w", r, domain.ErrUnknownState)
		}
		key := Rule{Trigger: r.Trigger, From: r.From}
		if seen[key] {
			return fmt.Errorf("duplicate rule for trigger %q from %s", r.Trigger, r.From)
		}
		seen[key] = true
		edges[r.From] = append(edges[r.From], r.To)
	}

	// Reachability
	reached := map[domain.State]bool{Initial(): true}
	queue := []domain.State{Initial()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range edges[cur] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, s := range domain.AllStates() {
		if !reached[s] {
			return fmt.Errorf("state %s is unreachable from %s", s, Initial())
		}
		if len(edges[s]) == 0 && s != domain.StateClosed {
			return fmt.Errorf("state %s has no outgoing rule", s)
		}
	}
	if len(edges[domain.StateClosed]) != 0 {
		return fmt.Errorf("terminal state %s has outgoing rules", domain.StateClosed)
	}

	// Cycles: ignore the pause/resume pair, the rest must be acyclic.
	const (
		white = iota
		grey
		black
	)
	color := make(map[domain.State]int)
	var visit func(s domain.State) error
	visit = func(s domain.State) error {
		color[s] = grey
		for _, next := range edges[s] {
			if isHoldLoop(s, next) {
				continue
			}
			switch color[next] {
			case grey:
				return fmt.Errorf("cycle detected through %s -> %s", s, next)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[s] = black
		return nil
	}
	return visit(Initial())
}

func isHoldLoop(from, to domain.State) bool {
	return (from == domain.StateInProgress && to == domain.StateOnHold) ||
		(from == domain.StateOnHold && to == domain.StateInProgress)
}
