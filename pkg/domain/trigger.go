package domain

// Trigger names an operation that may move a Mission between states.
type Trigger string

const (
	TriggerAssign       Trigger = "assign"
	TriggerStart        Trigger = "start"
	TriggerPause        Trigger = "pause"
	TriggerResume       Trigger = "resume"
	TriggerSubmitReview Trigger = "submit_review"
	TriggerApprove      Trigger = "approve"
	TriggerClose        Trigger = "close"
)

var allTriggers = []Trigger{
	TriggerAssign,
	TriggerStart,
	TriggerPause,
	TriggerResume,
	TriggerSubmitReview,
	TriggerApprove,
	TriggerClose,
}

// AllTriggers returns every defined Trigger in declaration order.
func AllTriggers() []Trigger {
	out := make([]Trigger, len(allTriggers))
	copy(out, allTriggers)
	return out
}

// IsValid reports whether t belongs to the closed set of triggers.
func (t Trigger) IsValid() bool {
	for _, known := range allTriggers {
		if t == known {
			return true
		}
	}
	return false
}

func (t Trigger) String() string { return string(t) }

// ParseTrigger converts a raw name ("submit_review", "SubmitReview") to a Trigger.
// Names outside the trigger set yield an *UnknownTriggerError.
func ParseTrigger(raw string) (Trigger, error) {
	key := normalizeName(raw)
	for _, t := range allTriggers {
		if normalizeName(string(t)) == key {
			return t, nil
		}
	}
	return "", &UnknownTriggerError{Name: raw}
}

// NormalizeTrigger returns the canonical Trigger for raw, or raw unchanged
// when it names no trigger, leaving the rejection to the engine.
func NormalizeTrigger(raw string) Trigger {
	if t, err := ParseTrigger(raw); err == nil {
		return t
	}
	return Trigger(raw)
}
