package domain

import (
	"errors"
	"fmt"
)

// ErrMissionNotFound is returned when a mission ID cannot be found in the repository.
var ErrMissionNotFound = errors.New("mission not found")

// ErrMissionExists is returned by stores when an ID is already taken.
var ErrMissionExists = errors.New("mission already exists")

// ErrValidation is the kind of every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ErrIllegalTransition is the kind of every *IllegalTransitionError.
var ErrIllegalTransition = errors.New("illegal transition")

// ErrUnknownTrigger is the kind of every *UnknownTriggerError.
var ErrUnknownTrigger = errors.New("unknown trigger")

// ErrUnknownState is returned when a value outside the state set reaches the engine.
var ErrUnknownState = errors.New("unknown state")

// ValidationError reports invalid input to a command (e.g. an empty title).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IllegalTransitionError reports a trigger that exists but is not allowed from State.
type IllegalTransitionError struct {
	State   State
	Trigger Trigger
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: trigger %q is not allowed from state %s", e.Trigger, e.State)
}

func (e *IllegalTransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// UnknownTriggerError reports a trigger name that is not part of the workflow.
type UnknownTriggerError struct {
	Name string
}

func (e *UnknownTriggerError) Error() string {
	return fmt.Sprintf("unknown trigger %q", e.Name)
}

func (e *UnknownTriggerError) Is(target error) bool { return target == ErrUnknownTrigger }
