package workflow

import "context"

// StateMachine represents a state machine that tracks current state and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// AllowedStates returns the current state plus every state reachable through
	// the given triggers (all triggers when none are given) whose guards pass
	AllowedStates(ctx context.Context, triggers ...Trigger) []State
}
