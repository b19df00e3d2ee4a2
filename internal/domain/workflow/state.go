package workflow

import "fmt"

// State represents a task status in the execution lifecycle
type State string

const (
	StateAssigned   State = "assigned"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

var validStates = map[State]bool{
	StateAssigned:   true,
	StateInProgress: true,
	StateCompleted:  true,
}

var terminalStates = map[State]bool{
	StateCompleted: true,
}

// stateOrder fixes the listing order of states in messages
var stateOrder = map[State]int{
	StateAssigned:   0,
	StateInProgress: 1,
	StateCompleted:  2,
}

// ParseState converts a raw status value into a State
func ParseState(s string) (State, error) {
	state := State(s)
	if !state.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
	return state, nil
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid task state
func (s State) IsValid() bool {
	return validStates[s]
}
