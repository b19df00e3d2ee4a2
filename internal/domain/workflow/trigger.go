package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	// TriggerStart moves an assigned task into progress
	TriggerStart Trigger = "start"

	// TriggerComplete is the explicit status change to completed
	TriggerComplete Trigger = "complete"

	// TriggerSubmitProof completes a task as a side effect of proof submission
	TriggerSubmitProof Trigger = "submit_proof"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// StatusTrigger returns the trigger an explicit status change to the target state fires.
// Proof submission is not reachable this way.
func StatusTrigger(to State) (Trigger, bool) {
	switch to {
	case StateInProgress:
		return TriggerStart, true
	case StateCompleted:
		return TriggerComplete, true
	default:
		return "", false
	}
}
