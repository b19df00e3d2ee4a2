package workflow

import "context"

// NewTaskMachine builds the task status machine for one caller.
// Only an admin may fire TriggerComplete; everyone else completes through proof.
func NewTaskMachine(current State, actorIsAdmin bool) StateMachine {
	adminOnly := func(ctx context.Context) bool {
		return actorIsAdmin
	}

	builder := NewBuilder()

	builder.Configure(StateAssigned).
		Permit(TriggerStart, StateInProgress).
		Permit(TriggerSubmitProof, StateCompleted)

	builder.Configure(StateInProgress).
		PermitIf(TriggerComplete, StateCompleted, adminOnly).
		Permit(TriggerSubmitProof, StateCompleted)

	return builder.Build(current)
}
