package event

// Type identifies the type of domain event
type Type string

const (
	TypeRequestCreated    Type = "request.created"
	TypeRequestAssigned   Type = "request.assigned"
	TypeRequestUnassigned Type = "request.unassigned"
	TypeRequestCompleted  Type = "request.completed"
	TypeRequestRated      Type = "request.rated"
	TypeTaskCreated       Type = "task.created"
	TypeTaskStatusChanged Type = "task.status_changed"
	TypeTaskCompleted     Type = "task.completed"
	TypeProofSubmitted    Type = "task.proof_submitted"
	TypeUserApproved      Type = "user.approved"
)

// AllTypes lists every defined event type
func AllTypes() []Type {
	return []Type{
		TypeRequestCreated,
		TypeRequestAssigned,
		TypeRequestUnassigned,
		TypeRequestCompleted,
		TypeRequestRated,
		TypeTaskCreated,
		TypeTaskStatusChanged,
		TypeTaskCompleted,
		TypeProofSubmitted,
		TypeUserApproved,
	}
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}
