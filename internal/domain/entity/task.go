package entity

import "time"

// Task is one assignment of a ServiceRequest to one field worker.
// Reassignment to a different worker creates a new Task; rows are never
// re-pointed, so the tasks of a request form an append-only assignment log
// ordered by Sequence.
type Task struct {
	ID               int64      `json:"id"`
	ServiceRequestID int64      `json:"service_request"`
	AssignedToID     *int64     `json:"assigned_to"`
	Sequence         int        `json:"sequence"`
	Status           TaskStatus `json:"status"`
	Notes            string     `json:"notes"`
	ProofUpload      string     `json:"proof_upload,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsAssignedTo reports whether the task belongs to the given user
func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// IsCompleted reports whether the task reached its terminal status
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}
