package entity

// RequestStatus is the lifecycle status of a ServiceRequest
type RequestStatus string

// Status constants for ServiceRequest
const (
	RequestStatusOpen       RequestStatus = "open"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// IsValid returns true if the status is a known request status
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusInProgress, RequestStatusCompleted, RequestStatusCancelled:
		return true
	default:
		return false
	}
}

// Urgency is the customer-declared urgency of a ServiceRequest
type Urgency string

// Urgency constants for ServiceRequest
const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// IsValid returns true if the urgency is a known level
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	default:
		return false
	}
}

// TaskStatus is the execution status of a Task
type TaskStatus string

// Status constants for Task
const (
	TaskStatusAssigned   TaskStatus = "assigned"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Rating bounds for a completed ServiceRequest
const (
	MinRating = 1
	MaxRating = 5
)
