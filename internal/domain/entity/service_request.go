package entity

import "time"

// ServiceRequest is a customer's submitted work order
type ServiceRequest struct {
	ID                  int64         `json:"id"`
	CustomerID          int64         `json:"customer"`
	AssignedFieldWorker *int64        `json:"assigned_field_worker"`
	Description         string        `json:"description"`
	Location            string        `json:"location"`
	Urgency             Urgency       `json:"urgency"`
	Status              RequestStatus `json:"status"`
	Rating              *int          `json:"rating"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// IsAssigned reports whether a field worker is currently assigned
func (r *ServiceRequest) IsAssigned() bool {
	return r.AssignedFieldWorker != nil
}
