// Package policy decides which principal may perform which action on which
// resource. Every function here is a pure predicate.
package policy

import "github.com/garyjia/field-service/internal/domain/entity"

// Action is an operation a principal attempts on a resource
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
	ActionAssign Action = "assign"
	ActionRate   Action = "rate"
)

// ResourceKind identifies the entity a Resource describes
type ResourceKind string

const (
	KindServiceRequest ResourceKind = "service_request"
	KindTask           ResourceKind = "task"
)

// Resource is the ownership view of an entity the policy needs
type Resource struct {
	Kind ResourceKind

	// OwnerID is the customer of the request (or of the task's parent request)
	OwnerID int64

	// AssigneeID is the field worker of a task; nil for requests and orphaned tasks
	AssigneeID *int64
}

// RequestResource describes a service request
func RequestResource(r *entity.ServiceRequest) Resource {
	return Resource{Kind: KindServiceRequest, OwnerID: r.CustomerID}
}

// NewRequestResource describes a service request that does not exist yet
func NewRequestResource() Resource {
	return Resource{Kind: KindServiceRequest}
}

// TaskResource describes a task together with the request it belongs to
func TaskResource(t *entity.Task, parent *entity.ServiceRequest) Resource {
	res := Resource{Kind: KindTask, AssigneeID: t.AssignedToID}
	if parent != nil {
		res.OwnerID = parent.CustomerID
	}
	return res
}

func (r Resource) ownedBy(id int64) bool {
	return r.OwnerID != 0 && r.OwnerID == id
}

func (r Resource) assignedTo(id int64) bool {
	return r.AssigneeID != nil && *r.AssigneeID == id
}

// Can reports whether p may perform action on res.
// Admins may do everything; the remaining rules depend on role and ownership.
func Can(p entity.Principal, action Action, res Resource) bool {
	switch p.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleCustomer:
		return customerCan(p, action, res)
	case entity.RoleFieldWorker:
		return fieldWorkerCan(p, action, res)
	default:
		return false
	}
}

func customerCan(p entity.Principal, action Action, res Resource) bool {
	switch res.Kind {
	case KindServiceRequest:
		switch action {
		case ActionCreate:
			return true
		case ActionRead, ActionWrite, ActionDelete, ActionRate:
			return res.ownedBy(p.ID)
		}
	case KindTask:
		return action == ActionRead && res.ownedBy(p.ID)
	}
	return false
}

func fieldWorkerCan(p entity.Principal, action Action, res Resource) bool {
	switch res.Kind {
	case KindServiceRequest:
		return action == ActionRead
	case KindTask:
		switch action {
		case ActionRead, ActionWrite:
			return res.assignedTo(p.ID)
		}
	}
	return false
}
