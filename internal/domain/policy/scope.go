package policy

import "github.com/garyjia/field-service/internal/domain/entity"

// Scope restricts a listing to what a principal may read.
// A nil field does not restrict.
type Scope struct {
	CustomerID *int64
	AssigneeID *int64

	// Deny matches nothing
	Deny bool
}

// RequestScope returns the service requests visible to p
func RequestScope(p entity.Principal) Scope {
	switch p.Role {
	case entity.RoleAdmin, entity.RoleFieldWorker:
		return Scope{}
	case entity.RoleCustomer:
		id := p.ID
		return Scope{CustomerID: &id}
	default:
		return Scope{Deny: true}
	}
}

// TaskScope returns the tasks visible to p
func TaskScope(p entity.Principal) Scope {
	switch p.Role {
	case entity.RoleAdmin:
		return Scope{}
	case entity.RoleFieldWorker:
		id := p.ID
		return Scope{AssigneeID: &id}
	case entity.RoleCustomer:
		id := p.ID
		return Scope{CustomerID: &id}
	default:
		return Scope{Deny: true}
	}
}
