package port

import (
	"context"

	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/policy"
)

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	CountByRole(ctx context.Context) (map[entity.Role]int, error)
}

// UserFilter narrows a user listing
type UserFilter struct {
	Role   *entity.Role
	Limit  int
	Offset int
}

// ServiceRequestRepository defines persistence operations for ServiceRequest
type ServiceRequestRepository interface {
	Create(ctx context.Context, req *entity.ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ServiceRequest, error)
	Update(ctx context.Context, req *entity.ServiceRequest) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter RequestFilter) ([]*entity.ServiceRequest, error)
	CountByStatus(ctx context.Context, customerID *int64) (map[entity.RequestStatus]int, error)
}

// RequestFilter narrows a service request listing
type RequestFilter struct {
	Scope  policy.Scope
	Status *entity.RequestStatus
	Limit  int
	Offset int
}

// TaskRepository defines persistence operations for Task
type TaskRepository interface {
	// Create inserts the task and assigns the next per-request sequence number
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id int64) (*entity.Task, error)
	// FindOpen returns the non-completed task of the worker on the request, if any
	FindOpen(ctx context.Context, requestID, workerID int64) (*entity.Task, error)
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter TaskFilter) ([]*entity.Task, error)
	CountByStatus(ctx context.Context, assigneeID *int64) (map[entity.TaskStatus]int, error)
}

// TaskFilter narrows a task listing
type TaskFilter struct {
	Scope            policy.Scope
	ServiceRequestID *int64
	Status           *entity.TaskStatus
	Limit            int
	Offset           int
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
