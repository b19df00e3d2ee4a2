package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
)

func newDashboardFixture() DashboardService {
	users := newMockUserRepo(
		&entity.User{ID: 1, Role: entity.RoleAdmin},
		&entity.User{ID: 2, Role: entity.RoleCustomer},
		&entity.User{ID: 3, Role: entity.RoleFieldWorker},
		&entity.User{ID: 4, Role: entity.RoleCustomer},
	)
	requests := newMockRequestRepo(
		&entity.ServiceRequest{ID: 1, CustomerID: 2, Status: entity.RequestStatusOpen},
		&entity.ServiceRequest{ID: 2, CustomerID: 2, Status: entity.RequestStatusCompleted},
		&entity.ServiceRequest{ID: 3, CustomerID: 4, Status: entity.RequestStatusInProgress},
		&entity.ServiceRequest{ID: 4, CustomerID: 2, Status: entity.RequestStatusCancelled},
	)
	tasks := newMockTaskRepo(
		&entity.Task{ID: 1, ServiceRequestID: 2, AssignedToID: int64Ptr(3), Status: entity.TaskStatusCompleted},
		&entity.Task{ID: 2, ServiceRequestID: 3, AssignedToID: int64Ptr(3), Status: entity.TaskStatusInProgress},
		&entity.Task{ID: 3, ServiceRequestID: 3, AssignedToID: int64Ptr(5), Status: entity.TaskStatusAssigned},
	)
	return NewDashboardService(users, requests, tasks, &mockLogger{})
}

func TestDashboardService_AdminOverview(t *testing.T) {
	svc := newDashboardFixture()

	got, err := svc.AdminOverview(context.Background(), admin)
	require.NoError(t, err)

	assert.Equal(t, &entity.AdminOverview{
		UsersTotal: 4, UsersAdmins: 1, UsersWorkers: 1, UsersCustomers: 2,
		ServiceRequestsTotal: 4, ServiceRequestsOpen: 1, ServiceRequestsInProgress: 1, ServiceRequestsCompleted: 1,
		TasksTotal: 3, TasksAssigned: 1, TasksInProgress: 1, TasksCompleted: 1,
	}, got)
}

func TestDashboardService_WorkerSummary(t *testing.T) {
	got, err := newDashboardFixture().WorkerSummary(context.Background(), worker)
	require.NoError(t, err)
	assert.Equal(t, &entity.WorkerSummary{Assigned: 0, InProgress: 1, Completed: 1}, got)
}

func TestDashboardService_CustomerSummary(t *testing.T) {
	got, err := newDashboardFixture().CustomerSummary(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, &entity.CustomerSummary{RequestsTotal: 3, RequestsOpen: 1, RequestsCompleted: 1}, got)
}

func TestDashboardService_RoleChecks(t *testing.T) {
	svc := newDashboardFixture()
	ctx := context.Background()

	calls := map[string]func(p entity.Principal) error{
		"admin":    func(p entity.Principal) error { _, err := svc.AdminOverview(ctx, p); return err },
		"worker":   func(p entity.Principal) error { _, err := svc.WorkerSummary(ctx, p); return err },
		"customer": func(p entity.Principal) error { _, err := svc.CustomerSummary(ctx, p); return err },
	}
	allowed := map[string]entity.Role{
		"admin":    entity.RoleAdmin,
		"worker":   entity.RoleFieldWorker,
		"customer": entity.RoleCustomer,
	}

	for name, call := range calls {
		for _, p := range []entity.Principal{admin, worker, customer} {
			err := call(p)
			if p.Role == allowed[name] {
				assert.NoError(t, err, "%s as %s", name, p.Role)
				continue
			}
			assert.ErrorIs(t, err, apperror.ErrPermissionDenied, "%s as %s", name, p.Role)
			assert.Equal(t, "Permission denied.", apperror.MessageOf(err))
		}
	}
}
