package service

import (
	"context"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
)

// DashboardService aggregates per-role summaries
type DashboardService interface {
	AdminOverview(ctx context.Context, p entity.Principal) (*entity.AdminOverview, error)
	WorkerSummary(ctx context.Context, p entity.Principal) (*entity.WorkerSummary, error)
	CustomerSummary(ctx context.Context, p entity.Principal) (*entity.CustomerSummary, error)
}

type dashboardServiceImpl struct {
	userRepo    port.UserRepository
	requestRepo port.ServiceRequestRepository
	taskRepo    port.TaskRepository
	logger      Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	userRepo port.UserRepository,
	requestRepo port.ServiceRequestRepository,
	taskRepo port.TaskRepository,
	logger Logger,
) DashboardService {
	return &dashboardServiceImpl{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		taskRepo:    taskRepo,
		logger:      logger,
	}
}

func errDashboardDenied() error {
	return apperror.PermissionDenied("Permission denied.")
}

// AdminOverview counts users, requests and tasks system-wide
func (s *dashboardServiceImpl) AdminOverview(ctx context.Context, p entity.Principal) (*entity.AdminOverview, error) {
	if !p.IsAdmin() {
		return nil, errDashboardDenied()
	}

	roles, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		s.logger.Error("Failed to count users", "error", err)
		return nil, apperror.Internal(err, "failed to count users")
	}
	requests, err := s.requestRepo.CountByStatus(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to count service requests", "error", err)
		return nil, apperror.Internal(err, "failed to count service requests")
	}
	tasks, err := s.taskRepo.CountByStatus(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to count tasks", "error", err)
		return nil, apperror.Internal(err, "failed to count tasks")
	}

	return &entity.AdminOverview{
		UsersTotal:     sum(roles),
		UsersAdmins:    roles[entity.RoleAdmin],
		UsersWorkers:   roles[entity.RoleFieldWorker],
		UsersCustomers: roles[entity.RoleCustomer],

		ServiceRequestsTotal:      sum(requests),
		ServiceRequestsOpen:       requests[entity.RequestStatusOpen],
		ServiceRequestsInProgress: requests[entity.RequestStatusInProgress],
		ServiceRequestsCompleted:  requests[entity.RequestStatusCompleted],

		TasksTotal:      sum(tasks),
		TasksAssigned:   tasks[entity.TaskStatusAssigned],
		TasksInProgress: tasks[entity.TaskStatusInProgress],
		TasksCompleted:  tasks[entity.TaskStatusCompleted],
	}, nil
}

// WorkerSummary counts the caller's own tasks
func (s *dashboardServiceImpl) WorkerSummary(ctx context.Context, p entity.Principal) (*entity.WorkerSummary, error) {
	if !p.IsFieldWorker() {
		return nil, errDashboardDenied()
	}

	id := p.ID
	tasks, err := s.taskRepo.CountByStatus(ctx, &id)
	if err != nil {
		s.logger.Error("Failed to count tasks", "user_id", p.ID, "error", err)
		return nil, apperror.Internal(err, "failed to count tasks")
	}

	return &entity.WorkerSummary{
		Assigned:   tasks[entity.TaskStatusAssigned],
		InProgress: tasks[entity.TaskStatusInProgress],
		Completed:  tasks[entity.TaskStatusCompleted],
	}, nil
}

// CustomerSummary counts the caller's own service requests
func (s *dashboardServiceImpl) CustomerSummary(ctx context.Context, p entity.Principal) (*entity.CustomerSummary, error) {
	if !p.IsCustomer() {
		return nil, errDashboardDenied()
	}

	id := p.ID
	requests, err := s.requestRepo.CountByStatus(ctx, &id)
	if err != nil {
		s.logger.Error("Failed to count service requests", "user_id", p.ID, "error", err)
		return nil, apperror.Internal(err, "failed to count service requests")
	}

	return &entity.CustomerSummary{
		RequestsTotal:      sum(requests),
		RequestsOpen:       requests[entity.RequestStatusOpen],
		RequestsInProgress: requests[entity.RequestStatusInProgress],
		RequestsCompleted:  requests[entity.RequestStatusCompleted],
	}, nil
}

func sum[K comparable](counts map[K]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
