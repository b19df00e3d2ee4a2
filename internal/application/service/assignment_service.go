package service

import (
	"context"
	"errors"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
	"github.com/garyjia/field-service/internal/domain/policy"
)

// AssignmentService binds service requests to field workers
type AssignmentService interface {
	// Assign sets or clears the field worker of a request.
	// A nil workerID unassigns; tasks are left untouched in that case.
	Assign(ctx context.Context, p entity.Principal, requestID int64, workerID *int64) (*entity.ServiceRequest, error)
}

type assignmentServiceImpl struct {
	requestRepo port.ServiceRequestRepository
	taskRepo    port.TaskRepository
	identities  IdentityLookup
	txManager   port.TransactionManager
	events      EventPublisher
	logger      Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	requestRepo port.ServiceRequestRepository,
	taskRepo port.TaskRepository,
	identities IdentityLookup,
	txManager port.TransactionManager,
	events EventPublisher,
	logger Logger,
) AssignmentService {
	return &assignmentServiceImpl{
		requestRepo: requestRepo,
		taskRepo:    taskRepo,
		identities:  identities,
		txManager:   txManager,
		events:      events,
		logger:      logger,
	}
}

// Assign validates the worker, updates the request and gets or creates the
// worker's open task, all in one transaction
func (s *assignmentServiceImpl) Assign(ctx context.Context, p entity.Principal, requestID int64, workerID *int64) (*entity.ServiceRequest, error) {
	if !policy.Can(p, policy.ActionAssign, policy.NewRequestResource()) {
		return nil, apperror.PermissionDenied("Only admins can assign service requests.")
	}

	var (
		req       *entity.ServiceRequest
		task      *entity.Task
		inserted  bool
		previous  *int64
		oldStatus entity.RequestStatus
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requestRepo.GetByID(txCtx, requestID)
		if err != nil {
			return apperror.Internal(err, "failed to load service request")
		}
		if req == nil {
			return apperror.NotFound("Service request not found.")
		}

		previous = req.AssignedFieldWorker
		oldStatus = req.Status

		if workerID == nil {
			req.AssignedFieldWorker = nil
			if err := s.requestRepo.Update(txCtx, req); err != nil {
				return apperror.Internal(err, "failed to update service request")
			}
			return nil
		}

		if err := s.validateWorker(txCtx, *workerID); err != nil {
			return err
		}

		id := *workerID
		req.AssignedFieldWorker = &id
		if req.Status == entity.RequestStatusOpen {
			req.Status = entity.RequestStatusInProgress
		}
		if err := s.requestRepo.Update(txCtx, req); err != nil {
			return apperror.Internal(err, "failed to update service request")
		}

		task, inserted, err = s.getOrCreateTask(txCtx, req.ID, id)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to assign service request", "request_id", requestID, "error", err)
		return nil, err
	}

	if workerID == nil {
		s.logger.Info("Service request unassigned", "request_id", req.ID, "actor_id", p.ID)
		publish(ctx, s.events, s.logger, event.NewEvent(event.TypeRequestUnassigned, req.ID, p.ID, map[string]interface{}{
			"previous_worker_id": int64Value(previous),
			"status":             string(req.Status),
		}))
		return req, nil
	}

	s.logger.Info("Service request assigned",
		"request_id", req.ID,
		"worker_id", *workerID,
		"task_id", task.ID,
		"task_created", inserted,
		"actor_id", p.ID,
	)

	evts := []*event.Event{
		event.NewEvent(event.TypeRequestAssigned, req.ID, p.ID, map[string]interface{}{
			"worker_id":          *workerID,
			"previous_worker_id": int64Value(previous),
			"old_status":         string(oldStatus),
			"status":             string(req.Status),
			"task_id":            task.ID,
		}),
	}
	if inserted {
		evts = append(evts, event.NewEvent(event.TypeTaskCreated, task.ID, p.ID, map[string]interface{}{
			"service_request_id": req.ID,
			"assigned_to":        *workerID,
			"sequence":           task.Sequence,
		}))
	}
	publish(ctx, s.events, s.logger, evts...)

	return req, nil
}

// validateWorker checks the identity may receive assignments
func (s *assignmentServiceImpl) validateWorker(ctx context.Context, workerID int64) error {
	user, err := s.identities.GetIdentity(ctx, workerID)
	if err != nil {
		return apperror.AsInternal(err, "failed to load field worker")
	}
	if user == nil {
		return apperror.Validation("User does not exist.")
	}
	if user.Role != entity.RoleFieldWorker {
		return apperror.Validation("User must be a field worker.")
	}
	if !user.IsApproved {
		return apperror.Validation("Field worker must be approved.")
	}
	return nil
}

// getOrCreateTask reuses the worker's non-completed task on the request or
// appends a new one. It reports whether a row was inserted.
func (s *assignmentServiceImpl) getOrCreateTask(ctx context.Context, requestID, workerID int64) (*entity.Task, bool, error) {
	existing, err := s.taskRepo.FindOpen(ctx, requestID, workerID)
	if err != nil {
		return nil, false, apperror.Internal(err, "failed to look up open task")
	}
	if existing != nil {
		return existing, false, nil
	}

	task := &entity.Task{
		ServiceRequestID: requestID,
		AssignedToID:     &workerID,
		Status:           entity.TaskStatusAssigned,
	}
	err = s.taskRepo.Create(ctx, task)
	if errors.Is(err, port.ErrDuplicate) {
		// the open-assignment index saw a concurrent insert first
		existing, findErr := s.taskRepo.FindOpen(ctx, requestID, workerID)
		if findErr != nil {
			return nil, false, apperror.Internal(findErr, "failed to look up open task")
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, apperror.Internal(err, "failed to create task")
	}

	return task, true, nil
}

func int64Value(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
