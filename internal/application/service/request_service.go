package service

import (
	"context"
	"strings"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
	"github.com/garyjia/field-service/internal/domain/policy"
	"github.com/garyjia/field-service/pkg/utils"
)

// RequestService manages service requests on behalf of their callers
type RequestService interface {
	Create(ctx context.Context, p entity.Principal, input CreateRequestInput) (*entity.ServiceRequest, error)
	Get(ctx context.Context, p entity.Principal, id int64) (*entity.ServiceRequest, error)
	List(ctx context.Context, p entity.Principal, filter RequestListFilter) ([]*entity.ServiceRequest, error)
	Update(ctx context.Context, p entity.Principal, id int64, input UpdateRequestInput) (*entity.ServiceRequest, error)
	Delete(ctx context.Context, p entity.Principal, id int64) error
	Rate(ctx context.Context, p entity.Principal, id int64, rating int) (*entity.ServiceRequest, error)
}

// CreateRequestInput holds the fields of a new service request
type CreateRequestInput struct {
	Description string
	Location    string
	Urgency     string
}

// UpdateRequestInput holds the editable fields; nil fields stay unchanged
type UpdateRequestInput struct {
	Description *string
	Location    *string
	Urgency     *string
}

// RequestListFilter narrows a service request listing
type RequestListFilter struct {
	Status *string
	Limit  int
	Offset int
}

type requestServiceImpl struct {
	requestRepo port.ServiceRequestRepository
	taskRepo    port.TaskRepository
	storage     port.FileStorage
	txManager   port.TransactionManager
	events      EventPublisher
	logger      Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requestRepo port.ServiceRequestRepository,
	taskRepo port.TaskRepository,
	storage port.FileStorage,
	txManager port.TransactionManager,
	events EventPublisher,
	logger Logger,
) RequestService {
	return &requestServiceImpl{
		requestRepo: requestRepo,
		taskRepo:    taskRepo,
		storage:     storage,
		txManager:   txManager,
		events:      events,
		logger:      logger,
	}
}

// Create opens a new service request for a customer
func (s *requestServiceImpl) Create(ctx context.Context, p entity.Principal, input CreateRequestInput) (*entity.ServiceRequest, error) {
	if !p.IsCustomer() {
		return nil, apperror.PermissionDenied("Only customers can create service requests.")
	}

	description := requestText(input.Description)
	if description == "" {
		return nil, apperror.Validation("Description is required.")
	}
	location := requestText(input.Location)
	if location == "" {
		return nil, apperror.Validation("Location is required.")
	}

	urgency := entity.UrgencyMedium
	if input.Urgency != "" {
		u, err := parseUrgency(input.Urgency)
		if err != nil {
			return nil, err
		}
		urgency = u
	}

	req := &entity.ServiceRequest{
		CustomerID:  p.ID,
		Description: description,
		Location:    location,
		Urgency:     urgency,
		Status:      entity.RequestStatusOpen,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.logger.Error("Failed to create service request", "customer_id", p.ID, "error", err)
		return nil, apperror.Internal(err, "failed to create service request")
	}

	s.logger.Info("Service request created", "request_id", req.ID, "customer_id", p.ID, "urgency", req.Urgency)
	publish(ctx, s.events, s.logger, event.NewEvent(event.TypeRequestCreated, req.ID, p.ID, map[string]interface{}{
		"urgency": string(req.Urgency),
	}))

	return req, nil
}

// Get returns a service request visible to p
func (s *requestServiceImpl) Get(ctx context.Context, p entity.Principal, id int64) (*entity.ServiceRequest, error) {
	return s.loadVisible(ctx, p, id)
}

// List returns the service requests visible to p, newest first
func (s *requestServiceImpl) List(ctx context.Context, p entity.Principal, filter RequestListFilter) ([]*entity.ServiceRequest, error) {
	limit, offset := pageLimits(filter.Limit, filter.Offset)
	repoFilter := port.RequestFilter{
		Scope:  policy.RequestScope(p),
		Limit:  limit,
		Offset: offset,
	}

	if filter.Status != nil {
		status := entity.RequestStatus(*filter.Status)
		if !status.IsValid() {
			return nil, apperror.Validation("%q is not a valid service request status.", *filter.Status)
		}
		repoFilter.Status = &status
	}

	reqs, err := s.requestRepo.List(ctx, repoFilter)
	if err != nil {
		s.logger.Error("Failed to list service requests", "user_id", p.ID, "error", err)
		return nil, apperror.Internal(err, "failed to list service requests")
	}
	if reqs == nil {
		reqs = []*entity.ServiceRequest{}
	}
	return reqs, nil
}

// Update edits description, location and urgency. Customers may edit only
// while the request is open and unassigned.
func (s *requestServiceImpl) Update(ctx context.Context, p entity.Principal, id int64, input UpdateRequestInput) (*entity.ServiceRequest, error) {
	var req *entity.ServiceRequest

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.loadVisible(txCtx, p, id)
		if err != nil {
			return err
		}
		if !policy.Can(p, policy.ActionWrite, policy.RequestResource(r)) {
			return apperror.PermissionDenied("You do not have permission to modify this service request.")
		}
		if !p.IsAdmin() && (r.Status != entity.RequestStatusOpen || r.IsAssigned()) {
			return apperror.Validation("Service request can no longer be edited after assignment.")
		}

		if input.Description != nil {
			description := requestText(*input.Description)
			if description == "" {
				return apperror.Validation("Description is required.")
			}
			r.Description = description
		}
		if input.Location != nil {
			location := requestText(*input.Location)
			if location == "" {
				return apperror.Validation("Location is required.")
			}
			r.Location = location
		}
		if input.Urgency != nil {
			urgency, err := parseUrgency(*input.Urgency)
			if err != nil {
				return err
			}
			r.Urgency = urgency
		}

		if err := s.requestRepo.Update(txCtx, r); err != nil {
			return apperror.Internal(err, "failed to update service request")
		}
		req = r
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update service request", "request_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("Service request updated", "request_id", req.ID, "actor_id", p.ID)
	return req, nil
}

// Delete removes a service request together with its tasks and their proof files
func (s *requestServiceImpl) Delete(ctx context.Context, p entity.Principal, id int64) error {
	var proofs []string

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.loadVisible(txCtx, p, id)
		if err != nil {
			return err
		}
		if !policy.Can(p, policy.ActionDelete, policy.RequestResource(r)) {
			return apperror.PermissionDenied("You do not have permission to delete this service request.")
		}

		tasks, err := s.taskRepo.List(txCtx, port.TaskFilter{ServiceRequestID: &r.ID})
		if err != nil {
			return apperror.Internal(err, "failed to list tasks")
		}
		for _, t := range tasks {
			if t.ProofUpload != "" {
				proofs = append(proofs, t.ProofUpload)
			}
		}

		if err := s.requestRepo.Delete(txCtx, r.ID); err != nil {
			return apperror.Internal(err, "failed to delete service request")
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete service request", "request_id", id, "error", err)
		return err
	}

	for _, path := range proofs {
		if err := s.storage.Delete(ctx, path); err != nil {
			s.logger.Error("Failed to remove proof file", "path", path, "error", err)
		}
	}

	s.logger.Info("Service request deleted", "request_id", id, "actor_id", p.ID, "proof_files", len(proofs))
	return nil
}

// Rate records the owning customer's rating of a completed request
func (s *requestServiceImpl) Rate(ctx context.Context, p entity.Principal, id int64, rating int) (*entity.ServiceRequest, error) {
	var req *entity.ServiceRequest

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.loadVisible(txCtx, p, id)
		if err != nil {
			return err
		}
		if !p.IsCustomer() || !policy.Can(p, policy.ActionRate, policy.RequestResource(r)) {
			return apperror.PermissionDenied("Only the owning customer can rate a service request.")
		}
		if rating < entity.MinRating || rating > entity.MaxRating {
			return apperror.Validation("Rating must be between %d and %d.", entity.MinRating, entity.MaxRating)
		}
		if r.Status != entity.RequestStatusCompleted {
			return apperror.Validation("Rating allowed only when status is completed.")
		}

		r.Rating = &rating
		if err := s.requestRepo.Update(txCtx, r); err != nil {
			return apperror.Internal(err, "failed to rate service request")
		}
		req = r
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to rate service request", "request_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("Service request rated", "request_id", req.ID, "rating", rating)
	publish(ctx, s.events, s.logger, event.NewEvent(event.TypeRequestRated, req.ID, p.ID, map[string]interface{}{
		"rating": rating,
	}))

	return req, nil
}

// loadVisible loads a request; requests outside the read scope of p are not found
func (s *requestServiceImpl) loadVisible(ctx context.Context, p entity.Principal, id int64) (*entity.ServiceRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load service request")
	}
	if req == nil || !policy.Can(p, policy.ActionRead, policy.RequestResource(req)) {
		return nil, apperror.NotFound("Service request not found.")
	}
	return req, nil
}

// requestText drops control characters and surrounding whitespace
func requestText(s string) string {
	return strings.TrimSpace(utils.SanitizeString(s))
}

func parseUrgency(s string) (entity.Urgency, error) {
	u := entity.Urgency(s)
	if !u.IsValid() {
		return "", apperror.Validation("%q is not a valid urgency.", s)
	}
	return u, nil
}
