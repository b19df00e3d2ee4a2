package service

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
	"github.com/garyjia/field-service/internal/domain/policy"
	"github.com/garyjia/field-service/internal/domain/workflow"
)

// TaskService drives tasks through their lifecycle
type TaskService interface {
	GetTask(ctx context.Context, p entity.Principal, id int64) (*entity.Task, error)
	ListTasks(ctx context.Context, p entity.Principal, filter TaskListFilter) ([]*entity.Task, error)
	SetStatus(ctx context.Context, p entity.Principal, id int64, status string) (*entity.Task, error)
	SubmitProof(ctx context.Context, p entity.Principal, id int64, input ProofInput) (*entity.Task, error)
	DeleteTask(ctx context.Context, p entity.Principal, id int64) error
	GetProof(ctx context.Context, p entity.Principal, id int64) (*ProofFile, error)
}

// TaskListFilter narrows a task listing. Status is validated.
type TaskListFilter struct {
	Status           *string
	ServiceRequestID *int64
	Limit            int
	Offset           int
}

// ProofInput is a proof submission. Either field may be absent.
type ProofInput struct {
	File  *port.Upload
	Notes *string
}

// ProofFile is the stored proof upload of a task
type ProofFile struct {
	Name    string
	Content []byte
}

type taskServiceImpl struct {
	taskRepo    port.TaskRepository
	requestRepo port.ServiceRequestRepository
	storage     port.FileStorage
	txManager   port.TransactionManager
	events      EventPublisher
	logger      Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo port.TaskRepository,
	requestRepo port.ServiceRequestRepository,
	storage port.FileStorage,
	txManager port.TransactionManager,
	events EventPublisher,
	logger Logger,
) TaskService {
	return &taskServiceImpl{
		taskRepo:    taskRepo,
		requestRepo: requestRepo,
		storage:     storage,
		txManager:   txManager,
		events:      events,
		logger:      logger,
	}
}

// GetTask returns a task visible to p
func (s *taskServiceImpl) GetTask(ctx context.Context, p entity.Principal, id int64) (*entity.Task, error) {
	task, _, err := s.loadVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns the tasks visible to p, newest first
func (s *taskServiceImpl) ListTasks(ctx context.Context, p entity.Principal, filter TaskListFilter) ([]*entity.Task, error) {
	limit, offset := pageLimits(filter.Limit, filter.Offset)
	repoFilter := port.TaskFilter{
		Scope:            policy.TaskScope(p),
		ServiceRequestID: filter.ServiceRequestID,
		Limit:            limit,
		Offset:           offset,
	}

	if filter.Status != nil {
		state, err := workflow.ParseState(*filter.Status)
		if err != nil {
			return nil, apperror.Validation("%q is not a valid task status.", *filter.Status)
		}
		status := entity.TaskStatus(state)
		repoFilter.Status = &status
	}

	tasks, err := s.taskRepo.List(ctx, repoFilter)
	if err != nil {
		s.logger.Error("Failed to list tasks", "user_id", p.ID, "error", err)
		return nil, apperror.Internal(err, "failed to list tasks")
	}
	if tasks == nil {
		tasks = []*entity.Task{}
	}
	return tasks, nil
}

// SetStatus moves a task to the requested status and cascades completion to
// the parent request in the same transaction
func (s *taskServiceImpl) SetStatus(ctx context.Context, p entity.Principal, id int64, status string) (*entity.Task, error) {
	var (
		task     *entity.Task
		from     workflow.State
		target   workflow.State
		cascaded bool
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		t, parent, err := s.loadVisible(txCtx, p, id)
		if err != nil {
			return err
		}
		if !policy.Can(p, policy.ActionWrite, policy.TaskResource(t, parent)) {
			return apperror.PermissionDenied("You do not have permission to update this task.")
		}

		target, err = workflow.ParseState(status)
		if err != nil {
			return apperror.Validation("%q is not a valid task status.", status)
		}

		task = t
		from = workflow.State(t.Status)
		if from == target {
			return nil
		}

		if target == workflow.StateCompleted && !p.IsAdmin() {
			return apperror.Validation("Cannot transition from %s to %s: must upload proof of completion", from, target)
		}

		machine := workflow.NewTaskMachine(from, p.IsAdmin())
		trigger, ok := workflow.StatusTrigger(target)
		if !ok || !machine.CanFire(trigger) {
			return transitionError(txCtx, machine, target)
		}
		if err := machine.Fire(txCtx, trigger); err != nil {
			return transitionError(txCtx, machine, target)
		}

		t.Status = entity.TaskStatus(machine.State())
		if err := s.taskRepo.Update(txCtx, t); err != nil {
			return apperror.Internal(err, "failed to update task")
		}

		if t.IsCompleted() {
			cascaded, err = s.completeParent(txCtx, parent)
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to set task status", "task_id", id, "status", status, "error", err)
		return nil, err
	}

	if from == target {
		return task, nil
	}

	s.logger.Info("Task status changed",
		"task_id", task.ID,
		"from", from,
		"to", task.Status,
		"request_completed", cascaded,
		"actor_id", p.ID,
	)
	publish(ctx, s.events, s.logger, s.transitionEvents(p, task, from, cascaded)...)

	return task, nil
}

// SubmitProof stores the proof file and notes of a task. A field worker's
// submission completes the task.
func (s *taskServiceImpl) SubmitProof(ctx context.Context, p entity.Principal, id int64, input ProofInput) (*entity.Task, error) {
	notes := presentNotes(input.Notes)
	hasFile := input.File != nil && input.File.Content != nil

	var (
		task      *entity.Task
		from      workflow.State
		stored    string
		replaced  string
		completed bool
		cascaded  bool
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		t, parent, err := s.loadVisible(txCtx, p, id)
		if err != nil {
			return err
		}
		if !policy.Can(p, policy.ActionWrite, policy.TaskResource(t, parent)) {
			return apperror.PermissionDenied("You do not have permission to update this task.")
		}

		task = t
		from = workflow.State(t.Status)
		if !hasFile && notes == nil {
			return nil
		}

		if hasFile {
			path := ProofPath(t.ID, input.File.Filename)
			written, err := s.storage.Save(txCtx, path, input.File.Content)
			if err != nil {
				if errors.Is(err, port.ErrFileTooLarge) {
					return apperror.Validation("Proof file exceeds the maximum upload size.")
				}
				return apperror.Internal(err, "failed to store proof file")
			}
			stored = path
			if written == 0 {
				return apperror.Validation("The submitted file is empty.")
			}
			replaced = t.ProofUpload
			t.ProofUpload = path
		}
		if notes != nil {
			t.Notes = *notes
		}

		if !p.IsAdmin() && !t.IsCompleted() {
			machine := workflow.NewTaskMachine(from, false)
			if err := machine.Fire(txCtx, workflow.TriggerSubmitProof); err != nil {
				return transitionError(txCtx, machine, workflow.StateCompleted)
			}
			t.Status = entity.TaskStatus(machine.State())
			completed = true
		}

		if err := s.taskRepo.Update(txCtx, t); err != nil {
			return apperror.Internal(err, "failed to update task")
		}

		if completed {
			cascaded, err = s.completeParent(txCtx, parent)
			return err
		}
		return nil
	})
	if err != nil {
		if stored != "" {
			s.removeFile(ctx, stored)
		}
		s.logger.Error("Failed to submit proof", "task_id", id, "error", err)
		return nil, err
	}

	if !hasFile && notes == nil {
		return task, nil
	}

	if replaced != "" && replaced != stored {
		s.removeFile(ctx, replaced)
	}

	s.logger.Info("Proof submitted",
		"task_id", task.ID,
		"proof_upload", task.ProofUpload,
		"completed", completed,
		"actor_id", p.ID,
	)

	evts := []*event.Event{
		event.NewEvent(event.TypeProofSubmitted, task.ID, p.ID, map[string]interface{}{
			"proof_upload": task.ProofUpload,
			"has_file":     hasFile,
			"has_notes":    notes != nil,
		}),
	}
	if completed {
		evts = append(evts, s.transitionEvents(p, task, from, cascaded)...)
	}
	publish(ctx, s.events, s.logger, evts...)

	return task, nil
}

// DeleteTask removes a task. Only admins may delete.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, p entity.Principal, id int64) error {
	var proof string

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		t, parent, err := s.loadVisible(txCtx, p, id)
		if err != nil {
			return err
		}
		if !policy.Can(p, policy.ActionDelete, policy.TaskResource(t, parent)) {
			return apperror.PermissionDenied("Only admins can delete tasks.")
		}

		proof = t.ProofUpload
		if err := s.taskRepo.Delete(txCtx, t.ID); err != nil {
			return apperror.Internal(err, "failed to delete task")
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete task", "task_id", id, "error", err)
		return err
	}

	if proof != "" {
		s.removeFile(ctx, proof)
	}

	s.logger.Info("Task deleted", "task_id", id, "actor_id", p.ID)
	return nil
}

// GetProof returns the proof file of a task visible to p
func (s *taskServiceImpl) GetProof(ctx context.Context, p entity.Principal, id int64) (*ProofFile, error) {
	task, _, err := s.loadVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if task.ProofUpload == "" || !s.storage.Exists(ctx, task.ProofUpload) {
		return nil, apperror.NotFound("Task has no proof upload.")
	}

	content, err := s.storage.Read(ctx, task.ProofUpload)
	if err != nil {
		s.logger.Error("Failed to read proof file", "task_id", id, "path", task.ProofUpload, "error", err)
		return nil, apperror.Internal(err, "failed to read proof file")
	}

	return &ProofFile{Name: path.Base(task.ProofUpload), Content: content}, nil
}

// loadVisible loads a task with its parent request. Tasks outside the read
// scope of p are reported as not found.
func (s *taskServiceImpl) loadVisible(ctx context.Context, p entity.Principal, id int64) (*entity.Task, *entity.ServiceRequest, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to load task")
	}
	if task == nil {
		return nil, nil, apperror.NotFound("Task not found.")
	}

	parent, err := s.requestRepo.GetByID(ctx, task.ServiceRequestID)
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to load service request")
	}

	if !policy.Can(p, policy.ActionRead, policy.TaskResource(task, parent)) {
		return nil, nil, apperror.NotFound("Task not found.")
	}
	return task, parent, nil
}

// completeParent marks the parent request completed unless it already is
func (s *taskServiceImpl) completeParent(ctx context.Context, parent *entity.ServiceRequest) (bool, error) {
	if parent == nil || parent.Status == entity.RequestStatusCompleted {
		return false, nil
	}
	parent.Status = entity.RequestStatusCompleted
	if err := s.requestRepo.Update(ctx, parent); err != nil {
		return false, apperror.Internal(err, "failed to complete service request")
	}
	return true, nil
}

func (s *taskServiceImpl) transitionEvents(p entity.Principal, task *entity.Task, from workflow.State, cascaded bool) []*event.Event {
	evts := []*event.Event{
		event.NewEvent(event.TypeTaskStatusChanged, task.ID, p.ID, map[string]interface{}{
			"from": string(from),
			"to":   string(task.Status),
		}),
	}
	if task.IsCompleted() {
		evts = append(evts, event.NewEvent(event.TypeTaskCompleted, task.ID, p.ID, map[string]interface{}{
			"service_request_id": task.ServiceRequestID,
		}))
	}
	if cascaded {
		evts = append(evts, event.NewEvent(event.TypeRequestCompleted, task.ServiceRequestID, p.ID, map[string]interface{}{
			"task_id": task.ID,
		}))
	}
	return evts
}

func (s *taskServiceImpl) removeFile(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		s.logger.Error("Failed to remove proof file", "path", path, "error", err)
	}
}

// transitionError describes a rejected transition with the states reachable
// through a status change
func transitionError(ctx context.Context, machine workflow.StateMachine, target workflow.State) error {
	allowed := machine.AllowedStates(ctx, workflow.TriggerStart, workflow.TriggerComplete)
	names := make([]string, len(allowed))
	for i, state := range allowed {
		names[i] = state.String()
	}
	return apperror.Validation("Cannot transition from %s to %s. Allowed: [%s]",
		machine.State(), target, strings.Join(names, ", "))
}

// presentNotes treats blank notes as absent. Present notes are kept verbatim.
func presentNotes(notes *string) *string {
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return nil
	}
	return notes
}
