package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/infrastructure/persistence/sqlite"
)

const taskColumns = `t.id, t.service_request_id, t.assigned_to_id, t.sequence, t.status,
	t.notes, t.proof_upload, t.created_at, t.updated_at`

// TaskRepository implements port.TaskRepository
type TaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB, logger *zap.Logger) port.TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a task with the next sequence number of its request.
// The partial unique index rejects a second open task for the same worker.
func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO tasks (
			service_request_id, assigned_to_id, sequence, status,
			notes, proof_upload, created_at, updated_at
		) VALUES (
			?, ?,
			(SELECT COALESCE(MAX(sequence), 0) + 1 FROM tasks WHERE service_request_id = ?),
			?, ?, ?, ?, ?
		)
		RETURNING id, sequence
	`

	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query,
		task.ServiceRequestID,
		nullableInt64(task.AssignedToID),
		task.ServiceRequestID,
		task.Status,
		task.Notes,
		task.ProofUpload,
		now,
		now,
	).Scan(&task.ID, &task.Sequence)
	if err != nil {
		r.logger.Error("Failed to create task",
			zap.Int64("service_request_id", task.ServiceRequestID),
			zap.Error(err))
		return translateError(err, "create task")
	}

	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = ?`
	return r.getOne(ctx, query, id)
}

// FindOpen returns the non-completed task of the worker on the request
func (r *TaskRepository) FindOpen(ctx context.Context, requestID, workerID int64) (*entity.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks t
		WHERE t.service_request_id = ? AND t.assigned_to_id = ? AND t.status <> ?
		ORDER BY t.sequence DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, requestID, workerID, entity.TaskStatusCompleted)
}

func (r *TaskRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entity.Task, error) {
	task, err := scanTask(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get task", zap.Any("args", args), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update persists status, notes and proof of a task
func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	now := time.Now().UTC()
	query := `
		UPDATE tasks
		SET status = ?, notes = ?, proof_upload = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		task.Status,
		task.Notes,
		task.ProofUpload,
		now,
		task.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task", zap.Int64("id", task.ID), zap.Error(err))
		return translateError(err, "update task")
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update task %d: %w", task.ID, sql.ErrNoRows)
	}

	task.UpdatedAt = now
	return nil
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// List returns tasks newest first
func (r *TaskRepository) List(ctx context.Context, filter port.TaskFilter) ([]*entity.Task, error) {
	var where whereBuilder
	if filter.Scope.Deny {
		where.add("1 = 0")
	}
	if filter.Scope.CustomerID != nil {
		where.add("sr.customer_id = ?", *filter.Scope.CustomerID)
	}
	if filter.Scope.AssigneeID != nil {
		where.add("t.assigned_to_id = ?", *filter.Scope.AssigneeID)
	}
	if filter.ServiceRequestID != nil {
		where.add("t.service_request_id = ?", *filter.ServiceRequestID)
	}
	if filter.Status != nil {
		where.add("t.status = ?", *filter.Status)
	}

	query, args := paginate(
		`SELECT `+taskColumns+` FROM tasks t
		JOIN service_requests sr ON sr.id = t.service_request_id`+
			where.String()+` ORDER BY t.created_at DESC, t.id DESC`,
		where.args, filter.Limit, filter.Offset)

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// CountByStatus counts tasks grouped by status, optionally for one assignee
func (r *TaskRepository) CountByStatus(ctx context.Context, assigneeID *int64) (map[entity.TaskStatus]int, error) {
	var where whereBuilder
	if assigneeID != nil {
		where.add("assigned_to_id = ?", *assigneeID)
	}

	query := `SELECT status, COUNT(*) FROM tasks` + where.String() + ` GROUP BY status`
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, where.args...)
	if err != nil {
		r.logger.Error("Failed to count tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.TaskStatus]int)
	for rows.Next() {
		var status entity.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var task entity.Task
	var assignee sql.NullInt64

	err := row.Scan(
		&task.ID,
		&task.ServiceRequestID,
		&assignee,
		&task.Sequence,
		&task.Status,
		&task.Notes,
		&task.ProofUpload,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignee.Valid {
		id := assignee.Int64
		task.AssignedToID = &id
	}

	return &task, nil
}

// Verify interface compliance
var _ port.TaskRepository = (*TaskRepository)(nil)
