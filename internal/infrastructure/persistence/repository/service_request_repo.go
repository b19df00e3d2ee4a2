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

const requestColumns = `id, customer_id, assigned_field_worker_id, description, location,
	urgency, status, rating, created_at, updated_at`

// ServiceRequestRepository implements port.ServiceRequestRepository
type ServiceRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewServiceRequestRepository creates a new service request repository
func NewServiceRequestRepository(db *sql.DB, logger *zap.Logger) port.ServiceRequestRepository {
	return &ServiceRequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new service request
func (r *ServiceRequestRepository) Create(ctx context.Context, req *entity.ServiceRequest) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO service_requests (
			customer_id, assigned_field_worker_id, description, location,
			urgency, status, rating, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		req.CustomerID,
		nullableInt64(req.AssignedFieldWorker),
		req.Description,
		req.Location,
		req.Urgency,
		req.Status,
		nullableInt(req.Rating),
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create service request", zap.Int64("customer_id", req.CustomerID), zap.Error(err))
		return translateError(err, "create service request")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	req.CreatedAt = now
	req.UpdatedAt = now
	return nil
}

// GetByID retrieves a service request by ID
func (r *ServiceRequestRepository) GetByID(ctx context.Context, id int64) (*entity.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = ?`

	req, err := scanServiceRequest(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get service request by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get service request: %w", err)
	}

	return req, nil
}

// Update persists every mutable column of a service request
func (r *ServiceRequestRepository) Update(ctx context.Context, req *entity.ServiceRequest) error {
	now := time.Now().UTC()
	query := `
		UPDATE service_requests
		SET assigned_field_worker_id = ?, description = ?, location = ?,
			urgency = ?, status = ?, rating = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		nullableInt64(req.AssignedFieldWorker),
		req.Description,
		req.Location,
		req.Urgency,
		req.Status,
		nullableInt(req.Rating),
		now,
		req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update service request", zap.Int64("id", req.ID), zap.Error(err))
		return translateError(err, "update service request")
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update service request %d: %w", req.ID, sql.ErrNoRows)
	}

	req.UpdatedAt = now
	return nil
}

// Delete removes a service request; its tasks cascade
func (r *ServiceRequestRepository) Delete(ctx context.Context, id int64) error {
	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, `DELETE FROM service_requests WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete service request", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete service request: %w", err)
	}
	return nil
}

// List returns service requests newest first
func (r *ServiceRequestRepository) List(ctx context.Context, filter port.RequestFilter) ([]*entity.ServiceRequest, error) {
	var where whereBuilder
	if filter.Scope.Deny {
		where.add("1 = 0")
	}
	if filter.Scope.CustomerID != nil {
		where.add("customer_id = ?", *filter.Scope.CustomerID)
	}
	if filter.Scope.AssigneeID != nil {
		where.add("assigned_field_worker_id = ?", *filter.Scope.AssigneeID)
	}
	if filter.Status != nil {
		where.add("status = ?", *filter.Status)
	}

	query, args := paginate(
		`SELECT `+requestColumns+` FROM service_requests`+where.String()+` ORDER BY created_at DESC, id DESC`,
		where.args, filter.Limit, filter.Offset)

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list service requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.ServiceRequest
	for rows.Next() {
		req, err := scanServiceRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// CountByStatus counts service requests grouped by status, optionally for one customer
func (r *ServiceRequestRepository) CountByStatus(ctx context.Context, customerID *int64) (map[entity.RequestStatus]int, error) {
	var where whereBuilder
	if customerID != nil {
		where.add("customer_id = ?", *customerID)
	}

	query := `SELECT status, COUNT(*) FROM service_requests` + where.String() + ` GROUP BY status`
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, where.args...)
	if err != nil {
		r.logger.Error("Failed to count service requests", zap.Error(err))
		return nil, fmt.Errorf("failed to count service requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.RequestStatus]int)
	for rows.Next() {
		var status entity.RequestStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan service request count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func scanServiceRequest(row rowScanner) (*entity.ServiceRequest, error) {
	var req entity.ServiceRequest
	var worker sql.NullInt64
	var rating sql.NullInt64

	err := row.Scan(
		&req.ID,
		&req.CustomerID,
		&worker,
		&req.Description,
		&req.Location,
		&req.Urgency,
		&req.Status,
		&rating,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if worker.Valid {
		id := worker.Int64
		req.AssignedFieldWorker = &id
	}
	if rating.Valid {
		v := int(rating.Int64)
		req.Rating = &v
	}

	return &req, nil
}

// Verify interface compliance
var _ port.ServiceRequestRepository = (*ServiceRequestRepository)(nil)
