package service

import (
	"context"
	"io"
	"sort"

	"github.com/garyjia/field-service/internal/application/port"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
)

// Mock repositories keep rows in memory and hand out copies, so a service
// only sees its writes after calling Update.

type mockRequestRepo struct {
	rows       map[int64]*entity.ServiceRequest
	getErr     error
	updateFunc func(ctx context.Context, req *entity.ServiceRequest) error
	updates    int
}

func newMockRequestRepo(reqs ...*entity.ServiceRequest) *mockRequestRepo {
	m := &mockRequestRepo{rows: make(map[int64]*entity.ServiceRequest)}
	for _, r := range reqs {
		cp := *r
		m.rows[r.ID] = &cp
	}
	return m
}

func (m *mockRequestRepo) Create(ctx context.Context, req *entity.ServiceRequest) error {
	req.ID = int64(len(m.rows) + 1)
	cp := *req
	m.rows[req.ID] = &cp
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id int64) (*entity.ServiceRequest, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockRequestRepo) Update(ctx context.Context, req *entity.ServiceRequest) error {
	if m.updateFunc != nil {
		if err := m.updateFunc(ctx, req); err != nil {
			return err
		}
	}
	cp := *req
	m.rows[req.ID] = &cp
	m.updates++
	return nil
}

func (m *mockRequestRepo) Delete(ctx context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func (m *mockRequestRepo) List(ctx context.Context, filter port.RequestFilter) ([]*entity.ServiceRequest, error) {
	var out []*entity.ServiceRequest
	for _, r := range m.rows {
		if filter.Scope.CustomerID != nil && r.CustomerID != *filter.Scope.CustomerID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRequestRepo) CountByStatus(ctx context.Context, customerID *int64) (map[entity.RequestStatus]int, error) {
	counts := make(map[entity.RequestStatus]int)
	for _, r := range m.rows {
		if customerID == nil || r.CustomerID == *customerID {
			counts[r.Status]++
		}
	}
	return counts, nil
}

func (m *mockRequestRepo) get(id int64) *entity.ServiceRequest {
	return m.rows[id]
}

type mockTaskRepo struct {
	rows       map[int64]*entity.Task
	createFunc func(ctx context.Context, task *entity.Task) error
	updateFunc func(ctx context.Context, task *entity.Task) error
	creates    int
}

func newMockTaskRepo(tasks ...*entity.Task) *mockTaskRepo {
	m := &mockTaskRepo{rows: make(map[int64]*entity.Task)}
	for _, t := range tasks {
		cp := *t
		m.rows[t.ID] = &cp
	}
	return m
}

func (m *mockTaskRepo) Create(ctx context.Context, task *entity.Task) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, task); err != nil {
			return err
		}
	}
	task.ID = int64(len(m.rows) + 1)
	task.Sequence = 1
	for _, t := range m.rows {
		if t.ServiceRequestID == task.ServiceRequestID && t.Sequence >= task.Sequence {
			task.Sequence = t.Sequence + 1
		}
	}
	cp := *task
	m.rows[task.ID] = &cp
	m.creates++
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) FindOpen(ctx context.Context, requestID, workerID int64) (*entity.Task, error) {
	for _, t := range m.sorted() {
		if t.ServiceRequestID == requestID && t.IsAssignedTo(workerID) && !t.IsCompleted() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *entity.Task) error {
	if m.updateFunc != nil {
		if err := m.updateFunc(ctx, task); err != nil {
			return err
		}
	}
	cp := *task
	m.rows[task.ID] = &cp
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func (m *mockTaskRepo) List(ctx context.Context, filter port.TaskFilter) ([]*entity.Task, error) {
	var out []*entity.Task
	for _, t := range m.sorted() {
		if filter.ServiceRequestID != nil && t.ServiceRequestID != *filter.ServiceRequestID {
			continue
		}
		if filter.Scope.AssigneeID != nil && !t.IsAssignedTo(*filter.Scope.AssigneeID) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTaskRepo) CountByStatus(ctx context.Context, assigneeID *int64) (map[entity.TaskStatus]int, error) {
	counts := make(map[entity.TaskStatus]int)
	for _, t := range m.rows {
		if assigneeID == nil || t.IsAssignedTo(*assigneeID) {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (m *mockTaskRepo) sorted() []*entity.Task {
	out := make([]*entity.Task, 0, len(m.rows))
	for _, t := range m.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type mockIdentities struct {
	users map[int64]*entity.User
	err   error
}

func (m *mockIdentities) GetIdentity(ctx context.Context, id int64) (*entity.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[id], nil
}

type mockStorage struct {
	files    map[string][]byte
	saveFunc func(ctx context.Context, path string, content io.Reader) (int64, error)
	deleted  []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string][]byte)}
}

func (m *mockStorage) Save(ctx context.Context, path string, content io.Reader) (int64, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, path, content)
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return 0, err
	}
	m.files[path] = data
	return int64(len(data)), nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.files[path], nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	delete(m.files, path)
	m.deleted = append(m.deleted, path)
	return nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockPublisher struct {
	events []*event.Event
}

func (m *mockPublisher) Dispatch(ctx context.Context, evt *event.Event) error {
	m.events = append(m.events, evt)
	return nil
}

func (m *mockPublisher) types() []event.Type {
	out := make([]event.Type, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

var (
	admin    = entity.Principal{ID: 1, Role: entity.RoleAdmin, Approved: true}
	customer = entity.Principal{ID: 2, Role: entity.RoleCustomer, Approved: true}
	worker   = entity.Principal{ID: 3, Role: entity.RoleFieldWorker, Approved: true}
	stranger = entity.Principal{ID: 4, Role: entity.RoleCustomer, Approved: true}
	other    = entity.Principal{ID: 5, Role: entity.RoleFieldWorker, Approved: true}
)
