package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/field-service/internal/domain/apperror"
	"github.com/garyjia/field-service/internal/domain/entity"
	"github.com/garyjia/field-service/internal/domain/event"
)

type requestFixture struct {
	svc       RequestService
	requests  *mockRequestRepo
	tasks     *mockTaskRepo
	storage   *mockStorage
	publisher *mockPublisher
}

func newRequestFixture(reqs ...*entity.ServiceRequest) requestFixture {
	f := requestFixture{
		requests:  newMockRequestRepo(reqs...),
		tasks:     newMockTaskRepo(),
		storage:   newMockStorage(),
		publisher: &mockPublisher{},
	}
	f.svc = NewRequestService(f.requests, f.tasks, f.storage, &mockTxManager{}, f.publisher, &mockLogger{})
	return f
}

func completedRequest() *entity.ServiceRequest {
	req := openRequest()
	req.Status = entity.RequestStatusCompleted
	req.AssignedFieldWorker = int64Ptr(worker.ID)
	return req
}

func TestRequestService_Create(t *testing.T) {
	f := newRequestFixture()

	req, err := f.svc.Create(context.Background(), customer, CreateRequestInput{
		Description: "No hot\x00 water\nsince Monday",
		Location:    " 9 Oak Ave\x1b ",
	})
	require.NoError(t, err)

	assert.Equal(t, customer.ID, req.CustomerID)
	assert.Equal(t, "No hot water\nsince Monday", req.Description)
	assert.Equal(t, "9 Oak Ave", req.Location)
	assert.Equal(t, entity.UrgencyMedium, req.Urgency)
	assert.Equal(t, entity.RequestStatusOpen, req.Status)
	assert.Nil(t, req.AssignedFieldWorker)
	assert.Nil(t, req.Rating)
	assert.Equal(t, []event.Type{event.TypeRequestCreated}, f.publisher.types())
}

func TestRequestService_CreateRejections(t *testing.T) {
	tests := []struct {
		name      string
		principal entity.Principal
		input     CreateRequestInput
		wantErr   error
		wantMsg   string
	}{
		{"admin", admin, CreateRequestInput{Description: "d", Location: "l"}, apperror.ErrPermissionDenied, "Only customers can create service requests."},
		{"worker", worker, CreateRequestInput{Description: "d", Location: "l"}, apperror.ErrPermissionDenied, "Only customers can create service requests."},
		{"no location", customer, CreateRequestInput{Description: "d"}, apperror.ErrValidation, "Location is required."},
		{"no description", customer, CreateRequestInput{Location: "l"}, apperror.ErrValidation, "Description is required."},
		{"control characters only", customer, CreateRequestInput{Description: "\x00\x07", Location: "l"}, apperror.ErrValidation, "Description is required."},
		{"bad urgency", customer, CreateRequestInput{Description: "d", Location: "l", Urgency: "urgent"}, apperror.ErrValidation, `"urgent" is not a valid urgency.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRequestFixture()

			_, err := f.svc.Create(context.Background(), tt.principal, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, apperror.MessageOf(err))
			assert.Empty(t, f.requests.rows)
		})
	}
}

func TestRequestService_Visibility(t *testing.T) {
	f := newRequestFixture(openRequest())
	ctx := context.Background()

	for _, p := range []entity.Principal{admin, customer, worker} {
		_, err := f.svc.Get(ctx, p, 10)
		assert.NoError(t, err, p.Role)
	}

	_, err := f.svc.Get(ctx, stranger, 10)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := f.svc.List(ctx, stranger, RequestListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.svc.List(ctx, customer, RequestListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.List(ctx, customer, RequestListFilter{Status: strPtr("closed")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRequestService_Update(t *testing.T) {
	assigned := openRequest()
	assigned.AssignedFieldWorker = int64Ptr(worker.ID)
	assigned.Status = entity.RequestStatusInProgress

	tests := []struct {
		name      string
		req       *entity.ServiceRequest
		principal entity.Principal
		wantErr   error
		wantMsg   string
	}{
		{"owner while open", openRequest(), customer, nil, ""},
		{"admin after assignment", assigned, admin, nil, ""},
		{"owner after assignment", assigned, customer, apperror.ErrValidation, "Service request can no longer be edited after assignment."},
		{"worker", openRequest(), worker, apperror.ErrPermissionDenied, "You do not have permission to modify this service request."},
		{"stranger", openRequest(), stranger, apperror.ErrNotFound, "Service request not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRequestFixture(tt.req)

			got, err := f.svc.Update(context.Background(), tt.principal, 10, UpdateRequestInput{
				Location: strPtr("7 Pine Rd"),
				Urgency:  strPtr("low"),
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, apperror.MessageOf(err))
				assert.Equal(t, "5 Elm St", f.requests.get(10).Location)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "7 Pine Rd", got.Location)
			assert.Equal(t, entity.UrgencyLow, got.Urgency)
			assert.Equal(t, "Broken boiler", got.Description)
			assert.Equal(t, tt.req.Status, got.Status)
		})
	}
}

func TestRequestService_DeleteRemovesProofFiles(t *testing.T) {
	f := newRequestFixture(openRequest())
	f.tasks.rows[1] = &entity.Task{ID: 1, ServiceRequestID: 10, ProofUpload: "task_proofs/1/a.jpg"}
	f.tasks.rows[2] = &entity.Task{ID: 2, ServiceRequestID: 10}
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, worker, 10), apperror.ErrPermissionDenied)
	assert.ErrorIs(t, f.svc.Delete(ctx, stranger, 10), apperror.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, customer, 10))
	assert.Empty(t, f.requests.rows)
	assert.Equal(t, []string{"task_proofs/1/a.jpg"}, f.storage.deleted)
}

func TestRequestService_Rate(t *testing.T) {
	f := newRequestFixture(completedRequest())

	req, err := f.svc.Rate(context.Background(), customer, 10, 5)
	require.NoError(t, err)

	require.NotNil(t, req.Rating)
	assert.Equal(t, 5, *req.Rating)
	assert.Equal(t, 5, *f.requests.get(10).Rating)
	assert.Equal(t, []event.Type{event.TypeRequestRated}, f.publisher.types())
}

func TestRequestService_RateRejections(t *testing.T) {
	tests := []struct {
		name      string
		req       *entity.ServiceRequest
		principal entity.Principal
		rating    int
		wantErr   error
		wantMsg   string
	}{
		{"foreign customer", completedRequest(), stranger, 5, apperror.ErrNotFound, "Service request not found."},
		{"admin", completedRequest(), admin, 5, apperror.ErrPermissionDenied, "Only the owning customer can rate a service request."},
		{"worker", completedRequest(), worker, 5, apperror.ErrPermissionDenied, "Only the owning customer can rate a service request."},
		{"too high", completedRequest(), customer, 6, apperror.ErrValidation, "Rating must be between 1 and 5."},
		{"too low", completedRequest(), customer, 0, apperror.ErrValidation, "Rating must be between 1 and 5."},
		{"not completed", openRequest(), customer, 4, apperror.ErrValidation, "Rating allowed only when status is completed."},
		{"range before status", openRequest(), customer, 9, apperror.ErrValidation, "Rating must be between 1 and 5."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRequestFixture(tt.req)

			_, err := f.svc.Rate(context.Background(), tt.principal, 10, tt.rating)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, apperror.MessageOf(err))
			assert.Nil(t, f.requests.get(10).Rating)
			assert.Empty(t, f.publisher.events)
		})
	}
}
