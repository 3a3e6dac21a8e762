package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
	"github.com/maslovdev/jobmarket-backend/internal/repository"
)

type mockAssignmentStore struct {
	mock.Mock
}

func (m *mockAssignmentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *mockAssignmentStore) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Assignment, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *mockAssignmentStore) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	args := m.Called(ctx, workerID, limit, offset)
	return args.Get(0).([]models.Assignment), args.Error(1)
}

func (m *mockAssignmentStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	args := m.Called(ctx, customerID, limit, offset)
	return args.Get(0).([]models.Assignment), args.Error(1)
}

func (m *mockAssignmentStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func TestAssignmentService_GetAssignment_OutsiderForbidden(t *testing.T) {
	assignments := new(mockAssignmentStore)
	jobs := new(mockJobReader)
	svc := NewAssignmentService(assignments, jobs, 0)
	ctx := context.Background()

	jobID := uuid.New()
	assignmentID := uuid.New()
	assignments.On("GetByID", ctx, assignmentID).Return(&models.Assignment{
		ID:           assignmentID,
		JobID:        jobID,
		WorkerID:     uuid.New(),
		AgreedAmount: decimal.RequireFromString("1000"),
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: uuid.New()}, nil)

	_, err := svc.GetAssignment(ctx, models.Actor{ID: uuid.New(), Role: models.RoleWorker}, assignmentID)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

func TestAssignmentService_GetJobAssignment_NoneYet(t *testing.T) {
	assignments := new(mockAssignmentStore)
	jobs := new(mockJobReader)
	svc := NewAssignmentService(assignments, jobs, 0)
	ctx := context.Background()

	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: customer.ID, Status: models.JobStatusOpen}, nil)
	assignments.On("GetByJobID", ctx, jobID).Return(nil, nil)

	_, err := svc.GetJobAssignment(ctx, customer, jobID)
	assert.ErrorIs(t, err, apperror.ErrAssignmentNotFound)
}

func TestAssignmentService_ListMyAssignments_RoutedByRole(t *testing.T) {
	assignments := new(mockAssignmentStore)
	svc := NewAssignmentService(assignments, new(mockJobReader), 0)
	ctx := context.Background()

	worker := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	assignments.On("ListByWorker", ctx, worker.ID, 20, 0).Return([]models.Assignment{{ID: uuid.New()}}, nil)
	assignments.On("ListByCustomer", ctx, customer.ID, 20, 0).Return([]models.Assignment{}, nil)

	list, err := svc.ListMyAssignments(ctx, worker, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListMyAssignments(ctx, customer, 0, 0)
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestAssignmentService_UpdateNotes_Success(t *testing.T) {
	assignments := new(mockAssignmentStore)
	jobs := new(mockJobReader)
	svc := NewAssignmentService(assignments, jobs, 0)
	ctx := context.Background()

	worker := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	jobID := uuid.New()
	assignmentID := uuid.New()
	assignments.On("GetByID", ctx, assignmentID).Return(&models.Assignment{
		ID:           assignmentID,
		JobID:        jobID,
		WorkerID:     worker.ID,
		AgreedAmount: decimal.RequireFromString("1000"),
		Status:       models.AssignmentStatusStarted,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, CustomerID: uuid.New()}, nil)
	assignments.On("UpdateNotes", ctx, assignmentID, "Ключи у консьержа").Return(nil)

	assignment, err := svc.UpdateNotes(ctx, worker, assignmentID, "Ключи у консьержа")

	assert.NoError(t, err)
	assert.Equal(t, "Ключи у консьержа", assignment.Notes)
}

func TestAssignmentService_UpdateNotes_TooLong(t *testing.T) {
	svc := NewAssignmentService(new(mockAssignmentStore), new(mockJobReader), 0)

	_, err := svc.UpdateNotes(context.Background(), models.Actor{ID: uuid.New(), Role: models.RoleWorker}, uuid.New(), strings.Repeat("а", 2001))
	assert.True(t, apperror.IsValidation(err))
}

func TestAssignmentService_GetAssignment_NotFound(t *testing.T) {
	assignments := new(mockAssignmentStore)
	svc := NewAssignmentService(assignments, new(mockJobReader), 0)
	ctx := context.Background()

	assignmentID := uuid.New()
	assignments.On("GetByID", ctx, assignmentID).Return(nil, repository.ErrAssignmentNotFound)

	_, err := svc.GetAssignment(ctx, models.Actor{ID: uuid.New(), Role: models.RoleWorker}, assignmentID)
	assert.ErrorIs(t, err, apperror.ErrAssignmentNotFound)
}
