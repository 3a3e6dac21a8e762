package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
	"github.com/maslovdev/jobmarket-backend/internal/repository"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
)

type mockJobStore struct {
	mock.Mock
}

func (m *mockJobStore) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	if args.Error(0) == nil {
		job.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockJobStore) Update(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobStore) Delete(ctx context.Context, id uuid.UUID, allowedStatuses []string) error {
	args := m.Called(ctx, id, allowedStatuses)
	return args.Error(0)
}

func (m *mockJobStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, customerID, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockJobStore) ListOpenForWorker(ctx context.Context, workerID uuid.UUID, category, location string, limit, offset int) ([]models.Job, error) {
	args := m.Called(ctx, workerID, category, location, limit, offset)
	return args.Get(0).([]models.Job), args.Error(1)
}

type mockAssignmentStoreForJob struct {
	mock.Mock
}

func (m *mockAssignmentStoreForJob) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Assignment, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *mockAssignmentStoreForJob) CancelJob(ctx context.Context, jobID uuid.UUID, reason string, now time.Time) error {
	args := m.Called(ctx, jobID, reason, now)
	return args.Error(0)
}

func (m *mockAssignmentStoreForJob) StartJob(ctx context.Context, jobID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, jobID, now)
	return args.Error(0)
}

func (m *mockAssignmentStoreForJob) CompleteJob(ctx context.Context, jobID uuid.UUID, now time.Time) (*models.Assignment, error) {
	args := m.Called(ctx, jobID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

type mockSettler struct {
	mock.Mock
}

func (m *mockSettler) SettleAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func newJobService(jobs *mockJobStore, assignments *mockAssignmentStoreForJob, settler *mockSettler) *JobService {
	svc := NewJobService(jobs, assignments, settler, 0)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestJobService_CreateJob_Success(t *testing.T) {
	jobs := new(mockJobStore)
	assignments := new(mockAssignmentStoreForJob)
	settler := new(mockSettler)
	svc := newJobService(jobs, assignments, settler)
	ctx := context.Background()

	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	jobs.On("Create", ctx, mock.AnythingOfType("*models.Job")).Return(nil)

	job, err := svc.CreateJob(ctx, customer, CreateJobInput{
		Title:       "Уборка квартиры",
		Category:    "cleaning",
		Description: "Генеральная уборка двухкомнатной квартиры",
		FixedAmount: decPtr("3000"),
	})

	assert.NoError(t, err)
	assert.NotNil(t, job)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Equal(t, customer.ID, job.CustomerID)
	assert.Equal(t, models.UrgencyMedium, job.Urgency)
}

func TestJobService_CreateJob_WorkerForbidden(t *testing.T) {
	svc := newJobService(new(mockJobStore), new(mockAssignmentStoreForJob), new(mockSettler))

	_, err := svc.CreateJob(context.Background(), models.Actor{ID: uuid.New(), Role: models.RoleWorker}, CreateJobInput{
		Title:       "Уборка квартиры",
		Category:    "cleaning",
		Description: "Генеральная уборка двухкомнатной квартиры",
		FixedAmount: decPtr("3000"),
	})

	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

func TestJobService_CreateJob_BudgetMinNotBelowMax(t *testing.T) {
	svc := newJobService(new(mockJobStore), new(mockAssignmentStoreForJob), new(mockSettler))
	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}

	_, err := svc.CreateJob(context.Background(), customer, CreateJobInput{
		Title:       "Ремонт смесителя",
		Category:    "plumbing",
		Description: "Заменить смеситель на кухне, материал есть",
		BudgetMin:   decPtr("5000"),
		BudgetMax:   decPtr("5000"),
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestJobService_CreateJob_ExactlyOnePricingMode(t *testing.T) {
	svc := newJobService(new(mockJobStore), new(mockAssignmentStoreForJob), new(mockSettler))
	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}

	// Оба режима сразу.
	_, err := svc.CreateJob(context.Background(), customer, CreateJobInput{
		Title:       "Ремонт смесителя",
		Category:    "plumbing",
		Description: "Заменить смеситель на кухне, материал есть",
		FixedAmount: decPtr("3000"),
		BudgetMin:   decPtr("1000"),
		BudgetMax:   decPtr("5000"),
	})
	assert.True(t, apperror.IsValidation(err))

	// Ни одного.
	_, err = svc.CreateJob(context.Background(), customer, CreateJobInput{
		Title:       "Ремонт смесителя",
		Category:    "plumbing",
		Description: "Заменить смеситель на кухне, материал есть",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestJobService_CreateJob_LoneBudgetBoundRejected(t *testing.T) {
	jobs := new(mockJobStore)
	svc := newJobService(jobs, new(mockAssignmentStoreForJob), new(mockSettler))
	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}

	// Фиксированная цена вместе с одинокой нижней границей: до базы с её
	// CHECK-ограничением такая комбинация дойти не должна.
	_, err := svc.CreateJob(context.Background(), customer, CreateJobInput{
		Title:       "Ремонт смесителя",
		Category:    "plumbing",
		Description: "Заменить смеситель на кухне, материал есть",
		FixedAmount: decPtr("1000"),
		BudgetMin:   decPtr("500"),
	})
	assert.True(t, apperror.IsValidation(err))
	jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// Одинокая верхняя граница без фиксированной цены.
	_, err = svc.CreateJob(context.Background(), customer, CreateJobInput{
		Title:       "Ремонт смесителя",
		Category:    "plumbing",
		Description: "Заменить смеситель на кухне, материал есть",
		BudgetMax:   decPtr("5000"),
	})
	assert.True(t, apperror.IsValidation(err))
	jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestJobService_CreateJob_UnknownCategory(t *testing.T) {
	svc := newJobService(new(mockJobStore), new(mockAssignmentStoreForJob), new(mockSettler))
	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}

	_, err := svc.CreateJob(context.Background(), customer, CreateJobInput{
		Title:       "Нестандартная задача",
		Category:    "rocket_science",
		Description: "Что-то совсем необычное, вне каталога",
		FixedAmount: decPtr("3000"),
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestJobService_UpdateJob_CompletedRejected(t *testing.T) {
	jobs := new(mockJobStore)
	svc := newJobService(jobs, new(mockAssignmentStoreForJob), new(mockSettler))
	ctx := context.Background()

	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: customer.ID,
		Status:     models.JobStatusCompleted,
	}, nil)

	_, err := svc.UpdateJob(ctx, customer, jobID, CreateJobInput{
		Title:       "Уборка квартиры",
		Category:    "cleaning",
		Description: "Генеральная уборка двухкомнатной квартиры",
		FixedAmount: decPtr("3000"),
	})

	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestJobService_UpdateJob_ForeignJobForbidden(t *testing.T) {
	jobs := new(mockJobStore)
	svc := newJobService(jobs, new(mockAssignmentStoreForJob), new(mockSettler))
	ctx := context.Background()

	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: uuid.New(),
		Status:     models.JobStatusOpen,
	}, nil)

	_, err := svc.UpdateJob(ctx, models.Actor{ID: uuid.New(), Role: models.RoleCustomer}, jobID, CreateJobInput{
		Title:       "Уборка квартиры",
		Category:    "cleaning",
		Description: "Генеральная уборка двухкомнатной квартиры",
		FixedAmount: decPtr("3000"),
	})

	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

func TestJobService_DeleteJob_InProgressRejected(t *testing.T) {
	jobs := new(mockJobStore)
	svc := newJobService(jobs, new(mockAssignmentStoreForJob), new(mockSettler))
	ctx := context.Background()

	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: customer.ID,
		Status:     models.JobStatusInProgress,
	}, nil)
	// Условное удаление не находит строку в разрешённом статусе.
	jobs.On("Delete", ctx, jobID, mock.Anything).Return(common.ErrNoRowsAffected)

	err := svc.DeleteJob(ctx, customer, jobID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestJobService_TransitionJobStatus_CompleteTriggersSettlement(t *testing.T) {
	jobs := new(mockJobStore)
	assignments := new(mockAssignmentStoreForJob)
	settler := new(mockSettler)
	svc := newJobService(jobs, assignments, settler)
	ctx := context.Background()

	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	jobID := uuid.New()
	assignmentID := uuid.New()
	workerID := uuid.New()

	job := &models.Job{ID: jobID, CustomerID: customer.ID, Status: models.JobStatusInProgress}
	assignment := &models.Assignment{ID: assignmentID, JobID: jobID, WorkerID: workerID, Status: models.AssignmentStatusStarted}
	completed := &models.Assignment{ID: assignmentID, JobID: jobID, WorkerID: workerID, Status: models.AssignmentStatusCompleted}
	completedJob := &models.Job{ID: jobID, CustomerID: customer.ID, Status: models.JobStatusCompleted}

	jobs.On("GetByID", ctx, jobID).Return(job, nil).Once()
	assignments.On("GetByJobID", ctx, jobID).Return(assignment, nil)
	assignments.On("CompleteJob", ctx, jobID, svc.now()).Return(completed, nil)
	settler.On("SettleAssignment", ctx, assignmentID).Return(&models.Transaction{ID: uuid.New()}, nil)
	jobs.On("GetByID", ctx, jobID).Return(completedJob, nil)

	result, err := svc.TransitionJobStatus(ctx, customer, jobID, models.JobStatusCompleted, "")

	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, result.Status)
	settler.AssertCalled(t, "SettleAssignment", ctx, assignmentID)
}

func TestJobService_TransitionJobStatus_WorkerCannotCancel(t *testing.T) {
	jobs := new(mockJobStore)
	assignments := new(mockAssignmentStoreForJob)
	svc := newJobService(jobs, assignments, new(mockSettler))
	ctx := context.Background()

	worker := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: uuid.New(),
		Status:     models.JobStatusInProgress,
	}, nil)
	assignments.On("GetByJobID", ctx, jobID).Return(&models.Assignment{
		JobID:    jobID,
		WorkerID: worker.ID,
		Status:   models.AssignmentStatusStarted,
	}, nil)

	_, err := svc.TransitionJobStatus(ctx, worker, jobID, models.JobStatusCancelled, "передумал")
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

func TestJobService_TransitionJobStatus_ConflictIsInvalidTransition(t *testing.T) {
	jobs := new(mockJobStore)
	assignments := new(mockAssignmentStoreForJob)
	svc := newJobService(jobs, assignments, new(mockSettler))
	ctx := context.Background()

	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:         jobID,
		CustomerID: customer.ID,
		Status:     models.JobStatusAccepted,
	}, nil)
	assignments.On("GetByJobID", ctx, jobID).Return(&models.Assignment{
		JobID:  jobID,
		Status: models.AssignmentStatusAssigned,
	}, nil)
	// Параллельный запрос уже увёл заказ из ожидаемого статуса.
	assignments.On("StartJob", ctx, jobID, svc.now()).Return(repository.ErrJobStateConflict)

	_, err := svc.TransitionJobStatus(ctx, customer, jobID, models.JobStatusInProgress, "")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestJobService_TransitionJobStatus_UnknownTargetRejected(t *testing.T) {
	svc := newJobService(new(mockJobStore), new(mockAssignmentStoreForJob), new(mockSettler))

	_, err := svc.TransitionJobStatus(context.Background(), models.Actor{ID: uuid.New(), Role: models.RoleCustomer}, uuid.New(), "paused", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}
