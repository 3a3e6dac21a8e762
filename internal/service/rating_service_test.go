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

type mockRatingStore struct {
	mock.Mock
}

func (m *mockRatingStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *mockRatingStore) GetByTriple(ctx context.Context, assignmentID, raterID, rateeID uuid.UUID) (*models.Rating, error) {
	args := m.Called(ctx, assignmentID, raterID, rateeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *mockRatingStore) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Rating, error) {
	args := m.Called(ctx, assignmentID)
	return args.Get(0).([]models.Rating), args.Error(1)
}

func (m *mockRatingStore) ListByRatee(ctx context.Context, rateeID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	args := m.Called(ctx, rateeID, limit, offset)
	return args.Get(0).([]models.Rating), args.Error(1)
}

func (m *mockRatingStore) CreateWithAggregate(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	if args.Error(0) == nil {
		rating.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRatingStore) UpdateWithAggregate(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockRatingStore) Summary(ctx context.Context, rateeID uuid.UUID) (*models.RatingSummary, error) {
	args := m.Called(ctx, rateeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingSummary), args.Error(1)
}

func (m *mockRatingStore) InsertHelpful(ctx context.Context, ratingID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, ratingID, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockRatingStore) DeleteHelpful(ctx context.Context, ratingID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, ratingID, userID)
	return args.Int(0), args.Error(1)
}

// ratingFixture — завершённое назначение с заказом и обоими участниками.
type ratingFixture struct {
	customer   models.Actor
	worker     models.Actor
	job        *models.Job
	assignment *models.Assignment
}

func newRatingFixture() ratingFixture {
	customer := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	worker := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	jobID := uuid.New()
	return ratingFixture{
		customer: customer,
		worker:   worker,
		job: &models.Job{
			ID:         jobID,
			CustomerID: customer.ID,
			Status:     models.JobStatusCompleted,
		},
		assignment: &models.Assignment{
			ID:           uuid.New(),
			JobID:        jobID,
			WorkerID:     worker.ID,
			AgreedAmount: decimal.RequireFromString("1000"),
			Status:       models.AssignmentStatusCompleted,
		},
	}
}

func newRatingService(ratings *mockRatingStore, assignments *mockAssignmentReader, jobs *mockJobReader) *RatingService {
	svc := NewRatingService(ratings, assignments, jobs, 24*time.Hour, 0)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRatingService_SubmitRating_CustomerRatesWorker(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.customer.ID, fx.worker.ID).Return(nil, nil)
	ratings.On("CreateWithAggregate", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	rating, err := svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		Score:        decPtr("5"),
		Review:       "Отличная работа, всё в срок",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RatingTypeCustomerToWorker, rating.RatingType)
	assert.Equal(t, fx.worker.ID, rating.RateeID)
	assert.True(t, rating.IsVerified)
	assert.True(t, rating.Score.Equal(decimal.RequireFromString("5")))
}

func TestRatingService_SubmitRating_WorkerRatesCustomer(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.worker.ID, fx.customer.ID).Return(nil, nil)
	ratings.On("CreateWithAggregate", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	rating, err := svc.SubmitRating(ctx, fx.worker, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		Score:        decPtr("4"),
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RatingTypeWorkerToCustomer, rating.RatingType)
	assert.Equal(t, fx.customer.ID, rating.RateeID)
}

func TestRatingService_SubmitRating_NotCompleted(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()
	fx.assignment.Status = models.AssignmentStatusStarted

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)

	_, err := svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		Score:        decPtr("5"),
	})

	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestRatingService_SubmitRating_OutsiderRejected(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)

	outsider := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	_, err := svc.SubmitRating(ctx, outsider, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		Score:        decPtr("5"),
	})

	assert.ErrorIs(t, err, apperror.ErrNotParticipant)
}

func TestRatingService_SubmitRating_ExplicitTypeMismatch(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)

	// Заказчик оценивает исполнителя, но заявляет обратный тип.
	_, err := svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		RatingType:   models.RatingTypeWorkerToCustomer,
		Score:        decPtr("5"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidRatingRelationship)

	// Или указывает оцениваемым самого себя.
	_, err = svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		RateeID:      &fx.customer.ID,
		Score:        decPtr("5"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidRatingRelationship)
}

func TestRatingService_SubmitRating_Duplicate(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.customer.ID, fx.worker.ID).Return(&models.Rating{ID: uuid.New()}, nil)

	_, err := svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		Score:        decPtr("5"),
	})

	assert.ErrorIs(t, err, apperror.ErrDuplicateRating)
}

func TestRatingService_SubmitRating_DuplicateRace(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.customer.ID, fx.worker.ID).Return(nil, nil)
	ratings.On("CreateWithAggregate", ctx, mock.Anything).Return(repository.ErrRatingExists)

	_, err := svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		Score:        decPtr("5"),
	})

	assert.ErrorIs(t, err, apperror.ErrDuplicateRating)
}

func TestRatingService_SubmitRating_ScoreFromComponents(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.customer.ID, fx.worker.ID).Return(nil, nil)
	ratings.On("CreateWithAggregate", ctx, mock.Anything).Return(nil)

	// Среднее по заполненным критериям: (4 + 5) / 2 = 4.50.
	rating, err := svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID:       fx.assignment.ID,
		QualityScore:       decPtr("4"),
		CommunicationScore: decPtr("5"),
	})

	assert.NoError(t, err)
	assert.True(t, rating.Score.Equal(decimal.RequireFromString("4.50")))
}

func TestRatingService_SubmitRating_MissingScore(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.customer.ID, fx.worker.ID).Return(nil, nil)

	_, err := svc.SubmitRating(ctx, fx.customer, SubmitRatingInput{
		AssignmentID: fx.assignment.ID,
		Review:       "Без цифр",
	})

	assert.ErrorIs(t, err, apperror.ErrMissingScore)
}

func TestRatingService_ResolveScore_MeanRounding(t *testing.T) {
	rating := &models.Rating{
		QualityScore:       decPtr("4"),
		CommunicationScore: decPtr("4"),
		PunctualityScore:   decPtr("5"),
	}

	// (4 + 4 + 5) / 3 = 4.333... → 4.33.
	err := resolveScore(rating, nil)
	assert.NoError(t, err)
	assert.True(t, rating.Score.Equal(decimal.RequireFromString("4.33")))
}

func TestRatingService_UpdateRating_WithinWindow(t *testing.T) {
	ratings := new(mockRatingStore)
	svc := newRatingService(ratings, new(mockAssignmentReader), new(mockJobReader))
	ctx := context.Background()

	rater := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	ratingID := uuid.New()
	// Оценка создана 23 часа назад — окно в 24 часа ещё открыто.
	created := svc.now().Add(-23 * time.Hour)
	ratings.On("GetByID", ctx, ratingID).Return(&models.Rating{
		ID:        ratingID,
		RaterID:   rater.ID,
		Score:     decimal.RequireFromString("4"),
		CreatedAt: created,
	}, nil)
	ratings.On("UpdateWithAggregate", ctx, mock.AnythingOfType("*models.Rating")).Return(nil)

	rating, err := svc.UpdateRating(ctx, rater, ratingID, SubmitRatingInput{
		Score:  decPtr("3"),
		Review: "Пересмотрел оценку после гарантийного визита",
	})

	assert.NoError(t, err)
	assert.True(t, rating.Score.Equal(decimal.RequireFromString("3")))
}

func TestRatingService_UpdateRating_WindowExpired(t *testing.T) {
	ratings := new(mockRatingStore)
	svc := newRatingService(ratings, new(mockAssignmentReader), new(mockJobReader))
	ctx := context.Background()

	rater := models.Actor{ID: uuid.New(), Role: models.RoleCustomer}
	ratingID := uuid.New()
	created := svc.now().Add(-25 * time.Hour)
	ratings.On("GetByID", ctx, ratingID).Return(&models.Rating{
		ID:        ratingID,
		RaterID:   rater.ID,
		Score:     decimal.RequireFromString("4"),
		CreatedAt: created,
	}, nil)

	_, err := svc.UpdateRating(ctx, rater, ratingID, SubmitRatingInput{Score: decPtr("3")})

	assert.ErrorIs(t, err, apperror.ErrEditWindowExpired)
	ratings.AssertNotCalled(t, "UpdateWithAggregate", mock.Anything, mock.Anything)
}

func TestRatingService_UpdateRating_ForeignRatingForbidden(t *testing.T) {
	ratings := new(mockRatingStore)
	svc := newRatingService(ratings, new(mockAssignmentReader), new(mockJobReader))
	ctx := context.Background()

	ratingID := uuid.New()
	ratings.On("GetByID", ctx, ratingID).Return(&models.Rating{
		ID:        ratingID,
		RaterID:   uuid.New(),
		Score:     decimal.RequireFromString("4"),
		CreatedAt: svc.now(),
	}, nil)

	_, err := svc.UpdateRating(ctx, models.Actor{ID: uuid.New(), Role: models.RoleCustomer}, ratingID, SubmitRatingInput{Score: decPtr("3")})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

func TestRatingService_MarkHelpful_ReturnsCount(t *testing.T) {
	ratings := new(mockRatingStore)
	svc := newRatingService(ratings, new(mockAssignmentReader), new(mockJobReader))
	ctx := context.Background()

	actor := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	ratingID := uuid.New()
	ratings.On("InsertHelpful", ctx, ratingID, actor.ID).Return(3, nil)

	count, err := svc.MarkHelpful(ctx, actor, ratingID)

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRatingService_MarkHelpful_Duplicate(t *testing.T) {
	ratings := new(mockRatingStore)
	svc := newRatingService(ratings, new(mockAssignmentReader), new(mockJobReader))
	ctx := context.Background()

	actor := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	ratingID := uuid.New()
	ratings.On("InsertHelpful", ctx, ratingID, actor.ID).Return(0, repository.ErrVoteExists)

	_, err := svc.MarkHelpful(ctx, actor, ratingID)
	assert.ErrorIs(t, err, apperror.ErrDuplicateVote)
}

func TestRatingService_RemoveHelpful_NoVote(t *testing.T) {
	ratings := new(mockRatingStore)
	svc := newRatingService(ratings, new(mockAssignmentReader), new(mockJobReader))
	ctx := context.Background()

	actor := models.Actor{ID: uuid.New(), Role: models.RoleWorker}
	ratingID := uuid.New()
	ratings.On("DeleteHelpful", ctx, ratingID, actor.ID).Return(0, common.ErrNotFound)

	_, err := svc.RemoveHelpful(ctx, actor, ratingID)
	assert.ErrorIs(t, err, apperror.ErrVoteNotFound)
}

func TestRatingService_CanRate(t *testing.T) {
	ratings := new(mockRatingStore)
	assignments := new(mockAssignmentReader)
	jobs := new(mockJobReader)
	svc := newRatingService(ratings, assignments, jobs)
	ctx := context.Background()
	fx := newRatingFixture()

	assignments.On("GetByID", ctx, fx.assignment.ID).Return(fx.assignment, nil)
	jobs.On("GetByID", ctx, fx.job.ID).Return(fx.job, nil)
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.customer.ID, fx.worker.ID).Return(nil, nil)
	// Исполнитель свою оценку уже оставил.
	ratings.On("GetByTriple", ctx, fx.assignment.ID, fx.worker.ID, fx.customer.ID).Return(&models.Rating{ID: uuid.New()}, nil)

	can, err := svc.CanRate(ctx, fx.customer, fx.assignment.ID)
	assert.NoError(t, err)
	assert.True(t, can)

	can, err = svc.CanRate(ctx, fx.worker, fx.assignment.ID)
	assert.NoError(t, err)
	assert.False(t, can)

	can, err = svc.CanRate(ctx, models.Actor{ID: uuid.New(), Role: models.RoleWorker}, fx.assignment.ID)
	assert.NoError(t, err)
	assert.False(t, can)
}
