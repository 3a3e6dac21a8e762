package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maslovdev/jobmarket-backend/internal/logger"
	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
	"github.com/maslovdev/jobmarket-backend/internal/policy"
	"github.com/maslovdev/jobmarket-backend/internal/repository"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
	"github.com/maslovdev/jobmarket-backend/internal/validation"
)

// RatingStore описывает взаимодействие сервиса с хранилищем оценок.
type RatingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error)
	GetByTriple(ctx context.Context, assignmentID, raterID, rateeID uuid.UUID) (*models.Rating, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Rating, error)
	ListByRatee(ctx context.Context, rateeID uuid.UUID, limit, offset int) ([]models.Rating, error)
	CreateWithAggregate(ctx context.Context, rating *models.Rating) error
	UpdateWithAggregate(ctx context.Context, rating *models.Rating) error
	Summary(ctx context.Context, rateeID uuid.UUID) (*models.RatingSummary, error)
	InsertHelpful(ctx context.Context, ratingID, userID uuid.UUID) (int, error)
	DeleteHelpful(ctx context.Context, ratingID, userID uuid.UUID) (int, error)
}

// AssignmentStoreForRating — чтение назначения при оценке.
type AssignmentStoreForRating interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
}

// JobStoreForRating — чтение заказа для определения заказчика.
type JobStoreForRating interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

type RatingService struct {
	ratings     RatingStore
	assignments AssignmentStoreForRating
	jobs        JobStoreForRating
	editWindow  time.Duration
	timeout     time.Duration
	now         func() time.Time
}

func NewRatingService(ratings RatingStore, assignments AssignmentStoreForRating, jobs JobStoreForRating, editWindow, timeout time.Duration) *RatingService {
	return &RatingService{
		ratings:     ratings,
		assignments: assignments,
		jobs:        jobs,
		editWindow:  editWindow,
		timeout:     timeout,
		now:         time.Now,
	}
}

// SubmitRatingInput описывает входные данные оценки. Оцениваемый и тип
// необязательны: отсутствующие выводятся из назначения, присланные сверяются
// с его участниками.
type SubmitRatingInput struct {
	AssignmentID         uuid.UUID
	RateeID              *uuid.UUID
	RatingType           string
	Score                *decimal.Decimal
	Review               string
	QualityScore         *decimal.Decimal
	CommunicationScore   *decimal.Decimal
	PunctualityScore     *decimal.Decimal
	ProfessionalismScore *decimal.Decimal
	IsAnonymous          bool
}

// SubmitRating создаёт оценку по завершённому назначению. Оценивающий —
// участник назначения, оцениваемый — вторая сторона. Вставка и пересчёт
// среднего у оцениваемого идут одной транзакцией хранилища.
func (s *RatingService) SubmitRating(ctx context.Context, actor models.Actor, in SubmitRatingInput) (*models.Rating, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	assignment, job, err := s.loadAssignmentWithJob(ctx, in.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != models.AssignmentStatusCompleted {
		return nil, apperror.ErrInvalidState
	}
	if !policy.IsAssignmentParticipant(actor, job, assignment) {
		return nil, apperror.ErrNotParticipant
	}

	rateeID, ratingType := counterparty(actor.ID, job, assignment)
	if in.RateeID != nil && *in.RateeID != rateeID {
		return nil, apperror.ErrInvalidRatingRelationship
	}
	if in.RatingType != "" && in.RatingType != ratingType {
		return nil, apperror.ErrInvalidRatingRelationship
	}

	existing, err := s.ratings.GetByTriple(ctx, assignment.ID, actor.ID, rateeID)
	if err != nil {
		return nil, storeError(err, "не удалось проверить существующую оценку")
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateRating
	}

	rating := &models.Rating{
		AssignmentID:         assignment.ID,
		RaterID:              actor.ID,
		RateeID:              rateeID,
		RatingType:           ratingType,
		Review:               in.Review,
		QualityScore:         in.QualityScore,
		CommunicationScore:   in.CommunicationScore,
		PunctualityScore:     in.PunctualityScore,
		ProfessionalismScore: in.ProfessionalismScore,
		IsAnonymous:          in.IsAnonymous,
		// Оценка привязана к завершённому назначению, сделка подтверждена.
		IsVerified: true,
	}
	if err := resolveScore(rating, in.Score); err != nil {
		return nil, err
	}
	if err := validateRatingPayload(rating); err != nil {
		return nil, err
	}

	if err := s.ratings.CreateWithAggregate(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrRatingExists) {
			return nil, apperror.ErrDuplicateRating
		}
		return nil, storeError(err, "не удалось создать оценку")
	}

	logger.Log.WithField("rating_id", rating.ID).
		WithField("assignment_id", assignment.ID).
		WithField("score", rating.Score.String()).
		Info("оценка создана")
	return rating, nil
}

// UpdateRating правит оценку в пределах окна редактирования. После истечения
// окна — EditWindowExpired.
func (s *RatingService) UpdateRating(ctx context.Context, actor models.Actor, ratingID uuid.UUID, in SubmitRatingInput) (*models.Rating, error) {
	rating, err := s.GetRating(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if rating.RaterID != actor.ID {
		return nil, apperror.ErrPermissionDenied
	}
	if s.now().Sub(rating.CreatedAt) > s.editWindow {
		return nil, apperror.ErrEditWindowExpired
	}

	rating.Review = in.Review
	rating.QualityScore = in.QualityScore
	rating.CommunicationScore = in.CommunicationScore
	rating.PunctualityScore = in.PunctualityScore
	rating.ProfessionalismScore = in.ProfessionalismScore
	rating.IsAnonymous = in.IsAnonymous
	if err := resolveScore(rating, in.Score); err != nil {
		return nil, err
	}
	if err := validateRatingPayload(rating); err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.ratings.UpdateWithAggregate(ctx, rating); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, apperror.ErrRatingNotFound
		}
		return nil, storeError(err, "не удалось обновить оценку")
	}
	return rating, nil
}

// GetRating возвращает оценку по ID.
func (s *RatingService) GetRating(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	rating, err := s.ratings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, apperror.ErrRatingNotFound
		}
		return nil, storeError(err, "не удалось получить оценку")
	}
	return rating, nil
}

// MarkHelpful ставит отметку «полезно» на оценке. Повторная отметка того же
// пользователя — DuplicateVote. Возвращает актуальный счётчик.
func (s *RatingService) MarkHelpful(ctx context.Context, actor models.Actor, ratingID uuid.UUID) (int, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.ratings.InsertHelpful(ctx, ratingID, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVoteExists):
			return 0, apperror.ErrDuplicateVote
		case errors.Is(err, common.ErrNotFound):
			return 0, apperror.ErrRatingNotFound
		default:
			return 0, storeError(err, "не удалось отметить оценку полезной")
		}
	}
	return count, nil
}

// RemoveHelpful снимает отметку «полезно». Возвращает актуальный счётчик.
func (s *RatingService) RemoveHelpful(ctx context.Context, actor models.Actor, ratingID uuid.UUID) (int, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.ratings.DeleteHelpful(ctx, ratingID, actor.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, apperror.ErrVoteNotFound
		}
		return 0, storeError(err, "не удалось снять отметку")
	}
	return count, nil
}

// ListAssignmentRatings возвращает оценки назначения его участникам.
func (s *RatingService) ListAssignmentRatings(ctx context.Context, actor models.Actor, assignmentID uuid.UUID) ([]models.Rating, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	assignment, job, err := s.loadAssignmentWithJob(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAssignmentParticipant(actor, job, assignment) {
		return nil, apperror.ErrPermissionDenied
	}

	ratings, err := s.ratings.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, storeError(err, "не удалось получить оценки")
	}
	return ratings, nil
}

// ListUserRatings возвращает оценки пользователя (публичные данные).
func (s *RatingService) ListUserRatings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	limit = normalizeLimit(limit)
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	ratings, err := s.ratings.ListByRatee(ctx, userID, limit, offset)
	if err != nil {
		return nil, storeError(err, "не удалось получить оценки")
	}
	return ratings, nil
}

// UserRatingSummary возвращает сводку рейтинга пользователя: среднее,
// количество, гистограмму по звёздам и последние оценки.
func (s *RatingService) UserRatingSummary(ctx context.Context, userID uuid.UUID) (*models.RatingSummary, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.ratings.Summary(ctx, userID)
	if err != nil {
		return nil, storeError(err, "не удалось собрать сводку рейтинга")
	}
	return summary, nil
}

// CanRate сообщает, может ли участник оценить назначение.
func (s *RatingService) CanRate(ctx context.Context, actor models.Actor, assignmentID uuid.UUID) (bool, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	assignment, job, err := s.loadAssignmentWithJob(ctx, assignmentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if assignment.Status != models.AssignmentStatusCompleted {
		return false, nil
	}
	if !policy.IsAssignmentParticipant(actor, job, assignment) {
		return false, nil
	}

	rateeID, _ := counterparty(actor.ID, job, assignment)
	existing, err := s.ratings.GetByTriple(ctx, assignment.ID, actor.ID, rateeID)
	if err != nil {
		return false, storeError(err, "не удалось проверить существующую оценку")
	}
	return existing == nil, nil
}

func (s *RatingService) loadAssignmentWithJob(ctx context.Context, assignmentID uuid.UUID) (*models.Assignment, *models.Job, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, nil, apperror.ErrAssignmentNotFound
		}
		return nil, nil, storeError(err, "не удалось получить назначение")
	}
	job, err := s.jobs.GetByID(ctx, assignment.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, nil, apperror.ErrJobNotFound
		}
		return nil, nil, storeError(err, "не удалось получить заказ")
	}
	return assignment, job, nil
}

// counterparty возвращает вторую сторону назначения и тип оценки.
func counterparty(raterID uuid.UUID, job *models.Job, assignment *models.Assignment) (uuid.UUID, string) {
	if raterID == job.CustomerID {
		return assignment.WorkerID, models.RatingTypeCustomerToWorker
	}
	return job.CustomerID, models.RatingTypeWorkerToCustomer
}

// resolveScore выставляет общий балл: явный, а при его отсутствии — среднее
// заполненных критериев, округлённое до двух знаков и зажатое в [1, 5].
// Ни балла, ни критериев — ошибка.
func resolveScore(rating *models.Rating, explicit *decimal.Decimal) error {
	if explicit != nil {
		rating.Score = *explicit
		return nil
	}

	components := rating.ComponentScores()
	if len(components) == 0 {
		return apperror.ErrMissingScore
	}

	sum := decimal.Zero
	for _, c := range components {
		sum = sum.Add(c)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(components)))).Round(2)
	if mean.LessThan(validation.MinScore) {
		mean = validation.MinScore
	}
	if mean.GreaterThan(validation.MaxScore) {
		mean = validation.MaxScore
	}
	rating.Score = mean
	return nil
}

// validateRatingPayload проверяет балл, критерии и длину отзыва.
func validateRatingPayload(rating *models.Rating) error {
	if err := validation.ValidateScore("общая оценка", rating.Score); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	named := map[string]*decimal.Decimal{
		"качество":        rating.QualityScore,
		"коммуникация":    rating.CommunicationScore,
		"пунктуальность":  rating.PunctualityScore,
		"профессионализм": rating.ProfessionalismScore,
	}
	for name, score := range named {
		if score == nil {
			continue
		}
		if err := validation.ValidateScore(name, *score); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if err := validation.ValidateLength("отзыв", rating.Review, 0, validation.MaxReviewLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return nil
}
