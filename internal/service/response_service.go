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

// ResponseStore описывает взаимодействие сервиса с хранилищем откликов.
type ResponseStore interface {
	Create(ctx context.Context, response *models.JobResponse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobResponse, error)
	GetByJobAndWorker(ctx context.Context, jobID, workerID uuid.UUID) (*models.JobResponse, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.JobResponse, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobResponse, error)
	Update(ctx context.Context, response *models.JobResponse) error
	Withdraw(ctx context.Context, id uuid.UUID) error
}

// JobStoreForResponse — минимальный контракт для чтения заказа.
type JobStoreForResponse interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// AssignmentStoreForResponse — создание назначения при принятии отклика.
type AssignmentStoreForResponse interface {
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Assignment, error)
	AcceptResponse(ctx context.Context, jobID, responseID, workerID uuid.UUID, agreedAmount decimal.Decimal) (*models.Assignment, error)
}

type ResponseService struct {
	responses   ResponseStore
	jobs        JobStoreForResponse
	assignments AssignmentStoreForResponse
	timeout     time.Duration
}

func NewResponseService(responses ResponseStore, jobs JobStoreForResponse, assignments AssignmentStoreForResponse, timeout time.Duration) *ResponseService {
	return &ResponseService{
		responses:   responses,
		jobs:        jobs,
		assignments: assignments,
		timeout:     timeout,
	}
}

// CreateResponseInput описывает входные данные отклика.
type CreateResponseInput struct {
	JobID          uuid.UUID
	ResponseType   string
	QuoteAmount    *decimal.Decimal
	Message        string
	EstimatedHours *int
}

// CreateResponse создаёт отклик исполнителя на открытый заказ.
// Повторный отклик того же исполнителя — дубликат: проверка в сервисе плюс
// уникальное ограничение в базе на случай гонки.
func (s *ResponseService) CreateResponse(ctx context.Context, actor models.Actor, in CreateResponseInput) (*models.JobResponse, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось получить заказ")
	}
	if !policy.CanRespondToJob(actor, job) {
		return nil, apperror.ErrPermissionDenied
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperror.ErrInvalidState
	}

	if err := validateResponsePayload(&in); err != nil {
		return nil, err
	}

	existing, err := s.responses.GetByJobAndWorker(ctx, in.JobID, actor.ID)
	if err != nil {
		return nil, storeError(err, "не удалось проверить существующий отклик")
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateResponse
	}

	response := &models.JobResponse{
		JobID:          in.JobID,
		WorkerID:       actor.ID,
		ResponseType:   in.ResponseType,
		QuoteAmount:    in.QuoteAmount,
		Message:        in.Message,
		Status:         models.ResponseStatusPending,
		EstimatedHours: in.EstimatedHours,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		if errors.Is(err, repository.ErrResponseExists) {
			return nil, apperror.ErrDuplicateResponse
		}
		return nil, storeError(err, "не удалось создать отклик")
	}

	logger.Log.WithField("response_id", response.ID).WithField("job_id", in.JobID).Info("отклик создан")
	return response, nil
}

// GetResponse возвращает отклик по ID.
func (s *ResponseService) GetResponse(ctx context.Context, id uuid.UUID) (*models.JobResponse, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.responses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrResponseNotFound) {
			return nil, apperror.ErrResponseNotFound
		}
		return nil, storeError(err, "не удалось получить отклик")
	}
	return response, nil
}

// UpdateResponse правит сообщение, ставку и оценку часов отклика,
// пока он в статусе pending.
func (s *ResponseService) UpdateResponse(ctx context.Context, actor models.Actor, responseID uuid.UUID, in CreateResponseInput) (*models.JobResponse, error) {
	response, err := s.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateResponse(actor, response) {
		return nil, apperror.ErrPermissionDenied
	}
	if response.Status != models.ResponseStatusPending {
		return nil, apperror.ErrInvalidState
	}

	in.JobID = response.JobID
	if err := validateResponsePayload(&in); err != nil {
		return nil, err
	}

	response.ResponseType = in.ResponseType
	response.QuoteAmount = in.QuoteAmount
	response.Message = in.Message
	response.EstimatedHours = in.EstimatedHours

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.responses.Update(ctx, response); err != nil {
		if errors.Is(err, common.ErrNoRowsAffected) {
			// Отклик успели принять или отклонить параллельно.
			return nil, apperror.ErrInvalidState
		}
		return nil, storeError(err, "не удалось обновить отклик")
	}
	return response, nil
}

// WithdrawResponse отзывает отклик. Отзывается только pending.
func (s *ResponseService) WithdrawResponse(ctx context.Context, actor models.Actor, responseID uuid.UUID) error {
	response, err := s.GetResponse(ctx, responseID)
	if err != nil {
		return err
	}
	if !policy.CanMutateResponse(actor, response) {
		return apperror.ErrPermissionDenied
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.responses.Withdraw(ctx, responseID); err != nil {
		if errors.Is(err, common.ErrNoRowsAffected) {
			return apperror.ErrInvalidState
		}
		return storeError(err, "не удалось отозвать отклик")
	}
	return nil
}

// ListJobResponses возвращает отклики на заказ: владельцу — все, исполнителю —
// только его собственный.
func (s *ResponseService) ListJobResponses(ctx context.Context, actor models.Actor, jobID uuid.UUID) ([]models.JobResponse, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось получить заказ")
	}
	if !policy.CanViewJobResponses(actor, job) {
		return nil, apperror.ErrPermissionDenied
	}

	if job.CustomerID == actor.ID {
		responses, err := s.responses.ListByJob(ctx, jobID)
		if err != nil {
			return nil, storeError(err, "не удалось получить отклики")
		}
		return responses, nil
	}

	own, err := s.responses.GetByJobAndWorker(ctx, jobID, actor.ID)
	if err != nil {
		return nil, storeError(err, "не удалось получить отклик")
	}
	if own == nil {
		return []models.JobResponse{}, nil
	}
	return []models.JobResponse{*own}, nil
}

// ListMyResponses возвращает отклики исполнителя.
func (s *ResponseService) ListMyResponses(ctx context.Context, actor models.Actor, limit, offset int) ([]models.JobResponse, error) {
	if !actor.IsWorker() {
		return nil, apperror.ErrPermissionDenied
	}
	limit = normalizeLimit(limit)

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	responses, err := s.responses.ListByWorker(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, storeError(err, "не удалось получить отклики")
	}
	return responses, nil
}

// AcceptResponse принимает отклик: заказ атомарно переходит open→accepted,
// создаётся назначение с согласованной суммой, остальные отклики отклоняются.
// Проигравший гонку получает InvalidState.
func (s *ResponseService) AcceptResponse(ctx context.Context, actor models.Actor, responseID uuid.UUID) (*models.Assignment, error) {
	response, err := s.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	job, err := s.jobs.GetByID(ctx, response.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось получить заказ")
	}
	if !policy.CanAcceptResponse(actor, job) {
		return nil, apperror.ErrPermissionDenied
	}
	if job.Status != models.JobStatusOpen || response.Status != models.ResponseStatusPending {
		return nil, apperror.ErrInvalidState
	}

	agreed, err := agreedAmount(job, response)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignments.AcceptResponse(ctx, job.ID, response.ID, response.WorkerID, agreed)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrJobStateConflict),
			errors.Is(err, repository.ErrAssignmentStateConflict):
			// Параллельное принятие успело раньше.
			return nil, apperror.ErrInvalidState
		default:
			return nil, storeError(err, "не удалось принять отклик")
		}
	}

	logger.Log.WithField("assignment_id", assignment.ID).
		WithField("job_id", job.ID).
		WithField("worker_id", response.WorkerID).
		Info("отклик принят, назначение создано")
	return assignment, nil
}

// agreedAmount выводит согласованную сумму назначения. Приоритет источников:
// ставка из отклика, затем фиксированная цена заказа, затем максимум бюджета,
// затем минимум. Максимум предпочитается минимуму сознательно — в пользу
// исполнителя.
func agreedAmount(job *models.Job, response *models.JobResponse) (decimal.Decimal, error) {
	switch {
	case response.ResponseType == models.ResponseTypeQuote && response.QuoteAmount != nil:
		return *response.QuoteAmount, nil
	case job.FixedAmount != nil:
		return *job.FixedAmount, nil
	case job.BudgetMax != nil:
		return *job.BudgetMax, nil
	case job.BudgetMin != nil:
		return *job.BudgetMin, nil
	default:
		return decimal.Zero, apperror.ErrNoPriceDeterminable
	}
}

// validateResponsePayload проверяет тип отклика и ставку: quote обязан нести
// положительную сумму, accept — не нести её вовсе.
func validateResponsePayload(in *CreateResponseInput) error {
	if err := validation.ValidateEnum("тип отклика", in.ResponseType, models.ValidResponseTypes); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("сообщение", in.Message, 0, validation.MaxResponseMessageLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	switch in.ResponseType {
	case models.ResponseTypeQuote:
		if in.QuoteAmount == nil || in.QuoteAmount.LessThanOrEqual(decimal.Zero) {
			return apperror.ErrInvalidBid
		}
		if err := validation.ValidateAmount("ставка", *in.QuoteAmount); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	case models.ResponseTypeAccept:
		in.QuoteAmount = nil
	}
	if in.EstimatedHours != nil && *in.EstimatedHours <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "оценка часов должна быть положительной")
	}
	return nil
}
