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

// JobStore описывает взаимодействие сервиса с хранилищем заказов.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id uuid.UUID, allowedStatuses []string) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Job, error)
	ListOpenForWorker(ctx context.Context, workerID uuid.UUID, category, location string, limit, offset int) ([]models.Job, error)
}

// AssignmentStoreForJob — операции над назначениями, нужные машине статусов.
type AssignmentStoreForJob interface {
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Assignment, error)
	CancelJob(ctx context.Context, jobID uuid.UUID, reason string, now time.Time) error
	StartJob(ctx context.Context, jobID uuid.UUID, now time.Time) error
	CompleteJob(ctx context.Context, jobID uuid.UUID, now time.Time) (*models.Assignment, error)
}

// Settler выполняет расчёт по завершённому назначению. Реализуется
// LedgerService; интерфейс разрывает цикл между сервисами.
type Settler interface {
	SettleAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.Transaction, error)
}

type JobService struct {
	jobs        JobStore
	assignments AssignmentStoreForJob
	settler     Settler
	timeout     time.Duration
	now         func() time.Time
}

func NewJobService(jobs JobStore, assignments AssignmentStoreForJob, settler Settler, timeout time.Duration) *JobService {
	return &JobService{
		jobs:        jobs,
		assignments: assignments,
		settler:     settler,
		timeout:     timeout,
		now:         time.Now,
	}
}

// CreateJobInput описывает входные данные нового заказа.
type CreateJobInput struct {
	Title             string
	Category          string
	Description       string
	Location          string
	Latitude          *decimal.Decimal
	Longitude         *decimal.Decimal
	BudgetMin         *decimal.Decimal
	BudgetMax         *decimal.Decimal
	FixedAmount       *decimal.Decimal
	Urgency           string
	EstimatedDuration *int
	Requirements      string
}

// CreateJob создаёт заказ в статусе open.
func (s *JobService) CreateJob(ctx context.Context, actor models.Actor, in CreateJobInput) (*models.Job, error) {
	if !policy.CanCreateJob(actor) {
		return nil, apperror.ErrPermissionDenied
	}
	if err := validateJobPayload(&in); err != nil {
		return nil, err
	}

	job := &models.Job{
		CustomerID:        actor.ID,
		Title:             in.Title,
		Category:          in.Category,
		Description:       in.Description,
		Location:          in.Location,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		BudgetMin:         in.BudgetMin,
		BudgetMax:         in.BudgetMax,
		FixedAmount:       in.FixedAmount,
		Urgency:           in.Urgency,
		Status:            models.JobStatusOpen,
		EstimatedDuration: in.EstimatedDuration,
		Requirements:      in.Requirements,
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, storeError(err, "не удалось создать заказ")
	}

	logger.Log.WithField("job_id", job.ID).WithField("customer_id", actor.ID).Info("заказ создан")
	return job, nil
}

// GetJob возвращает заказ по ID.
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось получить заказ")
	}
	return job, nil
}

// UpdateJob обновляет содержимое заказа. Статус этим путём не меняется —
// для переходов есть TransitionJobStatus.
func (s *JobService) UpdateJob(ctx context.Context, actor models.Actor, jobID uuid.UUID, in CreateJobInput) (*models.Job, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateJob(actor, job) {
		return nil, apperror.ErrPermissionDenied
	}
	if job.Status == models.JobStatusCompleted {
		return nil, apperror.ErrInvalidState
	}
	if err := validateJobPayload(&in); err != nil {
		return nil, err
	}

	job.Title = in.Title
	job.Category = in.Category
	job.Description = in.Description
	job.Location = in.Location
	job.Latitude = in.Latitude
	job.Longitude = in.Longitude
	job.BudgetMin = in.BudgetMin
	job.BudgetMax = in.BudgetMax
	job.FixedAmount = in.FixedAmount
	job.Urgency = in.Urgency
	job.EstimatedDuration = in.EstimatedDuration
	job.Requirements = in.Requirements

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.jobs.Update(ctx, job); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось обновить заказ")
	}
	return job, nil
}

// DeleteJob удаляет заказ. Удаление запрещено для заказов в работе
// и завершённых.
func (s *JobService) DeleteJob(ctx context.Context, actor models.Actor, jobID uuid.UUID) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteJob(actor, job) {
		return apperror.ErrPermissionDenied
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	err = s.jobs.Delete(ctx, jobID, []string{models.JobStatusOpen, models.JobStatusAccepted, models.JobStatusCancelled})
	if err != nil {
		if errors.Is(err, common.ErrNoRowsAffected) {
			// Заказ успел перейти в in_progress или completed.
			return apperror.ErrInvalidState
		}
		return storeError(err, "не удалось удалить заказ")
	}

	logger.Log.WithField("job_id", jobID).Info("заказ удалён")
	return nil
}

// ListCustomerJobs возвращает заказы заказчика.
func (s *JobService) ListCustomerJobs(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Job, error) {
	limit = normalizeLimit(limit)
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	jobs, err := s.jobs.ListByCustomer(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, storeError(err, "не удалось получить список заказов")
	}
	return jobs, nil
}

// ListAvailableJobs возвращает открытые заказы для исполнителя, без заказов,
// на которые он уже откликнулся.
func (s *JobService) ListAvailableJobs(ctx context.Context, actor models.Actor, category, location string, limit, offset int) ([]models.Job, error) {
	if !actor.IsWorker() {
		return nil, apperror.ErrPermissionDenied
	}
	if category != "" {
		if err := validation.ValidateEnum("категория", category, models.ValidCategories); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	limit = normalizeLimit(limit)
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	jobs, err := s.jobs.ListOpenForWorker(ctx, actor.ID, category, location, limit, offset)
	if err != nil {
		return nil, storeError(err, "не удалось получить список доступных заказов")
	}
	return jobs, nil
}

// TransitionJobStatus — единая точка входа для переходов статуса заказа.
// Допустимые переходы: open→cancelled, accepted→{in_progress, completed,
// cancelled}, in_progress→{completed, cancelled}. Завершение запускает
// расчёт по назначению.
func (s *JobService) TransitionJobStatus(ctx context.Context, actor models.Actor, jobID uuid.UUID, newStatus, reason string) (*models.Job, error) {
	if _, ok := models.ValidJobStatuses[newStatus]; !ok {
		return nil, apperror.ErrInvalidTransition
	}
	if err := validation.ValidateLength("причина отмены", reason, 0, validation.MaxCancellationReasonLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	sctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	assignment, err := s.assignments.GetByJobID(sctx, jobID)
	if err != nil {
		return nil, storeError(err, "не удалось получить назначение")
	}

	if !policy.CanTransitionJob(actor, newStatus, job, assignment) {
		if _, allowed := transitionTargets[newStatus]; !allowed {
			return nil, apperror.ErrInvalidTransition
		}
		return nil, apperror.ErrPermissionDenied
	}

	switch newStatus {
	case models.JobStatusCancelled:
		err = s.assignments.CancelJob(sctx, jobID, reason, s.now())
	case models.JobStatusInProgress:
		err = s.assignments.StartJob(sctx, jobID, s.now())
	case models.JobStatusCompleted:
		var completed *models.Assignment
		completed, err = s.assignments.CompleteJob(sctx, jobID, s.now())
		if err == nil {
			// Расчёт идемпотентен: параллельное завершение или ручная сверка
			// не создадут вторую выплату.
			if _, settleErr := s.settler.SettleAssignment(ctx, completed.ID); settleErr != nil {
				return nil, settleErr
			}
		}
	default:
		return nil, apperror.ErrInvalidTransition
	}

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrJobStateConflict),
			errors.Is(err, repository.ErrAssignmentStateConflict):
			return nil, apperror.ErrInvalidTransition
		default:
			return nil, storeError(err, "не удалось выполнить переход статуса")
		}
	}

	logger.Log.WithField("job_id", jobID).WithField("status", newStatus).Info("статус заказа изменён")
	return s.GetJob(ctx, jobID)
}

// transitionTargets — статусы, в которые вообще существует переход.
// open и accepted достигаются только созданием заказа и принятием отклика.
var transitionTargets = map[string]struct{}{
	models.JobStatusInProgress: {},
	models.JobStatusCompleted:  {},
	models.JobStatusCancelled:  {},
}

// validateJobPayload проверяет содержимое заказа: закрытые перечисления и
// режим цены. Режим задаётся ровно одним способом: фиксированная сумма или
// бюджетная вилка.
func validateJobPayload(in *CreateJobInput) error {
	if err := validation.ValidateLength("заголовок", in.Title, validation.MinJobTitleLength, validation.MaxJobTitleLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание", in.Description, validation.MinJobDescriptionLength, validation.MaxJobDescriptionLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("адрес", in.Location, 0, validation.MaxLocationLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEnum("категория", in.Category, models.ValidCategories); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Urgency == "" {
		in.Urgency = models.UrgencyMedium
	}
	if err := validation.ValidateEnum("срочность", in.Urgency, models.ValidUrgencies); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	hasFixed := in.FixedAmount != nil
	hasMin := in.BudgetMin != nil
	hasMax := in.BudgetMax != nil
	if hasMin != hasMax {
		return apperror.New(apperror.ErrCodeValidation, "бюджетная вилка требует обе границы")
	}
	hasRange := hasMin && hasMax
	if hasFixed == hasRange {
		return apperror.New(apperror.ErrCodeValidation, "укажите либо фиксированную цену, либо бюджетную вилку")
	}
	if hasFixed {
		if err := validation.ValidateAmount("фиксированная цена", *in.FixedAmount); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if hasRange {
		if err := validation.ValidateAmount("минимальный бюджет", *in.BudgetMin); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		if err := validation.ValidateAmount("максимальный бюджет", *in.BudgetMax); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		if in.BudgetMin.GreaterThanOrEqual(*in.BudgetMax) {
			return apperror.New(apperror.ErrCodeValidation, "минимальный бюджет должен быть меньше максимального")
		}
	}
	if in.EstimatedDuration != nil && *in.EstimatedDuration <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "оценка длительности должна быть положительной")
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
