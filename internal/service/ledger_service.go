package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maslovdev/jobmarket-backend/internal/logger"
	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
	"github.com/maslovdev/jobmarket-backend/internal/policy"
	"github.com/maslovdev/jobmarket-backend/internal/repository"
)

// LedgerStore описывает взаимодействие сервиса с финансовым хранилищем.
type LedgerStore interface {
	GetPaymentByAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.Transaction, error)
	TransactionIDExists(ctx context.Context, transactionID string) (bool, error)
	CreateSettlement(ctx context.Context, transaction *models.Transaction, earning *models.Earning) error
	ListTransactionsByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Transaction, error)
	ListTransactionsByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Transaction, error)
	ListEarnings(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Earning, error)
	EarningsSummary(ctx context.Context, workerID uuid.UUID, now time.Time) (*models.EarningsSummary, error)
}

// AssignmentStoreForLedger — чтение назначения при расчёте.
type AssignmentStoreForLedger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
}

// JobStoreForLedger — чтение заказа для категории в выписке.
type JobStoreForLedger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

type LedgerService struct {
	ledger      LedgerStore
	assignments AssignmentStoreForLedger
	jobs        JobStoreForLedger
	feeRate     decimal.Decimal
	timeout     time.Duration
	now         func() time.Time
}

func NewLedgerService(ledger LedgerStore, assignments AssignmentStoreForLedger, jobs JobStoreForLedger, feeRate decimal.Decimal, timeout time.Duration) *LedgerService {
	return &LedgerService{
		ledger:      ledger,
		assignments: assignments,
		jobs:        jobs,
		feeRate:     feeRate,
		timeout:     timeout,
		now:         time.Now,
	}
}

// txnIDAttempts ограничивает перебор при коллизии идентификатора.
const txnIDAttempts = 5

// SettleAssignment создаёт платёжную транзакцию и выписку по завершённому
// назначению. Идемпотентна: повторный вызов (в том числе параллельный)
// возвращает уже созданную транзакцию. Вызывается машиной статусов при
// завершении заказа и доступна отдельно для ручной сверки.
func (s *LedgerService) SettleAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.Transaction, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, apperror.ErrAssignmentNotFound
		}
		return nil, storeError(err, "не удалось получить назначение")
	}
	if assignment.Status != models.AssignmentStatusCompleted {
		return nil, apperror.ErrInvalidState
	}

	existing, err := s.ledger.GetPaymentByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, storeError(err, "не удалось проверить существующий платёж")
	}
	if existing != nil {
		return existing, nil
	}

	job, err := s.jobs.GetByID(ctx, assignment.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось получить заказ")
	}

	// Налог и бонус в момент расчёта нулевые, итог равен чистой сумме.
	// Колонки хранятся в выписке, чтобы корректировки не ломали историю.
	gross := assignment.AgreedAmount
	taxDeducted := decimal.Zero
	bonus := decimal.Zero
	fee, net, final := settlementAmounts(gross, s.feeRate, taxDeducted, bonus)

	transaction := &models.Transaction{
		AssignmentID:  &assignment.ID,
		WorkerID:      assignment.WorkerID,
		CustomerID:    job.CustomerID,
		Type:          models.TransactionTypePayment,
		Amount:        gross,
		PlatformFee:   fee,
		NetAmount:     net,
		Status:        models.TransactionStatusCompleted,
		Description:   fmt.Sprintf("Оплата за заказ «%s»", job.Title),
		PaymentMethod: "platform_balance",
	}
	earning := &models.Earning{
		WorkerID:         assignment.WorkerID,
		GrossAmount:      gross,
		PlatformFee:      fee,
		NetAmount:        net,
		TaxDeducted:      taxDeducted,
		BonusAmount:      bonus,
		FinalAmount:      final,
		JobCategory:      job.Category,
		JobDurationHours: assignment.DurationHours(),
	}

	for attempt := 0; attempt < txnIDAttempts; attempt++ {
		transaction.TransactionID, err = s.generateTransactionID(ctx)
		if err != nil {
			return nil, err
		}

		err = s.ledger.CreateSettlement(ctx, transaction, earning)
		switch {
		case err == nil:
			logger.Log.WithField("transaction_id", transaction.TransactionID).
				WithField("assignment_id", assignment.ID).
				WithField("net_amount", net.String()).
				Info("расчёт по назначению выполнен")
			return transaction, nil
		case errors.Is(err, repository.ErrAlreadySettled):
			// Гонку выиграл параллельный расчёт — возвращаем его транзакцию.
			winner, getErr := s.ledger.GetPaymentByAssignment(ctx, assignment.ID)
			if getErr != nil {
				return nil, storeError(getErr, "не удалось получить существующий платёж")
			}
			if winner == nil {
				return nil, apperror.New(apperror.ErrCodeInternal, "платёж не найден после конфликта расчёта")
			}
			return winner, nil
		case errors.Is(err, repository.ErrTransactionIDTaken):
			continue
		default:
			return nil, storeError(err, "не удалось выполнить расчёт")
		}
	}
	return nil, apperror.New(apperror.ErrCodeInternal, "не удалось подобрать идентификатор транзакции")
}

// SettleAssignmentFor — ручная сверка от имени пользователя. Транзакция
// содержит суммы и идентификаторы сторон, поэтому доступна только участникам
// назначения.
func (s *LedgerService) SettleAssignmentFor(ctx context.Context, actor models.Actor, assignmentID uuid.UUID) (*models.Transaction, error) {
	checkCtx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	assignment, err := s.assignments.GetByID(checkCtx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, apperror.ErrAssignmentNotFound
		}
		return nil, storeError(err, "не удалось получить назначение")
	}
	job, err := s.jobs.GetByID(checkCtx, assignment.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось получить заказ")
	}
	if !policy.IsAssignmentParticipant(actor, job, assignment) {
		return nil, apperror.ErrPermissionDenied
	}

	return s.SettleAssignment(ctx, assignmentID)
}

// settlementAmounts раскладывает валовую сумму выплаты: комиссия платформы
// (округлена до копеек), чистая сумма и итог с учётом налога и бонуса.
func settlementAmounts(gross, feeRate, tax, bonus decimal.Decimal) (fee, net, final decimal.Decimal) {
	fee = gross.Mul(feeRate).Round(2)
	net = gross.Sub(fee)
	final = net.Sub(tax).Add(bonus)
	return fee, net, final
}

// generateTransactionID выдаёт идентификатор вида TXN-XXXXXXXXXXXX
// (12 шестнадцатеричных знаков в верхнем регистре) с проверкой занятости.
// Проверка — оптимизация: последний рубеж — уникальное ограничение в базе.
func (s *LedgerService) generateTransactionID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < txnIDAttempts; attempt++ {
		raw := uuid.New()
		candidate := fmt.Sprintf("TXN-%X", raw[:6])

		taken, err := s.ledger.TransactionIDExists(ctx, candidate)
		if err != nil {
			return "", storeError(err, "не удалось проверить идентификатор транзакции")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperror.New(apperror.ErrCodeInternal, "не удалось подобрать идентификатор транзакции")
}

// ListTransactions возвращает транзакции пользователя в его роли.
func (s *LedgerService) ListTransactions(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Transaction, error) {
	limit = normalizeLimit(limit)
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	var (
		transactions []models.Transaction
		err          error
	)
	if actor.IsWorker() {
		transactions, err = s.ledger.ListTransactionsByWorker(ctx, actor.ID, limit, offset)
	} else {
		transactions, err = s.ledger.ListTransactionsByCustomer(ctx, actor.ID, limit, offset)
	}
	if err != nil {
		return nil, storeError(err, "не удалось получить транзакции")
	}
	return transactions, nil
}

// ListEarnings возвращает выписки исполнителя.
func (s *LedgerService) ListEarnings(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Earning, error) {
	if !policy.CanViewEarnings(actor) {
		return nil, apperror.ErrPermissionDenied
	}
	limit = normalizeLimit(limit)

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	earnings, err := s.ledger.ListEarnings(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, storeError(err, "не удалось получить выписки")
	}
	return earnings, nil
}

// EarningsSummary возвращает сводку заработка исполнителя: суммарные и
// месячные итоги, ожидающие выплаты, число завершённых заказов и серию
// за 12 последних месяцев.
func (s *LedgerService) EarningsSummary(ctx context.Context, actor models.Actor) (*models.EarningsSummary, error) {
	if !policy.CanViewEarnings(actor) {
		return nil, apperror.ErrPermissionDenied
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	summary, err := s.ledger.EarningsSummary(ctx, actor.ID, s.now())
	if err != nil {
		return nil, storeError(err, "не удалось собрать сводку заработка")
	}
	return summary, nil
}
