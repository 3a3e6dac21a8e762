package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
)

var (
	// ErrAlreadySettled: по назначению уже существует payment-транзакция.
	// Частичный уникальный индекс в базе ловит гонку двух параллельных
	// завершений, которую проверка в коде поймать не может.
	ErrAlreadySettled = errors.New("assignment already has a payment transaction")
	// ErrTransactionIDTaken: сгенерированный человекочитаемый идентификатор
	// уже занят, вызывающая сторона генерирует новый.
	ErrTransactionIDTaken = errors.New("transaction identifier already taken")
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetTransactionByID возвращает транзакцию по ID строки.
func (r *LedgerRepository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return common.GetByID[models.Transaction](ctx, r.db, "transactions", id, common.ErrNotFound)
}

// GetPaymentByAssignment возвращает payment-транзакцию назначения, nil если её нет.
func (r *LedgerRepository) GetPaymentByAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.GetContext(ctx, &transaction, `
		SELECT * FROM transactions WHERE assignment_id = $1 AND type = 'payment'
	`, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

// GetEarningByTransaction возвращает выписку по транзакции, nil если её нет.
func (r *LedgerRepository) GetEarningByTransaction(ctx context.Context, transactionRowID uuid.UUID) (*models.Earning, error) {
	var earning models.Earning
	err := r.db.GetContext(ctx, &earning, `
		SELECT * FROM earnings WHERE transaction_row_id = $1
	`, transactionRowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &earning, nil
}

// TransactionIDExists проверяет занятость человекочитаемого идентификатора.
func (r *LedgerRepository) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM transactions WHERE transaction_id = $1
	`, transactionID)
	if err != nil {
		return false, fmt.Errorf("ledger repository: transaction id exists %w", err)
	}
	return count > 0, nil
}

// CreateSettlement создаёт транзакцию и выписку одной транзакцией базы.
// Нарушение частичного уникального индекса по (assignment_id, type=payment)
// означает, что параллельное завершение успело раньше — это ErrAlreadySettled,
// а не ошибка.
func (r *LedgerRepository) CreateSettlement(ctx context.Context, transaction *models.Transaction, earning *models.Earning) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, transaction, `
			INSERT INTO transactions (transaction_id, assignment_id, worker_id, customer_id,
				type, amount, platform_fee, net_amount, status, description, payment_method)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING *
		`, transaction.TransactionID, transaction.AssignmentID, transaction.WorkerID,
			transaction.CustomerID, transaction.Type, transaction.Amount, transaction.PlatformFee,
			transaction.NetAmount, transaction.Status, transaction.Description, transaction.PaymentMethod)
		if err != nil {
			if common.IsUniqueViolation(err, "transactions_payment_per_assignment") {
				return ErrAlreadySettled
			}
			if common.IsUniqueViolation(err, "transactions_transaction_id_key") {
				return ErrTransactionIDTaken
			}
			return fmt.Errorf("ledger repository: create transaction %w", err)
		}

		earning.TransactionRowID = transaction.ID
		err = tx.GetContext(ctx, earning, `
			INSERT INTO earnings (worker_id, transaction_row_id, gross_amount, platform_fee,
				net_amount, tax_deducted, bonus_amount, final_amount, job_category,
				job_duration_hours, customer_rating)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING *
		`, earning.WorkerID, earning.TransactionRowID, earning.GrossAmount, earning.PlatformFee,
			earning.NetAmount, earning.TaxDeducted, earning.BonusAmount, earning.FinalAmount,
			earning.JobCategory, earning.JobDurationHours, earning.CustomerRating)
		if err != nil {
			return fmt.Errorf("ledger repository: create earning %w", err)
		}
		return nil
	})
}

// ListTransactionsByWorker возвращает транзакции исполнителя.
func (r *LedgerRepository) ListTransactionsByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM transactions WHERE worker_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, workerID, limit, offset)
	return transactions, err
}

// ListTransactionsByCustomer возвращает транзакции заказчика.
func (r *LedgerRepository) ListTransactionsByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM transactions WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	return transactions, err
}

// ListEarnings возвращает выписки исполнителя.
func (r *LedgerRepository) ListEarnings(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Earning, error) {
	var earnings []models.Earning
	err := r.db.SelectContext(ctx, &earnings, `
		SELECT * FROM earnings WHERE worker_id = $1 ORDER BY earned_at DESC LIMIT $2 OFFSET $3
	`, workerID, limit, offset)
	return earnings, err
}

// EarningsSummary собирает сводку заработка исполнителя: агрегаты считаются
// в базе, по read-committed снимкам — для сводки этого достаточно.
func (r *LedgerRepository) EarningsSummary(ctx context.Context, workerID uuid.UUID, now time.Time) (*models.EarningsSummary, error) {
	summary := &models.EarningsSummary{
		TotalEarnings:          decimal.Zero,
		GrossTotalEarnings:     decimal.Zero,
		ThisMonthEarnings:      decimal.Zero,
		ThisMonthGrossEarnings: decimal.Zero,
		PendingAmount:          decimal.Zero,
		AverageRating:          decimal.Zero,
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var totals struct {
		Total      decimal.Decimal `db:"total"`
		Gross      decimal.Decimal `db:"gross"`
		MonthTotal decimal.Decimal `db:"month_total"`
		MonthGross decimal.Decimal `db:"month_gross"`
		AvgRating  decimal.Decimal `db:"avg_rating"`
	}
	err := r.db.GetContext(ctx, &totals, `
		SELECT
			COALESCE(SUM(final_amount), 0) AS total,
			COALESCE(SUM(gross_amount), 0) AS gross,
			COALESCE(SUM(final_amount) FILTER (WHERE earned_at >= $2), 0) AS month_total,
			COALESCE(SUM(gross_amount) FILTER (WHERE earned_at >= $2), 0) AS month_gross,
			COALESCE(AVG(customer_rating), 0) AS avg_rating
		FROM earnings WHERE worker_id = $1
	`, workerID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: summary totals %w", err)
	}
	summary.TotalEarnings = totals.Total
	summary.GrossTotalEarnings = totals.Gross
	summary.ThisMonthEarnings = totals.MonthTotal
	summary.ThisMonthGrossEarnings = totals.MonthGross
	summary.AverageRating = totals.AvgRating.Round(2)

	err = r.db.GetContext(ctx, &summary.PendingAmount, `
		SELECT COALESCE(SUM(net_amount), 0) FROM transactions
		WHERE worker_id = $1 AND status = 'pending'
	`, workerID)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: summary pending %w", err)
	}

	err = r.db.GetContext(ctx, &summary.CompletedJobs, `
		SELECT COUNT(*) FROM assignments WHERE worker_id = $1 AND status = 'completed'
	`, workerID)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: summary completed jobs %w", err)
	}

	recent, err := r.ListTransactionsByWorker(ctx, workerID, 10, 0)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: summary recent transactions %w", err)
	}
	summary.RecentTransactions = recent

	// Серия за 12 последних месяцев, от старых к новым; пустые месяцы — нули.
	err = r.db.SelectContext(ctx, &summary.MonthlyEarnings, `
		SELECT to_char(m.month, 'YYYY-MM') AS month,
		       COALESCE(SUM(e.final_amount), 0) AS amount
		FROM generate_series(
			date_trunc('month', $2::timestamptz) - interval '11 months',
			date_trunc('month', $2::timestamptz),
			interval '1 month'
		) AS m(month)
		LEFT JOIN earnings e ON e.worker_id = $1
			AND date_trunc('month', e.earned_at) = m.month
		GROUP BY m.month
		ORDER BY m.month
	`, workerID, now)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: summary monthly %w", err)
	}

	return summary, nil
}
