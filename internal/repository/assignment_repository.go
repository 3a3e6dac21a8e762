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
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrJobStateConflict: условное обновление статуса заказа не нашло строку —
	// заказ уже увели из ожидаемого статуса параллельным запросом.
	ErrJobStateConflict = errors.New("job is not in the expected status")
	// ErrAssignmentStateConflict: парное обновление назначения не нашло строку.
	ErrAssignmentStateConflict = errors.New("assignment is not in the expected status")
)

type AssignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// GetByID возвращает назначение по ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return common.GetByID[models.Assignment](ctx, r.db, "assignments", id, ErrAssignmentNotFound)
}

// GetByJobID возвращает назначение заказа, nil если заказ ещё никому не назначен.
func (r *AssignmentRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.GetContext(ctx, &assignment, `SELECT * FROM assignments WHERE job_id = $1`, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// ListByWorker возвращает назначения исполнителя.
func (r *AssignmentRepository) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.SelectContext(ctx, &assignments, `
		SELECT * FROM assignments WHERE worker_id = $1 ORDER BY assigned_at DESC LIMIT $2 OFFSET $3
	`, workerID, limit, offset)
	return assignments, err
}

// ListByCustomer возвращает назначения по заказам заказчика.
func (r *AssignmentRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.SelectContext(ctx, &assignments, `
		SELECT a.* FROM assignments a
		JOIN jobs j ON j.id = a.job_id
		WHERE j.customer_id = $1
		ORDER BY a.assigned_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	return assignments, err
}

// UpdateNotes обновляет заметки к назначению.
func (r *AssignmentRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE assignments SET notes = $2 WHERE id = $1`, id, notes)
	if err != nil {
		return fmt.Errorf("assignment repository: update notes %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// AcceptResponse атомарно принимает отклик: переводит заказ open -> accepted,
// создаёт назначение, помечает отклик принятым и отклоняет остальные pending
// отклики. Вся последовательность — одна транзакция; проигравший гонку
// параллельный accept получает ErrJobStateConflict, второго назначения не
// возникает.
func (r *AssignmentRepository) AcceptResponse(ctx context.Context, jobID, responseID, workerID uuid.UUID, agreedAmount decimal.Decimal) (*models.Assignment, error) {
	var assignment models.Assignment

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'accepted', updated_at = NOW()
			WHERE id = $1 AND status = 'open'
		`, jobID)
		if err != nil {
			return fmt.Errorf("accept response: update job %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrJobStateConflict
		}

		err = tx.GetContext(ctx, &assignment, `
			INSERT INTO assignments (job_id, worker_id, response_id, agreed_amount, status)
			VALUES ($1, $2, $3, $4, 'assigned')
			RETURNING *
		`, jobID, workerID, responseID, agreedAmount)
		if err != nil {
			return fmt.Errorf("accept response: create assignment %w", err)
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE job_responses SET status = 'accepted', updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
		`, responseID)
		if err != nil {
			return fmt.Errorf("accept response: update response %w", err)
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAssignmentStateConflict
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE job_responses SET status = 'rejected', updated_at = NOW()
			WHERE job_id = $1 AND id <> $2 AND status = 'pending'
		`, jobID, responseID)
		if err != nil {
			return fmt.Errorf("accept response: reject siblings %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CancelJob парно отменяет заказ и его назначение (если оно есть).
// Заказ должен быть в отменяемом статусе, иначе ErrJobStateConflict.
func (r *AssignmentRepository) CancelJob(ctx context.Context, jobID uuid.UUID, reason string, now time.Time) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'cancelled', updated_at = NOW()
			WHERE id = $1 AND status IN ('open', 'accepted', 'in_progress')
		`, jobID)
		if err != nil {
			return fmt.Errorf("cancel job: update job %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrJobStateConflict
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE assignments SET status = 'cancelled', cancelled_at = $2, cancellation_reason = $3
			WHERE job_id = $1 AND status IN ('assigned', 'started')
		`, jobID, now, reason)
		if err != nil {
			return fmt.Errorf("cancel job: update assignment %w", err)
		}
		return nil
	})
}

// StartJob парно переводит заказ в in_progress, а назначение в started.
// Оба условных обновления должны сработать, иначе транзакция откатывается.
func (r *AssignmentRepository) StartJob(ctx context.Context, jobID uuid.UUID, now time.Time) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'in_progress', updated_at = NOW()
			WHERE id = $1 AND status = 'accepted'
		`, jobID)
		if err != nil {
			return fmt.Errorf("start job: update job %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrJobStateConflict
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE assignments SET status = 'started', started_at = $2
			WHERE job_id = $1 AND status = 'assigned'
		`, jobID, now)
		if err != nil {
			return fmt.Errorf("start job: update assignment %w", err)
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAssignmentStateConflict
		}
		return nil
	})
}

// CompleteJob парно завершает заказ и назначение. started_at дозаполняется
// моментом завершения, если работа формально не стартовала. Возвращает
// завершённое назначение — по нему дальше идёт расчёт в Ledger.
func (r *AssignmentRepository) CompleteJob(ctx context.Context, jobID uuid.UUID, now time.Time) (*models.Assignment, error) {
	var assignment models.Assignment

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'completed', updated_at = NOW()
			WHERE id = $1 AND status IN ('accepted', 'in_progress')
		`, jobID)
		if err != nil {
			return fmt.Errorf("complete job: update job %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrJobStateConflict
		}

		err = tx.GetContext(ctx, &assignment, `
			UPDATE assignments SET status = 'completed', completed_at = $2,
				started_at = COALESCE(started_at, $2)
			WHERE job_id = $1 AND status IN ('assigned', 'started')
			RETURNING *
		`, jobID, now)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAssignmentStateConflict
			}
			return fmt.Errorf("complete job: update assignment %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
