package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
)

var (
	ErrResponseNotFound = errors.New("response not found")
	ErrResponseExists   = errors.New("response already exists for this job and worker")
)

type ResponseRepository struct {
	db *sqlx.DB
}

func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create создаёт отклик. Уникальное ограничение (job_id, worker_id) в базе —
// вторая линия защиты от дубликатов сверх проверки в сервисе.
func (r *ResponseRepository) Create(ctx context.Context, response *models.JobResponse) error {
	query := `
		INSERT INTO job_responses (job_id, worker_id, response_type, quote_amount, message, status, estimated_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		response.JobID, response.WorkerID, response.ResponseType, response.QuoteAmount,
		response.Message, response.Status, response.EstimatedHours,
	).Scan(&response.ID, &response.CreatedAt, &response.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "job_responses_job_id_worker_id_key") {
			return ErrResponseExists
		}
		return fmt.Errorf("response repository: create %w", err)
	}
	return nil
}

// GetByID возвращает отклик по ID.
func (r *ResponseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobResponse, error) {
	return common.GetByID[models.JobResponse](ctx, r.db, "job_responses", id, ErrResponseNotFound)
}

// GetByJobAndWorker возвращает отклик исполнителя на заказ, nil если его нет.
func (r *ResponseRepository) GetByJobAndWorker(ctx context.Context, jobID, workerID uuid.UUID) (*models.JobResponse, error) {
	var response models.JobResponse
	err := r.db.GetContext(ctx, &response, `
		SELECT * FROM job_responses WHERE job_id = $1 AND worker_id = $2
	`, jobID, workerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

// ListByJob возвращает отклики по заказу, новые первыми.
func (r *ResponseRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.JobResponse, error) {
	var responses []models.JobResponse
	err := r.db.SelectContext(ctx, &responses, `
		SELECT * FROM job_responses WHERE job_id = $1 ORDER BY created_at DESC
	`, jobID)
	return responses, err
}

// ListByWorker возвращает отклики исполнителя.
func (r *ResponseRepository) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobResponse, error) {
	var responses []models.JobResponse
	err := r.db.SelectContext(ctx, &responses, `
		SELECT * FROM job_responses WHERE worker_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, workerID, limit, offset)
	return responses, err
}

// Update обновляет содержимое отклика, пока он ещё pending. Условие на статус
// повторяется в запросе: после принятия или отклонения отклик неизменяем.
func (r *ResponseRepository) Update(ctx context.Context, response *models.JobResponse) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE job_responses SET response_type = $2, quote_amount = $3, message = $4,
			estimated_hours = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, response.ID, response.ResponseType, response.QuoteAmount, response.Message, response.EstimatedHours)
	if err != nil {
		return fmt.Errorf("response repository: update %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return common.ErrNoRowsAffected
	}
	return nil
}

// Withdraw переводит pending-отклик в withdrawn.
func (r *ResponseRepository) Withdraw(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE job_responses SET status = 'withdrawn', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return fmt.Errorf("response repository: withdraw %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return common.ErrNoRowsAffected
	}
	return nil
}
