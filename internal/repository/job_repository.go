package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create создаёт заказ.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (customer_id, title, category, description, location, latitude, longitude,
			budget_min, budget_max, fixed_amount, urgency, status, estimated_duration, requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		job.CustomerID, job.Title, job.Category, job.Description, job.Location,
		job.Latitude, job.Longitude, job.BudgetMin, job.BudgetMax, job.FixedAmount,
		job.Urgency, job.Status, job.EstimatedDuration, job.Requirements,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

// GetByID возвращает заказ по ID.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return common.GetByID[models.Job](ctx, r.db, "jobs", id, ErrJobNotFound)
}

// Update обновляет изменяемые поля заказа. Статус здесь не трогается:
// переходы статусов идут только через AssignmentRepository.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET title = $2, category = $3, description = $4, location = $5,
			latitude = $6, longitude = $7, budget_min = $8, budget_max = $9, fixed_amount = $10,
			urgency = $11, estimated_duration = $12, requirements = $13, updated_at = NOW()
		WHERE id = $1
	`, job.ID, job.Title, job.Category, job.Description, job.Location,
		job.Latitude, job.Longitude, job.BudgetMin, job.BudgetMax, job.FixedAmount,
		job.Urgency, job.EstimatedDuration, job.Requirements)
	if err != nil {
		return fmt.Errorf("job repository: update %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Delete удаляет заказ. Проверка статуса — на стороне сервиса, здесь
// условие повторяется для защиты от гонки с параллельным принятием отклика.
func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID, allowedStatuses []string) error {
	query, args, err := sqlx.In(`DELETE FROM jobs WHERE id = ? AND status IN (?)`, id, allowedStatuses)
	if err != nil {
		return fmt.Errorf("job repository: delete %w", err)
	}
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("job repository: delete %w", err)
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

// ListByCustomer возвращает заказы заказчика, новые первыми.
func (r *JobRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT * FROM jobs WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	return jobs, err
}

// ListOpenForWorker возвращает открытые заказы, на которые исполнитель ещё
// не откликался, с необязательной фильтрацией по категории и локации.
func (r *JobRepository) ListOpenForWorker(ctx context.Context, workerID uuid.UUID, category, location string, limit, offset int) ([]models.Job, error) {
	query := `
		SELECT j.* FROM jobs j
		WHERE j.status = 'open'
		  AND NOT EXISTS (
			SELECT 1 FROM job_responses r WHERE r.job_id = j.id AND r.worker_id = $1
		  )
	`
	args := []interface{}{workerID}

	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND j.category = $%d", len(args))
	}
	if location != "" {
		args = append(args, "%"+location+"%")
		query += fmt.Sprintf(" AND j.location ILIKE $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY j.created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs, query, args...)
	return jobs, err
}
