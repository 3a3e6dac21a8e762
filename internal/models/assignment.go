package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Assignment — контракт между заказчиком и исполнителем, создаётся ровно
// один раз на заказ в момент принятия отклика и никогда не пересоздаётся.
type Assignment struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	JobID              uuid.UUID       `db:"job_id" json:"job_id"`
	WorkerID           uuid.UUID       `db:"worker_id" json:"worker_id"`
	ResponseID         uuid.UUID       `db:"response_id" json:"response_id"`
	AgreedAmount       decimal.Decimal `db:"agreed_amount" json:"agreed_amount"`
	Status             string          `db:"status" json:"status"`
	AssignedAt         time.Time       `db:"assigned_at" json:"assigned_at"`
	StartedAt          *time.Time      `db:"started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt        *time.Time      `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason string          `db:"cancellation_reason" json:"cancellation_reason"`
	Notes              string          `db:"notes" json:"notes"`
}

// DurationHours возвращает длительность работы в часах, если известны
// моменты начала и завершения.
func (a *Assignment) DurationHours() *decimal.Decimal {
	if a.StartedAt == nil || a.CompletedAt == nil {
		return nil
	}
	hours := decimal.NewFromFloat(a.CompletedAt.Sub(*a.StartedAt).Hours()).Round(2)
	return &hours
}
