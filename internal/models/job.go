package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Job описывает заказ на бытовую услугу, размещённый заказчиком.
// Цена задаётся ровно одним способом: либо фиксированная сумма,
// либо бюджетная вилка (min, max).
type Job struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	CustomerID        uuid.UUID        `db:"customer_id" json:"customer_id"`
	Title             string           `db:"title" json:"title"`
	Category          string           `db:"category" json:"category"`
	Description       string           `db:"description" json:"description"`
	Location          string           `db:"location" json:"location"`
	Latitude          *decimal.Decimal `db:"latitude" json:"latitude,omitempty"`
	Longitude         *decimal.Decimal `db:"longitude" json:"longitude,omitempty"`
	BudgetMin         *decimal.Decimal `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax         *decimal.Decimal `db:"budget_max" json:"budget_max,omitempty"`
	FixedAmount       *decimal.Decimal `db:"fixed_amount" json:"fixed_amount,omitempty"`
	Urgency           string           `db:"urgency" json:"urgency"`
	Status            string           `db:"status" json:"status"`
	EstimatedDuration *int             `db:"estimated_duration" json:"estimated_duration,omitempty"`
	Requirements      string           `db:"requirements" json:"requirements"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// HasFixedAmount сообщает, задана ли у заказа фиксированная цена.
func (j *Job) HasFixedAmount() bool {
	return j.FixedAmount != nil
}

// HasBudgetRange сообщает, задана ли у заказа бюджетная вилка.
func (j *Job) HasBudgetRange() bool {
	return j.BudgetMin != nil && j.BudgetMax != nil
}

// JobResponse представляет отклик исполнителя на заказ: либо согласие на
// условия заказа (accept), либо встречная ставка (quote).
type JobResponse struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	JobID          uuid.UUID        `db:"job_id" json:"job_id"`
	WorkerID       uuid.UUID        `db:"worker_id" json:"worker_id"`
	ResponseType   string           `db:"response_type" json:"response_type"`
	QuoteAmount    *decimal.Decimal `db:"quote_amount" json:"quote_amount,omitempty"`
	Message        string           `db:"message" json:"message"`
	Status         string           `db:"status" json:"status"`
	EstimatedHours *int             `db:"estimated_hours" json:"estimated_hours,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}
