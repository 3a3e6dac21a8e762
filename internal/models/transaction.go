package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction — финансовая запись о движении средств по назначению.
// Для типа payment чистая сумма = брутто минус комиссия платформы,
// для остальных типов сумма проходит без изменений.
type Transaction struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	AssignmentID  *uuid.UUID      `db:"assignment_id" json:"assignment_id,omitempty"`
	WorkerID      uuid.UUID       `db:"worker_id" json:"worker_id"`
	CustomerID    uuid.UUID       `db:"customer_id" json:"customer_id"`
	Type          string          `db:"type" json:"type"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PlatformFee   decimal.Decimal `db:"platform_fee" json:"platform_fee"`
	NetAmount     decimal.Decimal `db:"net_amount" json:"net_amount"`
	Status        string          `db:"status" json:"status"`
	Description   string          `db:"description" json:"description"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	ProcessedAt   *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Earning — выписка исполнителя по транзакции: брутто, комиссия, налог,
// бонус и итоговая сумма к выплате. Итог = net - tax + bonus.
type Earning struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	WorkerID         uuid.UUID        `db:"worker_id" json:"worker_id"`
	TransactionRowID uuid.UUID        `db:"transaction_row_id" json:"transaction_row_id"`
	GrossAmount      decimal.Decimal  `db:"gross_amount" json:"gross_amount"`
	PlatformFee      decimal.Decimal  `db:"platform_fee" json:"platform_fee"`
	NetAmount        decimal.Decimal  `db:"net_amount" json:"net_amount"`
	TaxDeducted      decimal.Decimal  `db:"tax_deducted" json:"tax_deducted"`
	BonusAmount      decimal.Decimal  `db:"bonus_amount" json:"bonus_amount"`
	FinalAmount      decimal.Decimal  `db:"final_amount" json:"final_amount"`
	JobCategory      string           `db:"job_category" json:"job_category"`
	JobDurationHours *decimal.Decimal `db:"job_duration_hours" json:"job_duration_hours,omitempty"`
	CustomerRating   *decimal.Decimal `db:"customer_rating" json:"customer_rating,omitempty"`
	EarnedAt         time.Time        `db:"earned_at" json:"earned_at"`
}

// MonthlyEarning — сумма заработка за один календарный месяц.
type MonthlyEarning struct {
	Month  string          `db:"month" json:"month"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
}

// EarningsSummary — сводка заработка исполнителя.
type EarningsSummary struct {
	TotalEarnings          decimal.Decimal  `json:"total_earnings"`
	GrossTotalEarnings     decimal.Decimal  `json:"gross_total_earnings"`
	ThisMonthEarnings      decimal.Decimal  `json:"this_month_earnings"`
	ThisMonthGrossEarnings decimal.Decimal  `json:"this_month_gross_earnings"`
	PendingAmount          decimal.Decimal  `json:"pending_amount"`
	CompletedJobs          int              `json:"completed_jobs"`
	AverageRating          decimal.Decimal  `json:"average_rating"`
	RecentTransactions     []Transaction    `json:"recent_transactions"`
	MonthlyEarnings        []MonthlyEarning `json:"monthly_earnings"`
}
