package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User описывает пользователя платформы. Регистрация и аутентификация живут
// во внешнем сервисе: сюда пользователи попадают уже верифицированными,
// здесь хранится только то, что нужно ядру — роль и агрегаты рейтинга.
type User struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Email         string          `db:"email" json:"email"`
	Username      string          `db:"username" json:"username"`
	Role          string          `db:"role" json:"role"`
	AverageRating decimal.Decimal `db:"average_rating" json:"average_rating"`
	RatingsCount  int             `db:"ratings_count" json:"ratings_count"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Actor — верифицированная личность, передаваемая в каждую операцию ядра.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsCustomer сообщает, является ли актор заказчиком.
func (a Actor) IsCustomer() bool {
	return a.Role == RoleCustomer
}

// IsWorker сообщает, является ли актор исполнителем.
func (a Actor) IsWorker() bool {
	return a.Role == RoleWorker
}
