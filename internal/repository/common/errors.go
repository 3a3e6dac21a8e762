package common

import (
	"context"
	"errors"

	"github.com/lib/pq"
)

// Общие ошибки для всех репозиториев
var (
	ErrNotFound       = errors.New("entity not found")
	ErrAlreadyExists  = errors.New("entity already exists")
	ErrNoRowsAffected = errors.New("no rows affected")
)

// Коды ошибок PostgreSQL, которые репозитории различают явно.
const (
	pgUniqueViolation = "23505"
	pgQueryCanceled   = "57014"
)

// IsUniqueViolation проверяет, что ошибка — нарушение уникального ограничения.
// Если constraint не пустой, дополнительно сверяет имя ограничения.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsTimeout проверяет, что запрос прерван по таймауту: либо самим контекстом,
// либо statement_timeout на стороне базы. Такие ошибки безопасно повторять.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgQueryCanceled
}
