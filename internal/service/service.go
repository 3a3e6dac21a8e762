// Package service содержит бизнес-логику маркетплейса: жизненный цикл заказа,
// отклики, назначения, расчёты и оценки. Сервисы зависят от узких интерфейсов
// хранилища, объявленных рядом с потребителем.
package service

import (
	"context"
	"time"

	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
)

// withStoreTimeout ограничивает время одного обращения к хранилищу.
// Нулевой таймаут отключает ограничение (удобно в тестах).
func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError переводит ошибку хранилища в ошибку приложения. Таймауты базы —
// отдельный код: клиент должен повторить запрос, а не получить 500.
func storeError(err error, message string) error {
	if common.IsTimeout(err) {
		return apperror.ErrUnavailable
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, message)
}
