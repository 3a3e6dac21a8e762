package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
)

// UserStore описывает чтение пользователей.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type UserService struct {
	users   UserStore
	timeout time.Duration
}

func NewUserService(users UserStore, timeout time.Duration) *UserService {
	return &UserService{users: users, timeout: timeout}
}

// GetProfile возвращает публичный профиль пользователя с агрегатами рейтинга.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, storeError(err, "не удалось получить пользователя")
	}
	return user, nil
}
