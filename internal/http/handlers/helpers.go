package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maslovdev/jobmarket-backend/internal/http/middleware"
	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
)

var errActorNotFound = errors.New("пользователь не найден в контексте")

// currentActor извлекает идентификатор и роль пользователя из контекста.
func currentActor(c *gin.Context) (models.Actor, error) {
	rawID, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return models.Actor{}, errActorNotFound
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		return models.Actor{}, errActorNotFound
	}

	rawRole, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return models.Actor{}, errActorNotFound
	}
	role, ok := rawRole.(string)
	if !ok {
		return models.Actor{}, errActorNotFound
	}

	return models.Actor{ID: userID, Role: role}, nil
}

// parseUUIDParam разбирает UUID из параметра пути.
func parseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("параметр %s должен быть валидным UUID", paramName)
	}
	return parsed, nil
}

// parseIntQuery разбирает целочисленный query параметр с дефолтом.
func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// fail передаёт ошибку централизованному обработчику.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// failUnauthorized — пользователь отсутствует в контексте.
func failUnauthorized(c *gin.Context) {
	_ = c.Error(apperror.ErrUnauthorized)
}

// failValidation заворачивает ошибку разбора запроса в ошибку валидации.
func failValidation(c *gin.Context, err error) {
	_ = c.Error(apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()))
}
