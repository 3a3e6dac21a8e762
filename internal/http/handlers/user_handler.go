package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maslovdev/jobmarket-backend/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser GET /users/:id
// Публичный профиль: роль и агрегаты рейтинга, без контактных данных.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             user.ID,
		"username":       user.Username,
		"role":           user.Role,
		"average_rating": user.AverageRating,
		"ratings_count":  user.RatingsCount,
		"is_active":      user.IsActive,
		"created_at":     user.CreatedAt,
	})
}
