package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/maslovdev/jobmarket-backend/internal/logger"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно: статус и сообщение
// берутся из ошибки приложения, внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"
		code := apperror.ErrCodeInternal

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			statusCode = appErr.HTTPStatus
			code = appErr.Code
			if appErr.Code != apperror.ErrCodeInternal {
				message = appErr.Message
			}
		}

		entry := logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"code":   code,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		if statusCode >= http.StatusInternalServerError {
			entry.Error("ошибка запроса")
		} else {
			entry.Warn("запрос отклонён")
		}

		c.JSON(statusCode, gin.H{"error": message, "code": code})
	}
}
