package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/maslovdev/jobmarket-backend/internal/http/middleware"
	"github.com/maslovdev/jobmarket-backend/internal/models"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func withTestActor(r *gin.Engine, userID uuid.UUID, role string) {
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	})
}

func TestJobHandler_CreateJob_Unauthorized(t *testing.T) {
	r := newTestRouter()
	handler := &JobHandler{jobs: nil}
	r.POST("/jobs", handler.CreateJob)

	req, _ := http.NewRequest("POST", "/jobs", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJobHandler_GetJob_InvalidJobID(t *testing.T) {
	r := newTestRouter()
	handler := &JobHandler{jobs: nil}
	r.GET("/jobs/:id", handler.GetJob)

	req, _ := http.NewRequest("GET", "/jobs/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobHandler_TransitionStatus_InvalidJobID_WithAuth(t *testing.T) {
	r := newTestRouter()
	withTestActor(r, uuid.New(), models.RoleCustomer)
	handler := &JobHandler{jobs: nil}
	r.POST("/jobs/:id/status", handler.TransitionStatus)

	req, _ := http.NewRequest("POST", "/jobs/invalid-uuid/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobHandler_DeleteJob_Unauthorized(t *testing.T) {
	r := newTestRouter()
	handler := &JobHandler{jobs: nil}
	r.DELETE("/jobs/:id", handler.DeleteJob)

	jobID := uuid.New()
	req, _ := http.NewRequest("DELETE", "/jobs/"+jobID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
