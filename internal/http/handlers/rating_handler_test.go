package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/maslovdev/jobmarket-backend/internal/models"
)

func TestRatingHandler_SubmitRating_Unauthorized(t *testing.T) {
	r := newTestRouter()
	handler := &RatingHandler{ratings: nil}
	r.POST("/assignments/:id/ratings", handler.SubmitRating)

	assignmentID := uuid.New()
	req, _ := http.NewRequest("POST", "/assignments/"+assignmentID.String()+"/ratings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRatingHandler_ListUserRatings_InvalidUserID(t *testing.T) {
	r := newTestRouter()
	handler := &RatingHandler{ratings: nil}
	r.GET("/users/:id/ratings", handler.ListUserRatings)

	req, _ := http.NewRequest("GET", "/users/invalid-uuid/ratings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingHandler_MarkHelpful_InvalidRatingID_WithAuth(t *testing.T) {
	r := newTestRouter()
	withTestActor(r, uuid.New(), models.RoleWorker)
	handler := &RatingHandler{ratings: nil}
	r.POST("/ratings/:id/helpful", handler.MarkHelpful)

	req, _ := http.NewRequest("POST", "/ratings/invalid-uuid/helpful", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingHandler_CanRate_Unauthorized(t *testing.T) {
	r := newTestRouter()
	handler := &RatingHandler{ratings: nil}
	r.GET("/assignments/:id/can-rate", handler.CanRate)

	assignmentID := uuid.New()
	req, _ := http.NewRequest("GET", "/assignments/"+assignmentID.String()+"/can-rate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
