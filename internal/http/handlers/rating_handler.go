package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maslovdev/jobmarket-backend/internal/service"
)

type RatingHandler struct {
	ratings *service.RatingService
}

func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

type ratingRequest struct {
	RateeID              *uuid.UUID       `json:"ratee_id"`
	RatingType           string           `json:"rating_type"`
	Score                *decimal.Decimal `json:"score"`
	Review               string           `json:"review"`
	QualityScore         *decimal.Decimal `json:"quality_score"`
	CommunicationScore   *decimal.Decimal `json:"communication_score"`
	PunctualityScore     *decimal.Decimal `json:"punctuality_score"`
	ProfessionalismScore *decimal.Decimal `json:"professionalism_score"`
	IsAnonymous          bool             `json:"is_anonymous"`
}

// SubmitRating POST /assignments/:id/ratings
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	assignmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	rating, err := h.ratings.SubmitRating(c.Request.Context(), actor, service.SubmitRatingInput{
		AssignmentID:         assignmentID,
		RateeID:              req.RateeID,
		RatingType:           req.RatingType,
		Score:                req.Score,
		Review:               req.Review,
		QualityScore:         req.QualityScore,
		CommunicationScore:   req.CommunicationScore,
		PunctualityScore:     req.PunctualityScore,
		ProfessionalismScore: req.ProfessionalismScore,
		IsAnonymous:          req.IsAnonymous,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// UpdateRating PUT /ratings/:id
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	ratingID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	rating, err := h.ratings.UpdateRating(c.Request.Context(), actor, ratingID, service.SubmitRatingInput{
		Score:                req.Score,
		Review:               req.Review,
		QualityScore:         req.QualityScore,
		CommunicationScore:   req.CommunicationScore,
		PunctualityScore:     req.PunctualityScore,
		ProfessionalismScore: req.ProfessionalismScore,
		IsAnonymous:          req.IsAnonymous,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

// ListAssignmentRatings GET /assignments/:id/ratings
func (h *RatingHandler) ListAssignmentRatings(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	assignmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	ratings, err := h.ratings.ListAssignmentRatings(c.Request.Context(), actor, assignmentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

// CanRate GET /assignments/:id/can-rate
func (h *RatingHandler) CanRate(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	assignmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	canRate, err := h.ratings.CanRate(c.Request.Context(), actor, assignmentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_rate": canRate})
}

// ListUserRatings GET /users/:id/ratings
func (h *RatingHandler) ListUserRatings(c *gin.Context) {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	ratings, err := h.ratings.ListUserRatings(c.Request.Context(), userID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

// UserRatingSummary GET /users/:id/ratings/summary
func (h *RatingHandler) UserRatingSummary(c *gin.Context) {
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	summary, err := h.ratings.UserRatingSummary(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MarkHelpful POST /ratings/:id/helpful
func (h *RatingHandler) MarkHelpful(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	ratingID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	count, err := h.ratings.MarkHelpful(c.Request.Context(), actor, ratingID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"helpful_count": count})
}

// RemoveHelpful DELETE /ratings/:id/helpful
func (h *RatingHandler) RemoveHelpful(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	ratingID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	count, err := h.ratings.RemoveHelpful(c.Request.Context(), actor, ratingID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"helpful_count": count})
}
