package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/maslovdev/jobmarket-backend/internal/service"
)

type ResponseHandler struct {
	responses *service.ResponseService
}

func NewResponseHandler(responses *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responses: responses}
}

type responseRequest struct {
	ResponseType   string           `json:"response_type" binding:"required"`
	QuoteAmount    *decimal.Decimal `json:"quote_amount"`
	Message        string           `json:"message"`
	EstimatedHours *int             `json:"estimated_hours"`
}

// CreateResponse POST /jobs/:id/responses
func (h *ResponseHandler) CreateResponse(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	jobID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	var req responseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	response, err := h.responses.CreateResponse(c.Request.Context(), actor, service.CreateResponseInput{
		JobID:          jobID,
		ResponseType:   req.ResponseType,
		QuoteAmount:    req.QuoteAmount,
		Message:        req.Message,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// ListJobResponses GET /jobs/:id/responses
func (h *ResponseHandler) ListJobResponses(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	jobID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	responses, err := h.responses.ListJobResponses(c.Request.Context(), actor, jobID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

// ListMyResponses GET /responses/my
func (h *ResponseHandler) ListMyResponses(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	responses, err := h.responses.ListMyResponses(c.Request.Context(), actor, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

// UpdateResponse PUT /responses/:id
func (h *ResponseHandler) UpdateResponse(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	responseID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	var req responseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	response, err := h.responses.UpdateResponse(c.Request.Context(), actor, responseID, service.CreateResponseInput{
		ResponseType:   req.ResponseType,
		QuoteAmount:    req.QuoteAmount,
		Message:        req.Message,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// WithdrawResponse POST /responses/:id/withdraw
func (h *ResponseHandler) WithdrawResponse(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	responseID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	if err := h.responses.WithdrawResponse(c.Request.Context(), actor, responseID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "отклик отозван"})
}

// AcceptResponse POST /responses/:id/accept
func (h *ResponseHandler) AcceptResponse(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}
	responseID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	assignment, err := h.responses.AcceptResponse(c.Request.Context(), actor, responseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}
