package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/maslovdev/jobmarket-backend/internal/service"
)

type JobHandler struct {
	jobs *service.JobService
}

func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type jobRequest struct {
	Title             string           `json:"title" binding:"required"`
	Category          string           `json:"category" binding:"required"`
	Description       string           `json:"description" binding:"required"`
	Location          string           `json:"location"`
	Latitude          *decimal.Decimal `json:"latitude"`
	Longitude         *decimal.Decimal `json:"longitude"`
	BudgetMin         *decimal.Decimal `json:"budget_min"`
	BudgetMax         *decimal.Decimal `json:"budget_max"`
	FixedAmount       *decimal.Decimal `json:"fixed_amount"`
	Urgency           string           `json:"urgency"`
	EstimatedDuration *int             `json:"estimated_duration"`
	Requirements      string           `json:"requirements"`
}

func (r *jobRequest) toInput() service.CreateJobInput {
	return service.CreateJobInput{
		Title:             r.Title,
		Category:          r.Category,
		Description:       r.Description,
		Location:          r.Location,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		BudgetMin:         r.BudgetMin,
		BudgetMax:         r.BudgetMax,
		FixedAmount:       r.FixedAmount,
		Urgency:           r.Urgency,
		EstimatedDuration: r.EstimatedDuration,
		Requirements:      r.Requirements,
	}
}

// CreateJob POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), actor, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// GetJob GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := parseUUIDParam(c, "id")
	if err != nil {
		failValidation(c, err)
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateJob PUT /jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
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

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	job, err := h.jobs.UpdateJob(c.Request.Context(), actor, jobID, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteJob DELETE /jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
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

	if err := h.jobs.DeleteJob(c.Request.Context(), actor, jobID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "заказ удалён"})
}

// ListMyJobs GET /jobs/my
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	jobs, err := h.jobs.ListCustomerJobs(c.Request.Context(), actor, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ListAvailableJobs GET /jobs/available
func (h *JobHandler) ListAvailableJobs(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	category := c.Query("category")
	location := c.Query("location")
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	jobs, err := h.jobs.ListAvailableJobs(c.Request.Context(), actor, category, location, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// TransitionStatus POST /jobs/:id/status
func (h *JobHandler) TransitionStatus(c *gin.Context) {
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

	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	job, err := h.jobs.TransitionJobStatus(c.Request.Context(), actor, jobID, req.Status, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
