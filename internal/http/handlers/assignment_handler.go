package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maslovdev/jobmarket-backend/internal/service"
)

type AssignmentHandler struct {
	assignments *service.AssignmentService
}

func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// GetAssignment GET /assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
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

	assignment, err := h.assignments.GetAssignment(c.Request.Context(), actor, assignmentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetJobAssignment GET /jobs/:id/assignment
func (h *AssignmentHandler) GetJobAssignment(c *gin.Context) {
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

	assignment, err := h.assignments.GetJobAssignment(c.Request.Context(), actor, jobID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// ListMyAssignments GET /assignments/my
func (h *AssignmentHandler) ListMyAssignments(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	assignments, err := h.assignments.ListMyAssignments(c.Request.Context(), actor, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// UpdateNotes PATCH /assignments/:id/notes
func (h *AssignmentHandler) UpdateNotes(c *gin.Context) {
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

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	assignment, err := h.assignments.UpdateNotes(c.Request.Context(), actor, assignmentID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}
