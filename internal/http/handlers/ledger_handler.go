package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maslovdev/jobmarket-backend/internal/service"
)

type LedgerHandler struct {
	ledger *service.LedgerService
}

func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// ListTransactions GET /transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	transactions, err := h.ledger.ListTransactions(c.Request.Context(), actor, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// ListEarnings GET /earnings
func (h *LedgerHandler) ListEarnings(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	earnings, err := h.ledger.ListEarnings(c.Request.Context(), actor, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": earnings})
}

// EarningsSummary GET /earnings/summary
func (h *LedgerHandler) EarningsSummary(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		failUnauthorized(c)
		return
	}

	summary, err := h.ledger.EarningsSummary(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SettleAssignment POST /assignments/:id/settle
// Ручная сверка: расчёт идемпотентен, повторный вызов вернёт существующую
// транзакцию. Доступна только участникам назначения.
func (h *LedgerHandler) SettleAssignment(c *gin.Context) {
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

	transaction, err := h.ledger.SettleAssignmentFor(c.Request.Context(), actor, assignmentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}
