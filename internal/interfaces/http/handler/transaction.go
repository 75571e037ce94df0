package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentapp "github.com/webdevsha/permitak/internal/application/payment"
	"github.com/webdevsha/permitak/internal/interfaces/http/dto"
)

// TransactionHandler serves the income and expense ledger
type TransactionHandler struct {
	BaseHandler
	ledger *paymentapp.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledger *paymentapp.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// List returns a page of ledger entries
// GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var filter paymentapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.ledger.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Get returns a single ledger entry
// GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	tx, err := h.ledger.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Create records a manual ledger entry
// POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req paymentapp.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	tx, err := h.ledger.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// Summary totals the approved entries matching the filter
// GET /transactions/summary
func (h *TransactionHandler) Summary(c *gin.Context) {
	var filter paymentapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	summary, err := h.ledger.Summary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
