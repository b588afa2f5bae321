package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func registerTransactionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &transactionHandler{transactionService: services.Transaction}
	rg.POST("/transactions", h.recordTransaction)
}

// recordTransaction godoc
// @Summary Record a transaction
// @Description Records a revenue or expense against an existing cash drawer or bank account, in one of its currencies.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or currency not held by the account"
// @Failure 404 {object} map[string]string "Source account not found"
// @Security BearerAuth
// @Router /ledger/transactions [post]
func (h *transactionHandler) recordTransaction(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	txn, err := h.transactionService.RecordTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to record transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}
