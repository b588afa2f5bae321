package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/dto"
	"github.com/SscSPs/caisse_ledger/internal/middleware"
	"github.com/SscSPs/caisse_ledger/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// accountHandler serves the routes of one account kind.
type accountHandler struct {
	kind               domain.AccountKind
	accountService     portssvc.AccountSvcFacade
	transactionService portssvc.TransactionSvcFacade
	archiveService     portssvc.ArchiveSvcFacade
	historyService     portssvc.DailyHistorySvcFacade
	loc                *time.Location
	now                func() time.Time
}

// registerAccountRoutes registers the routes of one account kind under its URL segment.
// privileged guards the secret-gated endpoints (rate limiting).
func registerAccountRoutes(rg *gin.RouterGroup, kind domain.AccountKind, services *portssvc.ServiceContainer, loc *time.Location, now func() time.Time, privileged ...gin.HandlerFunc) {
	h := &accountHandler{
		kind:               kind,
		accountService:     services.Account,
		transactionService: services.Transaction,
		archiveService:     services.Archive,
		historyService:     services.DailyHistory,
		loc:                loc,
		now:                now,
	}

	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(privileged), handler)
	}

	accounts := rg.Group("/" + kindSegments[kind])
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deleteAccount)
		accounts.PUT("/:id/privileged", guarded(h.updatePrivileged)...)
		accounts.POST("/:id/balance", guarded(h.getBalance)...)
		accounts.POST("/:id/reset", h.resetAccount)
		accounts.GET("/:id/transactions", h.listTransactions)
		accounts.GET("/:id/archives", h.listArchives)
		accounts.POST("/:id/archives", h.archiveAccount)
		accounts.GET("/:id/history", h.listHistory)
		accounts.POST("/:id/history", h.snapshotAccount)
	}
}

func (h *accountHandler) ref(c *gin.Context) domain.AccountRef {
	return domain.AccountRef{Kind: h.kind, ID: c.Param("id")}
}

// createAccount godoc
// @Summary Create a cash drawer or bank account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Security BearerAuth
// @Router /ledger/{kind} [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), h.kind, req, userID)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts of one kind
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /ledger/{kind} [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), h.kind)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// getAccount godoc
// @Summary Get an account
// @Description Amounts are omitted for accounts protected by a secret.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /ledger/{kind}/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), h.ref(c))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update account metadata
// @Description Balances cannot be changed here; use the privileged endpoint.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Security BearerAuth
// @Router /ledger/{kind}/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	account, err := h.accountService.UpdateAccountMetadata(c.Request.Context(), h.ref(c), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updatePrivileged godoc
// @Summary Privileged account edit
// @Description Replaces balances, metadata or the secret after verifying the account's secret.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.PrivilegedUpdateRequest true "Secret and changes"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} map[string]string "Secret does not match"
// @Failure 429 {object} map[string]string "Too many attempts"
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/privileged [put]
func (h *accountHandler) updatePrivileged(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.PrivilegedUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	account, err := h.accountService.UpdateAccountPrivileged(c.Request.Context(), h.ref(c), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getBalance godoc
// @Summary Live balance summary
// @Description Runs the balance calculator over the current period. Requires the secret when one is set.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   secret body dto.BalanceSummaryRequest false "Visibility secret"
// @Success 200 {object} dto.BalanceSummaryResponse
// @Failure 403 {object} map[string]string "Secret required"
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/balance [post]
func (h *accountHandler) getBalance(c *gin.Context) {
	var req dto.BalanceSummaryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err, "request format")
			return
		}
	}
	ctx := c.Request.Context()
	ref := h.ref(c)

	summary, err := h.accountService.GetBalanceSummary(ctx, ref, req.Secret)
	if err != nil {
		respondError(c, err, "Failed to compute balance")
		return
	}
	account, err := h.accountService.GetAccount(ctx, ref)
	if err != nil {
		respondError(c, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceSummaryResponse{
		AccountID:   account.AccountID,
		Kind:        account.Kind,
		PeriodStart: account.PeriodStartedAt,
		Summary:     summary,
	})
}

// resetAccount godoc
// @Summary Reset an account
// @Description Zeroes every initial amount and starts a new balance period without archiving.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/reset [post]
func (h *accountHandler) resetAccount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	account, err := h.accountService.ResetAccount(c.Request.Context(), h.ref(c), userID)
	if err != nil {
		respondError(c, err, "Failed to reset account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Transactions, archives and history are kept.
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /ledger/{kind}/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.accountService.DeleteAccount(c.Request.Context(), h.ref(c), userID); err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}

// dayStart reinterprets a date-only query value as midnight in the ledger's location.
func (h *accountHandler) dayStart(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, h.loc)
	return &d
}

// dayEnd returns the exclusive end of the given day.
func (h *accountHandler) dayEnd(t *time.Time) *time.Time {
	d := h.dayStart(t)
	if d == nil {
		return nil
	}
	next := d.AddDate(0, 0, 1)
	return &next
}

// listTransactions godoc
// @Summary List an account's transactions
// @Description Newest first, paginated with nextToken. "to" is inclusive.
// @Tags transactions
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   currency query string false "Currency filter"
// @Param   from query string false "First day (YYYY-MM-DD)"
// @Param   to query string false "Last day (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Param   currentPeriod query bool false "Only transactions counted in the live balance"
// @Success 200 {object} dto.ListTransactionsResponse
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/transactions [get]
func (h *accountHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	cursor, err := pagination.DecodeCursor(params.NextToken)
	if err != nil {
		bindError(c, err, "nextToken")
		return
	}

	ctx := c.Request.Context()
	ref := h.ref(c)
	filter := domain.TransactionFilter{
		Source:       ref,
		CurrencyCode: params.Currency,
		From:         h.dayStart(params.From),
		To:           h.dayEnd(params.To),
		After:        cursor,
		Limit:        params.Limit + 1,
	}
	if params.CurrentPeriod {
		account, err := h.accountService.GetAccount(ctx, ref)
		if err != nil {
			respondError(c, err, "Failed to list transactions")
			return
		}
		if filter.From == nil || filter.From.Before(account.PeriodStartedAt) {
			filter.From = &account.PeriodStartedAt
		}
	}

	resp := dto.ListTransactionsResponse{Transactions: []dto.TransactionResponse{}}
	var last domain.Transaction
	for txn, err := range h.transactionService.ListTransactions(ctx, filter) {
		if err != nil {
			respondError(c, err, "Failed to list transactions")
			return
		}
		if len(resp.Transactions) == params.Limit {
			resp.NextToken = pagination.EncodeCursor(last)
			break
		}
		resp.Transactions = append(resp.Transactions, dto.ToTransactionResponse(&txn))
		last = txn
	}

	logger.Debug("Transactions listed", slog.Int("count", len(resp.Transactions)), slog.Bool("has_more", resp.NextToken != ""))
	c.JSON(http.StatusOK, resp)
}

// listArchives godoc
// @Summary List an account's monthly archives
// @Tags archives
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.ListArchivesResponse
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/archives [get]
func (h *accountHandler) listArchives(c *gin.Context) {
	archives, err := h.archiveService.ListArchives(c.Request.Context(), h.ref(c))
	if err != nil {
		respondError(c, err, "Failed to list archives")
		return
	}
	c.JSON(http.StatusOK, dto.ListArchivesResponse{Archives: archives})
}

// archiveAccount godoc
// @Summary Archive one account for a month and reset it
// @Tags archives
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   period body dto.ArchiveRequest true "Closing month"
// @Success 200 {object} domain.ArchiveRecord
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/archives [post]
func (h *accountHandler) archiveAccount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	record, err := h.archiveService.ArchiveAccount(c.Request.Context(), h.ref(c), req.Period(), userID)
	if err != nil {
		respondError(c, err, "Failed to archive account")
		return
	}
	c.JSON(http.StatusOK, record)
}

// listHistory godoc
// @Summary List an account's daily history
// @Tags history
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   from query string false "First day (YYYY-MM-DD)"
// @Param   to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.ListHistoryResponse
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/history [get]
func (h *accountHandler) listHistory(c *gin.Context) {
	var params dto.ListHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	records, err := h.historyService.ListDailyHistory(c.Request.Context(), h.ref(c), h.dayStart(params.From), h.dayEnd(params.To))
	if err != nil {
		respondError(c, err, "Failed to list history")
		return
	}
	c.JSON(http.StatusOK, dto.ListHistoryResponse{History: records})
}

// snapshotAccount godoc
// @Summary Record the daily snapshot of one account
// @Description Overwrites the existing record for the same day.
// @Tags history
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   day body dto.SnapshotRequest false "Day (defaults to today)"
// @Success 200 {object} domain.DailyHistoryRecord
// @Security BearerAuth
// @Router /ledger/{kind}/{id}/history [post]
func (h *accountHandler) snapshotAccount(c *gin.Context) {
	var req dto.SnapshotRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err, "request format")
			return
		}
	}
	day := h.now().In(h.loc)
	if req.Date != nil {
		day = *h.dayStart(req.Date)
	}
	record, err := h.historyService.SnapshotAccount(c.Request.Context(), h.ref(c), day)
	if err != nil {
		respondError(c, err, "Failed to record daily history")
		return
	}
	c.JSON(http.StatusOK, record)
}
