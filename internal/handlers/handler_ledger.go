package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/economy_ledger/internal/core/ports/services"
	"github.com/SscSPs/economy_ledger/internal/dto"
	"github.com/SscSPs/economy_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const defaultTransactionsLimit = 50

// ledgerHandler handles account balance and transfer requests.
type ledgerHandler struct {
	ledger     portssvc.LedgerSvcFacade
	currencies portssvc.CurrencyReaderSvc
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, cs portssvc.CurrencyReaderSvc) *ledgerHandler {
	return &ledgerHandler{ledger: ls, currencies: cs}
}

// RegisterLedgerRoutes registers account and transfer routes on rg.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerSvcFacade, currencies portssvc.CurrencyReaderSvc) {
	h := newLedgerHandler(ledger, currencies)

	accounts := rg.Group("/accounts/:identity")
	{
		accounts.GET("", h.listAccounts)
		accounts.POST("", h.createAccount)
		accounts.GET("/balance", h.getBalance)
		accounts.PUT("/balance", h.setBalance)
		accounts.POST("/deposit", h.deposit)
		accounts.POST("/withdraw", h.withdraw)
		accounts.POST("/reset", h.resetBalance)
		accounts.GET("/transactions", h.listTransactions)
	}
	rg.POST("/transfers", h.transfer)
}

// requestLogger returns the request logger enriched with the target identity.
func requestLogger(c *gin.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if identity := c.Param("identity"); identity != "" {
		logger = logger.With(slog.String("identity", identity))
	}
	return logger
}

// respondBalance writes the current balance of identity in currencyID.
func (h *ledgerHandler) respondBalance(c *gin.Context, logger *slog.Logger, status int, identity, currencyID string) {
	currency, err := h.currencies.Resolve(currencyID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve currency")
		return
	}
	c.JSON(status, dto.ToBalanceResponse(identity, currency,
		h.ledger.HasAccount(identity, currency.ID),
		h.ledger.Balance(identity, currency.ID)))
}

// listAccounts godoc
// @Summary List an identity's accounts
// @Tags accounts
// @Produce  json
// @Param   identity path string true "Player identity"
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /accounts/{identity} [get]
func (h *ledgerHandler) listAccounts(c *gin.Context) {
	identity := c.Param("identity")
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(identity, h.ledger.AccountsFor(identity), h.currencies.Get))
}

// createAccount godoc
// @Summary Open an account
// @Description Opens an account at the currency's initial balance. Opening an existing account is a no-op.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   identity path string true "Player identity"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.CreateAccountResponse "Account opened"
// @Success 200 {object} dto.CreateAccountResponse "Account already existed"
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 503 {object} map[string]string "Store unavailable, account opened in memory"
// @Security BearerAuth
// @Router /accounts/{identity} [post]
func (h *ledgerHandler) createAccount(c *gin.Context) {
	logger := requestLogger(c)
	identity := c.Param("identity")

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	created, err := h.ledger.CreateAccount(c.Request.Context(), identity, req.DisplayName, req.CurrencyID)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	currency, err := h.currencies.Resolve(req.CurrencyID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve currency")
		return
	}
	account := h.ledger.AccountsFor(identity)[currency.ID]

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		logger.Info("Account created", slog.String("currency_id", currency.ID))
	}
	c.JSON(status, dto.CreateAccountResponse{Created: created, Account: dto.ToAccountResponse(account, currency)})
}

// getBalance godoc
// @Summary Get a balance
// @Description Returns zero with hasAccount=false when the account does not exist.
// @Tags accounts
// @Produce  json
// @Param   identity path string true "Player identity"
// @Param   currency query string false "Currency ID, defaults to the default currency"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Security BearerAuth
// @Router /accounts/{identity}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	h.respondBalance(c, requestLogger(c), http.StatusOK, c.Param("identity"), c.Query("currency"))
}

// deposit godoc
// @Summary Deposit funds
// @Description Credits the account, opening it at zero if needed.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   identity path string true "Player identity"
// @Param   deposit body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Amount not positive"
// @Failure 409 {object} map[string]string "Balance ceiling exceeded"
// @Failure 503 {object} map[string]string "Store unavailable, deposit applied in memory"
// @Security BearerAuth
// @Router /accounts/{identity}/deposit [post]
func (h *ledgerHandler) deposit(c *gin.Context) {
	logger := requestLogger(c)
	identity := c.Param("identity")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.ledger.Deposit(c.Request.Context(), identity, req.Amount, req.CurrencyID); err != nil {
		respondError(c, logger, err, "Deposit failed")
		return
	}
	h.respondBalance(c, logger, http.StatusOK, identity, req.CurrencyID)
}

// withdraw godoc
// @Summary Withdraw funds
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   identity path string true "Player identity"
// @Param   withdrawal body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Amount not positive"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Insufficient funds"
// @Failure 503 {object} map[string]string "Store unavailable, withdrawal applied in memory"
// @Security BearerAuth
// @Router /accounts/{identity}/withdraw [post]
func (h *ledgerHandler) withdraw(c *gin.Context) {
	logger := requestLogger(c)
	identity := c.Param("identity")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.ledger.Withdraw(c.Request.Context(), identity, req.Amount, req.CurrencyID); err != nil {
		respondError(c, logger, err, "Withdraw failed")
		return
	}
	h.respondBalance(c, logger, http.StatusOK, identity, req.CurrencyID)
}

// setBalance godoc
// @Summary Set a balance
// @Description Moves the balance to the target, recorded as a deposit or withdrawal of the difference.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   identity path string true "Player identity"
// @Param   balance body dto.SetBalanceRequest true "Target balance"
// @Success 200 {object} dto.BalanceResponse
// @Failure 409 {object} map[string]string "Target outside the currency bounds"
// @Security BearerAuth
// @Router /accounts/{identity}/balance [put]
func (h *ledgerHandler) setBalance(c *gin.Context) {
	logger := requestLogger(c)
	identity := c.Param("identity")

	var req dto.SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.ledger.SetBalance(c.Request.Context(), identity, req.Balance, req.CurrencyID); err != nil {
		respondError(c, logger, err, "Set balance failed")
		return
	}
	logger.Info("Balance set", slog.String("target", req.Balance.String()))
	h.respondBalance(c, logger, http.StatusOK, identity, req.CurrencyID)
}

// resetBalance godoc
// @Summary Reset a balance
// @Description Sets the balance back to the currency's initial balance.
// @Tags accounts
// @Produce  json
// @Param   identity path string true "Player identity"
// @Param   currency query string false "Currency ID, defaults to the default currency"
// @Success 200 {object} dto.BalanceResponse
// @Security BearerAuth
// @Router /accounts/{identity}/reset [post]
func (h *ledgerHandler) resetBalance(c *gin.Context) {
	logger := requestLogger(c)
	identity := c.Param("identity")
	currencyID := c.Query("currency")

	if err := h.ledger.ResetBalance(c.Request.Context(), identity, currencyID); err != nil {
		respondError(c, logger, err, "Reset balance failed")
		return
	}
	logger.Info("Balance reset", slog.String("currency_id", currencyID))
	h.respondBalance(c, logger, http.StatusOK, identity, currencyID)
}

// listTransactions godoc
// @Summary List audit records
// @Description Returns persisted transactions touching the identity, newest first.
// @Tags accounts
// @Produce  json
// @Param   identity path string true "Player identity"
// @Param   limit query int false "Maximum number of records (1-500)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 503 {object} map[string]string "Store unavailable"
// @Security BearerAuth
// @Router /accounts/{identity}/transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := requestLogger(c)

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid query parameters for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	if params.Limit == 0 {
		params.Limit = defaultTransactionsLimit
	}

	records, err := h.ledger.Transactions(c.Request.Context(), c.Param("identity"), params.Limit)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(records))
}

// transfer godoc
// @Summary Transfer funds
// @Description Withdraws from the sender then deposits to the receiver. A failed deposit is compensated.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.BalanceResponse "Sender balance"
// @Failure 400 {object} map[string]string "Invalid amount or self transfer"
// @Failure 404 {object} map[string]string "Sender account not found"
// @Failure 409 {object} map[string]string "Insufficient funds or receiver ceiling exceeded"
// @Failure 500 {object} map[string]string "Compensation failed"
// @Failure 503 {object} map[string]string "Store unavailable, transfer applied in memory"
// @Security BearerAuth
// @Router /transfers [post]
func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := requestLogger(c)

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("from", req.From), slog.String("to", req.To))

	if err := h.ledger.Transfer(c.Request.Context(), req.From, req.To, req.Amount, req.CurrencyID); err != nil {
		respondError(c, logger, err, "Transfer failed")
		return
	}
	logger.Info("Transfer completed", slog.String("amount", req.Amount.String()))
	h.respondBalance(c, logger, http.StatusOK, req.From, req.CurrencyID)
}
