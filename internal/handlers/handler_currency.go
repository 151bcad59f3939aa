package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/economy_ledger/internal/core/ports/services"
	"github.com/SscSPs/economy_ledger/internal/dto"
	"github.com/SscSPs/economy_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

// newCurrencyHandler creates a new currencyHandler.
func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{
		currencyService: cs,
	}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.registerCurrency)
		currencies.POST("/reload", h.reloadCurrencies)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:currencyID", h.getCurrency)
	}
}

// registerCurrency godoc
// @Summary Register a currency
// @Description Adds or replaces a currency definition. Marking it default clears the previous default.
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   currency body dto.CreateCurrencyRequest true "Currency definition"
// @Success 201 {object} dto.CurrencyResponse
// @Failure 400 {object} map[string]string "Invalid definition"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /currencies [post]
func (h *currencyHandler) registerCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		logger.Error("Operator ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("currency_id", req.ID))
	currency := req.ToDomain()
	if err := h.currencyService.Register(currency); err != nil {
		respondError(c, logger, err, "Failed to register currency")
		return
	}

	registered, _ := h.currencyService.Get(currency.ID)
	logger.Info("Currency registered", slog.String("registered_by", operatorID), slog.Bool("is_default", registered.IsDefault))
	c.JSON(http.StatusCreated, dto.ToCurrencyResponse(registered))
}

// reloadCurrencies godoc
// @Summary Reload currency definitions
// @Description Re-reads the currencies file. Definitions replace currencies by id; currencies no longer in the file stay registered. Invalid definitions are reported and skipped.
// @Tags currencies
// @Produce  json
// @Success 200 {object} dto.ReloadCurrenciesResponse
// @Failure 400 {object} map[string]string "Definitions could not be read"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /currencies/reload [post]
func (h *currencyHandler) reloadCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		logger.Error("Operator ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rejected, err := h.currencyService.Reload()
	if err != nil {
		respondError(c, logger, err, "Failed to reload currencies")
		return
	}
	for _, r := range rejected {
		logger.Warn("Currency definition rejected", slog.String("error", r.Error()))
	}

	all := h.currencyService.All()
	logger.Info("Currencies reloaded",
		slog.String("reloaded_by", operatorID),
		slog.Int("count", len(all)),
		slog.Int("rejected", len(rejected)))
	c.JSON(http.StatusOK, dto.ToReloadCurrenciesResponse(all, rejected))
}

// getCurrency godoc
// @Summary Get a currency by id
// @Tags currencies
// @Produce  json
// @Param   currencyID path string true "Currency ID"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Security BearerAuth
// @Router /currencies/{currencyID} [get]
func (h *currencyHandler) getCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currencyID := c.Param("currencyID")

	currency, err := h.currencyService.Resolve(currencyID)
	if err != nil {
		respondError(c, logger.With(slog.String("currency_id", currencyID)), err, "Failed to get currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// listCurrencies godoc
// @Summary List all currencies
// @Description Lists currencies in registration order. An empty registry reports the fallback currency.
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Security BearerAuth
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(h.currencyService.All()))
}
