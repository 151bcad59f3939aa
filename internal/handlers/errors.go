package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// statusForError maps ledger errors to HTTP status codes. Compensation is
// checked first because it wraps the deposit failure that triggered it.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrTransferCompensation):
		return http.StatusInternalServerError
	case errors.Is(err, apperrors.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrSelfTransfer),
		errors.Is(err, apperrors.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrCurrencyNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrBalanceCeilingExceeded),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON body. Business-rule failures are logged at
// warn level, faults at error level.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := statusForError(err)
	attrs := []any{slog.String("error", err.Error()), slog.Int("status", status)}
	if status >= http.StatusInternalServerError {
		logger.Error(msg, attrs...)
	} else {
		logger.Warn(msg, attrs...)
	}

	body := gin.H{"error": err.Error()}
	if errors.Is(err, apperrors.ErrNotPersisted) && !errors.Is(err, apperrors.ErrTransferCompensation) {
		body["applied"] = true
	}
	if apperrors.IsRetryable(err) {
		body["retryable"] = true
	}
	c.JSON(status, body)
}
