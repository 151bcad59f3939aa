package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConfiguration indicates an invalid currency definition. It is fatal to
// that currency's registration only.
var ErrConfiguration = errors.New("invalid currency configuration")

// ErrInsufficientFunds is returned when a withdrawal would take a balance below its floor.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrBalanceCeilingExceeded is returned when a deposit would take a balance above its ceiling.
var ErrBalanceCeilingExceeded = errors.New("balance ceiling exceeded")

// ErrAccountNotFound is returned when withdrawing from an account that was never opened.
var ErrAccountNotFound = errors.New("account not found")

// ErrCurrencyNotFound is returned when a currency id is not registered.
var ErrCurrencyNotFound = errors.New("currency not found")

// ErrInvalidAmount is returned for zero or negative amounts.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrSelfTransfer is returned when a transfer names the same identity on both sides.
var ErrSelfTransfer = errors.New("cannot transfer to the same account")

// ErrPersistence indicates the store was unreachable or rejected a write.
// When returned from a balance operation the in-memory change has already been applied.
var ErrPersistence = errors.New("persistence failure")

// ErrNotPersisted marks a balance change that was applied in memory but not
// written to the store. It always accompanies ErrPersistence. Repeating the
// request would apply the change twice.
var ErrNotPersisted = errors.New("change applied but not persisted")

// ErrTransferCompensation indicates that the rollback deposit of a failed
// transfer itself failed. The debited funds are unaccounted for.
var ErrTransferCompensation = errors.New("transfer compensation failed")

// AppError carries an HTTP status alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsBusinessRule reports whether err is an expected outcome of a balance
// operation rather than a fault.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrBalanceCeilingExceeded) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrSelfTransfer)
}

// IsRetryable reports whether the caller may retry the operation. Changes
// that were already applied are never retryable.
func IsRetryable(err error) bool {
	if err == nil || IsBusinessRule(err) {
		return false
	}
	if errors.Is(err, ErrNotPersisted) || errors.Is(err, ErrTransferCompensation) {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrConfiguration) || errors.Is(err, ErrCurrencyNotFound) {
		return false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrPersistence)
}
