package services

import (
	"github.com/SscSPs/economy_ledger/internal/core/domain"
)

// CurrencyReaderSvc defines read operations for registered currencies
type CurrencyReaderSvc interface {
	// Get returns the currency registered under id.
	Get(id string) (domain.Currency, bool)

	// Default returns the default currency, synthesizing a fallback when none is registered.
	Default() domain.Currency

	// All returns every registered currency in registration order.
	All() []domain.Currency

	// Resolve maps an empty id to the default currency and fails with
	// apperrors.ErrCurrencyNotFound for unknown ids.
	Resolve(id string) (domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for registered currencies
type CurrencyWriterSvc interface {
	// Register inserts or replaces a currency by id.
	Register(currency domain.Currency) error

	// Reload re-reads the configured definitions and applies the valid ones.
	// Currencies no longer defined stay registered. It returns the rejected
	// definitions, or an error when the source could not be read.
	Reload() (rejected []error, err error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
