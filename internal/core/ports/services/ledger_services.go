package services

import (
	"context"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read-only balance queries. Currency ids may be empty to mean the default currency.
type LedgerReaderSvc interface {
	HasAccount(identity, currencyID string) bool
	Balance(identity, currencyID string) decimal.Decimal
	Has(identity string, amount decimal.Decimal, currencyID string) bool
	AccountsFor(identity string) map[string]domain.Account

	// Transactions returns the persisted audit records touching identity, newest first.
	Transactions(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error)
}

// LedgerWriterSvc defines balance mutations
type LedgerWriterSvc interface {
	CreateAccount(ctx context.Context, identity, displayName, currencyID string) (bool, error)
	Deposit(ctx context.Context, identity string, amount decimal.Decimal, currencyID string) error
	Withdraw(ctx context.Context, identity string, amount decimal.Decimal, currencyID string) error
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal, currencyID string) error
	SetBalance(ctx context.Context, identity string, target decimal.Decimal, currencyID string) error
	ResetBalance(ctx context.Context, identity, currencyID string) error
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
