package repositories

import (
	"context"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
)

// AccountReader defines read operations for persisted accounts
type AccountReader interface {
	// LoadAllAccounts returns every stored account grouped by identity and currency.
	// Individually corrupt rows are logged and skipped rather than failing the load.
	LoadAllAccounts(ctx context.Context) (domain.AccountsByIdentity, error)
}

// AccountWriter defines write operations for persisted accounts
type AccountWriter interface {
	// SaveAccount upserts a single account keyed by (identity, currency). Last write wins.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveAllAccounts upserts every account in one batch, atomically where the store allows it.
	SaveAllAccounts(ctx context.Context, accounts domain.AccountsByIdentity) error
}

// TransactionReader defines read operations for the transaction log
type TransactionReader interface {
	// ListTransactionsByIdentity returns records where identity is either side, newest first.
	ListTransactionsByIdentity(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error)
}

// TransactionWriter defines write operations for the transaction log
type TransactionWriter interface {
	// AppendTransaction inserts a record. Re-inserting an existing ID is a no-op.
	AppendTransaction(ctx context.Context, record domain.TransactionRecord) error
}

// LedgerRepositoryFacade combines all ledger persistence interfaces
// This is the persistence gateway consumed by the ledger and the bootstrap sequencer
type LedgerRepositoryFacade interface {
	AccountReader
	AccountWriter
	TransactionReader
	TransactionWriter

	// Close releases the underlying store.
	Close() error
}
