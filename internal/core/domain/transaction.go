package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind names the ledger operation that produced a record.
type TransactionKind string

const (
	Deposit  TransactionKind = "deposit"
	Withdraw TransactionKind = "withdraw"
	Transfer TransactionKind = "transfer"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case Deposit, Withdraw, Transfer:
		return true
	}
	return false
}

// TransactionRecord is an append-only audit entry. Records are never updated or deleted.
type TransactionRecord struct {
	ID           string          `json:"id"`
	Kind         TransactionKind `json:"kind"`
	FromIdentity string          `json:"fromIdentity,omitempty"` // Empty for deposits
	ToIdentity   string          `json:"toIdentity,omitempty"`   // Empty for withdrawals
	CurrencyID   string          `json:"currencyID"`
	Amount       decimal.Decimal `json:"amount"`
	Timestamp    time.Time       `json:"timestamp"`
}
