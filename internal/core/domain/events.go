package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a notification emitted by the ledger after a successful mutation.
type Event interface {
	isEvent()
}

// BalanceChanged is emitted whenever an account balance moves.
type BalanceChanged struct {
	Identity   string
	CurrencyID string
	OldBalance decimal.Decimal
	NewBalance decimal.Decimal
	At         time.Time
}

// TransactionRecorded is emitted once per logical operation, after the
// balance changes it caused.
type TransactionRecorded struct {
	Kind         TransactionKind
	FromIdentity string
	ToIdentity   string
	CurrencyID   string
	Amount       decimal.Decimal
	At           time.Time
}

func (BalanceChanged) isEvent()      {}
func (TransactionRecorded) isEvent() {}
