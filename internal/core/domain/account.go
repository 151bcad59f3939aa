package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one identity's holdings in one currency. At most one exists per
// (Identity, CurrencyID) pair and it is never deleted.
type Account struct {
	Identity          string          `json:"identity"`    // Stable player identifier
	DisplayName       string          `json:"displayName"` // Last known, advisory only
	CurrencyID        string          `json:"currencyID"`
	Balance           decimal.Decimal `json:"balance"`
	CreatedAt         time.Time       `json:"createdAt"`
	LastTransactionAt time.Time       `json:"lastTransactionAt"`
	// Version grows with every mutation. Stores only overwrite a row with an
	// equal or newer version, so a stale snapshot never replaces a newer save.
	Version           int64           `json:"version"`
}

// NextVersion returns the version for the account's next mutation. It is at
// least the mutation time in microseconds so an account reopened after a
// failed load still outranks rows written before the restart.
func (a Account) NextVersion(at time.Time) int64 {
	return max(a.Version+1, at.UnixMicro())
}

// AccountKey identifies an account slot.
type AccountKey struct {
	Identity   string
	CurrencyID string
}

// Key returns the account's slot key.
func (a Account) Key() AccountKey {
	return AccountKey{Identity: a.Identity, CurrencyID: a.CurrencyID}
}

// AccountsByIdentity maps identity -> currency id -> account.
type AccountsByIdentity map[string]map[string]Account

// Put inserts or replaces the account under its key.
func (m AccountsByIdentity) Put(a Account) {
	byCurrency, ok := m[a.Identity]
	if !ok {
		byCurrency = make(map[string]Account)
		m[a.Identity] = byCurrency
	}
	byCurrency[a.CurrencyID] = a
}

// Len returns the total number of accounts across all identities.
func (m AccountsByIdentity) Len() int {
	n := 0
	for _, byCurrency := range m {
		n += len(byCurrency)
	}
	return n
}
