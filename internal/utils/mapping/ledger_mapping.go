package mapping

import (
	"fmt"
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelAccount converts a domain Account to its stored form
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		Identity:               d.Identity,
		DisplayName:            d.DisplayName,
		CurrencyID:             d.CurrencyID,
		BalanceText:            d.Balance.String(),
		CreatedEpochMs:         d.CreatedAt.UnixMilli(),
		LastTransactionEpochMs: d.LastTransactionAt.UnixMilli(),
		Version:                d.Version,
	}
}

// ToDomainAccount converts a stored account back to the domain. It fails for
// rows whose balance text is not a decimal.
func ToDomainAccount(m models.Account) (domain.Account, error) {
	if m.Identity == "" || m.CurrencyID == "" {
		return domain.Account{}, fmt.Errorf("account row is missing its key")
	}
	balance, err := decimal.NewFromString(m.BalanceText)
	if err != nil {
		return domain.Account{}, fmt.Errorf("invalid balance %q: %w", m.BalanceText, err)
	}
	return domain.Account{
		Identity:          m.Identity,
		DisplayName:       m.DisplayName,
		CurrencyID:        m.CurrencyID,
		Balance:           balance,
		CreatedAt:         time.UnixMilli(m.CreatedEpochMs).UTC(),
		LastTransactionAt: time.UnixMilli(m.LastTransactionEpochMs).UTC(),
		Version:           m.Version,
	}, nil
}

// ToModelAccounts flattens an identity/currency mapping into rows
func ToModelAccounts(accounts domain.AccountsByIdentity) []models.Account {
	rows := make([]models.Account, 0, accounts.Len())
	for _, byCurrency := range accounts {
		for _, a := range byCurrency {
			rows = append(rows, ToModelAccount(a))
		}
	}
	return rows
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToModelTransaction converts a domain TransactionRecord to its stored form
func ToModelTransaction(d domain.TransactionRecord) models.Transaction {
	return models.Transaction{
		ID:               d.ID,
		Kind:             string(d.Kind),
		FromIdentity:     optionalString(d.FromIdentity),
		ToIdentity:       optionalString(d.ToIdentity),
		CurrencyID:       d.CurrencyID,
		AmountText:       d.Amount.String(),
		TimestampEpochMs: d.Timestamp.UnixMilli(),
	}
}

// ToDomainTransaction converts a stored transaction back to the domain
func ToDomainTransaction(m models.Transaction) (domain.TransactionRecord, error) {
	kind := domain.TransactionKind(m.Kind)
	if !kind.Valid() {
		return domain.TransactionRecord{}, fmt.Errorf("unknown transaction kind %q", m.Kind)
	}
	amount, err := decimal.NewFromString(m.AmountText)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("invalid amount %q: %w", m.AmountText, err)
	}
	return domain.TransactionRecord{
		ID:           m.ID,
		Kind:         kind,
		FromIdentity: derefString(m.FromIdentity),
		ToIdentity:   derefString(m.ToIdentity),
		CurrencyID:   m.CurrencyID,
		Amount:       amount,
		Timestamp:    time.UnixMilli(m.TimestampEpochMs).UTC(),
	}, nil
}
