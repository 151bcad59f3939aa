package dto

import (
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListTransactionsParams defines the query parameters for listing audit records.
type ListTransactionsParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// TransactionResponse defines the data returned for one audit record.
type TransactionResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	FromIdentity string          `json:"fromIdentity,omitempty"`
	ToIdentity   string          `json:"toIdentity,omitempty"`
	CurrencyID   string          `json:"currencyID"`
	Amount       decimal.Decimal `json:"amount"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ListTransactionsResponse wraps a page of audit records, newest first.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToTransactionResponse converts a domain.TransactionRecord to its DTO
func ToTransactionResponse(t domain.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		Kind:         string(t.Kind),
		FromIdentity: t.FromIdentity,
		ToIdentity:   t.ToIdentity,
		CurrencyID:   t.CurrencyID,
		Amount:       t.Amount,
		Timestamp:    t.Timestamp,
	}
}

// ToListTransactionsResponse converts records preserving their order.
func ToListTransactionsResponse(records []domain.TransactionRecord) ListTransactionsResponse {
	res := ListTransactionsResponse{Transactions: make([]TransactionResponse, len(records))}
	for i, r := range records {
		res.Transactions[i] = ToTransactionResponse(r)
	}
	return res
}
