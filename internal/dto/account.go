package dto

import (
	"sort"
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest opens an account. An empty CurrencyID means the default currency.
type CreateAccountRequest struct {
	DisplayName string `json:"displayName"`
	CurrencyID  string `json:"currencyID"`
}

// CreateAccountResponse reports whether a new account was opened.
type CreateAccountResponse struct {
	Created bool            `json:"created"`
	Account AccountResponse `json:"account"`
}

// AmountRequest is the body of deposit and withdraw calls.
type AmountRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	CurrencyID string          `json:"currencyID"`
}

// SetBalanceRequest is the body of an administrative balance override.
type SetBalanceRequest struct {
	Balance    decimal.Decimal `json:"balance"`
	CurrencyID string          `json:"currencyID"`
}

// TransferRequest moves funds between two identities.
type TransferRequest struct {
	From       string          `json:"from" binding:"required"`
	To         string          `json:"to" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	CurrencyID string          `json:"currencyID"`
}

// AccountResponse defines the data returned for a single account.
type AccountResponse struct {
	Identity          string          `json:"identity"`
	DisplayName       string          `json:"displayName"`
	CurrencyID        string          `json:"currencyID"`
	Balance           decimal.Decimal `json:"balance"`
	FormattedBalance  string          `json:"formattedBalance"`
	CreatedAt         time.Time       `json:"createdAt"`
	LastTransactionAt time.Time       `json:"lastTransactionAt"`
}

// ToAccountResponse renders an account using its currency's display format.
func ToAccountResponse(a domain.Account, c domain.Currency) AccountResponse {
	return AccountResponse{
		Identity:          a.Identity,
		DisplayName:       a.DisplayName,
		CurrencyID:        a.CurrencyID,
		Balance:           a.Balance,
		FormattedBalance:  c.FormatAmount(a.Balance),
		CreatedAt:         a.CreatedAt,
		LastTransactionAt: a.LastTransactionAt,
	}
}

// ListAccountsResponse holds every account of one identity.
type ListAccountsResponse struct {
	Identity string            `json:"identity"`
	Accounts []AccountResponse `json:"accounts"`
}

// ToListAccountsResponse sorts accounts by currency id. lookup supplies the
// display currency; accounts whose currency is no longer registered are
// rendered with the plain decimal.
func ToListAccountsResponse(identity string, accounts map[string]domain.Account, lookup func(id string) (domain.Currency, bool)) ListAccountsResponse {
	res := ListAccountsResponse{Identity: identity, Accounts: make([]AccountResponse, 0, len(accounts))}
	for _, a := range accounts {
		c, ok := lookup(a.CurrencyID)
		if !ok {
			c = domain.Currency{ID: a.CurrencyID, Format: domain.DefaultDisplayFormat, DecimalPlaces: max(0, int(-a.Balance.Exponent()))}
		}
		res.Accounts = append(res.Accounts, ToAccountResponse(a, c))
	}
	sort.Slice(res.Accounts, func(i, j int) bool { return res.Accounts[i].CurrencyID < res.Accounts[j].CurrencyID })
	return res
}

// BalanceResponse answers a balance query. Balance is zero when HasAccount is false.
type BalanceResponse struct {
	Identity         string          `json:"identity"`
	CurrencyID       string          `json:"currencyID"`
	HasAccount       bool            `json:"hasAccount"`
	Balance          decimal.Decimal `json:"balance"`
	FormattedBalance string          `json:"formattedBalance"`
}

// ToBalanceResponse builds a BalanceResponse for the given currency.
func ToBalanceResponse(identity string, c domain.Currency, hasAccount bool, balance decimal.Decimal) BalanceResponse {
	return BalanceResponse{
		Identity:         identity,
		CurrencyID:       c.ID,
		HasAccount:       hasAccount,
		Balance:          balance,
		FormattedBalance: c.FormatAmount(balance),
	}
}
