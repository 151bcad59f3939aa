package dto

import (
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest defines the data needed to register or replace a currency.
type CreateCurrencyRequest struct {
	ID             string           `json:"id" binding:"required"`
	Name           string           `json:"name"`
	Symbol         string           `json:"symbol"`
	Format         string           `json:"format"`
	DecimalPlaces  int              `json:"decimalPlaces" binding:"gte=0,lte=18"`
	IsDefault      bool             `json:"isDefault"`
	InitialBalance decimal.Decimal  `json:"initialBalance"`
	MinBalance     decimal.Decimal  `json:"minBalance"`
	MaxBalance     *decimal.Decimal `json:"maxBalance,omitempty"`
	InterestRate   decimal.Decimal  `json:"interestRate"`
	AllowNegative  bool             `json:"allowNegative"`
	IsEnabled      *bool            `json:"isEnabled,omitempty"`
}

// ToDomain fills omitted optional fields with their defaults.
func (r CreateCurrencyRequest) ToDomain() domain.Currency {
	c := domain.Currency{
		ID:             r.ID,
		Name:           r.Name,
		Symbol:         r.Symbol,
		Format:         r.Format,
		DecimalPlaces:  r.DecimalPlaces,
		IsDefault:      r.IsDefault,
		InitialBalance: r.InitialBalance,
		MinBalance:     r.MinBalance,
		MaxBalance:     domain.DefaultMaxBalance,
		InterestRate:   r.InterestRate,
		AllowNegative:  r.AllowNegative,
		IsEnabled:      r.IsEnabled == nil || *r.IsEnabled,
	}
	if r.MaxBalance != nil {
		c.MaxBalance = *r.MaxBalance
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Format == "" {
		c.Format = domain.DefaultDisplayFormat
	}
	return c
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Symbol         string          `json:"symbol"`
	Format         string          `json:"format"`
	DecimalPlaces  int             `json:"decimalPlaces"`
	IsDefault      bool            `json:"isDefault"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	MinBalance     decimal.Decimal `json:"minBalance"`
	MaxBalance     decimal.Decimal `json:"maxBalance"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	AllowNegative  bool            `json:"allowNegative"`
	IsEnabled      bool            `json:"isEnabled"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(c domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:             c.ID,
		Name:           c.Name,
		Symbol:         c.Symbol,
		Format:         c.Format,
		DecimalPlaces:  c.DecimalPlaces,
		IsDefault:      c.IsDefault,
		InitialBalance: c.InitialBalance,
		MinBalance:     c.MinBalance,
		MaxBalance:     c.MaxBalance,
		InterestRate:   c.InterestRate,
		AllowNegative:  c.AllowNegative,
		IsEnabled:      c.IsEnabled,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to a slice of CurrencyResponse DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, curr := range currencies {
		res[i] = ToCurrencyResponse(curr)
	}
	return res
}

// ReloadCurrenciesResponse reports the registry after a reload.
type ReloadCurrenciesResponse struct {
	Currencies []CurrencyResponse `json:"currencies"`
	Rejected   []string           `json:"rejected,omitempty"` // Definitions skipped as invalid
}

// ToReloadCurrenciesResponse converts a reload outcome to its response DTO
func ToReloadCurrenciesResponse(currencies []domain.Currency, rejected []error) ReloadCurrenciesResponse {
	res := ReloadCurrenciesResponse{Currencies: ToListCurrencyResponse(currencies)}
	for _, err := range rejected {
		res.Rejected = append(res.Rejected, err.Error())
	}
	return res
}
