package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DefaultDisplayFormat renders the symbol immediately followed by the amount.
const DefaultDisplayFormat = "%s%s"

// DefaultMaxBalance is used when a currency definition leaves the ceiling unset.
var DefaultMaxBalance = decimal.New(17976931348623157, 292)

// Currency is an immutable unit of value with its own formatting and balance
// constraints. Changes produce a new value that replaces the old one by ID.
type Currency struct {
	ID             string          `json:"id"`             // Stable key (e.g., "coin")
	Name           string          `json:"name"`           // Display name (e.g., "Coin")
	Symbol         string          `json:"symbol"`         // e.g., "$"
	Format         string          `json:"format"`         // Two substitutions: symbol, then amount
	DecimalPlaces  int             `json:"decimalPlaces"`  // >= 0
	IsDefault      bool            `json:"isDefault"`      // At most one per registry
	InitialBalance decimal.Decimal `json:"initialBalance"` // Seed for explicitly created accounts
	MinBalance     decimal.Decimal `json:"minBalance"`     // Floor unless AllowNegative
	MaxBalance     decimal.Decimal `json:"maxBalance"`     // Hard ceiling
	InterestRate   decimal.Decimal `json:"interestRate"`   // Reserved
	AllowNegative  bool            `json:"allowNegative"`
	IsEnabled      bool            `json:"isEnabled"`
}

// FallbackCurrency is synthesized when no currency has been registered.
func FallbackCurrency() Currency {
	return Currency{
		ID:             "coin",
		Name:           "Coin",
		Symbol:         "$",
		Format:         DefaultDisplayFormat,
		DecimalPlaces:  2,
		IsDefault:      true,
		InitialBalance: decimal.NewFromInt(100),
		MinBalance:     decimal.Zero,
		MaxBalance:     DefaultMaxBalance,
		InterestRate:   decimal.Zero,
		AllowNegative:  false,
		IsEnabled:      true,
	}
}

// Validate checks the definition and returns an error wrapping
// apperrors.ErrConfiguration when it cannot be registered.
func (c Currency) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: currency id is required", apperrors.ErrConfiguration)
	}
	if c.DecimalPlaces < 0 {
		return fmt.Errorf("%w: currency %s: decimal places must not be negative", apperrors.ErrConfiguration, c.ID)
	}
	if c.MinBalance.GreaterThan(c.MaxBalance) {
		return fmt.Errorf("%w: currency %s: min balance %s exceeds max balance %s",
			apperrors.ErrConfiguration, c.ID, c.MinBalance.String(), c.MaxBalance.String())
	}
	if c.AboveCeiling(c.InitialBalance) || c.BelowFloor(c.InitialBalance) {
		return fmt.Errorf("%w: currency %s: initial balance %s is outside [%s, %s]",
			apperrors.ErrConfiguration, c.ID, c.InitialBalance.String(), c.MinBalance.String(), c.MaxBalance.String())
	}
	if c.Format != "" && strings.Contains(fmt.Sprintf(c.Format, "s", "1"), "%!") {
		return fmt.Errorf("%w: currency %s: display format %q must take a symbol and an amount",
			apperrors.ErrConfiguration, c.ID, c.Format)
	}
	return nil
}

// FormatAmount renders amount with the currency symbol, rounded half away from zero
// to the currency's decimal places.
func (c Currency) FormatAmount(amount decimal.Decimal) string {
	format := c.Format
	if format == "" {
		format = DefaultDisplayFormat
	}
	return fmt.Sprintf(format, c.Symbol, amount.StringFixed(int32(c.DecimalPlaces)))
}

// WithDefault returns a copy of c with the default flag set to isDefault.
func (c Currency) WithDefault(isDefault bool) Currency {
	c.IsDefault = isDefault
	return c
}

// BelowFloor reports whether balance violates the currency's lower bound.
func (c Currency) BelowFloor(balance decimal.Decimal) bool {
	return !c.AllowNegative && balance.LessThan(c.MinBalance)
}

// AboveCeiling reports whether balance exceeds the currency's upper bound.
func (c Currency) AboveCeiling(balance decimal.Decimal) bool {
	return balance.GreaterThan(c.MaxBalance)
}
