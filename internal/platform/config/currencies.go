package config

import (
	"fmt"
	"os"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CurrencyFile is the on-disk shape of the currency definitions file.
type CurrencyFile struct {
	Currencies []CurrencyDefinition `yaml:"currencies" validate:"required,min=1,dive"`
}

// CurrencyDefinition mirrors domain.Currency with decimals kept as strings
// so YAML floats never touch monetary values.
type CurrencyDefinition struct {
	ID             string `yaml:"id" validate:"required"`
	Name           string `yaml:"name"`
	Symbol         string `yaml:"symbol"`
	Format         string `yaml:"format"`
	DecimalPlaces  int    `yaml:"decimalPlaces" validate:"gte=0,lte=18"`
	IsDefault      bool   `yaml:"isDefault"`
	InitialBalance string `yaml:"initialBalance" validate:"omitempty,numeric"`
	MinBalance     string `yaml:"minBalance" validate:"omitempty,numeric"`
	MaxBalance     string `yaml:"maxBalance" validate:"omitempty,numeric"`
	InterestRate   string `yaml:"interestRate" validate:"omitempty,numeric"`
	AllowNegative  bool   `yaml:"allowNegative"`
	IsEnabled      *bool  `yaml:"isEnabled"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadCurrencies reads and parses the definitions file at path.
func LoadCurrencies(path string) ([]domain.Currency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read currencies file: %w", apperrors.ErrConfiguration, err)
	}
	return ParseCurrencies(data)
}

// ParseCurrencies decodes YAML currency definitions. Structural problems are
// reported as apperrors.ErrConfiguration; bounds are checked later by
// domain.Currency.Validate during registration.
func ParseCurrencies(data []byte) ([]domain.Currency, error) {
	var file CurrencyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse currencies: %v", apperrors.ErrConfiguration, err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}

	out := make([]domain.Currency, 0, len(file.Currencies))
	for _, def := range file.Currencies {
		c, err := def.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: currency %q: %v", apperrors.ErrConfiguration, def.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (d CurrencyDefinition) toDomain() (domain.Currency, error) {
	c := domain.Currency{
		ID:             d.ID,
		Name:           d.Name,
		Symbol:         d.Symbol,
		Format:         d.Format,
		DecimalPlaces:  d.DecimalPlaces,
		IsDefault:      d.IsDefault,
		AllowNegative:  d.AllowNegative,
		IsEnabled:      d.IsEnabled == nil || *d.IsEnabled,
		InitialBalance: decimal.Zero,
		MinBalance:     decimal.Zero,
		MaxBalance:     domain.DefaultMaxBalance,
		InterestRate:   decimal.Zero,
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Format == "" {
		c.Format = domain.DefaultDisplayFormat
	}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"initialBalance", d.InitialBalance, &c.InitialBalance},
		{"minBalance", d.MinBalance, &c.MinBalance},
		{"maxBalance", d.MaxBalance, &c.MaxBalance},
		{"interestRate", d.InterestRate, &c.InterestRate},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return domain.Currency{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return c, nil
}
