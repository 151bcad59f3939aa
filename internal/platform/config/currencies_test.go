package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCurrencies = `
currencies:
  - id: gold
    name: Gold
    symbol: "G "
    format: "%s%s"
    decimalPlaces: 2
    isDefault: true
    initialBalance: "100.50"
    minBalance: 0
    maxBalance: "1000000"
  - id: debt
    symbol: "-"
    decimalPlaces: 0
    minBalance: "-500"
    allowNegative: true
    isEnabled: false
`

func TestParseCurrencies(t *testing.T) {
	currencies, err := config.ParseCurrencies([]byte(sampleCurrencies))
	require.NoError(t, err)
	require.Len(t, currencies, 2)

	gold := currencies[0]
	assert.Equal(t, "gold", gold.ID)
	assert.Equal(t, "Gold", gold.Name)
	assert.True(t, gold.IsDefault)
	assert.True(t, gold.IsEnabled)
	assert.True(t, decimal.RequireFromString("100.50").Equal(gold.InitialBalance))
	assert.True(t, decimal.NewFromInt(1000000).Equal(gold.MaxBalance))
	assert.NoError(t, gold.Validate())

	debt := currencies[1]
	assert.Equal(t, "debt", debt.Name, "name defaults to id")
	assert.Equal(t, domain.DefaultDisplayFormat, debt.Format)
	assert.True(t, domain.DefaultMaxBalance.Equal(debt.MaxBalance))
	assert.True(t, decimal.NewFromInt(-500).Equal(debt.MinBalance))
	assert.True(t, debt.AllowNegative)
	assert.False(t, debt.IsEnabled)
	assert.NoError(t, debt.Validate())
}

func TestParseCurrencies_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed yaml", yaml: "currencies: [\n"},
		{name: "empty list", yaml: "currencies: []\n"},
		{name: "missing id", yaml: "currencies:\n  - symbol: $\n"},
		{name: "non numeric balance", yaml: "currencies:\n  - id: gold\n    maxBalance: lots\n"},
		{name: "negative decimal places", yaml: "currencies:\n  - id: gold\n    decimalPlaces: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseCurrencies([]byte(tt.yaml))
			assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		})
	}
}

func TestLoadCurrencies_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "currencies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCurrencies), 0o600))

	currencies, err := config.LoadCurrencies(path)
	require.NoError(t, err)
	assert.Len(t, currencies, 2)

	_, err = config.LoadCurrencies(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
