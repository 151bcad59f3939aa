package services_test

import (
	"fmt"
	"testing"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func testCurrency(id string, isDefault bool) domain.Currency {
	return domain.Currency{
		ID:             id,
		Name:           id,
		Symbol:         "$",
		Format:         domain.DefaultDisplayFormat,
		DecimalPlaces:  2,
		IsDefault:      isDefault,
		InitialBalance: decimal.NewFromInt(100),
		MinBalance:     decimal.Zero,
		MaxBalance:     decimal.NewFromInt(1000000),
		AllowNegative:  false,
		IsEnabled:      true,
	}
}

type CurrencyRegistryTestSuite struct {
	suite.Suite
	registry *services.CurrencyRegistry
}

func (suite *CurrencyRegistryTestSuite) SetupTest() {
	suite.registry = services.NewCurrencyRegistry(nil)
}

func (suite *CurrencyRegistryTestSuite) TestDefault_EmptyRegistrySynthesizesFallback() {
	def := suite.registry.Default()

	suite.Equal("coin", def.ID)
	suite.True(def.IsDefault)
	suite.Equal(2, def.DecimalPlaces)
	suite.False(def.AllowNegative)

	all := suite.registry.All()
	suite.Require().Len(all, 1)
	suite.Equal("coin", all[0].ID)
}

func (suite *CurrencyRegistryTestSuite) TestAll_EmptyRegistrySynthesizesFallback() {
	all := suite.registry.All()
	suite.Require().Len(all, 1)
	suite.True(all[0].IsDefault)
}

func (suite *CurrencyRegistryTestSuite) TestRegister_NewDefaultReplacesPrevious() {
	suite.Require().NoError(suite.registry.Register(testCurrency("gold", true)))
	suite.Require().NoError(suite.registry.Register(testCurrency("gems", true)))

	suite.Equal("gems", suite.registry.Default().ID)

	gold, ok := suite.registry.Get("gold")
	suite.Require().True(ok)
	suite.False(gold.IsDefault)

	defaults := 0
	for _, c := range suite.registry.All() {
		if c.IsDefault {
			defaults++
		}
	}
	suite.Equal(1, defaults)
}

func (suite *CurrencyRegistryTestSuite) TestRegister_ReplacesByID() {
	suite.Require().NoError(suite.registry.Register(testCurrency("gold", true)))

	updated := testCurrency("gold", true)
	updated.Symbol = "G"
	suite.Require().NoError(suite.registry.Register(updated))

	all := suite.registry.All()
	suite.Require().Len(all, 1)
	suite.Equal("G", all[0].Symbol)
}

func (suite *CurrencyRegistryTestSuite) TestRegister_RejectsMinAboveMax() {
	bad := testCurrency("broken", false)
	bad.MinBalance = decimal.NewFromInt(10)
	bad.MaxBalance = decimal.NewFromInt(1)

	err := suite.registry.Register(bad)

	suite.ErrorIs(err, apperrors.ErrConfiguration)
	_, ok := suite.registry.Get("broken")
	suite.False(ok)
}

func (suite *CurrencyRegistryTestSuite) TestDefault_PromotesFirstRegisteredWhenNoneFlagged() {
	suite.Require().NoError(suite.registry.Register(testCurrency("silver", false)))
	suite.Require().NoError(suite.registry.Register(testCurrency("gold", false)))

	def := suite.registry.Default()

	suite.Equal("silver", def.ID)
	suite.True(def.IsDefault)
	silver, _ := suite.registry.Get("silver")
	suite.True(silver.IsDefault)
}

func (suite *CurrencyRegistryTestSuite) TestLoad_KeepsValidDefinitionsAndReportsInvalid() {
	bad := testCurrency("broken", false)
	bad.MinBalance = decimal.NewFromInt(10)
	bad.MaxBalance = decimal.NewFromInt(1)

	err := suite.registry.Load([]domain.Currency{testCurrency("gold", true), bad, testCurrency("gems", false)})

	suite.ErrorIs(err, apperrors.ErrConfiguration)
	ids := []string{}
	for _, c := range suite.registry.All() {
		ids = append(ids, c.ID)
	}
	suite.Equal([]string{"gold", "gems"}, ids)
}

func (suite *CurrencyRegistryTestSuite) TestLoad_KeepsCurrenciesMissingFromDefinitions() {
	suite.Require().NoError(suite.registry.Register(testCurrency("old", true)))

	suite.Require().NoError(suite.registry.Load([]domain.Currency{testCurrency("new", true)}))

	old, ok := suite.registry.Get("old")
	suite.Require().True(ok, "accounts may still hold the old currency")
	suite.False(old.IsDefault)
	suite.Equal("new", suite.registry.Default().ID)
	suite.Len(suite.registry.All(), 2)
}

func (suite *CurrencyRegistryTestSuite) TestLoad_RejectedRedefinitionKeepsPrevious() {
	suite.Require().NoError(suite.registry.Register(testCurrency("gold", true)))
	bad := testCurrency("gold", true)
	bad.Symbol = "X"
	bad.MinBalance = decimal.NewFromInt(10)
	bad.MaxBalance = decimal.NewFromInt(1)

	err := suite.registry.Load([]domain.Currency{bad})

	suite.ErrorIs(err, apperrors.ErrConfiguration)
	gold, ok := suite.registry.Get("gold")
	suite.Require().True(ok)
	suite.Equal("$", gold.Symbol)
}

func (suite *CurrencyRegistryTestSuite) TestReload_AppliesSourceAndKeepsRemoved() {
	defs := []domain.Currency{testCurrency("gold", true), testCurrency("gems", false)}
	suite.registry.SetSource(func() ([]domain.Currency, error) { return defs, nil })

	rejected, err := suite.registry.Reload()
	suite.Require().NoError(err)
	suite.Empty(rejected)
	suite.Len(suite.registry.All(), 2)

	updated := testCurrency("gold", true)
	updated.Symbol = "G"
	broken := testCurrency("broken", false)
	broken.MinBalance = decimal.NewFromInt(10)
	broken.MaxBalance = decimal.NewFromInt(1)
	defs = []domain.Currency{updated, broken}

	rejected, err = suite.registry.Reload()
	suite.Require().NoError(err)
	suite.Require().Len(rejected, 1)
	suite.ErrorIs(rejected[0], apperrors.ErrConfiguration)

	gold, _ := suite.registry.Get("gold")
	suite.Equal("G", gold.Symbol)
	_, ok := suite.registry.Get("gems")
	suite.True(ok, "gems is no longer defined but stays registered")
	_, ok = suite.registry.Get("broken")
	suite.False(ok)
}

func (suite *CurrencyRegistryTestSuite) TestReload_SourceFailureLeavesRegistryUntouched() {
	suite.Require().NoError(suite.registry.Register(testCurrency("gold", true)))
	suite.registry.SetSource(func() ([]domain.Currency, error) {
		return nil, fmt.Errorf("%w: file missing", apperrors.ErrConfiguration)
	})

	rejected, err := suite.registry.Reload()

	suite.ErrorIs(err, apperrors.ErrConfiguration)
	suite.Nil(rejected)
	suite.Len(suite.registry.All(), 1)
}

func (suite *CurrencyRegistryTestSuite) TestReload_WithoutSource() {
	_, err := suite.registry.Reload()
	suite.ErrorIs(err, apperrors.ErrConfiguration)
}

func (suite *CurrencyRegistryTestSuite) TestResolve() {
	suite.Require().NoError(suite.registry.Register(testCurrency("gold", true)))

	c, err := suite.registry.Resolve("")
	suite.Require().NoError(err)
	suite.Equal("gold", c.ID)

	c, err = suite.registry.Resolve("gold")
	suite.Require().NoError(err)
	suite.Equal("gold", c.ID)

	_, err = suite.registry.Resolve("missing")
	suite.ErrorIs(err, apperrors.ErrCurrencyNotFound)
}

func (suite *CurrencyRegistryTestSuite) TestResolve_FallbackByID() {
	c, err := suite.registry.Resolve("coin")
	suite.Require().NoError(err)
	suite.Equal("coin", c.ID)
}

func TestCurrencyRegistry(t *testing.T) {
	suite.Run(t, new(CurrencyRegistryTestSuite))
}
