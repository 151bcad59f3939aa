package pgsql_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/economy_ledger/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// PgxLedgerRepositoryTestSuite runs against a real database named by
// PGSQL_TEST_URL and is skipped when it is unset.
type PgxLedgerRepositoryTestSuite struct {
	suite.Suite
	ctx    context.Context
	repo   *pgsql.PgxLedgerRepository
	prefix string
}

func (suite *PgxLedgerRepositoryTestSuite) SetupSuite() {
	url := os.Getenv("PGSQL_TEST_URL")
	if url == "" {
		suite.T().Skip("PGSQL_TEST_URL not set")
	}
	suite.ctx = context.Background()
	suite.Require().NoError(database.MigratePostgres(url, nil))
	pool, err := database.NewPgxPool(suite.ctx, url, true)
	suite.Require().NoError(err)
	suite.repo = pgsql.NewPgxLedgerRepository(pool, nil)
}

func (suite *PgxLedgerRepositoryTestSuite) TearDownSuite() {
	if suite.repo != nil {
		_ = suite.repo.Close()
	}
}

func (suite *PgxLedgerRepositoryTestSuite) SetupTest() {
	// Unique identities keep runs independent without truncating tables.
	suite.prefix = uuid.NewString()[:8] + "-"
}

func (suite *PgxLedgerRepositoryTestSuite) id(s string) string {
	return suite.prefix + s
}

func (suite *PgxLedgerRepositoryTestSuite) TestSaveAllAndLoad() {
	at := time.UnixMilli(1_700_000_000_000).UTC()
	accounts := domain.AccountsByIdentity{}
	accounts.Put(domain.Account{Identity: suite.id("p1"), CurrencyID: "coin", Balance: decimal.RequireFromString("12.34"), CreatedAt: at, LastTransactionAt: at})
	accounts.Put(domain.Account{Identity: suite.id("p1"), CurrencyID: "gems", Balance: decimal.NewFromInt(3), CreatedAt: at, LastTransactionAt: at})

	suite.Require().NoError(suite.repo.SaveAllAccounts(suite.ctx, accounts))
	suite.Require().NoError(suite.repo.SaveAccount(suite.ctx, domain.Account{Identity: suite.id("p1"), CurrencyID: "coin", Balance: decimal.NewFromInt(1), CreatedAt: at, LastTransactionAt: at.Add(time.Second)}))

	loaded, err := suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Contains(loaded, suite.id("p1"))
	suite.Len(loaded[suite.id("p1")], 2)
	suite.True(decimal.NewFromInt(1).Equal(loaded[suite.id("p1")]["coin"].Balance))
	suite.True(at.Equal(loaded[suite.id("p1")]["coin"].CreatedAt))
}

func (suite *PgxLedgerRepositoryTestSuite) TestSaveAllAccounts_OlderVersionNeverOverwrites() {
	at := time.UnixMilli(1_700_000_000_000).UTC()
	fresh := domain.Account{Identity: suite.id("p1"), CurrencyID: "coin", Balance: decimal.NewFromInt(40), CreatedAt: at, LastTransactionAt: at, Version: 2}
	stale := fresh
	stale.Balance = decimal.NewFromInt(100)
	stale.Version = 1

	suite.Require().NoError(suite.repo.SaveAccount(suite.ctx, fresh))
	suite.Require().NoError(suite.repo.SaveAllAccounts(suite.ctx, domain.AccountsByIdentity{suite.id("p1"): {"coin": stale}}))

	loaded, err := suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(40).Equal(loaded[suite.id("p1")]["coin"].Balance))
	suite.Equal(int64(2), loaded[suite.id("p1")]["coin"].Version)
}

func (suite *PgxLedgerRepositoryTestSuite) TestTransactions() {
	base := time.UnixMilli(1_000_000).UTC()
	first := domain.TransactionRecord{ID: uuid.NewString(), Kind: domain.Deposit, ToIdentity: suite.id("p1"), CurrencyID: "coin", Amount: decimal.NewFromInt(5), Timestamp: base}
	second := domain.TransactionRecord{ID: uuid.NewString(), Kind: domain.Transfer, FromIdentity: suite.id("p1"), ToIdentity: suite.id("p2"), CurrencyID: "coin", Amount: decimal.NewFromInt(2), Timestamp: base.Add(time.Second)}

	suite.Require().NoError(suite.repo.AppendTransaction(suite.ctx, first))
	suite.Require().NoError(suite.repo.AppendTransaction(suite.ctx, second))
	suite.Require().NoError(suite.repo.AppendTransaction(suite.ctx, first))

	all, err := suite.repo.ListTransactionsByIdentity(suite.ctx, suite.id("p1"), 0)
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.Equal(second.ID, all[0].ID)
	suite.Empty(all[1].FromIdentity)

	limited, err := suite.repo.ListTransactionsByIdentity(suite.ctx, suite.id("p1"), 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)
}

func TestPgxLedgerRepository(t *testing.T) {
	suite.Run(t, new(PgxLedgerRepositoryTestSuite))
}
