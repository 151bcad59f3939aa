package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/economy_ledger/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SQLiteLedgerRepositoryTestSuite struct {
	suite.Suite
	path string
	repo *sqlite.LedgerRepository
	ctx  context.Context
}

func (suite *SQLiteLedgerRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.path = filepath.Join(suite.T().TempDir(), "ledger.db")
	suite.repo = suite.open()
}

func (suite *SQLiteLedgerRepositoryTestSuite) TearDownTest() {
	if suite.repo != nil {
		_ = suite.repo.Close()
	}
}

func (suite *SQLiteLedgerRepositoryTestSuite) open() *sqlite.LedgerRepository {
	db, err := database.OpenSQLite(suite.path)
	suite.Require().NoError(err)
	repo, err := sqlite.NewLedgerRepository(db, nil)
	suite.Require().NoError(err)
	return repo
}

func (suite *SQLiteLedgerRepositoryTestSuite) TestSaveAllAccounts_SurvivesReopen() {
	created := time.UnixMilli(1_700_000_000_000).UTC()
	accounts := domain.AccountsByIdentity{}
	accounts.Put(domain.Account{Identity: "p1", DisplayName: "Alice", CurrencyID: "coin", Balance: decimal.RequireFromString("12.34"), CreatedAt: created, LastTransactionAt: created})
	accounts.Put(domain.Account{Identity: "p1", DisplayName: "Alice", CurrencyID: "gems", Balance: decimal.NewFromInt(7), CreatedAt: created, LastTransactionAt: created})
	accounts.Put(domain.Account{Identity: "p2", DisplayName: "Bob", CurrencyID: "coin", Balance: decimal.RequireFromString("-3.5"), CreatedAt: created, LastTransactionAt: created})

	suite.Require().NoError(suite.repo.SaveAllAccounts(suite.ctx, accounts))
	suite.Require().NoError(suite.repo.Close())
	suite.repo = suite.open()

	loaded, err := suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(3, loaded.Len())
	suite.True(decimal.RequireFromString("12.34").Equal(loaded["p1"]["coin"].Balance))
	suite.True(decimal.RequireFromString("-3.5").Equal(loaded["p2"]["coin"].Balance))
	suite.Equal("Alice", loaded["p1"]["gems"].DisplayName)
	suite.True(created.Equal(loaded["p1"]["coin"].CreatedAt))
}

func (suite *SQLiteLedgerRepositoryTestSuite) TestSaveAllAccounts_EmptyIsNoop() {
	suite.NoError(suite.repo.SaveAllAccounts(suite.ctx, domain.AccountsByIdentity{}))
}

func (suite *SQLiteLedgerRepositoryTestSuite) TestSaveAccount_UpsertKeepsCreatedAt() {
	created := time.UnixMilli(1000).UTC()
	later := time.UnixMilli(5000).UTC()
	suite.Require().NoError(suite.repo.SaveAccount(suite.ctx, domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(1), CreatedAt: created, LastTransactionAt: created}))
	suite.Require().NoError(suite.repo.SaveAccount(suite.ctx, domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(9), CreatedAt: later, LastTransactionAt: later}))

	loaded, err := suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(1, loaded.Len())
	acc := loaded["p1"]["coin"]
	suite.True(decimal.NewFromInt(9).Equal(acc.Balance))
	suite.True(created.Equal(acc.CreatedAt))
	suite.True(later.Equal(acc.LastTransactionAt))
}

func (suite *SQLiteLedgerRepositoryTestSuite) TestSaveAllAccounts_OlderVersionNeverOverwrites() {
	at := time.UnixMilli(1000).UTC()
	stale := domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(100), CreatedAt: at, LastTransactionAt: at, Version: 1}
	fresh := domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(40), CreatedAt: at, LastTransactionAt: at, Version: 2}
	other := domain.Account{Identity: "p2", CurrencyID: "coin", Balance: decimal.NewFromInt(5), CreatedAt: at, LastTransactionAt: at, Version: 1}

	suite.Require().NoError(suite.repo.SaveAccount(suite.ctx, fresh))
	snapshot := domain.AccountsByIdentity{}
	snapshot.Put(stale)
	snapshot.Put(other)
	suite.Require().NoError(suite.repo.SaveAllAccounts(suite.ctx, snapshot))

	loaded, err := suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(40).Equal(loaded["p1"]["coin"].Balance), "got %s", loaded["p1"]["coin"].Balance)
	suite.Equal(int64(2), loaded["p1"]["coin"].Version)
	suite.True(decimal.NewFromInt(5).Equal(loaded["p2"]["coin"].Balance))
}

func (suite *SQLiteLedgerRepositoryTestSuite) TestNewLedgerRepository_UpgradesTableWithoutVersion() {
	suite.Require().NoError(suite.repo.Close())
	suite.repo = nil
	suite.path = filepath.Join(suite.T().TempDir(), "old.db")

	db, err := database.OpenSQLite(suite.path)
	suite.Require().NoError(err)
	_, err = db.Exec(`CREATE TABLE accounts (
		identity TEXT NOT NULL, display_name TEXT NOT NULL DEFAULT '', currency_id TEXT NOT NULL,
		balance_text TEXT NOT NULL, created_epoch_ms INTEGER NOT NULL, last_transaction_epoch_ms INTEGER NOT NULL,
		PRIMARY KEY (identity, currency_id))`)
	suite.Require().NoError(err)
	_, err = db.Exec(`INSERT INTO accounts VALUES ('p1', '', 'coin', '3', 0, 0)`)
	suite.Require().NoError(err)
	suite.Require().NoError(db.Close())

	suite.repo = suite.open()
	loaded, err := suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(3).Equal(loaded["p1"]["coin"].Balance))
	suite.Equal(int64(0), loaded["p1"]["coin"].Version)

	suite.Require().NoError(suite.repo.SaveAccount(suite.ctx, domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(4), Version: 1}))
	loaded, err = suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(4).Equal(loaded["p1"]["coin"].Balance))
}

func (suite *SQLiteLedgerRepositoryTestSuite) TestLoadAllAccounts_SkipsCorruptRows() {
	suite.Require().NoError(suite.repo.SaveAccount(suite.ctx, domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(1)}))
	suite.Require().NoError(suite.repo.Close())

	db, err := database.OpenSQLite(suite.path)
	suite.Require().NoError(err)
	_, err = db.Exec(`INSERT INTO accounts (identity, display_name, currency_id, balance_text, created_epoch_ms, last_transaction_epoch_ms)
		VALUES ('p2', '', 'coin', 'not-a-number', 0, 0)`)
	suite.Require().NoError(err)
	suite.Require().NoError(db.Close())

	suite.repo = suite.open()
	loaded, err := suite.repo.LoadAllAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(1, loaded.Len())
	suite.Contains(loaded, "p1")
	suite.NotContains(loaded, "p2")
}

func (suite *SQLiteLedgerRepositoryTestSuite) TestTransactions_DedupeOrderAndLimit() {
	base := time.UnixMilli(1_000_000).UTC()
	records := []domain.TransactionRecord{
		{ID: "tx-1", Kind: domain.Deposit, ToIdentity: "p1", CurrencyID: "coin", Amount: decimal.NewFromInt(5), Timestamp: base},
		{ID: "tx-2", Kind: domain.Transfer, FromIdentity: "p1", ToIdentity: "p2", CurrencyID: "coin", Amount: decimal.RequireFromString("1.25"), Timestamp: base.Add(time.Second)},
		{ID: "tx-3", Kind: domain.Withdraw, FromIdentity: "p3", CurrencyID: "coin", Amount: decimal.NewFromInt(1), Timestamp: base.Add(2 * time.Second)},
	}
	for _, r := range records {
		suite.Require().NoError(suite.repo.AppendTransaction(suite.ctx, r))
	}
	suite.Require().NoError(suite.repo.AppendTransaction(suite.ctx, records[0]))

	got, err := suite.repo.ListTransactionsByIdentity(suite.ctx, "p1", 0)
	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.Equal("tx-2", got[0].ID)
	suite.Equal("p2", got[0].ToIdentity)
	suite.True(decimal.RequireFromString("1.25").Equal(got[0].Amount))
	suite.Equal("tx-1", got[1].ID)
	suite.Empty(got[1].FromIdentity)

	limited, err := suite.repo.ListTransactionsByIdentity(suite.ctx, "p1", 1)
	suite.Require().NoError(err)
	suite.Require().Len(limited, 1)
	suite.Equal("tx-2", limited[0].ID)

	none, err := suite.repo.ListTransactionsByIdentity(suite.ctx, "nobody", 10)
	suite.Require().NoError(err)
	suite.Empty(none)
}

func TestSQLiteLedgerRepository(t *testing.T) {
	suite.Run(t, new(SQLiteLedgerRepositoryTestSuite))
}
