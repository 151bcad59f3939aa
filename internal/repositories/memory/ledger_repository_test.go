package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_SaveAccountIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLedgerRepository(nil)

	require.NoError(t, repo.SaveAccount(ctx, domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(1)}))
	require.NoError(t, repo.SaveAccount(ctx, domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(2)}))

	loaded, err := repo.LoadAllAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.True(t, decimal.NewFromInt(2).Equal(loaded["p1"]["coin"].Balance))
}

func TestLedgerRepository_OlderVersionNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLedgerRepository(nil)
	created := time.UnixMilli(1000).UTC()

	stale := domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(100), CreatedAt: created, Version: 1}
	fresh := domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(40), CreatedAt: created.Add(time.Hour), Version: 2}

	require.NoError(t, repo.SaveAccount(ctx, stale))
	require.NoError(t, repo.SaveAccount(ctx, fresh))
	require.NoError(t, repo.SaveAllAccounts(ctx, domain.AccountsByIdentity{"p1": {"coin": stale}}))
	require.NoError(t, repo.SaveAccount(ctx, stale))

	loaded, err := repo.LoadAllAccounts(ctx)
	require.NoError(t, err)
	got := loaded["p1"]["coin"]
	assert.True(t, decimal.NewFromInt(40).Equal(got.Balance), "got %s", got.Balance)
	assert.Equal(t, int64(2), got.Version)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestLedgerRepository_AppendTransactionIgnoresDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLedgerRepository(nil)
	base := time.UnixMilli(1000)

	record := domain.TransactionRecord{ID: "tx-1", Kind: domain.Deposit, ToIdentity: "p1", CurrencyID: "coin", Amount: decimal.NewFromInt(5), Timestamp: base}
	require.NoError(t, repo.AppendTransaction(ctx, record))
	require.NoError(t, repo.AppendTransaction(ctx, record))
	require.NoError(t, repo.AppendTransaction(ctx, domain.TransactionRecord{
		ID: "tx-2", Kind: domain.Transfer, FromIdentity: "p1", ToIdentity: "p2", CurrencyID: "coin",
		Amount: decimal.NewFromInt(1), Timestamp: base.Add(time.Second),
	}))
	require.NoError(t, repo.AppendTransaction(ctx, domain.TransactionRecord{
		ID: "tx-3", Kind: domain.Withdraw, FromIdentity: "p3", CurrencyID: "coin",
		Amount: decimal.NewFromInt(1), Timestamp: base.Add(2 * time.Second),
	}))

	records, err := repo.ListTransactionsByIdentity(ctx, "p1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "tx-2", records[0].ID)
	assert.Equal(t, "tx-1", records[1].ID)

	limited, err := repo.ListTransactionsByIdentity(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLedgerRepository_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := memory.NewLedgerRepository(nil)

	assert.ErrorIs(t, repo.SaveAccount(ctx, domain.Account{Identity: "p1", CurrencyID: "coin"}), context.Canceled)
	_, err := repo.LoadAllAccounts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
