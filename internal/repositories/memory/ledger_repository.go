package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/economy_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/economy_ledger/internal/models"
	"github.com/SscSPs/economy_ledger/internal/utils/mapping"
)

type rowKey struct {
	identity   string
	currencyID string
}

// LedgerRepository is an in-process gateway. Rows are kept in their stored
// form so loads exercise the same decoding path as the SQL stores.
type LedgerRepository struct {
	mu           sync.RWMutex
	accounts     map[rowKey]models.Account
	transactions []models.Transaction
	txIDs        map[string]struct{}
	logger       *slog.Logger
}

// NewLedgerRepository creates an empty in-memory store.
func NewLedgerRepository(logger *slog.Logger) *LedgerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerRepository{
		accounts: make(map[rowKey]models.Account),
		txIDs:    make(map[string]struct{}),
		logger:   logger,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

// LoadAllAccounts decodes every stored row, skipping rows that fail to parse.
func (r *LedgerRepository) LoadAllAccounts(ctx context.Context) (domain.AccountsByIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(domain.AccountsByIdentity)
	for _, row := range r.accounts {
		a, err := mapping.ToDomainAccount(row)
		if err != nil {
			r.logger.Warn("Skipping corrupt account row",
				slog.String("identity", row.Identity),
				slog.String("currency_id", row.CurrencyID),
				slog.String("error", err.Error()))
			continue
		}
		out.Put(a)
	}
	return out, nil
}

// SaveAccount upserts one account.
func (r *LedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsert(mapping.ToModelAccount(account))
	return nil
}

// SaveAllAccounts upserts every account under one lock.
func (r *LedgerRepository) SaveAllAccounts(ctx context.Context, accounts domain.AccountsByIdentity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range mapping.ToModelAccounts(accounts) {
		r.upsert(row)
	}
	return nil
}

// upsert keeps the stored row when it is newer than row. CreatedEpochMs is
// never rewritten. Callers hold mu.
func (r *LedgerRepository) upsert(row models.Account) {
	key := rowKey{row.Identity, row.CurrencyID}
	if stored, ok := r.accounts[key]; ok {
		if stored.Version > row.Version {
			return
		}
		row.CreatedEpochMs = stored.CreatedEpochMs
	}
	r.accounts[key] = row
}

// AppendTransaction stores a record once per ID.
func (r *LedgerRepository) AppendTransaction(ctx context.Context, record domain.TransactionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.txIDs[record.ID]; exists {
		return nil
	}
	r.txIDs[record.ID] = struct{}{}
	r.transactions = append(r.transactions, mapping.ToModelTransaction(record))
	return nil
}

// ListTransactionsByIdentity returns records touching identity, newest first.
func (r *LedgerRepository) ListTransactionsByIdentity(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.TransactionRecord
	for i := len(r.transactions) - 1; i >= 0; i-- {
		row := r.transactions[i]
		if !touches(row, identity) {
			continue
		}
		record, err := mapping.ToDomainTransaction(row)
		if err != nil {
			r.logger.Warn("Skipping corrupt transaction row", slog.String("id", row.ID), slog.String("error", err.Error()))
			continue
		}
		out = append(out, record)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func touches(row models.Transaction, identity string) bool {
	return (row.FromIdentity != nil && *row.FromIdentity == identity) ||
		(row.ToIdentity != nil && *row.ToIdentity == identity)
}

// PutRawAccount stores a row verbatim, bypassing encoding. It lets callers
// seed malformed data.
func (r *LedgerRepository) PutRawAccount(identity, displayName, currencyID, balanceText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[rowKey{identity, currencyID}] = models.Account{
		Identity:    identity,
		DisplayName: displayName,
		CurrencyID:  currencyID,
		BalanceText: balanceText,
	}
}

// Close is a no-op.
func (r *LedgerRepository) Close() error {
	return nil
}
