package pgsql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/economy_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/economy_ledger/internal/models"
	"github.com/SscSPs/economy_ledger/internal/utils/mapping"
	"github.com/SscSPs/economy_ledger/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// upsertAccountQuery leaves a row alone when the stored version is newer.
const upsertAccountQuery = `
	INSERT INTO accounts (identity, display_name, currency_id, balance_text, created_epoch_ms, last_transaction_epoch_ms, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (identity, currency_id) DO UPDATE SET
		display_name = EXCLUDED.display_name,
		balance_text = EXCLUDED.balance_text,
		last_transaction_epoch_ms = EXCLUDED.last_transaction_epoch_ms,
		version = EXCLUDED.version
	WHERE accounts.version <= EXCLUDED.version;
`

type PgxLedgerRepository struct {
	BaseRepository
	logger *slog.Logger
}

// NewPgxLedgerRepository creates the Postgres persistence gateway.
func NewPgxLedgerRepository(pool *pgxpool.Pool, logger *slog.Logger) *PgxLedgerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		logger:         logger,
	}
}

// Ensure implementation matches interface
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// LoadAllAccounts reads every account row. Columns are scanned as nullable
// values so a single corrupt row is skipped instead of aborting the scan.
func (r *PgxLedgerRepository) LoadAllAccounts(ctx context.Context) (domain.AccountsByIdentity, error) {
	query := `
		SELECT identity, display_name, currency_id, balance_text, created_epoch_ms, last_transaction_epoch_ms, version
		FROM accounts;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	out := make(domain.AccountsByIdentity)
	skipped := 0
	for rows.Next() {
		var (
			identity, displayName, currencyID, balanceText *string
			createdMs, lastTxMs, version                   *int64
		)
		if err := rows.Scan(&identity, &displayName, &currencyID, &balanceText, &createdMs, &lastTxMs, &version); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}

		row := models.Account{
			Identity:               deref(identity),
			DisplayName:            deref(displayName),
			CurrencyID:             deref(currencyID),
			BalanceText:            deref(balanceText),
			CreatedEpochMs:         derefInt(createdMs),
			LastTransactionEpochMs: derefInt(lastTxMs),
			Version:                derefInt(version),
		}
		account, err := mapping.ToDomainAccount(row)
		if err != nil {
			skipped++
			r.logger.WarnContext(ctx, "Skipping corrupt account row",
				slog.String("identity", row.Identity),
				slog.String("currency_id", row.CurrencyID),
				slog.String("error", err.Error()))
			continue
		}
		out.Put(account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	r.logger.InfoContext(ctx, "Accounts loaded from PostgreSQL", slog.Int("accounts", out.Len()), slog.Int("skipped", skipped))
	return out, nil
}

// SaveAccount upserts a single account.
func (r *PgxLedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.Pool.Exec(ctx, upsertAccountQuery,
		m.Identity,
		m.DisplayName,
		m.CurrencyID,
		m.BalanceText,
		m.CreatedEpochMs,
		m.LastTransactionEpochMs,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s/%s: %w", m.Identity, m.CurrencyID, err)
	}
	return nil
}

// SaveAllAccounts upserts every account as one batch inside a single transaction.
func (r *PgxLedgerRepository) SaveAllAccounts(ctx context.Context, accounts domain.AccountsByIdentity) (err error) {
	rowsToSave := mapping.ToModelAccounts(accounts)
	if len(rowsToSave) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := r.Rollback(ctx, tx); rbErr != nil {
				r.logger.ErrorContext(ctx, "Failed to roll back account batch", slog.String("error", rbErr.Error()))
			}
		}
	}()

	batch := &pgx.Batch{}
	for _, m := range rowsToSave {
		batch.Queue(upsertAccountQuery,
			m.Identity,
			m.DisplayName,
			m.CurrencyID,
			m.BalanceText,
			m.CreatedEpochMs,
			m.LastTransactionEpochMs,
			m.Version,
		)
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save %d accounts: %w", len(rowsToSave), err)
	}
	return r.Commit(ctx, tx)
}

// AppendTransaction inserts a record; an existing ID is left untouched.
func (r *PgxLedgerRepository) AppendTransaction(ctx context.Context, record domain.TransactionRecord) error {
	m := mapping.ToModelTransaction(record)
	query := `
		INSERT INTO transactions (id, kind, from_identity, to_identity, currency_id, amount_text, timestamp_epoch_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ID,
		m.Kind,
		m.FromIdentity,
		m.ToIdentity,
		m.CurrencyID,
		m.AmountText,
		m.TimestampEpochMs,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", m.ID, err)
	}
	return nil
}

// ListTransactionsByIdentity returns records where identity is either side, newest first.
func (r *PgxLedgerRepository) ListTransactionsByIdentity(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error) {
	query := `
		SELECT id, kind, from_identity, to_identity, currency_id, amount_text, timestamp_epoch_ms
		FROM transactions
		WHERE from_identity = $1 OR to_identity = $1
		ORDER BY timestamp_epoch_ms DESC, id
		LIMIT NULLIF($2::int, 0);
	`
	rows, err := r.Pool.Query(ctx, query, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", identity, err)
	}

	modelTxs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}

	out := make([]domain.TransactionRecord, 0, len(modelTxs))
	for _, m := range modelTxs {
		record, err := mapping.ToDomainTransaction(m)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping corrupt transaction row", slog.String("id", m.ID), slog.String("error", err.Error()))
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// Close closes the underlying pool.
func (r *PgxLedgerRepository) Close() error {
	database.ClosePgxPool(r.Pool)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}
