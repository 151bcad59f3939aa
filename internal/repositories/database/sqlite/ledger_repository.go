package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/economy_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/economy_ledger/internal/models"
	"github.com/SscSPs/economy_ledger/internal/utils/mapping"
)

// upsertAccountQuery leaves a row alone when the stored version is newer.
const upsertAccountQuery = `
	INSERT INTO accounts (identity, display_name, currency_id, balance_text, created_epoch_ms, last_transaction_epoch_ms, version)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (identity, currency_id) DO UPDATE SET
		display_name = excluded.display_name,
		balance_text = excluded.balance_text,
		last_transaction_epoch_ms = excluded.last_transaction_epoch_ms,
		version = excluded.version
	WHERE accounts.version <= excluded.version
`

// LedgerRepository persists the ledger to an embedded SQLite database.
type LedgerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLedgerRepository wraps an open database and creates the schema if needed.
func NewLedgerRepository(db *sql.DB, logger *slog.Logger) (*LedgerRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &LedgerRepository{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

func (r *LedgerRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			identity                  TEXT    NOT NULL,
			display_name              TEXT    NOT NULL DEFAULT '',
			currency_id               TEXT    NOT NULL,
			balance_text              TEXT    NOT NULL,
			created_epoch_ms          INTEGER NOT NULL,
			last_transaction_epoch_ms INTEGER NOT NULL,
			version                   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (identity, currency_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id                 TEXT PRIMARY KEY,
			kind               TEXT NOT NULL,
			from_identity      TEXT,
			to_identity        TEXT,
			currency_id        TEXT NOT NULL,
			amount_text        TEXT NOT NULL,
			timestamp_epoch_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from ON transactions(from_identity, timestamp_epoch_ms)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_to ON transactions(to_identity, timestamp_epoch_ms)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return r.addColumnIfMissing("accounts", "version", "INTEGER NOT NULL DEFAULT 0")
}

// addColumnIfMissing upgrades databases created before the column existed.
func (r *LedgerRepository) addColumnIfMissing(table, column, definition string) error {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// LoadAllAccounts reads every account row, skipping rows that cannot be decoded.
func (r *LedgerRepository) LoadAllAccounts(ctx context.Context) (domain.AccountsByIdentity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT identity, display_name, currency_id, balance_text, created_epoch_ms, last_transaction_epoch_ms, version
		FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	out := make(domain.AccountsByIdentity)
	for rows.Next() {
		var (
			identity, displayName, currencyID, balanceText sql.NullString
			createdMs, lastTxMs, version                   sql.NullInt64
		)
		if err := rows.Scan(&identity, &displayName, &currencyID, &balanceText, &createdMs, &lastTxMs, &version); err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable account row", slog.String("error", err.Error()))
			continue
		}
		account, err := mapping.ToDomainAccount(models.Account{
			Identity:               identity.String,
			DisplayName:            displayName.String,
			CurrencyID:             currencyID.String,
			BalanceText:            balanceText.String,
			CreatedEpochMs:         createdMs.Int64,
			LastTransactionEpochMs: lastTxMs.Int64,
			Version:                version.Int64,
		})
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping corrupt account row",
				slog.String("identity", identity.String),
				slog.String("currency_id", currencyID.String),
				slog.String("error", err.Error()))
			continue
		}
		out.Put(account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertAccount(ctx context.Context, e execer, m models.Account) error {
	_, err := e.ExecContext(ctx, upsertAccountQuery,
		m.Identity, m.DisplayName, m.CurrencyID, m.BalanceText, m.CreatedEpochMs, m.LastTransactionEpochMs, m.Version)
	return err
}

// SaveAccount upserts a single account.
func (r *LedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	if err := upsertAccount(ctx, r.db, m); err != nil {
		return fmt.Errorf("failed to save account %s/%s: %w", m.Identity, m.CurrencyID, err)
	}
	return nil
}

// SaveAllAccounts upserts every account inside one transaction.
func (r *LedgerRepository) SaveAllAccounts(ctx context.Context, accounts domain.AccountsByIdentity) error {
	rowsToSave := mapping.ToModelAccounts(accounts)
	if len(rowsToSave) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, upsertAccountQuery)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare account upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range rowsToSave {
		if _, err := stmt.ExecContext(ctx,
			m.Identity, m.DisplayName, m.CurrencyID, m.BalanceText, m.CreatedEpochMs, m.LastTransactionEpochMs, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save account %s/%s: %w", m.Identity, m.CurrencyID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %d accounts: %w", len(rowsToSave), err)
	}
	return nil
}

// AppendTransaction inserts a record; an existing ID is left untouched.
func (r *LedgerRepository) AppendTransaction(ctx context.Context, record domain.TransactionRecord) error {
	m := mapping.ToModelTransaction(record)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, kind, from_identity, to_identity, currency_id, amount_text, timestamp_epoch_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		m.ID, m.Kind, m.FromIdentity, m.ToIdentity, m.CurrencyID, m.AmountText, m.TimestampEpochMs)
	if err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", m.ID, err)
	}
	return nil
}

// ListTransactionsByIdentity returns records where identity is either side, newest first.
func (r *LedgerRepository) ListTransactionsByIdentity(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, from_identity, to_identity, currency_id, amount_text, timestamp_epoch_ms
		FROM transactions
		WHERE from_identity = ? OR to_identity = ?
		ORDER BY timestamp_epoch_ms DESC, id
		LIMIT ?`, identity, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", identity, err)
	}
	defer rows.Close()

	var out []domain.TransactionRecord
	for rows.Next() {
		var (
			m        models.Transaction
			from, to sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Kind, &from, &to, &m.CurrencyID, &m.AmountText, &m.TimestampEpochMs); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if from.Valid {
			m.FromIdentity = &from.String
		}
		if to.Valid {
			m.ToIdentity = &to.String
		}
		record, err := mapping.ToDomainTransaction(m)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping corrupt transaction row", slog.String("id", m.ID), slog.String("error", err.Error()))
			continue
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (r *LedgerRepository) Close() error {
	return r.db.Close()
}
