// Package resilient wraps a persistence gateway with per-call timeouts and
// bounded retries.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/economy_ledger/internal/core/ports/repositories"
	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxRetries = 3
)

// Options tunes the retry policy. Zero values fall back to the defaults.
type Options struct {
	Timeout         time.Duration
	MaxRetries      uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// LedgerRepository retries transient failures of the wrapped gateway.
// Exhausted retries surface as apperrors.ErrPersistence.
type LedgerRepository struct {
	next   portsrepo.LedgerRepositoryFacade
	opts   Options
	logger *slog.Logger
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

// NewLedgerRepository decorates next.
func NewLedgerRepository(next portsrepo.LedgerRepositoryFacade, opts Options, logger *slog.Logger) *LedgerRepository {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 100 * time.Millisecond
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerRepository{next: next, opts: opts, logger: logger}
}

func (r *LedgerRepository) policy() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.opts.InitialInterval
	b.MaxInterval = r.opts.MaxInterval
	return b
}

func do[T any](ctx context.Context, r *LedgerRepository, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()

		v, err := fn(callCtx)
		if err == nil {
			return v, nil
		}
		// The caller gave up; further attempts cannot succeed.
		if ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		r.logger.WarnContext(ctx, "Store call failed",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		return v, err
	},
		backoff.WithBackOff(r.policy()),
		backoff.WithMaxTries(r.opts.MaxRetries),
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistence) {
			return res, err
		}
		return res, fmt.Errorf("%w: %s after %d attempt(s): %w", apperrors.ErrPersistence, op, attempt, err)
	}
	return res, nil
}

func (r *LedgerRepository) LoadAllAccounts(ctx context.Context) (domain.AccountsByIdentity, error) {
	return do(ctx, r, "load accounts", func(ctx context.Context) (domain.AccountsByIdentity, error) {
		return r.next.LoadAllAccounts(ctx)
	})
}

func (r *LedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	_, err := do(ctx, r, "save account", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.SaveAccount(ctx, account)
	})
	return err
}

func (r *LedgerRepository) SaveAllAccounts(ctx context.Context, accounts domain.AccountsByIdentity) error {
	_, err := do(ctx, r, "save all accounts", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.SaveAllAccounts(ctx, accounts)
	})
	return err
}

func (r *LedgerRepository) AppendTransaction(ctx context.Context, record domain.TransactionRecord) error {
	_, err := do(ctx, r, "append transaction", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.AppendTransaction(ctx, record)
	})
	return err
}

func (r *LedgerRepository) ListTransactionsByIdentity(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error) {
	return do(ctx, r, "list transactions", func(ctx context.Context) ([]domain.TransactionRecord, error) {
		return r.next.ListTransactionsByIdentity(ctx, identity, limit)
	})
}

// Close closes the wrapped gateway once; it is not retried.
func (r *LedgerRepository) Close() error {
	return r.next.Close()
}
