package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/economy_ledger/internal/core/ports/repositories"
	"github.com/robfig/cron/v3"
)

// Bootstrap loads the ledger at startup, flushes it at shutdown and, when
// configured, flushes it periodically in between.
type Bootstrap struct {
	BaseService
	ledger *Ledger
	repo   portsrepo.LedgerRepositoryFacade

	// Timeout bounds each full load or save. Zero means no extra bound.
	Timeout time.Duration

	mu   sync.Mutex
	cron *cron.Cron
}

// NewBootstrap creates a sequencer for ledger backed by repo.
func NewBootstrap(ledger *Ledger, repo portsrepo.LedgerRepositoryFacade, logger *slog.Logger) *Bootstrap {
	return &Bootstrap{
		BaseService: BaseService{Logger: logger},
		ledger:      ledger,
		repo:        repo,
	}
}

func (b *Bootstrap) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.Timeout)
}

// Load restores every persisted account into the ledger. A failed load is
// logged and leaves the ledger empty rather than aborting startup.
func (b *Bootstrap) Load(ctx context.Context) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	accounts, err := b.repo.LoadAllAccounts(ctx)
	if err != nil {
		b.LogError(ctx, err, "Failed to load accounts, starting with an empty ledger")
		b.ledger.Restore(nil)
		return
	}

	b.ledger.Restore(accounts)
	b.LogInfo(ctx, "Ledger loaded",
		slog.Int("identities", len(accounts)),
		slog.Int("accounts", accounts.Len()),
		slog.Duration("took", time.Since(start)))
}

// SaveAll flushes a snapshot of the full in-memory state.
func (b *Bootstrap) SaveAll(ctx context.Context) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	snapshot := b.ledger.Snapshot()
	if err := b.repo.SaveAllAccounts(ctx, snapshot); err != nil {
		b.LogError(ctx, err, "Failed to save ledger", slog.Int("accounts", snapshot.Len()))
		return fmt.Errorf("%w: save all accounts: %v", apperrors.ErrPersistence, err)
	}
	b.LogInfo(ctx, "Ledger saved", slog.Int("accounts", snapshot.Len()))
	return nil
}

// StartAutosave runs SaveAll on the given cron schedule until Stop is called.
func (b *Bootstrap) StartAutosave(spec string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cron != nil {
		return fmt.Errorf("autosave already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		// Errors are logged by SaveAll.
		_ = b.SaveAll(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid autosave schedule %q: %w", spec, err)
	}
	c.Start()
	b.cron = c

	b.LogInfo(context.Background(), "Autosave scheduled", slog.String("schedule", spec))
	return nil
}

// Stop halts autosave, waits for a running save to finish, then performs the
// final flush.
func (b *Bootstrap) Stop(ctx context.Context) error {
	b.mu.Lock()
	c := b.cron
	b.cron = nil
	b.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			b.LogWarn(ctx, ctx.Err(), "Timed out waiting for autosave to finish")
		}
	}
	return b.SaveAll(ctx)
}
