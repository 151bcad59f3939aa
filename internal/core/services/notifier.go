package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Subscriber receives ledger events. Delivery is synchronous and at-most-once.
type Subscriber interface {
	Notify(ctx context.Context, event domain.Event)
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(ctx context.Context, event domain.Event)

// Notify calls f.
func (f SubscriberFunc) Notify(ctx context.Context, event domain.Event) {
	f(ctx, event)
}

// Notifier fans ledger events out to its subscribers. A failing subscriber
// never aborts the operation that emitted the event.
type Notifier struct {
	BaseService
	mu          sync.RWMutex
	subscribers []Subscriber
	now         func() time.Time
}

// NewNotifier creates a notifier with no subscribers.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		BaseService: BaseService{Logger: logger},
		now:         time.Now,
	}
}

// Subscribe adds s to the delivery list.
func (n *Notifier) Subscribe(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, s)
}

// EmitBalanceChange notifies subscribers that an account balance moved.
func (n *Notifier) EmitBalanceChange(ctx context.Context, identity, currencyID string, oldBalance, newBalance decimal.Decimal) {
	n.dispatch(ctx, domain.BalanceChanged{
		Identity:   identity,
		CurrencyID: currencyID,
		OldBalance: oldBalance,
		NewBalance: newBalance,
		At:         n.now(),
	})
}

// EmitTransaction notifies subscribers that a logical operation completed.
func (n *Notifier) EmitTransaction(ctx context.Context, kind domain.TransactionKind, from, to, currencyID string, amount decimal.Decimal) {
	n.dispatch(ctx, domain.TransactionRecorded{
		Kind:         kind,
		FromIdentity: from,
		ToIdentity:   to,
		CurrencyID:   currencyID,
		Amount:       amount,
		At:           n.now(),
	})
}

func (n *Notifier) dispatch(ctx context.Context, event domain.Event) {
	n.mu.RLock()
	subscribers := make([]Subscriber, len(n.subscribers))
	copy(subscribers, n.subscribers)
	n.mu.RUnlock()

	for i, s := range subscribers {
		n.deliver(ctx, i, s, event)
	}
}

func (n *Notifier) deliver(ctx context.Context, index int, s Subscriber, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			n.LogError(ctx, fmt.Errorf("subscriber panic: %v", r), "Event subscriber failed",
				slog.Int("subscriber", index),
				slog.String("event", fmt.Sprintf("%T", event)))
		}
	}()
	s.Notify(ctx, event)
}

// AuditLogSubscriber writes every event to logger as a structured audit line.
func AuditLogSubscriber(logger *slog.Logger) Subscriber {
	return SubscriberFunc(func(ctx context.Context, event domain.Event) {
		switch e := event.(type) {
		case domain.BalanceChanged:
			logger.InfoContext(ctx, "Balance changed",
				slog.String("identity", e.Identity),
				slog.String("currency_id", e.CurrencyID),
				slog.String("old_balance", e.OldBalance.String()),
				slog.String("new_balance", e.NewBalance.String()))
		case domain.TransactionRecorded:
			logger.InfoContext(ctx, "Transaction recorded",
				slog.String("kind", string(e.Kind)),
				slog.String("from", e.FromIdentity),
				slog.String("to", e.ToIdentity),
				slog.String("currency_id", e.CurrencyID),
				slog.String("amount", e.Amount.String()))
		}
	})
}
