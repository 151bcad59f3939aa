package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/economy_ledger/internal/core/ports/services"
)

// CurrencyRegistry holds the immutable currency definitions used by the ledger.
// Values are replaced by id, never mutated in place.
type CurrencyRegistry struct {
	BaseService
	mu         sync.RWMutex
	currencies map[string]domain.Currency
	order      []string
	defaultID  string

	sourceMu sync.Mutex
	source   CurrencySource
}

// CurrencySource reads the current set of currency definitions, typically
// from the currencies file.
type CurrencySource func() ([]domain.Currency, error)

// NewCurrencyRegistry creates an empty registry.
func NewCurrencyRegistry(logger *slog.Logger) *CurrencyRegistry {
	return &CurrencyRegistry{
		BaseService: BaseService{Logger: logger},
		currencies:  make(map[string]domain.Currency),
	}
}

var _ portssvc.CurrencySvcFacade = (*CurrencyRegistry)(nil)

// Register inserts or replaces a currency by id. Registering a default
// currency clears the flag on the previous default.
func (r *CurrencyRegistry) Register(currency domain.Currency) error {
	if err := currency.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerLocked(currency)
	return nil
}

func (r *CurrencyRegistry) registerLocked(currency domain.Currency) {
	if _, exists := r.currencies[currency.ID]; !exists {
		r.order = append(r.order, currency.ID)
	}

	if currency.IsDefault {
		if r.defaultID != "" && r.defaultID != currency.ID {
			if previous, ok := r.currencies[r.defaultID]; ok {
				r.currencies[r.defaultID] = previous.WithDefault(false)
			}
		}
		r.defaultID = currency.ID
	} else if r.defaultID == currency.ID {
		r.defaultID = ""
	}

	r.currencies[currency.ID] = currency
}

// Load applies defs, as at startup or on an explicit reload. Definitions
// replace registered currencies by id. Currencies missing from defs stay
// registered because accounts may still hold them. Invalid definitions are
// skipped and reported together; valid ones are registered regardless.
func (r *CurrencyRegistry) Load(defs []domain.Currency) error {
	return errors.Join(r.load(defs)...)
}

func (r *CurrencyRegistry) load(defs []domain.Currency) []error {
	var errs []error

	r.mu.Lock()
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		r.registerLocked(def)
		seen[def.ID] = struct{}{}
	}
	retained := len(r.currencies) - len(seen)
	r.mu.Unlock()

	r.GetLogger(context.Background()).Info("Currency definitions loaded",
		slog.Int("loaded", len(seen)),
		slog.Int("retained", retained),
		slog.Int("rejected", len(errs)))

	return errs
}

// SetSource configures where Reload reads definitions from.
func (r *CurrencyRegistry) SetSource(source CurrencySource) {
	r.sourceMu.Lock()
	defer r.sourceMu.Unlock()
	r.source = source
}

// Reload reads definitions from the configured source and applies them with
// Load. A source failure leaves the registry untouched. Rejected definitions
// are returned while the valid ones are applied.
func (r *CurrencyRegistry) Reload() ([]error, error) {
	r.sourceMu.Lock()
	defer r.sourceMu.Unlock()

	if r.source == nil {
		return nil, fmt.Errorf("%w: no currency definitions source is configured", apperrors.ErrConfiguration)
	}
	defs, err := r.source()
	if err != nil {
		return nil, err
	}
	return r.load(defs), nil
}

// Get returns the currency registered under id.
func (r *CurrencyRegistry) Get(id string) (domain.Currency, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[id]
	return c, ok
}

// Default returns the default currency. An empty registry synthesizes the
// fallback "coin" currency; a registry with no flagged default promotes the
// first registered currency.
func (r *CurrencyRegistry) Default() domain.Currency {
	r.mu.RLock()
	if c, ok := r.currencies[r.defaultID]; ok {
		r.mu.RUnlock()
		return c
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check after acquiring the write lock.
	if c, ok := r.currencies[r.defaultID]; ok {
		return c
	}

	if len(r.order) == 0 {
		fallback := domain.FallbackCurrency()
		r.registerLocked(fallback)
		r.GetLogger(context.Background()).Warn("No currencies registered, using fallback currency",
			slog.String("currency_id", fallback.ID))
		return fallback
	}

	promoted := r.currencies[r.order[0]].WithDefault(true)
	r.registerLocked(promoted)
	r.GetLogger(context.Background()).Info("No default currency flagged, promoting first registered currency",
		slog.String("currency_id", promoted.ID))
	return promoted
}

// All returns every registered currency in registration order.
func (r *CurrencyRegistry) All() []domain.Currency {
	r.mu.RLock()
	empty := len(r.order) == 0
	r.mu.RUnlock()
	if empty {
		// Querying an empty registry materializes the fallback.
		r.Default()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Currency, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.currencies[id])
	}
	return out
}

// Resolve maps an empty id to the default currency.
func (r *CurrencyRegistry) Resolve(id string) (domain.Currency, error) {
	if id == "" {
		return r.Default(), nil
	}
	if c, ok := r.Get(id); ok {
		return c, nil
	}
	if r.Default().ID == id {
		// The fallback may have just been synthesized.
		return r.Default(), nil
	}
	return domain.Currency{}, fmt.Errorf("%w: %s", apperrors.ErrCurrencyNotFound, id)
}
