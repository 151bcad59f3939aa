package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/economy_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/economy_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountSlot guards one (identity, currency) account. A slot may exist
// before its account is open, while an implicit deposit is being decided.
type accountSlot struct {
	mu      sync.Mutex
	open    bool
	account domain.Account
}

// mutation describes a committed balance change, used to emit events once
// the slot lock has been released.
type mutation struct {
	applied    bool
	identity   string
	currencyID string
	oldBalance decimal.Decimal
	newBalance decimal.Decimal
	record     *domain.TransactionRecord
}

// balancePlan decides the change to apply to the current balance. A zero
// amount means there is nothing to do.
type balancePlan func(current decimal.Decimal) (domain.TransactionKind, decimal.Decimal, error)

// Ledger is the in-memory authoritative store of all account balances.
// Each account is serialized independently; the identity map lock only
// guards slot lookup and creation.
type Ledger struct {
	BaseService
	currencies portssvc.CurrencyReaderSvc
	repo       portsrepo.LedgerRepositoryFacade
	notifier   *Notifier

	mu       sync.RWMutex
	accounts map[string]map[string]*accountSlot

	now   func() time.Time
	newID func() string
}

// LedgerOption configures optional ledger dependencies.
type LedgerOption func(*Ledger)

// WithClock overrides the time source used for account and record timestamps.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithIDGenerator overrides the transaction record id source.
func WithIDGenerator(newID func() string) LedgerOption {
	return func(l *Ledger) {
		l.newID = newID
	}
}

// NewLedger creates an empty ledger. Use the Bootstrap sequencer to load persisted state.
func NewLedger(
	currencies portssvc.CurrencyReaderSvc,
	repo portsrepo.LedgerRepositoryFacade,
	notifier *Notifier,
	logger *slog.Logger,
	opts ...LedgerOption,
) *Ledger {
	l := &Ledger{
		BaseService: BaseService{Logger: logger},
		currencies:  currencies,
		repo:        repo,
		notifier:    notifier,
		accounts:    make(map[string]map[string]*accountSlot),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	if l.notifier == nil {
		l.notifier = NewNotifier(logger)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ portssvc.LedgerSvcFacade = (*Ledger)(nil)

// slot returns the slot for the key, creating an unopened one when create is set.
func (l *Ledger) slot(identity, currencyID string, create bool) *accountSlot {
	l.mu.RLock()
	s := l.accounts[identity][currencyID]
	l.mu.RUnlock()
	if s != nil || !create {
		return s
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	byCurrency, ok := l.accounts[identity]
	if !ok {
		byCurrency = make(map[string]*accountSlot)
		l.accounts[identity] = byCurrency
	}
	if s = byCurrency[currencyID]; s == nil {
		s = &accountSlot{}
		byCurrency[currencyID] = s
	}
	return s
}

// read returns a copy of the open account under the key.
func (l *Ledger) read(identity, currencyID string) (domain.Account, bool) {
	s := l.slot(identity, currencyID, false)
	if s == nil {
		return domain.Account{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, s.open
}

// currencyID resolves an empty id to the default currency for read paths.
func (l *Ledger) currencyID(id string) string {
	if id == "" {
		return l.currencies.Default().ID
	}
	return id
}

// HasAccount reports whether the identity has an open account in the currency.
func (l *Ledger) HasAccount(identity, currencyID string) bool {
	_, ok := l.read(identity, l.currencyID(currencyID))
	return ok
}

// Balance returns the account balance, or zero when no account exists.
func (l *Ledger) Balance(identity, currencyID string) decimal.Decimal {
	a, ok := l.read(identity, l.currencyID(currencyID))
	if !ok {
		return decimal.Zero
	}
	return a.Balance
}

// Has reports whether the balance covers amount.
func (l *Ledger) Has(identity string, amount decimal.Decimal, currencyID string) bool {
	return l.Balance(identity, currencyID).GreaterThanOrEqual(amount)
}

// AccountsFor returns a snapshot of every open account held by identity, keyed by currency id.
func (l *Ledger) AccountsFor(identity string) map[string]domain.Account {
	l.mu.RLock()
	slots := make(map[string]*accountSlot, len(l.accounts[identity]))
	for currencyID, s := range l.accounts[identity] {
		slots[currencyID] = s
	}
	l.mu.RUnlock()

	out := make(map[string]domain.Account, len(slots))
	for currencyID, s := range slots {
		s.mu.Lock()
		if s.open {
			out[currencyID] = s.account
		}
		s.mu.Unlock()
	}
	return out
}

// Transactions returns the persisted audit records touching identity, newest first.
func (l *Ledger) Transactions(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error) {
	records, err := l.repo.ListTransactionsByIdentity(ctx, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions for %s: %v", apperrors.ErrPersistence, identity, err)
	}
	return records, nil
}

// CreateAccount opens an account seeded with the currency's initial balance.
// It is idempotent: an existing account is left untouched and false is returned.
func (l *Ledger) CreateAccount(ctx context.Context, identity, displayName, currencyID string) (bool, error) {
	if err := validateIdentity(identity); err != nil {
		return false, err
	}
	currency, err := l.currencies.Resolve(currencyID)
	if err != nil {
		return false, err
	}

	m, err := l.open(ctx, identity, displayName, currency)
	if m.applied {
		l.notifier.EmitBalanceChange(ctx, m.identity, m.currencyID, m.oldBalance, m.newBalance)
	}
	return m.applied, err
}

func (l *Ledger) open(ctx context.Context, identity, displayName string, currency domain.Currency) (mutation, error) {
	s := l.slot(identity, currency.ID, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return mutation{}, nil
	}

	now := l.now()
	s.account = domain.Account{
		Identity:          identity,
		DisplayName:       displayName,
		CurrencyID:        currency.ID,
		Balance:           currency.InitialBalance,
		CreatedAt:         now,
		LastTransactionAt: now,
	}
	s.account.Version = s.account.NextVersion(now)
	s.open = true

	m := mutation{
		applied:    true,
		identity:   identity,
		currencyID: currency.ID,
		oldBalance: decimal.Zero,
		newBalance: currency.InitialBalance,
	}
	return m, l.persist(ctx, "create_account", s.account, nil)
}

// Deposit adds amount to the account. A missing account is opened with a
// zero balance first, unlike CreateAccount which seeds the initial balance.
func (l *Ledger) Deposit(ctx context.Context, identity string, amount decimal.Decimal, currencyID string) error {
	currency, err := l.prepare(identity, amount, currencyID)
	if err != nil {
		return err
	}
	m, err := l.deposit(ctx, identity, amount, currency)
	l.emit(ctx, m)
	return err
}

func (l *Ledger) deposit(ctx context.Context, identity string, amount decimal.Decimal, currency domain.Currency) (mutation, error) {
	return l.update(ctx, identity, currency, true, func(current decimal.Decimal) (domain.TransactionKind, decimal.Decimal, error) {
		if currency.AboveCeiling(current.Add(amount)) {
			return "", decimal.Zero, fmt.Errorf("%w: depositing %s into %s would exceed %s",
				apperrors.ErrBalanceCeilingExceeded, amount.String(), currency.ID, currency.MaxBalance.String())
		}
		return domain.Deposit, amount, nil
	})
}

// Withdraw removes amount from an existing account.
func (l *Ledger) Withdraw(ctx context.Context, identity string, amount decimal.Decimal, currencyID string) error {
	currency, err := l.prepare(identity, amount, currencyID)
	if err != nil {
		return err
	}
	m, err := l.withdraw(ctx, identity, amount, currency)
	l.emit(ctx, m)
	return err
}

func (l *Ledger) withdraw(ctx context.Context, identity string, amount decimal.Decimal, currency domain.Currency) (mutation, error) {
	return l.update(ctx, identity, currency, false, func(current decimal.Decimal) (domain.TransactionKind, decimal.Decimal, error) {
		if currency.BelowFloor(current.Sub(amount)) {
			return "", decimal.Zero, fmt.Errorf("%w: balance %s, requested %s %s",
				apperrors.ErrInsufficientFunds, current.String(), amount.String(), currency.ID)
		}
		return domain.Withdraw, amount, nil
	})
}

// Transfer moves amount between two identities as a withdraw followed by a
// deposit, each under its own account lock. When the deposit leg fails the
// withdrawn amount is deposited back into from.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount decimal.Decimal, currencyID string) error {
	currency, err := l.prepare(from, amount, currencyID)
	if err != nil {
		return err
	}
	if err := validateIdentity(to); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: %s", apperrors.ErrSelfTransfer, from)
	}

	var persistErrs []error

	out, err := l.withdraw(ctx, from, amount, currency)
	if err != nil && !errors.Is(err, apperrors.ErrPersistence) {
		return err
	}
	persistErrs = appendIfErr(persistErrs, err)
	l.emit(ctx, out)

	in, depositErr := l.deposit(ctx, to, amount, currency)
	if depositErr != nil && !errors.Is(depositErr, apperrors.ErrPersistence) {
		return l.compensate(ctx, from, to, amount, currency, depositErr)
	}
	persistErrs = appendIfErr(persistErrs, depositErr)
	l.emit(ctx, in)

	record := domain.TransactionRecord{
		ID:           l.newID(),
		Kind:         domain.Transfer,
		FromIdentity: from,
		ToIdentity:   to,
		CurrencyID:   currency.ID,
		Amount:       amount,
		Timestamp:    l.now(),
	}
	if err := l.repo.AppendTransaction(ctx, record); err != nil {
		l.LogWarn(ctx, err, "Transfer applied in memory but its record was not persisted",
			slog.String("from", from),
			slog.String("to", to),
			slog.String("currency_id", currency.ID),
			slog.String("amount", amount.String()))
		persistErrs = append(persistErrs, fmt.Errorf("%w: %w: append transfer record: %v", apperrors.ErrPersistence, apperrors.ErrNotPersisted, err))
	}
	l.notifier.EmitTransaction(ctx, domain.Transfer, from, to, currency.ID, amount)

	if len(persistErrs) > 0 {
		return errors.Join(persistErrs...)
	}
	return nil
}

// compensate returns a withdrawn transfer amount to its sender after the
// deposit leg failed with depositErr.
func (l *Ledger) compensate(ctx context.Context, from, to string, amount decimal.Decimal, currency domain.Currency, depositErr error) error {
	back, err := l.deposit(ctx, from, amount, currency)
	if err != nil && !errors.Is(err, apperrors.ErrPersistence) {
		l.LogError(ctx, err, "Transfer compensation failed, debited funds are unaccounted for",
			slog.String("operation", "transfer"),
			slog.String("from", from),
			slog.String("to", to),
			slog.String("currency_id", currency.ID),
			slog.String("amount", amount.String()),
			slog.String("deposit_error", depositErr.Error()))
		return fmt.Errorf("%w: returning %s %s to %s: %w", apperrors.ErrTransferCompensation, amount.String(), currency.ID, from, depositErr)
	}
	l.emit(ctx, back)

	l.LogInfo(ctx, "Transfer rolled back",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("currency_id", currency.ID),
		slog.String("amount", amount.String()),
		slog.String("reason", depositErr.Error()))
	if err != nil {
		// The transfer itself did not happen, so the result is still depositErr.
		return fmt.Errorf("%w (rollback of %s not persisted: %v)", depositErr, from, err)
	}
	return depositErr
}

// SetBalance moves an account to target, opening it first when needed. The
// change is recorded as a deposit or withdraw of the difference.
func (l *Ledger) SetBalance(ctx context.Context, identity string, target decimal.Decimal, currencyID string) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}
	currency, err := l.currencies.Resolve(currencyID)
	if err != nil {
		return err
	}
	if currency.AboveCeiling(target) {
		return fmt.Errorf("%w: %s exceeds %s", apperrors.ErrBalanceCeilingExceeded, target.String(), currency.MaxBalance.String())
	}
	if currency.BelowFloor(target) {
		return fmt.Errorf("%w: %s is below %s", apperrors.ErrInsufficientFunds, target.String(), currency.MinBalance.String())
	}

	var persistErrs []error
	if _, err := l.CreateAccount(ctx, identity, "", currency.ID); err != nil {
		if !errors.Is(err, apperrors.ErrPersistence) {
			return err
		}
		persistErrs = append(persistErrs, err)
	}

	m, err := l.update(ctx, identity, currency, false, func(current decimal.Decimal) (domain.TransactionKind, decimal.Decimal, error) {
		delta := target.Sub(current)
		if delta.IsNegative() {
			return domain.Withdraw, delta.Neg(), nil
		}
		return domain.Deposit, delta, nil
	})
	l.emit(ctx, m)
	persistErrs = appendIfErr(persistErrs, err)
	return errors.Join(persistErrs...)
}

// ResetBalance re-initializes the account to the currency's initial balance.
func (l *Ledger) ResetBalance(ctx context.Context, identity, currencyID string) error {
	currency, err := l.currencies.Resolve(currencyID)
	if err != nil {
		return err
	}
	return l.SetBalance(ctx, identity, currency.InitialBalance, currency.ID)
}

// Snapshot copies every open account.
func (l *Ledger) Snapshot() domain.AccountsByIdentity {
	l.mu.RLock()
	slots := make([]*accountSlot, 0, len(l.accounts))
	for _, byCurrency := range l.accounts {
		for _, s := range byCurrency {
			slots = append(slots, s)
		}
	}
	l.mu.RUnlock()

	out := make(domain.AccountsByIdentity)
	for _, s := range slots {
		s.mu.Lock()
		if s.open {
			out.Put(s.account)
		}
		s.mu.Unlock()
	}
	return out
}

// Restore replaces the in-memory state with accounts.
func (l *Ledger) Restore(accounts domain.AccountsByIdentity) {
	next := make(map[string]map[string]*accountSlot, len(accounts))
	for identity, byCurrency := range accounts {
		slots := make(map[string]*accountSlot, len(byCurrency))
		for currencyID, a := range byCurrency {
			a.Identity = identity
			a.CurrencyID = currencyID
			slots[currencyID] = &accountSlot{open: true, account: a}
		}
		next[identity] = slots
	}

	l.mu.Lock()
	l.accounts = next
	l.mu.Unlock()
}

// update applies plan to one account under its lock, then persists the
// account and its transaction record. When create is false the account must
// already be open. A persistence failure leaves the in-memory change applied.
func (l *Ledger) update(ctx context.Context, identity string, currency domain.Currency, create bool, plan balancePlan) (mutation, error) {
	s := l.slot(identity, currency.ID, create)
	if s == nil {
		return mutation{}, fmt.Errorf("%w: %s has no %s account", apperrors.ErrAccountNotFound, identity, currency.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open && !create {
		return mutation{}, fmt.Errorf("%w: %s has no %s account", apperrors.ErrAccountNotFound, identity, currency.ID)
	}

	current := decimal.Zero
	if s.open {
		current = s.account.Balance
	}

	kind, amount, err := plan(current)
	if err != nil {
		return mutation{}, err
	}
	if amount.IsZero() {
		return mutation{}, nil
	}

	next := current.Add(amount)
	if kind == domain.Withdraw {
		next = current.Sub(amount)
	}

	now := l.now()
	if !s.open {
		s.account = domain.Account{
			Identity:   identity,
			CurrencyID: currency.ID,
			CreatedAt:  now,
		}
		s.open = true
	}
	s.account.Balance = next
	s.account.LastTransactionAt = now
	s.account.Version = s.account.NextVersion(now)

	record := &domain.TransactionRecord{
		ID:         l.newID(),
		Kind:       kind,
		CurrencyID: currency.ID,
		Amount:     amount,
		Timestamp:  now,
	}
	if kind == domain.Withdraw {
		record.FromIdentity = identity
	} else {
		record.ToIdentity = identity
	}

	m := mutation{
		applied:    true,
		identity:   identity,
		currencyID: currency.ID,
		oldBalance: current,
		newBalance: next,
		record:     record,
	}
	return m, l.persist(ctx, string(kind), s.account, record)
}

// persist saves the account and appends its record. Both are attempted even
// if the first fails.
func (l *Ledger) persist(ctx context.Context, operation string, account domain.Account, record *domain.TransactionRecord) error {
	var errs []error
	if err := l.repo.SaveAccount(ctx, account); err != nil {
		errs = append(errs, fmt.Errorf("save account: %w", err))
	}
	if record != nil {
		if err := l.repo.AppendTransaction(ctx, *record); err != nil {
			errs = append(errs, fmt.Errorf("append transaction: %w", err))
		}
	}
	if len(errs) == 0 {
		return nil
	}

	err := errors.Join(errs...)
	attrs := []any{
		slog.String("operation", operation),
		slog.String("identity", account.Identity),
		slog.String("currency_id", account.CurrencyID),
		slog.String("balance", account.Balance.String()),
	}
	if record != nil {
		attrs = append(attrs, slog.String("amount", record.Amount.String()))
	}
	l.LogWarn(ctx, err, "Consistency warning: in-memory balance diverges from the store", attrs...)
	return fmt.Errorf("%w: %w: %s %s/%s: %v", apperrors.ErrPersistence, apperrors.ErrNotPersisted, operation, account.Identity, account.CurrencyID, err)
}

func (l *Ledger) emit(ctx context.Context, m mutation) {
	if !m.applied {
		return
	}
	l.notifier.EmitBalanceChange(ctx, m.identity, m.currencyID, m.oldBalance, m.newBalance)
	if m.record != nil {
		l.notifier.EmitTransaction(ctx, m.record.Kind, m.record.FromIdentity, m.record.ToIdentity, m.currencyID, m.record.Amount)
	}
}

// prepare validates the common preconditions of a balance operation.
func (l *Ledger) prepare(identity string, amount decimal.Decimal, currencyID string) (domain.Currency, error) {
	if err := validateIdentity(identity); err != nil {
		return domain.Currency{}, err
	}
	if !amount.IsPositive() {
		return domain.Currency{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidAmount, amount.String())
	}
	return l.currencies.Resolve(currencyID)
}

func validateIdentity(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return fmt.Errorf("%w: identity is required", apperrors.ErrValidation)
	}
	return nil
}

func appendIfErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
