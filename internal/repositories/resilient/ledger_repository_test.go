package resilient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/economy_ledger/internal/apperrors"
	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/repositories/resilient"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) LoadAllAccounts(ctx context.Context) (domain.AccountsByIdentity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.AccountsByIdentity), args.Error(1)
}

func (m *MockLedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockLedgerRepository) SaveAllAccounts(ctx context.Context, accounts domain.AccountsByIdentity) error {
	return m.Called(ctx, accounts).Error(0)
}

func (m *MockLedgerRepository) AppendTransaction(ctx context.Context, record domain.TransactionRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockLedgerRepository) ListTransactionsByIdentity(ctx context.Context, identity string, limit int) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx, identity, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionRecord), args.Error(1)
}

func (m *MockLedgerRepository) Close() error {
	return m.Called().Error(0)
}

type ResilientRepositoryTestSuite struct {
	suite.Suite
	inner *MockLedgerRepository
	repo  *resilient.LedgerRepository
}

func (suite *ResilientRepositoryTestSuite) SetupTest() {
	suite.inner = new(MockLedgerRepository)
	suite.repo = resilient.NewLedgerRepository(suite.inner, resilient.Options{
		Timeout:         time.Second,
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, nil)
}

func (suite *ResilientRepositoryTestSuite) account() domain.Account {
	return domain.Account{Identity: "p1", CurrencyID: "coin", Balance: decimal.NewFromInt(10)}
}

func (suite *ResilientRepositoryTestSuite) TestSaveAccount_RecoversAfterTransientFailures() {
	acc := suite.account()
	suite.inner.On("SaveAccount", mock.Anything, acc).Return(errors.New("connection reset")).Twice()
	suite.inner.On("SaveAccount", mock.Anything, acc).Return(nil).Once()

	err := suite.repo.SaveAccount(context.Background(), acc)

	suite.NoError(err)
	suite.inner.AssertNumberOfCalls(suite.T(), "SaveAccount", 3)
}

func (suite *ResilientRepositoryTestSuite) TestSaveAccount_ExhaustedRetriesArePersistenceErrors() {
	acc := suite.account()
	cause := errors.New("connection refused")
	suite.inner.On("SaveAccount", mock.Anything, acc).Return(cause)

	err := suite.repo.SaveAccount(context.Background(), acc)

	suite.ErrorIs(err, apperrors.ErrPersistence)
	suite.ErrorIs(err, cause)
	suite.True(apperrors.IsRetryable(err))
	suite.inner.AssertNumberOfCalls(suite.T(), "SaveAccount", 3)
}

func (suite *ResilientRepositoryTestSuite) TestLoadAllAccounts_PassesResultThrough() {
	loaded := domain.AccountsByIdentity{}
	loaded.Put(suite.account())
	suite.inner.On("LoadAllAccounts", mock.Anything).Return(loaded, nil).Once()

	got, err := suite.repo.LoadAllAccounts(context.Background())

	suite.Require().NoError(err)
	suite.Equal(1, got.Len())
}

func (suite *ResilientRepositoryTestSuite) TestEachAttemptHasADeadline() {
	suite.inner.On("ListTransactionsByIdentity", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "p1", 5).Return([]domain.TransactionRecord{}, nil).Once()

	_, err := suite.repo.ListTransactionsByIdentity(context.Background(), "p1", 5)

	suite.NoError(err)
	suite.inner.AssertExpectations(suite.T())
}

func (suite *ResilientRepositoryTestSuite) TestCancelledCallerStopsRetrying() {
	ctx, cancel := context.WithCancel(context.Background())
	record := domain.TransactionRecord{ID: "tx-1", Kind: domain.Deposit}
	suite.inner.On("AppendTransaction", mock.Anything, record).
		Run(func(mock.Arguments) { cancel() }).
		Return(context.Canceled)

	err := suite.repo.AppendTransaction(ctx, record)

	suite.ErrorIs(err, apperrors.ErrPersistence)
	suite.inner.AssertNumberOfCalls(suite.T(), "AppendTransaction", 1)
}

func (suite *ResilientRepositoryTestSuite) TestClose_NotRetried() {
	suite.inner.On("Close").Return(errors.New("already closed")).Once()

	suite.Error(suite.repo.Close())
	suite.inner.AssertNumberOfCalls(suite.T(), "Close", 1)
}

func TestResilientRepository(t *testing.T) {
	suite.Run(t, new(ResilientRepositoryTestSuite))
}
