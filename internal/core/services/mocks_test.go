package services_test

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, kind domain.AccountKind) ([]domain.Account, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, ref domain.AccountRef) error {
	return m.Called(ctx, ref).Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) iter.Seq2[domain.Transaction, error] {
	args := m.Called(ctx, filter)
	txns, _ := args.Get(0).([]domain.Transaction)
	err := args.Error(1)
	return func(yield func(domain.Transaction, error) bool) {
		if err != nil {
			yield(domain.Transaction{}, err)
			return
		}
		for _, t := range txns {
			if !yield(t, nil) {
				return
			}
		}
	}
}

// failingTx makes archive upserts fail inside a critical section.
type failingTx struct {
	portsrepo.LedgerTx
	upsertErr error
}

func (f failingTx) UpsertArchive(ctx context.Context, record domain.ArchiveRecord) (*domain.ArchiveRecord, error) {
	return nil, f.upsertErr
}

// flakyLocker wraps the memory store and fails archive upserts for selected accounts.
type flakyLocker struct {
	*memory.Store
	mu       sync.Mutex
	failures map[string]int // account id -> remaining failing attempts
	err      error
	calls    map[string]int
}

func newFlakyLocker(store *memory.Store, err error) *flakyLocker {
	return &flakyLocker{Store: store, failures: map[string]int{}, calls: map[string]int{}, err: err}
}

func (f *flakyLocker) failFor(accountID string, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[accountID] = times
}

func (f *flakyLocker) callCount(accountID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[accountID]
}

func (f *flakyLocker) WithAccountLock(ctx context.Context, ref domain.AccountRef, fn func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error) error {
	f.mu.Lock()
	f.calls[ref.ID]++
	fail := f.failures[ref.ID] > 0
	if fail {
		f.failures[ref.ID]--
	}
	f.mu.Unlock()

	return f.Store.WithAccountLock(ctx, ref, func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error {
		if fail {
			tx = failingTx{LedgerTx: tx, upsertErr: f.err}
		}
		return fn(ctx, account, tx)
	})
}

// fakeClock advances one second on every reading.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// set moves the clock to t; the next reading is one second later.
func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
