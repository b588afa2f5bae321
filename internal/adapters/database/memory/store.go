package memory

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
)

const dateKeyFormat = "2006-01-02"

type archiveKey struct {
	accountID string
	year      int
	month     int
}

type historyKey struct {
	accountID string
	date      string
}

// Store keeps the whole ledger in process memory. It implements every
// repository port and serializes critical sections with a mutex per account.
type Store struct {
	mu           sync.RWMutex
	accounts     map[domain.AccountRef]domain.Account
	transactions []domain.Transaction
	archives     map[archiveKey]domain.ArchiveRecord
	history      map[historyKey]domain.DailyHistoryRecord

	lockMu sync.Mutex
	locks  map[domain.AccountRef]*sync.Mutex
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts: make(map[domain.AccountRef]domain.Account),
		archives: make(map[archiveKey]domain.ArchiveRecord),
		history:  make(map[historyKey]domain.DailyHistoryRecord),
		locks:    make(map[domain.AccountRef]*sync.Mutex),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade      = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade  = (*Store)(nil)
	_ portsrepo.ArchiveRepositoryFacade      = (*Store)(nil)
	_ portsrepo.DailyHistoryRepositoryFacade = (*Store)(nil)
	_ portsrepo.AccountLocker                = (*Store)(nil)
	_ portsrepo.LedgerTx                     = (*Store)(nil)
)

// Provider exposes the store through the repository provider used by services.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      s,
		TransactionRepo:  s,
		ArchiveRepo:      s,
		DailyHistoryRepo: s,
		Locker:           s,
	}
}

func cloneAccount(a domain.Account) domain.Account {
	a.Balances = a.Balances.Clone()
	return a
}

func (s *Store) FindAccountByID(_ context.Context, ref domain.AccountRef) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[ref]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", ref, apperrors.ErrNotFound)
	}
	a = cloneAccount(a)
	return &a, nil
}

func (s *Store) ListAccounts(_ context.Context, kind domain.AccountKind) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.accounts))
	for ref, a := range s.accounts {
		if kind != "" && ref.Kind != kind {
			continue
		}
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out, nil
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := account.Ref()
	if _, exists := s.accounts[ref]; exists {
		return fmt.Errorf("account %s: %w", ref, apperrors.ErrDuplicate)
	}
	s.accounts[ref] = cloneAccount(account)
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := account.Ref()
	if _, exists := s.accounts[ref]; !exists {
		return fmt.Errorf("account %s: %w", ref, apperrors.ErrNotFound)
	}
	s.accounts[ref] = cloneAccount(account)
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, ref domain.AccountRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[ref]; !exists {
		return fmt.Errorf("account %s: %w", ref, apperrors.ErrNotFound)
	}
	delete(s.accounts, ref)
	return nil
}

// WithAccountLock runs fn while holding the account's mutex. fn receives a copy
// of the account; only writes made through tx are kept.
func (s *Store) WithAccountLock(ctx context.Context, ref domain.AccountRef, fn func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error) error {
	l := s.accountMutex(ref)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	account, err := s.FindAccountByID(ctx, ref)
	if err != nil {
		return err
	}
	return fn(ctx, account, s)
}

func (s *Store) accountMutex(ref domain.AccountRef) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[ref]
	if !ok {
		l = &sync.Mutex{}
		s.locks[ref] = l
	}
	return l
}

func (s *Store) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.TransactionID == txn.TransactionID {
			return fmt.Errorf("transaction %s: %w", txn.TransactionID, apperrors.ErrDuplicate)
		}
	}
	s.transactions = append(s.transactions, txn)
	return nil
}

// ListTransactions takes a snapshot of matching transactions each time the
// sequence is ranged over.
func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) iter.Seq2[domain.Transaction, error] {
	return func(yield func(domain.Transaction, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.Transaction{}, err)
			return
		}
		s.mu.RLock()
		matched := make([]domain.Transaction, 0)
		for _, t := range s.transactions {
			if filter.Matches(t) {
				matched = append(matched, t)
			}
		}
		s.mu.RUnlock()

		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if !a.TransactionDate.Equal(b.TransactionDate) {
				return a.TransactionDate.After(b.TransactionDate)
			}
			return a.CreatedAt.After(b.CreatedAt)
		})
		if filter.Limit > 0 && len(matched) > filter.Limit {
			matched = matched[:filter.Limit]
		}
		for _, t := range matched {
			if !yield(t, nil) {
				return
			}
		}
	}
}

func cloneArchive(r domain.ArchiveRecord) domain.ArchiveRecord {
	r.BalancesSnapshot = r.BalancesSnapshot.Clone()
	summary := make(domain.FinancialSummary, len(r.FinancialSummary))
	for c, cs := range r.FinancialSummary {
		summary[c] = cs
	}
	r.FinancialSummary = summary
	return r
}

func (s *Store) UpsertArchive(_ context.Context, record domain.ArchiveRecord) (*domain.ArchiveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := archiveKey{accountID: record.OriginalAccountID, year: record.ArchiveYear, month: record.ArchiveMonth}
	if existing, ok := s.archives[key]; ok {
		if existing.AccountKind != record.AccountKind {
			return nil, fmt.Errorf("archive %s %s is held by another account kind: %w",
				record.OriginalAccountID, record.Period(), apperrors.ErrConflict)
		}
		record.ArchiveID = existing.ArchiveID
	}
	s.archives[key] = cloneArchive(record)
	out := cloneArchive(record)
	return &out, nil
}

func (s *Store) FindArchive(_ context.Context, accountID string, period domain.Period) (*domain.ArchiveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.archives[archiveKey{accountID: accountID, year: period.Year, month: int(period.Month)}]
	if !ok {
		return nil, fmt.Errorf("archive %s %s: %w", accountID, period, apperrors.ErrNotFound)
	}
	r = cloneArchive(r)
	return &r, nil
}

func (s *Store) ListArchives(_ context.Context, accountID string) ([]domain.ArchiveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ArchiveRecord, 0)
	for k, r := range s.archives {
		if k.accountID == accountID {
			out = append(out, cloneArchive(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ArchiveYear != out[j].ArchiveYear {
			return out[i].ArchiveYear > out[j].ArchiveYear
		}
		return out[i].ArchiveMonth > out[j].ArchiveMonth
	})
	return out, nil
}

func cloneHistory(r domain.DailyHistoryRecord) domain.DailyHistoryRecord {
	r.BalancesStart = r.BalancesStart.Clone()
	r.BalancesEnd = r.BalancesEnd.Clone()
	r.DaySummary.RevenueByCurrency = domain.Balances(r.DaySummary.RevenueByCurrency).Clone()
	r.DaySummary.ExpensesByCurrency = domain.Balances(r.DaySummary.ExpensesByCurrency).Clone()
	return r
}

func (s *Store) UpsertDailyHistory(_ context.Context, record domain.DailyHistoryRecord) (*domain.DailyHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := historyKey{accountID: record.AccountID, date: record.HistoryDate.Format(dateKeyFormat)}
	if existing, ok := s.history[key]; ok {
		record.HistoryID = existing.HistoryID
	}
	s.history[key] = cloneHistory(record)
	out := cloneHistory(record)
	return &out, nil
}

func (s *Store) FindDailyHistory(_ context.Context, accountID string, date time.Time) (*domain.DailyHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.history[historyKey{accountID: accountID, date: date.Format(dateKeyFormat)}]
	if !ok {
		return nil, fmt.Errorf("daily history %s %s: %w", accountID, date.Format(dateKeyFormat), apperrors.ErrNotFound)
	}
	r = cloneHistory(r)
	return &r, nil
}

func (s *Store) ListDailyHistory(_ context.Context, accountID string, from, to *time.Time) ([]domain.DailyHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DailyHistoryRecord, 0)
	for k, r := range s.history {
		if k.accountID != accountID {
			continue
		}
		if from != nil && r.HistoryDate.Before(*from) {
			continue
		}
		if to != nil && !r.HistoryDate.Before(*to) {
			continue
		}
		out = append(out, cloneHistory(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HistoryDate.After(out[j].HistoryDate) })
	return out, nil
}
