package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/dto"
	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/google/uuid"
)

// transactionService implements the TransactionSvcFacade interface
type transactionService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewTransactionService creates a new transaction service
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountReader, options ...ServiceOption) portssvc.TransactionSvcFacade {
	return &transactionService{
		BaseService: newBaseService(options...),
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, userID string) (*domain.Transaction, error) {
	now := s.Now()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Direction:       req.Direction,
		Amount:          req.Amount,
		CurrencyCode:    domain.NormalizeCurrency(req.CurrencyCode),
		Source:          domain.AccountRef{Kind: req.SourceKind, ID: strings.TrimSpace(req.SourceID)},
		TransactionDate: now,
		Category:        strings.TrimSpace(req.Category),
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		CreatedBy:       userID,
		CreatedAt:       now,
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = req.TransactionDate.In(s.Location())
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, txn.Source)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("source account %s: %w", txn.Source, err)
		}
		s.LogError(ctx, err, "Failed to load source account", accountAttr(txn.Source))
		return nil, err
	}
	if !account.Balances.Has(txn.CurrencyCode) {
		return nil, fmt.Errorf("%w: currency %s is not held by %s", apperrors.ErrValidation, txn.CurrencyCode, txn.Source)
	}
	if txn.TransactionDate.Before(account.PeriodStartedAt) {
		return nil, fmt.Errorf("%w: %s is closed before %s", apperrors.ErrValidation,
			txn.Source, account.PeriodStartedAt.Format(time.RFC3339))
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save transaction", accountAttr(txn.Source))
		return nil, err
	}
	s.warnIfClosedMeanwhile(ctx, txn)

	s.LogInfo(ctx, "Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		accountAttr(txn.Source),
		slog.String("direction", string(txn.Direction)),
		slog.String("currency", txn.CurrencyCode))
	s.Publish(ctx, events.New(events.TransactionRecorded, txn.Source, txn))
	return &txn, nil
}

// warnIfClosedMeanwhile flags a transaction that landed in a period an archive run
// closed between the check above and the save. Re-archiving that month picks it up.
func (s *transactionService) warnIfClosedMeanwhile(ctx context.Context, txn domain.Transaction) {
	account, err := s.accountRepo.FindAccountByID(ctx, txn.Source)
	if err != nil || !txn.TransactionDate.Before(account.PeriodStartedAt) {
		return
	}
	s.GetLogger(ctx).WarnContext(ctx, "Transaction recorded into a period closed concurrently; re-archive its month",
		slog.String("transaction_id", txn.TransactionID),
		accountAttr(txn.Source),
		slog.String("month", domain.PeriodOf(txn.TransactionDate.In(s.Location())).String()))
}

func (s *transactionService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) iter.Seq2[domain.Transaction, error] {
	if err := filter.Source.Validate(); err != nil {
		return func(yield func(domain.Transaction, error) bool) {
			yield(domain.Transaction{}, err)
		}
	}
	if filter.Limit < 0 {
		return func(yield func(domain.Transaction, error) bool) {
			yield(domain.Transaction{}, fmt.Errorf("%w: limit must not be negative", apperrors.ErrValidation))
		}
	}
	return s.txnRepo.ListTransactions(ctx, filter)
}
