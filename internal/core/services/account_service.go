package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/dto"
	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/SscSPs/caisse_ledger/internal/utils"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	txnRepo     portsrepo.TransactionReader
	locker      portsrepo.AccountLocker
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionReader,
	locker portsrepo.AccountLocker,
	options ...ServiceOption,
) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(options...),
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		locker:      locker,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, kind domain.AccountKind, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown account kind %q", apperrors.ErrValidation, kind)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	balances, err := domain.NewBalances(dto.ToDomainEntries(req.Balances))
	if err != nil {
		return nil, err
	}

	now := s.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Kind:            kind,
		Name:            name,
		Balances:        balances,
		PeriodStartedAt: periodStartFor(now, s.Location()),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	switch kind {
	case domain.CashDrawer:
		account.Location = strings.TrimSpace(req.Location)
	case domain.BankAccount:
		account.AccountType = strings.TrimSpace(req.AccountType)
	}
	if req.Secret != "" {
		hash, err := utils.HashSecret(req.Secret)
		if err != nil {
			return nil, fmt.Errorf("failed to hash secret: %w", err)
		}
		account.SecretHash = hash
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", accountAttr(account.Ref()))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully", accountAttr(account.Ref()), slog.Int("currencies", len(balances)))
	s.Publish(ctx, events.New(events.AccountCreated, account.Ref(), nil))
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, ref)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", accountAttr(ref))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, kind domain.AccountKind) ([]domain.Account, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown account kind %q", apperrors.ErrValidation, kind)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, kind)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	s.LogDebug(ctx, "Accounts listed", slog.Int("count", len(accounts)))
	return accounts, nil
}

// applyMetadata copies the provided metadata fields onto the account.
func applyMetadata(account *domain.Account, name, location, accountType *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return fmt.Errorf("%w: name must not be blank", apperrors.ErrValidation)
		}
		account.Name = n
	}
	if location != nil {
		if account.Kind != domain.CashDrawer {
			return fmt.Errorf("%w: location applies to cash drawers only", apperrors.ErrValidation)
		}
		account.Location = strings.TrimSpace(*location)
	}
	if accountType != nil {
		if account.Kind != domain.BankAccount {
			return fmt.Errorf("%w: account type applies to bank accounts only", apperrors.ErrValidation)
		}
		account.AccountType = strings.TrimSpace(*accountType)
	}
	return nil
}

func (s *accountService) UpdateAccountMetadata(ctx context.Context, ref domain.AccountRef, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var updated domain.Account
	err := s.locker.WithAccountLock(ctx, ref, func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error {
		if err := applyMetadata(account, req.Name, req.Location, req.AccountType); err != nil {
			return err
		}
		account.Touch(userID, s.Now())
		if err := tx.UpdateAccount(ctx, *account); err != nil {
			return err
		}
		updated = *account
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to update account", accountAttr(ref))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Account metadata updated", accountAttr(ref))
	s.Publish(ctx, events.New(events.AccountUpdated, ref, nil))
	return &updated, nil
}

func (s *accountService) UpdateAccountPrivileged(ctx context.Context, ref domain.AccountRef, req dto.PrivilegedUpdateRequest, userID string) (*domain.Account, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var newBalances domain.Balances
	if req.Balances != nil {
		b, err := domain.NewBalances(dto.ToDomainEntries(req.Balances))
		if err != nil {
			return nil, err
		}
		newBalances = b
	}
	var newHash string
	if req.NewSecret != nil {
		if *req.NewSecret == "" {
			return nil, fmt.Errorf("%w: new secret must not be empty", apperrors.ErrValidation)
		}
		h, err := utils.HashSecret(*req.NewSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to hash secret: %w", err)
		}
		newHash = h
	}

	var updated domain.Account
	err := s.locker.WithAccountLock(ctx, ref, func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error {
		if !account.HasSecret() || !utils.CheckSecretHash(req.Secret, account.SecretHash) {
			return fmt.Errorf("%w: secret does not match", apperrors.ErrUnauthorized)
		}
		if err := applyMetadata(account, req.Name, req.Location, req.AccountType); err != nil {
			return err
		}
		if newBalances != nil {
			account.Balances = newBalances
		}
		if newHash != "" {
			account.SecretHash = newHash
		}
		account.Touch(userID, s.Now())
		if err := tx.UpdateAccount(ctx, *account); err != nil {
			return err
		}
		updated = *account
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized):
			s.GetLogger(ctx).Warn("Privileged update rejected", accountAttr(ref))
		case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrValidation):
		default:
			s.LogError(ctx, err, "Failed privileged update", accountAttr(ref))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Privileged account update applied", accountAttr(ref),
		slog.Bool("balances_replaced", newBalances != nil),
		slog.Bool("secret_rotated", newHash != ""))
	s.Publish(ctx, events.New(events.AccountUpdated, ref, nil))
	return &updated, nil
}

func (s *accountService) ResetAccount(ctx context.Context, ref domain.AccountRef, userID string) (*domain.Account, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var updated domain.Account
	err := s.locker.WithAccountLock(ctx, ref, func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error {
		now := s.Now()
		if err := resetLocked(ctx, tx, account, userID, now, now); err != nil {
			return err
		}
		updated = *account
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to reset account", accountAttr(ref))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Account reset", accountAttr(ref))
	s.Publish(ctx, events.New(events.AccountReset, ref, nil))
	return &updated, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, ref domain.AccountRef, userID string) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccount(ctx, ref); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete account", accountAttr(ref))
		}
		return err
	}
	s.LogInfo(ctx, "Account deleted", accountAttr(ref), slog.String("deleted_by", userID))
	s.Publish(ctx, events.New(events.AccountDeleted, ref, nil))
	return nil
}

func (s *accountService) GetBalanceSummary(ctx context.Context, ref domain.AccountRef, secret string) (domain.FinancialSummary, error) {
	account, err := s.GetAccount(ctx, ref)
	if err != nil {
		return nil, err
	}
	if account.HasSecret() && !utils.CheckSecretHash(secret, account.SecretHash) {
		return nil, fmt.Errorf("%w: secret required to view balances", apperrors.ErrUnauthorized)
	}
	acc, err := liveAccumulator(ctx, s.txnRepo, account)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance", accountAttr(ref))
		return nil, err
	}
	return acc.Summary(), nil
}
