package services

import (
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/jobs"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, runner *jobs.Runner, options ...ServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:      NewAccountService(repos.AccountRepo, repos.TransactionRepo, repos.Locker, options...),
		Transaction:  NewTransactionService(repos.TransactionRepo, repos.AccountRepo, options...),
		Archive:      NewArchiveService(repos.AccountRepo, repos.ArchiveRepo, repos.Locker, runner, options...),
		DailyHistory: NewDailyHistoryService(repos.AccountRepo, repos.TransactionRepo, repos.DailyHistoryRepo, runner, options...),
	}
}
