package handlers

import "github.com/SscSPs/caisse_ledger/internal/core/domain"

// kindSegments maps the URL segment of each account kind.
var kindSegments = map[domain.AccountKind]string{
	domain.CashDrawer:  "cash-drawers",
	domain.BankAccount: "bank-accounts",
}
