package dto

import (
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// SnapshotRequest selects the day to snapshot. A nil date means today.
type SnapshotRequest struct {
	Date *time.Time `json:"date"`
}

// ListHistoryParams defines query parameters for listing daily history.
type ListHistoryParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// ListHistoryResponse wraps an account's daily history records.
type ListHistoryResponse struct {
	History []domain.DailyHistoryRecord `json:"history"`
}
