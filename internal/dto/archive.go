package dto

import (
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// ArchiveRequest selects the closing month for an archive run.
type ArchiveRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// Period converts the request into a domain.Period.
func (r ArchiveRequest) Period() domain.Period {
	return domain.Period{Year: r.Year, Month: time.Month(r.Month)}
}

// ListArchivesResponse wraps an account's monthly archives.
type ListArchivesResponse struct {
	Archives []domain.ArchiveRecord `json:"archives"`
}
