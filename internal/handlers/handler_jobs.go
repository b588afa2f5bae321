package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

type jobsHandler struct {
	archiveService portssvc.ArchiveSvcFacade
	historyService portssvc.DailyHistorySvcFacade
	loc            *time.Location
	now            func() time.Time
}

func registerJobRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, loc *time.Location, now func() time.Time) {
	h := &jobsHandler{
		archiveService: services.Archive,
		historyService: services.DailyHistory,
		loc:            loc,
		now:            now,
	}
	jobs := rg.Group("/jobs")
	{
		jobs.POST("/monthly-archive", h.runMonthlyArchive)
		jobs.POST("/daily-snapshot", h.runDailySnapshot)
	}
}

// jobStatus is 207 when some accounts failed.
func jobStatus(report *domain.JobReport) int {
	if report.Failed() > 0 {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}

// runMonthlyArchive godoc
// @Summary Archive and reset every account for a month
// @Description Each account is processed independently; the report lists per-account outcomes.
// @Tags jobs
// @Accept  json
// @Produce  json
// @Param   period body dto.ArchiveRequest true "Closing month"
// @Success 200 {object} domain.JobReport
// @Success 207 {object} domain.JobReport "Some accounts failed"
// @Security BearerAuth
// @Router /jobs/monthly-archive [post]
func (h *jobsHandler) runMonthlyArchive(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	report, err := h.archiveService.RunMonthlyArchive(c.Request.Context(), req.Period(), userID)
	if err != nil {
		respondError(c, err, "Failed to run monthly archive")
		return
	}
	c.JSON(jobStatus(report), report)
}

// runDailySnapshot godoc
// @Summary Snapshot every account for a day
// @Tags jobs
// @Accept  json
// @Produce  json
// @Param   day body dto.SnapshotRequest false "Day (defaults to today)"
// @Success 200 {object} domain.JobReport
// @Success 207 {object} domain.JobReport "Some accounts failed"
// @Security BearerAuth
// @Router /jobs/daily-snapshot [post]
func (h *jobsHandler) runDailySnapshot(c *gin.Context) {
	var req dto.SnapshotRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err, "request format")
			return
		}
	}
	day := h.now().In(h.loc)
	if req.Date != nil {
		d := *req.Date
		day = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, h.loc)
	}

	report, err := h.historyService.RunDailySnapshot(c.Request.Context(), day)
	if err != nil {
		respondError(c, err, "Failed to run daily snapshot")
		return
	}
	c.JSON(jobStatus(report), report)
}
