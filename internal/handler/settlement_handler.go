package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/service"
)

// SettlementHandler exposes the manual trigger and the run history to admin
// tooling. The manual trigger funnels through the same idempotency gate as
// the scheduled one, so re-triggering on a settled day is a no-op skip.
type SettlementHandler struct {
	settlement *service.SettlementService
	runRepo    *repository.RunRepository
}

func NewSettlementHandler(settlement *service.SettlementService, runRepo *repository.RunRepository) *SettlementHandler {
	return &SettlementHandler{settlement: settlement, runRepo: runRepo}
}

// TriggerRun handles POST /admin/settlement/run.
func (h *SettlementHandler) TriggerRun(c *gin.Context) {
	summary, err := h.settlement.Run(c.Request.Context(), domain.RunModeManual)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	code := http.StatusOK
	if summary.Status == domain.RunStatusCompleted {
		code = http.StatusCreated
	}
	c.JSON(code, summary)
}

// ListRuns handles GET /admin/settlement/runs.
func (h *SettlementHandler) ListRuns(c *gin.Context) {
	limit, offset := pagination(c)
	runs, err := h.runRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun handles GET /admin/settlement/runs/:date.
func (h *SettlementHandler) GetRun(c *gin.Context) {
	date := c.Param("date")
	run, err := h.runRepo.GetByDate(date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no settlement run for " + date})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func pagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
