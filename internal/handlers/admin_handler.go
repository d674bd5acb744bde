package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/developia-II/marketplace-backend/internal/adapters/cache"
	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/middleware"
	"github.com/developia-II/marketplace-backend/internal/services/summary"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SummaryCache is the admin view of the summary cache.
type SummaryCache interface {
	Stats() cache.Stats
	Flush(ctx context.Context) error
}

type AdminHandler struct {
	base
	summaries summary.Service
	cache     SummaryCache
}

func NewAdminHandler(summaries summary.Service, summaryCache SummaryCache, timeout time.Duration) *AdminHandler {
	return &AdminHandler{base: newBase(timeout), summaries: summaries, cache: summaryCache}
}

func (h *AdminHandler) Summary(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	period := domain.SalesPeriod(c.DefaultQuery("period", string(domain.PeriodDay)))
	s, err := h.summaries.AdminSummary(ctx, middleware.Auth(c), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Summary fetched successfully", s))
}

func (h *AdminHandler) SalesReport(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	period := domain.SalesPeriod(c.DefaultQuery("period", string(domain.PeriodMonth)))
	data, err := h.summaries.SalesReport(ctx, middleware.Auth(c), period)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("sales-%s-%s.xlsx", period, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *AdminHandler) CacheStats(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, utils.SuccessResponse("Summary cache disabled", gin.H{"enabled": false}))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Summary cache stats", gin.H{"enabled": true, "stats": h.cache.Stats()}))
}

func (h *AdminHandler) FlushCache(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, utils.SuccessResponse("Summary cache disabled", gin.H{"enabled": false}))
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.cache.Flush(ctx); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Summary cache flushed", nil))
}
