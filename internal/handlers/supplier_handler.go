package handlers

import (
	"net/http"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/middleware"
	"github.com/developia-II/marketplace-backend/internal/services/summary"
	"github.com/developia-II/marketplace-backend/internal/services/supplier"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	base
	suppliers supplier.Service
	summaries summary.Service
}

func NewSupplierHandler(suppliers supplier.Service, summaries summary.Service, timeout time.Duration) *SupplierHandler {
	return &SupplierHandler{base: newBase(timeout), suppliers: suppliers, summaries: summaries}
}

// Register turns the caller into a supplier awaiting approval.
func (h *SupplierHandler) Register(c *gin.Context) {
	var info domain.BusinessInfo
	if !bindJSON(c, &info) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.suppliers.Register(ctx, middleware.Auth(c), info)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Supplier application submitted", gin.H{"supplier": s}))
}

func (h *SupplierHandler) GetMine(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.suppliers.GetForUser(ctx, middleware.Auth(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Supplier fetched successfully", gin.H{"supplier": s}))
}

func (h *SupplierHandler) UpdateMine(c *gin.Context) {
	var update domain.SupplierProfileUpdate
	if !bindJSON(c, &update) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.suppliers.UpdateProfile(ctx, middleware.Auth(c), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Supplier updated successfully", gin.H{"supplier": s}))
}

func (h *SupplierHandler) MySummary(c *gin.Context) {
	auth := middleware.Auth(c)
	if auth == nil || auth.SupplierID == nil {
		c.JSON(http.StatusForbidden, utils.ErrorResponse(domain.ReasonSupplierOnly))
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.summaries.SupplierSummary(ctx, auth, *auth.SupplierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Summary fetched successfully", s))
}

func (h *SupplierHandler) List(c *gin.Context) {
	query := supplier.ListQuery{
		Status: domain.SupplierStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.suppliers.List(ctx, middleware.Auth(c), query, pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Suppliers fetched successfully", page))
}

func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.suppliers.Get(ctx, middleware.Auth(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Supplier fetched successfully", gin.H{"supplier": s}))
}

func (h *SupplierHandler) SetStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status domain.SupplierStatus `json:"status"`
		Reason string                `json:"reason"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.suppliers.SetStatus(ctx, middleware.Auth(c), id, req.Status, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Supplier status updated", gin.H{"supplier": s}))
}

func (h *SupplierHandler) SetCommission(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		CommissionRate *float64 `json:"commissionRate"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.CommissionRate == nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("commissionRate is required"))
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.suppliers.SetCommissionRate(ctx, middleware.Auth(c), id, *req.CommissionRate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Commission rate updated", gin.H{"supplier": s}))
}

func (h *SupplierHandler) Recount(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.suppliers.RecountProducts(ctx, middleware.Auth(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Product count recalculated", gin.H{"supplier": s}))
}

func (h *SupplierHandler) Summary(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.summaries.SupplierSummary(ctx, middleware.Auth(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Summary fetched successfully", s))
}
