package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/middleware"
	"github.com/developia-II/marketplace-backend/internal/services/product"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	base
	products product.Service
}

func NewProductHandler(products product.Service, timeout time.Duration) *ProductHandler {
	return &ProductHandler{base: newBase(timeout), products: products}
}

// FetchProductsPublic serves the storefront catalog. Unapproved supplier products never
// appear here.
func (h *ProductHandler) FetchProductsPublic(c *gin.Context) {
	featured, _ := strconv.ParseBool(c.Query("featured"))
	query := product.PublicQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Featured: featured,
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.products.ListPublic(ctx, query, pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", page))
}

// FetchProductPublic accepts either an id or a slug.
func (h *ProductHandler) FetchProductPublic(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.products.GetPublic(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product fetched successfully", gin.H{"product": p}))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input domain.ProductInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.products.Submit(ctx, middleware.Auth(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("product submitted for review", gin.H{"product": p}))
}

func (h *ProductHandler) GetSupplierProducts(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.products.ListForSupplier(ctx, middleware.Auth(c), c.Query("search"), pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", page))
}

func (h *ProductHandler) GetSupplierProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.products.GetForSupplier(ctx, middleware.Auth(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product fetched successfully", gin.H{"product": p}))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update domain.ProductUpdate
	if !bindJSON(c, &update) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.products.Edit(ctx, middleware.Auth(c), id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product updated successfully", gin.H{"product": p}))
}

// DeleteProduct serves both the supplier and the admin routes; ownership is checked by the
// service for non-admins.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.products.Remove(ctx, middleware.Auth(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product deleted successfully", gin.H{"id": id}))
}

func (h *ProductHandler) ListForReview(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	status := domain.ApprovalStatus(c.Query("status"))
	page, err := h.products.ListForReview(ctx, middleware.Auth(c), status, pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", page))
}

func (h *ProductHandler) AdminCreate(c *gin.Context) {
	var input domain.ProductInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.products.AdminCreate(ctx, middleware.Auth(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("product created successfully", gin.H{"product": p}))
}

func (h *ProductHandler) AdminUpdate(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update domain.ProductUpdate
	if !bindJSON(c, &update) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.products.AdminEdit(ctx, middleware.Auth(c), id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product updated successfully", gin.H{"product": p}))
}

func (h *ProductHandler) Review(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var decision domain.ReviewDecision
	if !bindJSON(c, &decision) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	p, err := h.products.AdminReview(ctx, middleware.Auth(c), id, decision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product reviewed", gin.H{"product": p}))
}
