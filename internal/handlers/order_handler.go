package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/middleware"
	"github.com/developia-II/marketplace-backend/internal/services/order"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderHandler struct {
	base
	orders order.Service
}

func NewOrderHandler(orders order.Service, timeout time.Duration) *OrderHandler {
	return &OrderHandler{base: newBase(timeout), orders: orders}
}

// PlaceOrder checks out the cart in the body. Anonymous callers place guest orders.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var input order.CheckoutInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	o, err := h.orders.Create(ctx, middleware.Auth(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Order placed successfully", gin.H{"order": o}))
}

func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.orders.ListMine(ctx, middleware.Auth(c), pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Orders fetched successfully", page))
}

func (h *OrderHandler) GetOrderById(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	o, err := h.orders.Get(ctx, middleware.Auth(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Order fetched successfully", gin.H{"order": o}))
}

func (h *OrderHandler) GetSupplierOrders(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	tab := domain.StatusTab(c.DefaultQuery("status", string(domain.TabAll)))
	page, err := h.orders.ListForSupplier(ctx, middleware.Auth(c), tab, pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Supplier orders fetched successfully", page))
}

// ListOrders is the admin order queue, filtered by ?status=active|paid|delivered|all.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	tab := domain.StatusTab(c.DefaultQuery("status", string(domain.TabActive)))
	page, err := h.orders.ListByStatus(ctx, middleware.Auth(c), tab, pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Orders fetched successfully", page))
}

func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.transition(c, "Order marked as paid", h.orders.MarkPaid)
}

func (h *OrderHandler) MarkUnpaid(c *gin.Context) {
	h.transition(c, "Order marked as unpaid", h.orders.MarkUnpaid)
}

func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, "Order marked as delivered", h.orders.MarkDelivered)
}

type orderTransition func(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error)

func (h *OrderHandler) transition(c *gin.Context, message string, apply orderTransition) {
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	o, err := apply(ctx, middleware.Auth(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse(message, gin.H{"order": o}))
}
