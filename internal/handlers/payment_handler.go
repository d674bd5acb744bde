package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/services/order"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentHandler records payments reported by Stripe. Nothing is captured here; the
// storefront drives the payment and the webhook attests it.
type PaymentHandler struct {
	base
	orders        order.Service
	webhookSecret string
}

func NewPaymentHandler(orders order.Service, webhookSecret string, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{base: newBase(timeout), orders: orders, webhookSecret: webhookSecret}
}

// HandleWebhook processes asynchronous events from Stripe
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Error reading request body"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEventWithOptions(payload, signature, h.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		logrus.WithError(err).Warn("Rejected webhook with invalid signature")
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid signature"))
		return
	}

	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Error parsing webhook JSON"))
		return
	}

	orderID, err := primitive.ObjectIDFromHex(pi.Metadata["orderId"])
	if err != nil {
		logrus.WithField("paymentId", pi.ID).Warn("Payment without a valid orderId metadata")
		c.JSON(http.StatusOK, gin.H{"success": true}) // Return 200 so Stripe doesn't retry invalid data
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	result := domain.PaymentResult{
		ID:         pi.ID,
		Status:     string(pi.Status),
		UpdateTime: time.Unix(event.Created, 0).UTC().Format(time.RFC3339),
		Email:      pi.ReceiptEmail,
	}
	if _, err := h.orders.RecordPayment(ctx, orderID, result); err != nil {
		if domain.IsNotFound(err) {
			logrus.WithFields(logrus.Fields{"orderId": orderID.Hex(), "paymentId": pi.ID}).Warn("Payment for unknown order")
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
