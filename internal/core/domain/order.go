package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a snapshot of a cart line at checkout. It never follows later catalog edits.
type OrderItem struct {
	Product       primitive.ObjectID  `json:"product" bson:"product"`
	Supplier      *primitive.ObjectID `json:"supplier,omitempty" bson:"supplier,omitempty"`
	Name          string              `json:"name" bson:"name"`
	Quantity      int                 `json:"quantity" bson:"quantity"`
	Image         string              `json:"image" bson:"image"`
	Price         float64             `json:"price" bson:"price"`
	DiscountPrice float64             `json:"discountPrice,omitempty" bson:"discountPrice,omitempty"`
}

type ShippingAddress struct {
	Address    string `json:"address" bson:"address" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	PostalCode string `json:"postalCode" bson:"postalCode" validate:"required"`
	Country    string `json:"country" bson:"country" validate:"required"`
}

// PaymentResult records what a payment gateway reported for the order.
type PaymentResult struct {
	ID         string `json:"id" bson:"id"`
	Status     string `json:"status" bson:"status"`
	UpdateTime string `json:"updateTime" bson:"updateTime"`
	Email      string `json:"email,omitempty" bson:"email,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	User            *primitive.ObjectID `json:"user,omitempty" bson:"user,omitempty"`
	OrderItems      []OrderItem         `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress     `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod" bson:"paymentMethod"`
	PaymentResult   *PaymentResult      `json:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	TotalPrice      float64             `json:"totalPrice" bson:"totalPrice"`

	IsPaid      bool       `json:"isPaid" bson:"isPaid"`
	PaidAt      *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered bool       `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasSupplier reports whether any line of the order came from the supplier.
func (o *Order) HasSupplier(supplierID primitive.ObjectID) bool {
	for _, item := range o.OrderItems {
		if item.Supplier != nil && *item.Supplier == supplierID {
			return true
		}
	}
	return false
}

// CartItem is one line of the storefront cart handed over at checkout.
type CartItem struct {
	Product       primitive.ObjectID `json:"product" validate:"required"`
	Name          string             `json:"name" validate:"required"`
	Quantity      int                `json:"quantity" validate:"gt=0"`
	Image         string             `json:"image"`
	Price         float64            `json:"price" validate:"gte=0,cents"`
	DiscountPrice float64            `json:"discountPrice" validate:"gte=0,cents"`
}

type CartSnapshot struct {
	Items []CartItem `json:"orderItems" validate:"required,min=1,dive"`
}

// StatusTab selects one of the admin order views.
type StatusTab string

const (
	TabActive    StatusTab = "active"
	TabPaid      StatusTab = "paid"
	TabDelivered StatusTab = "delivered"
	TabAll       StatusTab = "all"
)

// Filter maps the tab onto its order filter; TabAll yields none.
func (t StatusTab) Filter() (OrderFilter, bool) {
	switch t {
	case TabActive:
		return OrderActive{}, true
	case TabPaid:
		return OrderPaidUndelivered{}, true
	case TabDelivered:
		return OrderDelivered{}, true
	}
	return nil, false
}

func (t StatusTab) Valid() bool {
	switch t {
	case TabActive, TabPaid, TabDelivered, TabAll:
		return true
	}
	return false
}

type OrderPage struct {
	Orders      []Order `json:"orders"`
	Page        int     `json:"page"`
	Pages       int     `json:"pages"`
	Total       int64   `json:"total"`
	ActiveCount int64   `json:"activeCount"`
}

// FlagChange sets one fulfillment flag; At is cleared when nil.
type FlagChange struct {
	Value bool
	At    *time.Time
	// IfUnset applies the change only while the stored flag is still false, as part of
	// the same write, so the first timestamp wins.
	IfUnset bool
}

// OrderFlags lists the fulfillment fields written by one transition. Nil members are left
// as stored so that concurrent paid/delivered transitions do not overwrite each other.
type OrderFlags struct {
	Paid          *FlagChange
	Delivered     *FlagChange
	PaymentResult *PaymentResult
}

// SalesBucket is the revenue of one period, keyed "2006-01-02" or "2006-01".
type SalesBucket struct {
	Period string  `json:"period" bson:"_id"`
	Total  float64 `json:"total" bson:"total"`
	Orders int     `json:"orders" bson:"orders"`
}

// OrderRepository defines the persistence port for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error

	// GetByID returns a NotFoundError when no order matches.
	GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error)

	// SetFlags writes the fulfillment fields of a single order and returns the updated document.
	SetFlags(ctx context.Context, id primitive.ObjectID, flags OrderFlags) (*Order, error)

	// List returns one page, newest first, plus the unpaged total.
	List(ctx context.Context, filters []OrderFilter, page Page) ([]Order, int64, error)

	Count(ctx context.Context, filters ...OrderFilter) (int64, error)

	// Revenue sums totalPrice over the orders matching the filters.
	Revenue(ctx context.Context, filters ...OrderFilter) (float64, int64, error)

	// Sales groups totalPrice by period, oldest period first.
	Sales(ctx context.Context, period SalesPeriod, filters ...OrderFilter) ([]SalesBucket, error)
}
