package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service interface {
	// Create checks out a cart snapshot. auth may be nil for guest checkout.
	Create(ctx context.Context, auth *domain.AuthContext, input CheckoutInput) (*domain.Order, error)

	MarkPaid(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error)
	MarkUnpaid(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error)
	MarkDelivered(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error)

	// RecordPayment is called by the payment gateway webhook once the signature is verified.
	RecordPayment(ctx context.Context, id primitive.ObjectID, result domain.PaymentResult) (*domain.Order, error)

	ListByStatus(ctx context.Context, auth *domain.AuthContext, tab domain.StatusTab, page domain.Page) (*domain.OrderPage, error)
	Get(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error)
	ListMine(ctx context.Context, auth *domain.AuthContext, page domain.Page) (*domain.OrderPage, error)
	ListForSupplier(ctx context.Context, auth *domain.AuthContext, tab domain.StatusTab, page domain.Page) (*domain.OrderPage, error)
}

// CheckoutInput is what the storefront hands over at checkout.
type CheckoutInput struct {
	Cart            domain.CartSnapshot    `json:"cart"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required,max=50"`
}

// Policy holds the configurable fulfillment rules.
type Policy struct {
	// RequirePaidBeforeDelivery rejects MarkDelivered on unpaid orders.
	RequirePaidBeforeDelivery bool
}

type service struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	policy   Policy
	v        *validator.Validate
	now      func() time.Time
}

func NewService(orders domain.OrderRepository, products domain.ProductRepository, policy Policy) Service {
	return &service{
		orders:   orders,
		products: products,
		policy:   policy,
		v:        services.NewValidator(),
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, auth *domain.AuthContext, input CheckoutInput) (*domain.Order, error) {
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	if err := services.Validate(s.v, input); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(input.Cart.Items))
	for _, item := range input.Cart.Items {
		ids = append(ids, item.Product)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[primitive.ObjectID]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(input.Cart.Items))
	for _, line := range input.Cart.Items {
		product, ok := byID[line.Product]
		if !ok {
			return nil, domain.NewNotFoundError("product", line.Product.Hex())
		}
		if !product.IsPubliclyListable() {
			return nil, domain.NewValidationError("orderItems", fmt.Sprintf("product %s is not available", product.Name))
		}

		item := domain.OrderItem{
			Product:       product.ID,
			Supplier:      product.Supplier,
			Name:          line.Name,
			Quantity:      line.Quantity,
			Image:         line.Image,
			Price:         domain.Money(line.Price).InexactFloat64(),
			DiscountPrice: domain.Money(line.DiscountPrice).InexactFloat64(),
		}
		items = append(items, item)

		unit := domain.EffectivePrice(item.Price, item.DiscountPrice)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := &domain.Order{
		OrderItems:      items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		TotalPrice:      total.Round(2).InexactFloat64(),
	}
	if auth != nil && !auth.UserID.IsZero() {
		userID := auth.UserID
		order.User = &userID
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"orderId": order.ID.Hex(),
		"items":   len(items),
		"total":   order.TotalPrice,
		"guest":   order.User == nil,
	}).Info("Order placed")
	return order, nil
}

func (s *service) MarkPaid(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	now := s.now()
	return s.setFlags(ctx, id, domain.OrderFlags{Paid: &domain.FlagChange{Value: true, At: &now}})
}

func (s *service) MarkUnpaid(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	return s.setFlags(ctx, id, domain.OrderFlags{Paid: &domain.FlagChange{Value: false}})
}

func (s *service) MarkDelivered(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if s.policy.RequirePaidBeforeDelivery {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !order.IsPaid {
			return nil, domain.NewValidationError("isPaid", "order must be paid before delivery")
		}
	}
	now := s.now()
	return s.setFlags(ctx, id, domain.OrderFlags{Delivered: &domain.FlagChange{Value: true, At: &now}})
}

func (s *service) RecordPayment(ctx context.Context, id primitive.ObjectID, result domain.PaymentResult) (*domain.Order, error) {
	now := s.now()
	// Gateways redeliver events; the first paidAt stays.
	flags := domain.OrderFlags{
		Paid:          &domain.FlagChange{Value: true, At: &now, IfUnset: true},
		PaymentResult: &result,
	}
	updated, err := s.setFlags(ctx, id, flags)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"orderId":   id.Hex(),
		"paymentId": result.ID,
		"status":    result.Status,
	}).Info("Payment recorded")
	return updated, nil
}

func (s *service) setFlags(ctx context.Context, id primitive.ObjectID, flags domain.OrderFlags) (*domain.Order, error) {
	order, err := s.orders.SetFlags(ctx, id, flags)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

func (s *service) ListByStatus(ctx context.Context, auth *domain.AuthContext, tab domain.StatusTab, page domain.Page) (*domain.OrderPage, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	return s.list(ctx, tab, page)
}

func (s *service) ListMine(ctx context.Context, auth *domain.AuthContext, page domain.Page) (*domain.OrderPage, error) {
	if err := domain.RequireIdentity(auth); err != nil {
		return nil, err
	}
	return s.list(ctx, domain.TabAll, page, domain.OrderByUser{UserID: auth.UserID})
}

func (s *service) ListForSupplier(ctx context.Context, auth *domain.AuthContext, tab domain.StatusTab, page domain.Page) (*domain.OrderPage, error) {
	supplierID, err := domain.RequireSupplier(auth)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, tab, page, domain.OrderBySupplier{SupplierID: supplierID})
}

// list pages through the orders matching scope plus the tab. ActiveCount ignores the tab
// so dashboards can show the badge on every view.
func (s *service) list(ctx context.Context, tab domain.StatusTab, page domain.Page, scope ...domain.OrderFilter) (*domain.OrderPage, error) {
	if tab == "" {
		tab = domain.TabAll
	}
	if !tab.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status filter %q", tab))
	}

	filters := append([]domain.OrderFilter{}, scope...)
	if f, ok := tab.Filter(); ok {
		filters = append(filters, f)
	}

	orders, total, err := s.orders.List(ctx, filters, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	active, err := s.orders.Count(ctx, append(append([]domain.OrderFilter{}, scope...), domain.OrderActive{})...)
	if err != nil {
		return nil, fmt.Errorf("failed to count active orders: %w", err)
	}

	return &domain.OrderPage{
		Orders:      orders,
		Page:        page.Number,
		Pages:       page.Pages(total),
		Total:       total,
		ActiveCount: active,
	}, nil
}

func (s *service) Get(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Order, error) {
	if err := domain.RequireIdentity(auth); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case auth.IsAdmin():
	case order.User != nil && *order.User == auth.UserID:
	case auth.SupplierID != nil && order.HasSupplier(*auth.SupplierID):
	default:
		return nil, domain.NewForbiddenError(domain.ReasonNotYourOrder)
	}
	return order, nil
}
