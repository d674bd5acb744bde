package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service derives the read-only dashboard views. Nothing here writes to the store.
type Service interface {
	SupplierSummary(ctx context.Context, auth *domain.AuthContext, supplierID primitive.ObjectID) (*domain.SupplierSummary, error)
	AdminSummary(ctx context.Context, auth *domain.AuthContext, period domain.SalesPeriod) (*domain.AdminSummary, error)
	SalesReport(ctx context.Context, auth *domain.AuthContext, period domain.SalesPeriod) ([]byte, error)
}

// Cache stores computed summaries. Get reports whether dest was filled.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Renderer turns a sales report into a downloadable document.
type Renderer interface {
	Render(report domain.SalesReport) ([]byte, error)
}

type Repositories struct {
	Users     domain.UserRepository
	Suppliers domain.SupplierRepository
	Products  domain.ProductRepository
	Orders    domain.OrderRepository
}

type service struct {
	repos    Repositories
	cache    Cache
	renderer Renderer
	now      func() time.Time
}

// NewService builds the aggregator. cache may be nil, in which case every call hits the store.
func NewService(repos Repositories, cache Cache, renderer Renderer) Service {
	return &service{
		repos:    repos,
		cache:    cache,
		renderer: renderer,
		now:      time.Now,
	}
}

func (s *service) SupplierSummary(ctx context.Context, auth *domain.AuthContext, supplierID primitive.ObjectID) (*domain.SupplierSummary, error) {
	if err := domain.RequireIdentity(auth); err != nil {
		return nil, err
	}
	if !auth.IsAdmin() && (auth.SupplierID == nil || *auth.SupplierID != supplierID) {
		return nil, domain.NewForbiddenError(domain.ReasonSupplierOnly)
	}

	key := "supplier:" + supplierID.Hex()
	var cached domain.SupplierSummary
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	supplier, err := s.repos.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	row, err := s.supplierRow(ctx, supplier)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Products.ApprovalCounts(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to count supplier products: %w", err)
	}
	sales, err := s.repos.Orders.Sales(ctx, domain.PeriodDay, domain.OrderBySupplier{SupplierID: supplierID})
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier sales: %w", err)
	}

	out := &domain.SupplierSummary{
		SupplierID:       supplier.ID,
		BusinessName:     supplier.BusinessName,
		Status:           supplier.Status,
		TotalProducts:    supplier.TotalProducts,
		ApprovedProducts: counts.Approved,
		PendingProducts:  counts.Pending,
		RejectedProducts: counts.Rejected,
		TotalOrders:      row.TotalOrders,
		TotalRevenue:     row.TotalRevenue,
		CommissionRate:   row.CommissionRate,
		CommissionAmount: row.CommissionAmount,
		NetRevenue:       row.NetRevenue,
		SalesData:        sales,
	}
	s.store(ctx, key, out)
	return out, nil
}

// supplierRow computes the revenue split of one supplier. Revenue counts the full total of
// every order holding at least one of the supplier's items.
func (s *service) supplierRow(ctx context.Context, supplier *domain.Supplier) (domain.SupplierCommission, error) {
	revenue, orders, err := s.repos.Orders.Revenue(ctx, domain.OrderBySupplier{SupplierID: supplier.ID})
	if err != nil {
		return domain.SupplierCommission{}, fmt.Errorf("failed to sum supplier revenue: %w", err)
	}
	total := domain.Money(revenue)
	cut, net := domain.Commission(total, supplier.CommissionRate)
	return domain.SupplierCommission{
		SupplierID:       supplier.ID,
		BusinessName:     supplier.BusinessName,
		Status:           supplier.Status,
		TotalOrders:      orders,
		TotalRevenue:     total,
		CommissionRate:   supplier.CommissionRate,
		CommissionAmount: cut,
		NetRevenue:       net,
	}, nil
}

func (s *service) AdminSummary(ctx context.Context, auth *domain.AuthContext, period domain.SalesPeriod) (*domain.AdminSummary, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if period == "" {
		period = domain.PeriodDay
	}
	if !period.Valid() {
		return nil, domain.NewValidationError("period", fmt.Sprintf("unknown period %q", period))
	}

	key := "admin:" + string(period)
	var cached domain.AdminSummary
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	out := &domain.AdminSummary{Period: period}
	var err error
	if out.OrdersCount, err = s.repos.Orders.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if out.ProductsCount, err = s.repos.Products.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if out.UsersCount, err = s.repos.Users.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if out.SuppliersCount, err = s.repos.Suppliers.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}
	if out.PendingSuppliers, err = s.repos.Suppliers.Count(ctx, domain.SupplierByStatus{Status: domain.SupplierPending}); err != nil {
		return nil, fmt.Errorf("failed to count pending suppliers: %w", err)
	}
	if out.PendingProducts, err = s.repos.Products.Count(ctx, domain.ProductByApproval{Status: domain.ApprovalPending}); err != nil {
		return nil, fmt.Errorf("failed to count pending products: %w", err)
	}
	if out.SalesData, err = s.repos.Orders.Sales(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	s.store(ctx, key, out)
	return out, nil
}

func (s *service) SalesReport(ctx context.Context, auth *domain.AuthContext, period domain.SalesPeriod) ([]byte, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if period == "" {
		period = domain.PeriodMonth
	}
	if !period.Valid() {
		return nil, domain.NewValidationError("period", fmt.Sprintf("unknown period %q", period))
	}

	sales, err := s.repos.Orders.Sales(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	report := domain.SalesReport{GeneratedAt: s.now().UTC(), Period: period, Sales: sales}

	for number := 1; ; number++ {
		page := domain.NewPage(number, domain.MaxPageSize)
		suppliers, total, err := s.repos.Suppliers.List(ctx, nil, page)
		if err != nil {
			return nil, fmt.Errorf("failed to list suppliers: %w", err)
		}
		for i := range suppliers {
			row, err := s.supplierRow(ctx, &suppliers[i])
			if err != nil {
				return nil, err
			}
			report.Suppliers = append(report.Suppliers, row)
		}
		if number >= page.Pages(total) {
			break
		}
	}

	data, err := s.renderer.Render(report)
	if err != nil {
		return nil, fmt.Errorf("failed to render sales report: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"period":    period,
		"suppliers": len(report.Suppliers),
		"bytes":     len(data),
	}).Info("Sales report generated")
	return data, nil
}

// lookup reads a cached summary. Cache failures degrade to a miss.
func (s *service) lookup(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Summary cache read failed")
		return false
	}
	return hit
}

func (s *service) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Summary cache write failed")
	}
}
