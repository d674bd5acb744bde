package summary

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/developia-II/marketplace-backend/internal/adapters/repository/memory"
	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mapCache struct {
	entries map[string][]byte
	gets    int
	failing bool
}

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.gets++
	if c.failing {
		return false, errors.New("cache down")
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	if c.failing {
		return errors.New("cache down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

type captureRenderer struct {
	report domain.SalesReport
}

func (r *captureRenderer) Render(report domain.SalesReport) ([]byte, error) {
	r.report = report
	return []byte("xlsx"), nil
}

type fixture struct {
	store    *memory.Store
	svc      Service
	renderer *captureRenderer
	admin    *domain.AuthContext
}

func newFixture(t *testing.T, cache *mapCache) *fixture {
	t.Helper()
	store := memory.NewStore()
	renderer := &captureRenderer{}
	var c Cache
	if cache != nil {
		c = cache
	}
	repos := Repositories{Users: store.Users, Suppliers: store.Suppliers, Products: store.Products, Orders: store.Orders}
	svc := NewService(repos, c, renderer)
	return &fixture{
		store:    store,
		svc:      svc,
		renderer: renderer,
		admin:    &domain.AuthContext{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin},
	}
}

func (f *fixture) supplier(t *testing.T, name string, rate float64, status domain.SupplierStatus) *domain.Supplier {
	t.Helper()
	ctx := context.Background()
	u := &domain.User{Name: name, Email: name + "@shop.test", Role: domain.RoleCustomer}
	require.NoError(t, f.store.Users.Create(ctx, u))
	s := &domain.Supplier{UserID: u.ID, BusinessName: name, BusinessSlug: name, Status: status, CommissionRate: rate}
	require.NoError(t, f.store.Suppliers.CreateForUser(ctx, s))
	return s
}

func (f *fixture) order(t *testing.T, total float64, suppliers ...primitive.ObjectID) {
	t.Helper()
	o := &domain.Order{TotalPrice: total, PaymentMethod: "card"}
	for i := range suppliers {
		sid := suppliers[i]
		o.OrderItems = append(o.OrderItems, domain.OrderItem{Product: primitive.NewObjectID(), Supplier: &sid, Name: "item", Quantity: 1, Price: total})
	}
	require.NoError(t, f.store.Orders.Create(context.Background(), o))
}

func TestSupplierCommission(t *testing.T) {
	f := newFixture(t, nil)
	s := f.supplier(t, "acme", 15, domain.SupplierApproved)
	other := f.supplier(t, "other", 15, domain.SupplierApproved)

	f.order(t, 600, s.ID)
	f.order(t, 400, s.ID, other.ID)
	f.order(t, 999, other.ID)

	got, err := f.svc.SupplierSummary(context.Background(), f.admin, s.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(got.TotalRevenue), got.TotalRevenue.String())
	assert.True(t, decimal.NewFromInt(150).Equal(got.CommissionAmount), got.CommissionAmount.String())
	assert.True(t, decimal.NewFromInt(850).Equal(got.NetRevenue), got.NetRevenue.String())
	assert.Equal(t, int64(2), got.TotalOrders)
	require.Len(t, got.SalesData, 1)
	assert.Equal(t, 1000.0, got.SalesData[0].Total)
}

func TestNetPlusCommissionIsRevenue(t *testing.T) {
	revenues := []float64{0, 0.01, 19.99, 333.33, 1000, 12345.67}
	rates := []float64{0, 2.5, 10, 15, 33.33, 100}

	for _, rate := range rates {
		for _, revenue := range revenues {
			f := newFixture(t, nil)
			s := f.supplier(t, "acme", rate, domain.SupplierApproved)
			if revenue > 0 {
				f.order(t, revenue, s.ID)
			}

			got, err := f.svc.SupplierSummary(context.Background(), f.admin, s.ID)
			require.NoError(t, err)
			assert.True(t, got.NetRevenue.Add(got.CommissionAmount).Equal(got.TotalRevenue),
				"rate %v revenue %v: %s + %s", rate, revenue, got.NetRevenue, got.CommissionAmount)
			assert.True(t, got.CommissionAmount.Equal(got.CommissionAmount.Round(2)))
			assert.False(t, got.CommissionAmount.IsNegative())
			assert.False(t, got.NetRevenue.IsNegative())
		}
	}
}

func TestSupplierSummary_Access(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s := f.supplier(t, "acme", 15, domain.SupplierApproved)
	other := f.supplier(t, "other", 15, domain.SupplierApproved)

	owner := &domain.AuthContext{UserID: s.UserID, Role: domain.RoleSupplier, SupplierID: &s.ID}
	_, err := f.svc.SupplierSummary(ctx, owner, s.ID)
	require.NoError(t, err)

	_, err = f.svc.SupplierSummary(ctx, owner, other.ID)
	var ferr *domain.ForbiddenError
	assert.ErrorAs(t, err, &ferr)

	_, err = f.svc.SupplierSummary(ctx, nil, s.ID)
	var aerr *domain.AuthorizationError
	assert.ErrorAs(t, err, &aerr)

	_, err = f.svc.SupplierSummary(ctx, f.admin, primitive.NewObjectID())
	assert.True(t, domain.IsNotFound(err))
}

func TestSupplierSummary_ApprovalCounts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s := f.supplier(t, "acme", 15, domain.SupplierApproved)
	sid := s.ID

	for i, status := range []domain.ApprovalStatus{domain.ApprovalApproved, domain.ApprovalApproved, domain.ApprovalPending, domain.ApprovalRejected} {
		p := &domain.Product{Slug: string(status) + string(rune('a'+i)), Supplier: &sid, AddedBy: domain.AddedBySupplier, Name: "p", Price: 1, ApprovalStatus: status}
		require.NoError(t, f.store.Products.Create(ctx, p))
	}

	got, err := f.svc.SupplierSummary(ctx, f.admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalProducts)
	assert.Equal(t, int64(2), got.ApprovedProducts)
	assert.Equal(t, int64(1), got.PendingProducts)
	assert.Equal(t, int64(1), got.RejectedProducts)
}

func TestAdminSummary(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time { return day })

	s := f.supplier(t, "acme", 15, domain.SupplierApproved)
	f.supplier(t, "newbie", 15, domain.SupplierPending)
	sid := s.ID
	require.NoError(t, f.store.Products.Create(ctx, &domain.Product{Slug: "a", Supplier: &sid, AddedBy: domain.AddedBySupplier, Name: "a", Price: 1, ApprovalStatus: domain.ApprovalPending}))
	require.NoError(t, f.store.Products.Create(ctx, &domain.Product{Slug: "b", AddedBy: domain.AddedByAdmin, Name: "b", Price: 1}))

	f.order(t, 10, s.ID)
	f.store.SetClock(func() time.Time { return day.AddDate(0, 1, 0) })
	f.order(t, 5.5, s.ID)
	f.order(t, 4.5)

	got, err := f.svc.AdminSummary(ctx, f.admin, domain.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.OrdersCount)
	assert.Equal(t, int64(2), got.ProductsCount)
	assert.Equal(t, int64(2), got.UsersCount)
	assert.Equal(t, int64(2), got.SuppliersCount)
	assert.Equal(t, int64(1), got.PendingSuppliers)
	assert.Equal(t, int64(1), got.PendingProducts)
	assert.Equal(t, []domain.SalesBucket{
		{Period: "2026-03", Total: 10, Orders: 1},
		{Period: "2026-04", Total: 10, Orders: 2},
	}, got.SalesData)

	_, err = f.svc.AdminSummary(ctx, f.admin, "year")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	customer := &domain.AuthContext{UserID: primitive.NewObjectID(), Role: domain.RoleCustomer}
	_, err = f.svc.AdminSummary(ctx, customer, domain.PeriodDay)
	var ferr *domain.ForbiddenError
	assert.ErrorAs(t, err, &ferr)
}

func TestSummaryCache(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{entries: map[string][]byte{}}
	f := newFixture(t, cache)
	s := f.supplier(t, "acme", 15, domain.SupplierApproved)
	f.order(t, 100, s.ID)

	first, err := f.svc.SupplierSummary(ctx, f.admin, s.ID)
	require.NoError(t, err)
	assert.Contains(t, cache.entries, "supplier:"+s.ID.Hex())

	// Reads within the TTL may be stale.
	f.order(t, 50, s.ID)
	second, err := f.svc.SupplierSummary(ctx, f.admin, s.ID)
	require.NoError(t, err)
	assert.True(t, first.TotalRevenue.Equal(second.TotalRevenue))

	cache.failing = true
	fresh, err := f.svc.SupplierSummary(ctx, f.admin, s.ID)
	require.NoError(t, err, "a broken cache degrades to the store")
	assert.True(t, decimal.NewFromInt(150).Equal(fresh.TotalRevenue))
}

func TestSalesReport(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a := f.supplier(t, "acme", 10, domain.SupplierApproved)
	b := f.supplier(t, "bolt", 20, domain.SupplierSuspended)
	f.order(t, 200, a.ID)
	f.order(t, 50, b.ID)

	data, err := f.svc.SalesReport(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)

	report := f.renderer.report
	assert.Equal(t, domain.PeriodMonth, report.Period)
	require.Len(t, report.Sales, 1)
	assert.Equal(t, 250.0, report.Sales[0].Total)
	require.Len(t, report.Suppliers, 2)

	rows := map[primitive.ObjectID]domain.SupplierCommission{}
	for _, r := range report.Suppliers {
		rows[r.SupplierID] = r
	}
	assert.True(t, decimal.NewFromInt(20).Equal(rows[a.ID].CommissionAmount))
	assert.True(t, decimal.NewFromInt(10).Equal(rows[b.ID].CommissionAmount))
	assert.True(t, decimal.NewFromInt(40).Equal(rows[b.ID].NetRevenue))

	_, err = f.svc.SalesReport(ctx, nil, domain.PeriodDay)
	var aerr *domain.AuthorizationError
	assert.ErrorAs(t, err, &aerr)
}
