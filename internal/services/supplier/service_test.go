package supplier

import (
	"context"
	"testing"

	"github.com/developia-II/marketplace-backend/internal/adapters/repository/memory"
	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	store *memory.Store
	svc   Service
	admin *domain.AuthContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	admin := &domain.User{Name: "Admin", Email: "admin@shop.test", Role: domain.RoleAdmin}
	require.NoError(t, store.Users.Create(context.Background(), admin))
	return &fixture{
		store: store,
		svc:   NewService(store.Suppliers, store.Products, domain.DefaultCommissionRate),
		admin: &domain.AuthContext{UserID: admin.ID, Role: domain.RoleAdmin},
	}
}

func (f *fixture) customer(t *testing.T, email string) *domain.AuthContext {
	t.Helper()
	u := &domain.User{Name: "C", Email: email, Role: domain.RoleCustomer}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return &domain.AuthContext{UserID: u.ID, Email: u.Email, Role: domain.RoleCustomer}
}

func validInfo(name string) domain.BusinessInfo {
	return domain.BusinessInfo{BusinessName: name, ContactEmail: "ops@biz.test", ContactPhone: "+15550100"}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.customer(t, "s@shop.test")

	supplier, err := f.svc.Register(ctx, caller, validInfo("Silk Road"))
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierPending, supplier.Status)
	assert.Equal(t, 15.0, supplier.CommissionRate)
	assert.Equal(t, "silk-road", supplier.BusinessSlug)

	user, err := f.store.Users.GetByID(ctx, caller.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupplier, user.Role)

	_, err = f.svc.Register(ctx, caller, validInfo("Second Shop"))
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	other := f.customer(t, "t@shop.test")
	dup, err := f.svc.Register(ctx, other, validInfo("Silk Road"))
	require.NoError(t, err)
	assert.Equal(t, "silk-road-2", dup.BusinessSlug)
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, nil, validInfo("Anon"))
	var aerr *domain.AuthorizationError
	assert.ErrorAs(t, err, &aerr)

	caller := f.customer(t, "x@shop.test")
	for name, info := range map[string]domain.BusinessInfo{
		"businessName": {ContactEmail: "a@b.test", ContactPhone: "+15550100"},
		"contactEmail": {BusinessName: "Shop", ContactPhone: "+15550100"},
		"contactPhone": {BusinessName: "Shop", ContactEmail: "a@b.test"},
	} {
		_, err := f.svc.Register(ctx, caller, info)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, name)
		assert.Equal(t, name, verr.Field)
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.svc.Register(ctx, f.customer(t, "a@shop.test"), validInfo("A"))
	require.NoError(t, err)

	tests := []struct {
		to      domain.SupplierStatus
		reason  string
		wantErr bool
	}{
		{domain.SupplierSuspended, "", true}, // pending -> suspended is illegal
		{domain.SupplierRejected, "", true},  // reason required
		{domain.SupplierRejected, "blurry documents", false},
		{domain.SupplierApproved, "", true}, // rejected -> approved is illegal
		{domain.SupplierPending, "", false},
		{domain.SupplierApproved, "", false},
		{domain.SupplierSuspended, "", false},
		{domain.SupplierApproved, "", false},
	}
	for _, tt := range tests {
		got, err := f.svc.SetStatus(ctx, f.admin, s.ID, tt.to, tt.reason)
		if tt.wantErr {
			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr, "to %s", tt.to)
			continue
		}
		require.NoError(t, err, "to %s", tt.to)
		assert.Equal(t, tt.to, got.Status)
	}

	got, err := f.store.Suppliers.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierApproved, got.Status)
	require.NotNil(t, got.ApprovedAt)
	assert.Equal(t, f.admin.UserID, *got.ApprovedBy)
	assert.Empty(t, got.RejectionReason)
}

func TestSetStatus_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.customer(t, "a@shop.test")
	s, err := f.svc.Register(ctx, caller, validInfo("A"))
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, nil, s.ID, domain.SupplierApproved, "")
	var aerr *domain.AuthorizationError
	assert.ErrorAs(t, err, &aerr)

	_, err = f.svc.SetStatus(ctx, caller, s.ID, domain.SupplierApproved, "")
	var ferr *domain.ForbiddenError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, domain.ReasonAdminOnly, ferr.Reason)

	_, err = f.svc.SetStatus(ctx, f.admin, primitive.NewObjectID(), domain.SupplierApproved, "")
	assert.True(t, domain.IsNotFound(err))
}

func TestCommissionAndRecount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.svc.Register(ctx, f.customer(t, "a@shop.test"), validInfo("A"))
	require.NoError(t, err)

	_, err = f.svc.SetCommissionRate(ctx, f.admin, s.ID, 120)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	got, err := f.svc.SetCommissionRate(ctx, f.admin, s.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.CommissionRate)

	// Simulate drift: the counter says 5 but nothing exists.
	require.NoError(t, f.store.Suppliers.SetTotalProducts(ctx, s.ID, 5))
	got, err = f.svc.RecountProducts(ctx, f.admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalProducts)
}

func TestUpdateProfileAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.customer(t, "a@shop.test")
	s, err := f.svc.Register(ctx, caller, validInfo("Alpha Wares"))
	require.NoError(t, err)
	caller.Role = domain.RoleSupplier
	caller.SupplierID = &s.ID

	phone := "+15550199"
	got, err := f.svc.UpdateProfile(ctx, caller, domain.SupplierProfileUpdate{ContactPhone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, got.ContactPhone)
	assert.Equal(t, domain.SupplierPending, got.Status)

	_, err = f.svc.Register(ctx, f.customer(t, "b@shop.test"), validInfo("Beta Goods"))
	require.NoError(t, err)

	page, err := f.svc.List(ctx, f.admin, ListQuery{Status: domain.SupplierPending, Search: "alpha"}, domain.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, s.ID, page.Suppliers[0].ID)

	_, err = f.svc.List(ctx, caller, ListQuery{}, domain.NewPage(1, 10))
	var ferr *domain.ForbiddenError
	assert.ErrorAs(t, err, &ferr)
}
