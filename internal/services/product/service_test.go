package product

import (
	"context"
	"testing"

	"github.com/developia-II/marketplace-backend/internal/adapters/repository/memory"
	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/services"
	"github.com/developia-II/marketplace-backend/internal/services/supplier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memory.Store
	svc       Service
	suppliers supplier.Service
	admin     *domain.AuthContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	admin := &domain.User{Name: "Admin", Email: "admin@shop.test", Role: domain.RoleAdmin}
	require.NoError(t, store.Users.Create(context.Background(), admin))
	return &fixture{
		store:     store,
		svc:       NewService(store.Products, store.Suppliers),
		suppliers: supplier.NewService(store.Suppliers, store.Products, domain.DefaultCommissionRate),
		admin:     &domain.AuthContext{UserID: admin.ID, Role: domain.RoleAdmin},
	}
}

// registerSupplier returns the supplier identity of a freshly registered, pending supplier.
func (f *fixture) registerSupplier(t *testing.T, email, name string) *domain.AuthContext {
	t.Helper()
	ctx := context.Background()
	u := &domain.User{Name: name, Email: email, Role: domain.RoleCustomer}
	require.NoError(t, f.store.Users.Create(ctx, u))
	caller := &domain.AuthContext{UserID: u.ID, Role: domain.RoleCustomer}
	s, err := f.suppliers.Register(ctx, caller, domain.BusinessInfo{
		BusinessName: name, ContactEmail: email, ContactPhone: "+15550100",
	})
	require.NoError(t, err)
	return &domain.AuthContext{UserID: u.ID, Role: domain.RoleSupplier, SupplierID: &s.ID}
}

func (f *fixture) setStatus(t *testing.T, auth *domain.AuthContext, status domain.SupplierStatus) {
	t.Helper()
	reason := ""
	if status == domain.SupplierRejected {
		reason = "incomplete"
	}
	_, err := f.suppliers.SetStatus(context.Background(), f.admin, *auth.SupplierID, status, reason)
	require.NoError(t, err)
}

func scarf() domain.ProductInput {
	return domain.ProductInput{
		Name:        "Silk Scarf",
		Description: "Hand-rolled edges",
		Category:    "accessories",
		Image:       "https://img.test/scarf.jpg",
		Price:       200,
	}
}

func totalProducts(t *testing.T, f *fixture, auth *domain.AuthContext) int {
	t.Helper()
	s, err := f.store.Suppliers.GetByID(context.Background(), *auth.SupplierID)
	require.NoError(t, err)
	return s.TotalProducts
}

func TestSubmitRequiresApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Scarves Inc")

	_, err := f.svc.Submit(ctx, s, scarf())
	var ferr *domain.ForbiddenError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, domain.ReasonAccountPending, ferr.Reason)

	f.setStatus(t, s, domain.SupplierApproved)

	p, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, p.ApprovalStatus)
	assert.Equal(t, domain.AddedBySupplier, p.AddedBy)
	assert.Equal(t, "silk-scarf", p.Slug)
	assert.Equal(t, 1, totalProducts(t, f, s))
}

func TestPriceEditSendsBackToReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Scarves Inc")
	f.setStatus(t, s, domain.SupplierApproved)

	p, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)

	p, err = f.svc.AdminReview(ctx, f.admin, p.ID, domain.ReviewDecision{Decision: domain.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, p.ApprovalStatus)

	price := 180.0
	p, err = f.svc.Edit(ctx, s, p.ID, domain.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, p.ApprovalStatus)
	assert.Equal(t, 180.0, p.Price)
}

func TestSupplierGatingAcrossStatuses(t *testing.T) {
	ctx := context.Background()
	for _, status := range []domain.SupplierStatus{domain.SupplierPending, domain.SupplierRejected, domain.SupplierSuspended} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			s := f.registerSupplier(t, "s@shop.test", "Gate Co")

			// Create one product while approved so edit/remove have a target.
			f.setStatus(t, s, domain.SupplierApproved)
			p, err := f.svc.Submit(ctx, s, scarf())
			require.NoError(t, err)

			sup, err := f.store.Suppliers.GetByID(ctx, *s.SupplierID)
			require.NoError(t, err)
			sup.Status = status
			require.NoError(t, f.store.Suppliers.Update(ctx, sup))

			var ferr *domain.ForbiddenError
			_, err = f.svc.Submit(ctx, s, scarf())
			assert.ErrorAs(t, err, &ferr)
			stock := 3
			_, err = f.svc.Edit(ctx, s, p.ID, domain.ProductUpdate{CountInStock: &stock})
			assert.ErrorAs(t, err, &ferr)
			assert.ErrorAs(t, f.svc.Remove(ctx, s, p.ID), &ferr)
			assert.Equal(t, 1, totalProducts(t, f, s))
		})
	}
}

func TestOnlyReviewedFieldsTriggerReReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Scarves Inc")
	f.setStatus(t, s, domain.SupplierApproved)

	p, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)
	_, err = f.svc.AdminReview(ctx, f.admin, p.ID, domain.ReviewDecision{Decision: domain.ApprovalApproved})
	require.NoError(t, err)

	stock, delivery, category := 7, "3-5 days", "scarves"
	p, err = f.svc.Edit(ctx, s, p.ID, domain.ProductUpdate{CountInStock: &stock, DeliveryTime: &delivery, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, p.ApprovalStatus)

	samePrice := 200.0
	p, err = f.svc.Edit(ctx, s, p.ID, domain.ProductUpdate{Price: &samePrice})
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, p.ApprovalStatus, "unchanged value is not a change")

	for _, update := range []domain.ProductUpdate{
		{Name: ptr("Silk Scarf XL")},
		{Description: ptr("Now longer")},
		{Image: ptr("https://img.test/scarf2.jpg")},
	} {
		_, err = f.svc.AdminReview(ctx, f.admin, p.ID, domain.ReviewDecision{Decision: domain.ApprovalApproved})
		require.NoError(t, err)
		p, err = f.svc.Edit(ctx, s, p.ID, update)
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalPending, p.ApprovalStatus)
	}
}

func ptr[T any](v T) *T { return &v }

func TestProductCountTracksSubmitAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Counter Co")
	f.setStatus(t, s, domain.SupplierApproved)

	var ids []*domain.Product
	for i := 0; i < 5; i++ {
		p, err := f.svc.Submit(ctx, s, scarf())
		require.NoError(t, err)
		ids = append(ids, p)
	}
	assert.Equal(t, "silk-scarf-5", ids[4].Slug)

	require.NoError(t, f.svc.Remove(ctx, s, ids[0].ID))
	require.NoError(t, f.svc.Remove(ctx, f.admin, ids[1].ID))
	assert.Equal(t, 3, totalProducts(t, f, s))
}

func TestPublicVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Visible Co")
	f.setStatus(t, s, domain.SupplierApproved)

	catalog, err := f.svc.AdminCreate(ctx, f.admin, domain.ProductInput{
		Name: "House Mug", Description: "Stoneware", Category: "home", Image: "https://img.test/mug.jpg", Price: 12, IsFeatured: true,
	})
	require.NoError(t, err)
	pending, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)
	rejected, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)
	approved, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)

	_, err = f.svc.AdminReview(ctx, f.admin, rejected.ID, domain.ReviewDecision{Decision: domain.ApprovalRejected, Note: "blurry photo"})
	require.NoError(t, err)
	_, err = f.svc.AdminReview(ctx, f.admin, approved.ID, domain.ReviewDecision{Decision: domain.ApprovalApproved})
	require.NoError(t, err)

	page, err := f.svc.ListPublic(ctx, PublicQuery{}, domain.NewPage(1, 20))
	require.NoError(t, err)
	var ids []string
	for _, p := range page.Products {
		ids = append(ids, p.ID.Hex())
	}
	assert.ElementsMatch(t, []string{catalog.ID.Hex(), approved.ID.Hex()}, ids)

	_, err = f.svc.GetPublic(ctx, pending.ID.Hex())
	assert.True(t, domain.IsNotFound(err))
	_, err = f.svc.GetPublic(ctx, rejected.Slug)
	assert.True(t, domain.IsNotFound(err))
	got, err := f.svc.GetPublic(ctx, catalog.Slug)
	require.NoError(t, err)
	assert.Equal(t, catalog.ID, got.ID)

	featured, err := f.svc.ListPublic(ctx, PublicQuery{Featured: true}, domain.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), featured.Total)

	queue, err := f.svc.ListForReview(ctx, f.admin, "", domain.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), queue.Total)
	assert.Equal(t, pending.ID, queue.Products[0].ID)
}

func TestOwnershipAndReviewRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.registerSupplier(t, "a@shop.test", "A Co")
	b := f.registerSupplier(t, "b@shop.test", "B Co")
	f.setStatus(t, a, domain.SupplierApproved)
	f.setStatus(t, b, domain.SupplierApproved)

	p, err := f.svc.Submit(ctx, a, scarf())
	require.NoError(t, err)

	var ferr *domain.ForbiddenError
	_, err = f.svc.Edit(ctx, b, p.ID, domain.ProductUpdate{Name: ptr("Stolen")})
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, domain.ReasonNotYourProduct, ferr.Reason)
	require.ErrorAs(t, f.svc.Remove(ctx, b, p.ID), &ferr)

	_, err = f.svc.AdminReview(ctx, a, p.ID, domain.ReviewDecision{Decision: domain.ApprovalApproved})
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, domain.ReasonAdminOnly, ferr.Reason)

	var verr *domain.ValidationError
	_, err = f.svc.AdminReview(ctx, f.admin, p.ID, domain.ReviewDecision{Decision: domain.ApprovalRejected})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "note", verr.Field)

	_, err = f.svc.AdminReview(ctx, f.admin, p.ID, domain.ReviewDecision{Decision: "maybe"})
	assert.ErrorAs(t, err, &verr)

	featured := true
	p, err = f.svc.Edit(ctx, a, p.ID, domain.ProductUpdate{IsFeatured: &featured})
	require.NoError(t, err)
	assert.False(t, p.IsFeatured, "suppliers cannot feature products")
}

func TestEdit_StaleVersionConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Race Co")
	f.setStatus(t, s, domain.SupplierApproved)
	p, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)

	stale, err := f.store.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	_, err = f.svc.AdminReview(ctx, f.admin, p.ID, domain.ReviewDecision{Decision: domain.ApprovalApproved})
	require.NoError(t, err)

	stale.Price = 1
	err = services.TranslateWrite(f.store.Products.Update(ctx, stale), "product", p.ID.Hex())
	var cerr *domain.ConflictError
	assert.ErrorAs(t, err, &cerr)
}

func TestSubCentPricesAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Scarves Inc")
	f.setStatus(t, s, domain.SupplierApproved)

	input := scarf()
	input.Price = 9.999
	_, err := f.svc.Submit(ctx, s, input)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
	assert.Equal(t, 0, totalProducts(t, f, s))

	input = scarf()
	input.DiscountPrice = 149.995
	_, err = f.svc.AdminCreate(ctx, f.admin, input)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discountPrice", verr.Field)

	p, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)
	price := 1.005
	_, err = f.svc.Edit(ctx, s, p.ID, domain.ProductUpdate{Price: &price})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	price = 199.99
	got, err := f.svc.Edit(ctx, s, p.ID, domain.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 199.99, got.Price)
}

func TestAdminRemovesOrphanedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.registerSupplier(t, "s@shop.test", "Scarves Inc")
	f.setStatus(t, s, domain.SupplierApproved)
	p, err := f.svc.Submit(ctx, s, scarf())
	require.NoError(t, err)

	f.store.DropSupplier(*s.SupplierID)

	require.NoError(t, f.svc.Remove(ctx, f.admin, p.ID))
	_, err = f.store.Products.GetByID(ctx, p.ID)
	assert.True(t, domain.IsNotFound(err))
}
