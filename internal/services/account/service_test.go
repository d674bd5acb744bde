package account

import (
	"context"
	"testing"
	"time"

	"github.com/developia-II/marketplace-backend/internal/adapters/repository/memory"
	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (Service, *memory.Store, *utils.TokenManager) {
	store := memory.NewStore()
	tokens := utils.NewTokenManager("test-secret", time.Hour, "test")
	svc := NewService(store.Users, store.Suppliers, utils.NewPasswordHasher(bcrypt.MinCost), tokens)
	return svc, store, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, tokens := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Kim", Email: "Kim@Shop.test", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Equal(t, "kim@shop.test", user.Email)

	_, err = svc.Register(ctx, RegisterInput{Name: "Kim", Email: "kim@shop.test", Password: "password1"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	res, err := svc.Login(ctx, LoginInput{Email: "kim@shop.test", Password: "password1"})
	require.NoError(t, err)
	claims, err := tokens.VerifyToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "customer", claims.Role)

	_, err = svc.Login(ctx, LoginInput{Email: "kim@shop.test", Password: "wrong-pass"})
	var aerr *domain.AuthorizationError
	assert.ErrorAs(t, err, &aerr)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Kim", Email: "not-an-email", Password: "password1"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Kim", Email: "k@shop.test", Password: "short"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestResolve(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@shop.test", Password: "password1"})
	require.NoError(t, err)

	auth, err := svc.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, auth.Role)
	assert.Nil(t, auth.SupplierID)

	supplier := &domain.Supplier{UserID: user.ID, BusinessName: "Sam Co", BusinessSlug: "sam-co", Status: domain.SupplierPending}
	require.NoError(t, store.Suppliers.CreateForUser(ctx, supplier))

	auth, err = svc.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupplier, auth.Role)
	require.NotNil(t, auth.SupplierID)
	assert.Equal(t, supplier.ID, *auth.SupplierID)

	_, err = svc.Resolve(ctx, primitive.NewObjectID())
	var aerr *domain.AuthorizationError
	assert.ErrorAs(t, err, &aerr)
}

func TestEnsureAdmin(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "Root", "root@shop.test", "password1"))
	require.NoError(t, svc.EnsureAdmin(ctx, "Root", "root@shop.test", "password1"))

	n, err := store.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	admin, err := store.Users.GetByEmail(ctx, "root@shop.test")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}
