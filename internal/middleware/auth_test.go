package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubResolver struct {
	auth *domain.AuthContext
	err  error
}

func (r stubResolver) Resolve(_ context.Context, userID primitive.ObjectID) (*domain.AuthContext, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := *r.auth
	out.UserID = userID
	return &out, nil
}

func setup(chain ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(chain, func(c *gin.Context) {
		auth := Auth(c)
		if auth == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(auth.Role))
	})
	r.GET("/", handlers...)
	return r
}

func call(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_UsesStoredRole(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour, "test")
	resolver := stubResolver{auth: &domain.AuthContext{Role: domain.RoleSupplier}}
	r := setup(AuthMiddleware(tokens, resolver))

	// The token still says customer; the store has promoted the account since.
	token, err := tokens.GenerateToken(primitive.NewObjectID().Hex(), string(domain.RoleCustomer))
	require.NoError(t, err)

	w := call(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "supplier", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer nope").Code)
}

func TestAuthMiddleware_ResolverErrors(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour, "test")
	token, err := tokens.GenerateToken(primitive.NewObjectID().Hex(), "customer")
	require.NoError(t, err)

	unknown := stubResolver{err: &domain.AuthorizationError{Reason: "unknown user"}}
	r := setup(AuthMiddleware(tokens, unknown))
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer "+token).Code)

	broken := stubResolver{err: errors.New("db down")}
	r = setup(AuthMiddleware(tokens, broken))
	assert.Equal(t, http.StatusInternalServerError, call(r, "Bearer "+token).Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour, "test")
	resolver := stubResolver{auth: &domain.AuthContext{Role: domain.RoleCustomer}}
	r := setup(OptionalAuth(tokens, resolver))

	w := call(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	token, err := tokens.GenerateToken(primitive.NewObjectID().Hex(), "customer")
	require.NoError(t, err)
	w = call(r, "Bearer "+token)
	assert.Equal(t, "customer", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer expired-or-forged").Code)
}

func TestRoleMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour, "test")
	token, err := tokens.GenerateToken(primitive.NewObjectID().Hex(), "customer")
	require.NoError(t, err)

	customer := stubResolver{auth: &domain.AuthContext{Role: domain.RoleCustomer}}
	r := setup(AuthMiddleware(tokens, customer), RoleMiddleware(domain.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, call(r, "Bearer "+token).Code)

	admin := stubResolver{auth: &domain.AuthContext{Role: domain.RoleAdmin}}
	r = setup(AuthMiddleware(tokens, admin), RoleMiddleware(domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, call(r, "Bearer "+token).Code)

	r = setup(RoleMiddleware(domain.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
}
