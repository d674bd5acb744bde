package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/services/account"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthKey is the gin context key holding the caller's *domain.AuthContext.
const AuthKey = "auth"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(token string) (*utils.Claims, error)
}

func AuthMiddleware(tokens TokenVerifier, resolver account.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header is required"))
			c.Abort()
			return
		}
		if !authenticate(c, tokens, resolver, authHeader) {
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is present and lets anonymous requests
// through. A token that is present but invalid is still rejected.
func OptionalAuth(tokens TokenVerifier, resolver account.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && !authenticate(c, tokens, resolver, authHeader) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens TokenVerifier, resolver account.Resolver, authHeader string) bool {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header must be Bearer token"))
		c.Abort()
		return false
	}

	claims, err := tokens.VerifyToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse(err.Error()))
		c.Abort()
		return false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse(utils.ErrInvalidToken.Error()))
		c.Abort()
		return false
	}

	// The role comes from the store, not the token, so promotions and demotions apply
	// without a new login.
	auth, err := resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		var authErr *domain.AuthorizationError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse(authErr.Error()))
		} else {
			logrus.WithError(err).WithField("userId", claims.UserID).Error("Failed to resolve caller")
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to resolve account"))
		}
		c.Abort()
		return false
	}

	c.Set(AuthKey, auth)
	c.Set("userId", auth.UserID.Hex())
	c.Set("role", string(auth.Role))
	return true
}

// Auth returns the caller resolved by AuthMiddleware or OptionalAuth, or nil.
func Auth(c *gin.Context) *domain.AuthContext {
	v, ok := c.Get(AuthKey)
	if !ok {
		return nil
	}
	auth, _ := v.(*domain.AuthContext)
	return auth
}

func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Role not found in context"))
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		isAllowed := false
		for _, r := range allowedRoles {
			if strings.EqualFold(userRole, string(r)) {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			c.JSON(http.StatusForbidden, utils.ErrorResponse("You do not have permission to access this resource"))
			c.Abort()
			return
		}

		c.Next()
	}
}
