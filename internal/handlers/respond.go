package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultRequestTimeout = 10 * time.Second

// respondError maps a service error onto its HTTP status. Anything that is not a business
// error is logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		authErr       *domain.AuthorizationError
		forbiddenErr  *domain.ForbiddenError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(validationErr.Error()))
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse(authErr.Error()))
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, utils.ErrorResponse(forbiddenErr.Error()))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, utils.ErrorResponse(notFoundErr.Error()))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, utils.ErrorResponse(conflictErr.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request timed out")
		c.JSON(http.StatusGatewayTimeout, utils.ErrorResponse("Request timed out"))
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":      c.FullPath(),
			"requestId": c.GetString("requestId"),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Internal server error"))
	}
}

// objectIDParam parses a path parameter, answering 400 when it is not a valid id.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid "+name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// pageQuery reads ?page= and ?pageSize= (or ?limit=), clamped to the allowed range.
func pageQuery(c *gin.Context) domain.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	if size == 0 {
		size, _ = strconv.Atoi(c.Query("limit"))
	}
	return domain.NewPage(number, size)
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request body"))
		return false
	}
	return true
}

// base carries what every handler needs to derive its request context.
type base struct {
	timeout time.Duration
}

func newBase(timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return base{timeout: timeout}
}

func (b base) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), b.timeout)
}
