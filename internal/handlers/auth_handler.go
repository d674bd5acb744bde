package handlers

import (
	"net/http"
	"time"

	"github.com/developia-II/marketplace-backend/internal/services/account"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	base
	accounts account.Service
}

func NewAuthHandler(accounts account.Service, timeout time.Duration) *AuthHandler {
	return &AuthHandler{base: newBase(timeout), accounts: accounts}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input account.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.accounts.Register(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Account created successfully", gin.H{"user": user}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input account.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	result, err := h.accounts.Login(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Login successful", result))
}
