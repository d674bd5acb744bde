package handlers

import (
	"net/http"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/middleware"
	"github.com/developia-II/marketplace-backend/internal/services/account"
	"github.com/developia-II/marketplace-backend/internal/services/order"
	"github.com/developia-II/marketplace-backend/internal/services/product"
	"github.com/developia-II/marketplace-backend/internal/services/summary"
	"github.com/developia-II/marketplace-backend/internal/services/supplier"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dependencies is everything the router wires into its handlers.
type Dependencies struct {
	Accounts  account.Service
	Suppliers supplier.Service
	Products  product.Service
	Orders    order.Service
	Summaries summary.Service

	Tokens   middleware.TokenVerifier
	Uploader utils.ImageUploader
	// SummaryCache is nil when Redis is not configured.
	SummaryCache SummaryCache

	StripeWebhookSecret string
	CORSOrigins         []string
	RequestTimeout      time.Duration
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	SetupRoutes(router, deps)
	return router
}

// corsConfig allows the configured origins; a "*" entry opens the API to every origin
// without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	logrus.Info("Setting up routes...")

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Server is running!",
			"status":  "ok",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "marketplace-backend",
		})
	})

	timeout := deps.RequestTimeout
	authHandler := NewAuthHandler(deps.Accounts, timeout)
	supplierHandler := NewSupplierHandler(deps.Suppliers, deps.Summaries, timeout)
	productHandler := NewProductHandler(deps.Products, timeout)
	orderHandler := NewOrderHandler(deps.Orders, timeout)
	paymentHandler := NewPaymentHandler(deps.Orders, deps.StripeWebhookSecret, timeout)
	uploadHandler := NewUploadHandler(deps.Suppliers, deps.Uploader, timeout)
	adminHandler := NewAdminHandler(deps.Summaries, deps.SummaryCache, timeout)

	requireAuth := middleware.AuthMiddleware(deps.Tokens, deps.Accounts)
	optionalAuth := middleware.OptionalAuth(deps.Tokens, deps.Accounts)

	api := router.Group("/api/v1")

	// Public Routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	publicProducts := api.Group("/public/products")
	{
		publicProducts.GET("", productHandler.FetchProductsPublic)
		publicProducts.GET("/:id", productHandler.FetchProductPublic)
	}

	api.POST("/orders", optionalAuth, orderHandler.PlaceOrder)
	api.POST("/payments/webhook", paymentHandler.HandleWebhook)

	// Protected Routes
	protected := api.Group("")
	protected.Use(requireAuth)
	{
		orders := protected.Group("/orders")
		{
			orders.GET("/mine", orderHandler.GetUserOrders)
			orders.GET("/:id", orderHandler.GetOrderById)
		}

		suppliers := protected.Group("/suppliers")
		{
			suppliers.POST("", supplierHandler.Register)
			suppliers.GET("/me", supplierHandler.GetMine)
			suppliers.PUT("/me", supplierHandler.UpdateMine)
			suppliers.GET("/me/summary", supplierHandler.MySummary)
		}

		// Supplier Routes
		supplierGroup := protected.Group("/supplier")
		supplierGroup.Use(middleware.RoleMiddleware(domain.RoleSupplier))
		{
			supplierGroup.GET("/products", productHandler.GetSupplierProducts)
			supplierGroup.POST("/products", productHandler.CreateProduct)
			supplierGroup.GET("/products/:id", productHandler.GetSupplierProduct)
			supplierGroup.PUT("/products/:id", productHandler.UpdateProduct)
			supplierGroup.DELETE("/products/:id", productHandler.DeleteProduct)
			supplierGroup.POST("/upload", uploadHandler.UploadImage)
			supplierGroup.GET("/orders", orderHandler.GetSupplierOrders)
		}

		// Admin Routes
		admin := protected.Group("/admin")
		admin.Use(middleware.RoleMiddleware(domain.RoleAdmin))
		{
			admin.GET("/suppliers", supplierHandler.List)
			admin.GET("/suppliers/:id", supplierHandler.Get)
			admin.PUT("/suppliers/:id/status", supplierHandler.SetStatus)
			admin.PUT("/suppliers/:id/commission", supplierHandler.SetCommission)
			admin.POST("/suppliers/:id/recount", supplierHandler.Recount)
			admin.GET("/suppliers/:id/summary", supplierHandler.Summary)

			admin.GET("/products", productHandler.ListForReview)
			admin.POST("/products", productHandler.AdminCreate)
			admin.PUT("/products/:id", productHandler.AdminUpdate)
			admin.PUT("/products/:id/review", productHandler.Review)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)

			admin.GET("/orders", orderHandler.ListOrders)
			admin.PUT("/orders/:id/pay", orderHandler.MarkPaid)
			admin.PUT("/orders/:id/unpay", orderHandler.MarkUnpaid)
			admin.PUT("/orders/:id/deliver", orderHandler.MarkDelivered)

			admin.GET("/summary", adminHandler.Summary)
			admin.GET("/reports/sales.xlsx", adminHandler.SalesReport)
			admin.GET("/cache", adminHandler.CacheStats)
			admin.DELETE("/cache", adminHandler.FlushCache)
		}
	}
}
