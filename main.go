package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/developia-II/marketplace-backend/internal/adapters/cache"
	"github.com/developia-II/marketplace-backend/internal/adapters/report"
	"github.com/developia-II/marketplace-backend/internal/adapters/repository/memory"
	"github.com/developia-II/marketplace-backend/internal/adapters/repository/mongodb"
	"github.com/developia-II/marketplace-backend/internal/config"
	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/handlers"
	"github.com/developia-II/marketplace-backend/internal/services/account"
	"github.com/developia-II/marketplace-backend/internal/services/order"
	"github.com/developia-II/marketplace-backend/internal/services/product"
	"github.com/developia-II/marketplace-backend/internal/services/summary"
	"github.com/developia-II/marketplace-backend/internal/services/supplier"
	"github.com/developia-II/marketplace-backend/utils"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type repositories struct {
	users     domain.UserRepository
	suppliers domain.SupplierRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	config.SetupLogging(cfg.Log)

	// Money fields go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownOps := map[string]gfshutdown.Operation{}

	repos, mongoClient, err := openStore(startCtx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}
	if mongoClient != nil {
		shutdownOps["mongo"] = func(ctx context.Context) error {
			return mongoClient.Disconnect(ctx)
		}
	}

	var summaryCache *cache.Cache
	if cfg.Redis.URL != "" {
		summaryCache, err = cache.Connect(startCtx, cfg.Redis.URL, cfg.Redis.SummaryTTL)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, summaries will not be cached")
			summaryCache = nil
		} else {
			logrus.Info("Summary cache connected to Redis")
			shutdownOps["redis"] = func(ctx context.Context) error {
				return summaryCache.Close()
			}
		}
	}

	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, cfg.Auth.Issuer)
	accounts := account.NewService(repos.users, repos.suppliers, utils.NewPasswordHasher(cfg.Auth.BcryptCost), tokens)
	admin := cfg.Auth.Admin
	if err := accounts.EnsureAdmin(startCtx, admin.Name, admin.Email, admin.Password); err != nil {
		logrus.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	deps := handlers.Dependencies{
		Accounts:  accounts,
		Suppliers: supplier.NewService(repos.suppliers, repos.products, cfg.Supplier.DefaultCommissionRate),
		Products:  product.NewService(repos.products, repos.suppliers),
		Orders: order.NewService(repos.orders, repos.products, order.Policy{
			RequirePaidBeforeDelivery: cfg.Orders.RequirePaidBeforeDelivery,
		}),
		Tokens:              tokens,
		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
		CORSOrigins:         cfg.Server.CORSOrigins,
		RequestTimeout:      cfg.Server.RequestTimeout,
	}

	summaryRepos := summary.Repositories{
		Users:     repos.users,
		Suppliers: repos.suppliers,
		Products:  repos.products,
		Orders:    repos.orders,
	}
	if summaryCache != nil {
		deps.Summaries = summary.NewService(summaryRepos, summaryCache, report.NewXLSXRenderer())
		deps.SummaryCache = summaryCache
	} else {
		deps.Summaries = summary.NewService(summaryRepos, nil, report.NewXLSXRenderer())
	}

	if cfg.Cloudinary.CloudName != "" {
		uploader, err := utils.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			logrus.WithError(err).Warn("Cloudinary misconfigured, image uploads disabled")
		} else {
			deps.Uploader = uploader
		}
	} else {
		logrus.Warn("CLOUDINARY_CLOUD_NAME not set, image uploads disabled")
	}

	if cfg.Stripe.WebhookSecret == "" {
		logrus.Warn("STRIPE_WEBHOOK_SECRET not set, payment webhooks will be rejected")
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Server.Port, "store": cfg.Store}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	shutdownOps["http"] = func(ctx context.Context) error {
		logrus.Info("Graceful shutdown initiated...")
		return server.Shutdown(ctx)
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.Server.ShutdownTimeout, shutdownOps)
	exitCode := <-wait
	logrus.WithField("code", exitCode).Info("Server exited")
	os.Exit(exitCode)
}

// openStore connects the configured store driver. The mongo client is nil for the memory driver.
func openStore(ctx context.Context, cfg *config.Config) (repositories, *mongo.Client, error) {
	if cfg.Store == config.DriverMemory {
		logrus.Warn("Using the in-memory store, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			users:     store.Users,
			suppliers: store.Suppliers,
			products:  store.Products,
			orders:    store.Orders,
		}, nil, nil
	}

	clientOptions := options.Client().ApplyURI(cfg.Mongo.URI).SetServerSelectionTimeout(20 * time.Second)
	logrus.Info("Connecting to MongoDB...")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return repositories{}, nil, err
	}

	db := client.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return repositories{}, nil, err
	}
	logrus.WithField("database", cfg.Mongo.Database).Info("Connected to MongoDB")

	store := mongodb.NewStore(db)
	return repositories{
		users:     store.Users,
		suppliers: store.Suppliers,
		products:  store.Products,
		orders:    store.Orders,
	}, client, nil
}
