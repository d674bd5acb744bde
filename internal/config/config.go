package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store drivers selectable with STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Stripe     StripeConfig
	Cloudinary CloudinaryConfig
	Log        LogConfig
	Orders     OrderPolicy
	Supplier   SupplierPolicy
	Store      string
}

type ServerConfig struct {
	Port            string
	CORSOrigins     []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig is optional; an empty URL disables the summary cache.
type RedisConfig struct {
	URL        string
	SummaryTTL time.Duration
}

type AuthConfig struct {
	JWTSecret  string
	JWTTTL     time.Duration
	Issuer     string
	BcryptCost int
	Admin      AdminAccount
}

// AdminAccount is created at start-up when it does not exist. Empty email disables it.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

type StripeConfig struct {
	WebhookSecret string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type LogConfig struct {
	Level  string
	Format string
}

type OrderPolicy struct {
	RequirePaidBeforeDelivery bool
}

type SupplierPolicy struct {
	DefaultCommissionRate float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
			Database: getEnv("MONGO_DB", "marketplace"),
		},
		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", ""),
			SummaryTTL: getEnvDuration("SUMMARY_CACHE_TTL", time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			JWTTTL:     getEnvDuration("JWT_TTL", 24*time.Hour),
			Issuer:     getEnv("JWT_ISSUER", "marketplace-backend"),
			BcryptCost: getEnvInt("BCRYPT_COST", 12),
			Admin: AdminAccount{
				Name:     getEnv("ADMIN_NAME", "Administrator"),
				Email:    strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
				Password: getEnv("ADMIN_PASSWORD", ""),
			},
		},
		Stripe: StripeConfig{
			WebhookSecret: strings.TrimSpace(getEnv("STRIPE_WEBHOOK_SECRET", "")),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "marketplace/products"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Orders: OrderPolicy{
			RequirePaidBeforeDelivery: getEnvBool("ORDERS_REQUIRE_PAID_BEFORE_DELIVERY", false),
		},
		Supplier: SupplierPolicy{
			DefaultCommissionRate: getEnvFloat("DEFAULT_COMMISSION_RATE", 15),
		},
		Store: getEnv("STORE_DRIVER", DriverMongo),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Store != DriverMongo && c.Store != DriverMemory {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.Store)
	}
	if rate := c.Supplier.DefaultCommissionRate; rate < 0 || rate > 100 {
		return fmt.Errorf("DEFAULT_COMMISSION_RATE must be within [0,100], got %v", rate)
	}
	return nil
}

// SetupLogging configures the global logrus logger.
func SetupLogging(cfg LogConfig) {
	if strings.EqualFold(cfg.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		logrus.Warnf("Invalid integer for %s, using default", key)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		logrus.Warnf("Invalid number for %s, using default", key)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		logrus.Warnf("Invalid boolean for %s, using default", key)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.Warnf("Invalid duration for %s, using default", key)
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
