// Package config loads service settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"biterush/internal/models"
	"biterush/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Order store backends.
const (
	StoreSQL    = "sql"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds every runtime setting.
type Config struct {
	AppPort  string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string

	OrderStore      string
	MongoURI        string
	MongoDatabase   string
	RabbitMQURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	PostmarkToken   string
	EmailSender     string
	DeliveryFees    pricing.FeeTable
	TaxRate         decimal.Decimal
	OrdersPageSize  int
	StrictStatus    bool
	OptimisticLocks bool

	AdminEmail    string
	AdminPassword string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "biterush.db")
	v.SetDefault("ORDER_STORE", StoreSQL)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "biterush")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("POSTMARK_API_TOKEN", "")
	v.SetDefault("EMAIL_SENDER", "orders@biterush.local")
	v.SetDefault("DELIVERY_FEE_SAVER", "45")
	v.SetDefault("DELIVERY_FEE_STANDARD", "45")
	v.SetDefault("DELIVERY_FEE_PRIORITY", "60")
	v.SetDefault("TAX_RATE", "0")
	v.SetDefault("ORDERS_PAGE_SIZE", 10)
	v.SetDefault("STRICT_STATUS_TRANSITIONS", false)
	v.SetDefault("OPTIMISTIC_LOCKING", false)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads the configuration from v, which should already have its
// sources (environment, file) attached. Defaults are applied here.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DatabaseDriver:  strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		OrderStore:      strings.ToLower(v.GetString("ORDER_STORE")),
		MongoURI:        v.GetString("MONGODB_URI"),
		MongoDatabase:   v.GetString("MONGODB_DATABASE"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		PostmarkToken:   v.GetString("POSTMARK_API_TOKEN"),
		EmailSender:     v.GetString("EMAIL_SENDER"),
		OrdersPageSize:  v.GetInt("ORDERS_PAGE_SIZE"),
		StrictStatus:    v.GetBool("STRICT_STATUS_TRANSITIONS"),
		OptimisticLocks: v.GetBool("OPTIMISTIC_LOCKING"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
	}

	var errs []error

	cfg.DeliveryFees = pricing.FeeTable{}
	for method, key := range map[models.DeliveryMethod]string{
		models.DeliverySaver:    "DELIVERY_FEE_SAVER",
		models.DeliveryStandard: "DELIVERY_FEE_STANDARD",
		models.DeliveryPriority: "DELIVERY_FEE_PRIORITY",
	} {
		fee, err := nonNegativeDecimal(v, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cfg.DeliveryFees[method] = fee
	}

	// TAX_RATE is a percentage of itemsPrice.
	taxRate, err := nonNegativeDecimal(v, "TAX_RATE")
	switch {
	case err != nil:
		errs = append(errs, err)
	case taxRate.GreaterThan(decimal.NewFromInt(100)):
		errs = append(errs, errors.New("TAX_RATE must be a percentage within 0..100"))
	}
	cfg.TaxRate = taxRate

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver))
	}
	switch c.OrderStore {
	case StoreSQL, StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when ORDER_STORE is mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("ORDER_STORE must be sql, mongo or memory, got %q", c.OrderStore))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.OrdersPageSize < 1 || c.OrdersPageSize > 100 {
		errs = append(errs, fmt.Errorf("ORDERS_PAGE_SIZE must be within 1..100, got %d", c.OrdersPageSize))
	}
	return errors.Join(errs...)
}

func nonNegativeDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
