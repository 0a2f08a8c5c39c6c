package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"biterush/internal/config"
	"biterush/internal/events"
	"biterush/internal/handlers"
	"biterush/internal/logging"
	"biterush/internal/models"
	"biterush/internal/notifications"
	"biterush/internal/pricing"
	"biterush/internal/repositories"
	"biterush/internal/services"
	"biterush/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Failed to read config file: %v", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("Server stopped with error", zap.Error(err))
	}
	lg.Info("Server gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	// --- Database ---
	db, err := openDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	voucherRepo := repositories.NewGORMVoucherRepository(db)
	orderLogRepo := repositories.NewGORMOrderLogRepository(db)

	orderRepo, closeOrders, err := openOrderStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeOrders()
	lg.Info("Order store ready", zap.String("store", cfg.OrderStore))

	// --- Messaging ---
	var (
		mqClient  *rabbitmq.Client
		publisher services.EventPublisher
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.DefaultConfig(cfg.RabbitMQURL), lg)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = events.NewPublisher(mqClient)
	} else {
		lg.Warn("RABBITMQ_URL is empty, order events are disabled")
	}

	var notifier events.Notifier = notifications.NewLogNotifier(lg)
	if cfg.PostmarkToken != "" {
		notifier = notifications.NewPostmarkNotifier(cfg.PostmarkToken, cfg.EmailSender, lg)
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, lg)
	productService := services.NewProductService(productRepo)
	voucherService := services.NewVoucherService(voucherRepo, lg)
	orderService := services.NewOrderService(
		orderRepo,
		productRepo,
		voucherService,
		pricing.NewCalculator(cfg.DeliveryFees, cfg.TaxRate),
		publisher,
		lg,
		services.OrderServiceConfig{
			PageSize:          cfg.OrdersPageSize,
			StrictTransitions: cfg.StrictStatus,
			OptimisticLocking: cfg.OptimisticLocks,
		},
	)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to ensure admin account: %w", err)
		}
	}
	if err := seedProducts(ctx, productRepo, lg); err != nil {
		return err
	}

	// --- HTTP ---
	app := fiber.New(fiber.Config{
		AppName:      "biterush",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	handlers.RegisterRoutes(app, handlers.Services{
		Auth:      authService,
		Products:  productService,
		Orders:    orderService,
		Vouchers:  voucherService,
		Users:     services.NewUserService(userRepo, lg),
		OrderLogs: services.NewOrderLogService(orderLogRepo, orderRepo),
	}, lg)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.AppPort))
		return app.Listen(cfg.AppPort)
	})

	if mqClient != nil {
		consumer := events.NewHandler(orderLogRepo, userRepo, notifier, lg)
		g.Go(func() error {
			lg.Info("Starting order event consumer")
			return mqClient.ConsumeOrderEvents(ctx, consumer.Handle)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		lg.Info("Shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openDatabase opens the relational store and migrates every table.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Voucher{},
		&models.Order{},
		&models.OrderLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// openOrderStore picks the order repository named by ORDER_STORE. The
// returned func releases whatever the store holds open.
func openOrderStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (repositories.OrderRepository, func(), error) {
	switch cfg.OrderStore {
	case config.StoreMemory:
		return repositories.NewMockOrderRepository(), func() {}, nil
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		if err := client.Ping(connectCtx, nil); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}

		repo := repositories.NewMongoOrderRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(connectCtx); err != nil {
			disconnect()
			return nil, nil, err
		}
		return repo, disconnect, nil
	default:
		return repositories.NewGORMOrderRepository(db), func() {}, nil
	}
}

// seedProducts fills an empty catalog with a starter menu.
func seedProducts(ctx context.Context, repo repositories.ProductRepository, lg *zap.Logger) error {
	existing, err := repo.GetAll(ctx, models.ProductFilter{})
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "Classic Burger", Description: "Beef patty, cheddar, pickles", Price: 120, Category: models.CategoryBurger, Image: "/images/classic-burger.jpg", InStock: true, Featured: true},
		{Name: "Margherita", Description: "Tomato, mozzarella, basil", Price: 180, Category: models.CategoryPizza, Image: "/images/margherita.jpg", InStock: true},
		{Name: "Carbonara", Description: "Guanciale, egg yolk, pecorino", Price: 160, Category: models.CategoryPasta, Image: "/images/carbonara.jpg", InStock: true},
		{Name: "Tiramisu", Description: "Mascarpone and espresso", Price: 90, Category: models.CategoryDessert, Image: "/images/tiramisu.jpg", InStock: true},
		{Name: "Lemonade", Description: "Freshly squeezed", Price: 40, Category: models.CategoryDrink, Image: "/images/lemonade.jpg", InStock: true},
	}
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
		lg.Debug("Seeded product", zap.String("name", products[i].Name), zap.String("id", products[i].ID))
	}
	lg.Info("Seeded catalog", zap.Int("products", len(products)))
	return nil
}
