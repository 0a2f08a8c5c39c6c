package handlers

import (
	"time"

	"biterush/internal/middleware"
	"biterush/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Orders    *services.OrderService
	Vouchers  *services.VoucherService
	Users     *services.UserService
	OrderLogs *services.OrderLogService // optional
}

// RegisterRoutes mounts the /health endpoint and the /api/v1 routes on app.
func RegisterRoutes(app *fiber.App, svc Services, logger *zap.Logger) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	authHandler := NewAuthHandler(svc.Auth, logger)
	productHandler := NewProductHandler(svc.Products, logger)
	orderHandler := NewOrderHandler(svc.Orders, svc.OrderLogs, logger)
	voucherHandler := NewVoucherHandler(svc.Vouchers, logger)
	userHandler := NewUserHandler(svc.Users, logger)

	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication). The middleware is mounted
	// per prefix so unknown paths still answer 404.
	apiV1.Use(protectedPrefixes, middleware.AuthRequired(svc.Auth, logger))
	orderHandler.RegisterRoutes(apiV1)
	voucherHandler.RegisterRoutes(apiV1)
	userHandler.RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AdminOnly())
	orderHandler.RegisterAdminRoutes(admin)
	voucherHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)
}

// protectedPrefixes are the /api/v1 prefixes that require a bearer token.
// Matching is by string prefix, so "/user" also covers "/users".
var protectedPrefixes = []string{"/orders", "/user", "/vouchers", "/admin"}
