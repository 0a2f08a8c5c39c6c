package handlers

import (
	"biterush/internal/middleware"
	"biterush/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logs    *services.OrderLogService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logs *services.OrderLogService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logs:    logs,
		logger:  logger,
	}
}

// RegisterRoutes registers the customer order routes. The router must
// already be behind AuthRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)

	router.Get("/user/orders", h.HandleGetUserOrders)
}

// RegisterAdminRoutes registers the back-office order routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetAllOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id", h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/pay", h.HandleMarkPaid)
	if h.logs != nil {
		orderRoutes.Get("/:id/logs", h.HandleGetOrderLogs)
	}

	router.Get("/top-customers", h.HandleTopCustomers)
}

// HandleCreateOrder places an order for the authenticated user. Prices are
// computed server side; client totals are ignored.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	var input services.CreateOrderInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, err)
	}

	order, err := h.service.CreateOrder(c.UserContext(), principal, input)
	if err != nil {
		return writeError(c, h.logger, err, "Error creating order")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

// HandleGetOrderByID returns an order to its owner or to an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	order, err := h.service.GetOrder(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching order")
	}
	return c.JSON(order)
}

// HandleGetUserOrders pages through the caller's orders.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	page, err := h.service.ListUserOrders(c.UserContext(), principal, c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching orders")
	}
	return c.JSON(page)
}

// HandleGetAllOrders pages through every order.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	page, err := h.service.ListAllOrders(c.UserContext(), principal, c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching orders")
	}
	return c.JSON(page)
}

// HandleUpdateOrderStatus sets the status of an order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	var input services.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, err)
	}

	order, err := h.service.UpdateStatus(c.UserContext(), principal, c.Params("id"), input)
	if err != nil {
		return writeError(c, h.logger, err, "Error updating order")
	}
	return c.JSON(order)
}

// HandleMarkPaid records payment for an order.
func (h *OrderHandler) HandleMarkPaid(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	order, err := h.service.MarkPaid(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err, "Error updating order")
	}
	return c.JSON(order)
}

// HandleGetOrderLogs returns the activity log of an order.
func (h *OrderHandler) HandleGetOrderLogs(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	entries, err := h.logs.List(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching order logs")
	}
	return c.JSON(fiber.Map{"logs": entries})
}

// HandleTopCustomers ranks customers by order count. ?limit= defaults to 3.
func (h *OrderHandler) HandleTopCustomers(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	rows, err := h.service.TopCustomers(c.UserContext(), principal, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching top customers")
	}
	return c.JSON(fiber.Map{"customers": rows})
}
