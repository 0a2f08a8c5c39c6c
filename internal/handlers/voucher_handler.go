package handlers

import (
	"biterush/internal/middleware"
	"biterush/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// VoucherHandler handles HTTP requests for vouchers.
type VoucherHandler struct {
	service *services.VoucherService
	logger  *zap.Logger
}

// NewVoucherHandler creates a new VoucherHandler.
func NewVoucherHandler(service *services.VoucherService, logger *zap.Logger) *VoucherHandler {
	return &VoucherHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the customer voucher routes.
func (h *VoucherHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/vouchers/validate", h.HandleValidate)
}

// RegisterAdminRoutes registers the voucher management routes.
func (h *VoucherHandler) RegisterAdminRoutes(router fiber.Router) {
	voucherRoutes := router.Group("/vouchers")
	voucherRoutes.Get("/", h.HandleList)
	voucherRoutes.Post("/", h.HandleCreate)
}

// HandleValidate checks ?code= for the caller's email.
func (h *VoucherHandler) HandleValidate(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	res, err := h.service.Validate(c.UserContext(), principal, c.Query("code"))
	if err != nil {
		return writeError(c, h.logger, err, "Server error while validating voucher")
	}
	return c.JSON(res)
}

// HandleList returns all vouchers.
func (h *VoucherHandler) HandleList(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	vouchers, err := h.service.List(c.UserContext(), principal)
	if err != nil {
		return writeError(c, h.logger, err, "Could not retrieve vouchers")
	}
	return c.JSON(vouchers)
}

// HandleCreate adds a voucher.
func (h *VoucherHandler) HandleCreate(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	var input services.CreateVoucherInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, err)
	}

	voucher, err := h.service.Create(c.UserContext(), principal, input)
	if err != nil {
		return writeError(c, h.logger, err, "Could not create voucher")
	}
	return c.Status(fiber.StatusCreated).JSON(voucher)
}
