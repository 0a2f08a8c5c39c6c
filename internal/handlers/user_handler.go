package handlers

import (
	"biterush/internal/middleware"
	"biterush/internal/models"
	"biterush/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler serves the caller's profile and the admin user management routes.
type UserHandler struct {
	service *services.UserService
	logger  *zap.Logger
}

func NewUserHandler(service *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the profile routes. The router must already be
// behind AuthRequired.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	me := router.Group("/users/me")
	me.Get("/", h.HandleGetProfile)
	me.Put("/", h.HandleUpdateProfile)
	me.Put("/password", h.HandleChangePassword)
}

// RegisterAdminRoutes registers the user management routes.
func (h *UserHandler) RegisterAdminRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Patch("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	user, err := h.service.Profile(c.UserContext(), principal)
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching profile")
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, err)
	}

	user, err := h.service.UpdateProfile(c.UserContext(), principal, input)
	if err != nil {
		return writeError(c, h.logger, err, "Error updating profile")
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, err)
	}

	if err := h.service.ChangePassword(c.UserContext(), principal, input); err != nil {
		return writeError(c, h.logger, err, "Error changing password")
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// HandleListUsers pages through users, filtered by ?search= and ?role=.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	filter := models.UserFilter{
		Search: c.Query("search"),
		Role:   models.Role(c.Query("role")),
	}
	page, err := h.service.List(c.UserContext(), principal, filter, c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching users")
	}
	return c.JSON(page)
}

func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, err)
	}

	user, err := h.service.Create(c.UserContext(), principal, input)
	if err != nil {
		return writeError(c, h.logger, err, "Error creating user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	user, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err, "Error fetching user")
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, err)
	}

	user, err := h.service.Update(c.UserContext(), principal, c.Params("id"), input)
	if err != nil {
		return writeError(c, h.logger, err, "Error updating user")
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return writeError(c, h.logger, err, "Error deleting user")
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
