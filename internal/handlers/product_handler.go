package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"biterush/internal/models"
	"biterush/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the menu.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the public product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers the product management routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists products, optionally filtered by
// category, featured, minPrice, maxPrice and minRating.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter, err := parseProductFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}

	products, err := h.service.GetAllProducts(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.logger, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.productError(c, id, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product to the menu.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	product := models.Product{InStock: true}
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, err)
	}
	product.ID = ""

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return writeError(c, h.logger, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, err)
	}
	product.ID = id

	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return h.productError(c, id, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the menu.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.productError(c, id, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", id),
	})
}

// productError answers 404 for unknown products; at checkout the same
// error is a bad request, so it cannot go through statusFor.
func (h *ProductHandler) productError(c *fiber.Ctx, id string, err error, message string) error {
	if errors.Is(err, services.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %s not found", id),
		})
	}
	return writeError(c, h.logger, err, message)
}

func parseProductFilter(c *fiber.Ctx) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Category: models.Category(c.Query("category")),
		Featured: c.QueryBool("featured", false),
	}
	var err error
	if filter.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.MinRating, err = queryFloat(c, "minRating"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}
