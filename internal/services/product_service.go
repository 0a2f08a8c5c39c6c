package services

import (
	"context"
	"errors"
	"fmt"

	"biterush/internal/models"
	"biterush/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles business logic related to the menu.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: NewValidator(),
	}
}

// GetAllProducts retrieves the products matching filter.
func (s *ProductService) GetAllProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, newValidationError("category", fmt.Sprintf("has unsupported value %q", filter.Category))
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, newValidationError("minPrice", "must not exceed maxPrice")
	}
	return s.repo.GetAll(ctx, filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productError(id, err)
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateStruct(s.validate, product); err != nil {
		return err
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct replaces an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := validateStruct(s.validate, product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return productError(product.ID, err)
	}
	return nil
}

// DeleteProduct deletes a product by its ID. Orders keep their item snapshots.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return productError(id, err)
	}
	return nil
}

func productError(id string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	return err
}
