package services

import (
	"context"
	"errors"
	"fmt"

	"biterush/internal/models"
	"biterush/internal/repositories"

	"github.com/shopspring/decimal"
)

// OrderItemInput is a line item as submitted by the client.
type OrderItemInput struct {
	Product  string  `json:"product" validate:"required"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Image    string  `json:"image"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// OrderValidator checks submitted line items against the product catalog.
type OrderValidator struct {
	products repositories.ProductRepository
}

// NewOrderValidator creates a new OrderValidator.
func NewOrderValidator(products repositories.ProductRepository) *OrderValidator {
	return &OrderValidator{products: products}
}

// Validate checks every item before returning anything, so a failure leaves
// nothing half-processed. The returned snapshots carry the stored product's
// name, image and price.
func (v *OrderValidator) Validate(ctx context.Context, items []OrderItemInput) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, newValidationError("orderItems", "is required")
	}

	snapshots := make([]models.OrderItem, 0, len(items))
	for i, item := range items {
		product, err := v.products.GetByID(ctx, item.Product)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, &ItemError{Index: i, ProductID: item.Product, Err: ErrProductNotFound}
			}
			return nil, fmt.Errorf("failed to load product %s: %w", item.Product, err)
		}

		if !samePrice(item.Price, product.Price) {
			return nil, &ItemError{Index: i, ProductID: product.ID, ProductName: product.Name, Err: ErrPriceMismatch}
		}
		if !product.InStock {
			return nil, &ItemError{Index: i, ProductID: product.ID, ProductName: product.Name, Err: ErrOutOfStock}
		}

		snapshots = append(snapshots, models.OrderItem{
			Product:  product.ID,
			Name:     product.Name,
			Quantity: item.Quantity,
			Image:    product.Image,
			Price:    product.Price,
		})
	}
	return snapshots, nil
}

// samePrice compares two amounts at cent precision.
func samePrice(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
