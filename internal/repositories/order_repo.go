package repositories

import (
	"context"

	"biterush/internal/models"
)

// OrderRepository defines the interface for order data access.
// Listings are sorted newest first.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]models.Order, int64, error)
	List(ctx context.Context, page Page) ([]models.Order, int64, error)
	// UpdateFields applies update atomically and returns the stored order.
	UpdateFields(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error)
	// TopCustomers groups orders by user and returns the limit users with the
	// most orders. Ties are broken by user id.
	TopCustomers(ctx context.Context, limit int) ([]models.CustomerOrderCount, error)
	// Orders are never deleted; cancellation is a status.
}
