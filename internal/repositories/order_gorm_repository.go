package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biterush/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create inserts a new order in a single statement.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

// ListByUser retrieves one page of the orders placed by userID, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string, page Page) ([]models.Order, int64, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID), page)
}

// List retrieves one page of all orders, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, page Page) ([]models.Order, int64, error) {
	return r.list(r.db.WithContext(ctx), page)
}

// UpdateFields writes the changed columns and bumps the version in one UPDATE.
func (r *GORMOrderRepository) UpdateFields(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	fields := map[string]interface{}{
		"updated_at": time.Now(),
		"version":    gorm.Expr("version + 1"),
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.Payment != nil {
		fields["is_paid"] = update.Payment.IsPaid
		fields["paid_at"] = update.Payment.PaidAt
	}
	if update.Delivery != nil {
		fields["is_delivered"] = update.Delivery.IsDelivered
		fields["delivered_at"] = update.Delivery.DeliveredAt
	}

	var updated *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Order{}).Where("id = ?", id)
		if update.ExpectedVersion != nil {
			q = q.Where("version = ?", *update.ExpectedVersion)
		}
		res := q.Updates(fields)
		if res.Error != nil {
			return fmt.Errorf("failed to update order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			// Either the order is gone or its version moved on.
			if _, err := r.getByID(tx, id); err != nil {
				return err
			}
			return fmt.Errorf("order %s: %w", id, ErrVersionConflict)
		}

		order, err := r.getByID(tx, id)
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// TopCustomers runs a GROUP BY user_id over the orders table.
func (r *GORMOrderRepository) TopCustomers(ctx context.Context, limit int) ([]models.CustomerOrderCount, error) {
	rows := make([]models.CustomerOrderCount, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("user_id, COUNT(*) AS order_count, COALESCE(SUM(total_price), 0) AS total_spent").
		Group("user_id").
		Order("order_count DESC").
		Order("user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders by user: %w", err)
	}
	return rows, nil
}

func (r *GORMOrderRepository) getByID(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) list(q *gorm.DB, page Page) ([]models.Order, int64, error) {
	// New session so the count and the find do not share statement state.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := make([]models.Order, 0)
	err := q.Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}
