package repositories

import (
	"context"
	"fmt"

	"biterush/internal/models"

	"gorm.io/gorm"
)

// OrderLogRepository appends to and reads the order activity log.
type OrderLogRepository interface {
	Append(ctx context.Context, entry *models.OrderLog) error
	ListByOrder(ctx context.Context, orderID string) ([]models.OrderLog, error)
}

// GORMOrderLogRepository is a GORM implementation of OrderLogRepository.
type GORMOrderLogRepository struct {
	db *gorm.DB
}

// NewGORMOrderLogRepository creates a new instance of GORMOrderLogRepository.
func NewGORMOrderLogRepository(db *gorm.DB) *GORMOrderLogRepository {
	return &GORMOrderLogRepository{db: db}
}

// Append inserts a log entry. Entries are never updated.
func (r *GORMOrderLogRepository) Append(ctx context.Context, entry *models.OrderLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append order log: %w", err)
	}
	return nil
}

// ListByOrder returns the log entries of an order in the order they were written.
func (r *GORMOrderLogRepository) ListByOrder(ctx context.Context, orderID string) ([]models.OrderLog, error) {
	entries := make([]models.OrderLog, 0)
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list order logs: %w", err)
	}
	return entries, nil
}
