package services

import (
	"context"
	"errors"
	"fmt"

	"biterush/internal/models"
	"biterush/internal/repositories"
)

// OrderLogService reads the activity log written by the order event consumer.
type OrderLogService struct {
	logs   repositories.OrderLogRepository
	orders repositories.OrderRepository
}

func NewOrderLogService(logs repositories.OrderLogRepository, orders repositories.OrderRepository) *OrderLogService {
	return &OrderLogService{logs: logs, orders: orders}
}

// List returns the log entries of an order, oldest first. Admin only.
func (s *OrderLogService) List(ctx context.Context, principal models.Principal, orderID string) ([]models.OrderLog, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}

	entries, err := s.logs.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs for order %s: %w", orderID, err)
	}
	return entries, nil
}
