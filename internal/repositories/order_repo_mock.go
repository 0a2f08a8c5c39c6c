package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"biterush/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		now:    time.Now,
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s: %w", order.ID, ErrDuplicate)
	}
	now := r.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	out := cloneOrder(order)
	return &out, nil
}

// ListByUser returns one page of the orders placed by userID.
func (r *MockOrderRepository) ListByUser(_ context.Context, userID string, page Page) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.page(func(o models.Order) bool { return o.UserID == userID }, page)
}

// List returns one page of all orders.
func (r *MockOrderRepository) List(_ context.Context, page Page) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.page(func(models.Order) bool { return true }, page)
}

// UpdateFields applies a partial update to an order.
func (r *MockOrderRepository) UpdateFields(_ context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if update.ExpectedVersion != nil && *update.ExpectedVersion != order.Version {
		return nil, fmt.Errorf("order %s: %w", id, ErrVersionConflict)
	}
	update.Apply(&order)
	order.Version++
	order.UpdatedAt = r.now()
	r.orders[id] = order

	out := cloneOrder(order)
	return &out, nil
}

// TopCustomers ranks users by the number of orders they placed.
func (r *MockOrderRepository) TopCustomers(_ context.Context, limit int) ([]models.CustomerOrderCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := make(map[string]*models.CustomerOrderCount)
	for _, order := range r.orders {
		row, ok := byUser[order.UserID]
		if !ok {
			row = &models.CustomerOrderCount{UserID: order.UserID}
			byUser[order.UserID] = row
		}
		row.OrderCount++
		row.TotalSpent += order.TotalPrice
	}

	out := make([]models.CustomerOrderCount, 0, len(byUser))
	for _, row := range byUser {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderCount == out[j].OrderCount {
			return out[i].UserID < out[j].UserID
		}
		return out[i].OrderCount > out[j].OrderCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockOrderRepository) page(keep func(models.Order) bool, page Page) ([]models.Order, int64, error) {
	matched := make([]models.Order, 0)
	for _, order := range r.orders {
		if keep(order) {
			matched = append(matched, order)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start, end := page.window(len(matched))
	out := make([]models.Order, 0, end-start)
	for _, order := range matched[start:end] {
		out = append(out, cloneOrder(order))
	}
	return out, int64(len(matched)), nil
}

// cloneOrder copies the slices and pointers so callers cannot mutate stored state.
func cloneOrder(o models.Order) models.Order {
	o.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	if o.PaidAt != nil {
		t := *o.PaidAt
		o.PaidAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		o.DeliveredAt = &t
	}
	if o.Rider != nil {
		rider := *o.Rider
		o.Rider = &rider
	}
	return o
}
