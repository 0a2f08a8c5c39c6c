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

// MockVoucherRepository is an in-memory implementation of VoucherRepository keyed by code.
type MockVoucherRepository struct {
	vouchers map[string]models.Voucher
	mu       sync.RWMutex
}

// NewMockVoucherRepository creates a new instance of MockVoucherRepository.
func NewMockVoucherRepository() *MockVoucherRepository {
	return &MockVoucherRepository{
		vouchers: make(map[string]models.Voucher),
	}
}

// GetAll returns all vouchers, newest first.
func (r *MockVoucherRepository) GetAll(_ context.Context) ([]models.Voucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Voucher, 0, len(r.vouchers))
	for _, v := range r.vouchers {
		list = append(list, v)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// GetByCode returns the voucher with the given code.
func (r *MockVoucherRepository) GetByCode(_ context.Context, code string) (*models.Voucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vouchers[code]
	if !ok {
		return nil, fmt.Errorf("voucher %s: %w", code, ErrNotFound)
	}
	v.AllowedEmails = append([]string(nil), v.AllowedEmails...)
	return &v, nil
}

// Create adds a new voucher.
func (r *MockVoucherRepository) Create(_ context.Context, voucher *models.Voucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.vouchers[voucher.Code]; exists {
		return fmt.Errorf("voucher %s: %w", voucher.Code, ErrDuplicate)
	}
	if voucher.ID == "" {
		voucher.ID = uuid.New().String()
	}
	if voucher.CreatedAt.IsZero() {
		voucher.CreatedAt = time.Now()
	}
	stored := *voucher
	stored.AllowedEmails = append([]string(nil), voucher.AllowedEmails...)
	r.vouchers[voucher.Code] = stored
	return nil
}
