package repositories

import (
	"context"

	"biterush/internal/models"
)

// VoucherRepository defines the interface for voucher data access.
type VoucherRepository interface {
	GetAll(ctx context.Context) ([]models.Voucher, error)
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)
	// Create fails with ErrDuplicate when the code is already taken.
	Create(ctx context.Context, voucher *models.Voucher) error
}
