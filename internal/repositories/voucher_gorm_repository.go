package repositories

import (
	"context"
	"errors"
	"fmt"

	"biterush/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMVoucherRepository is a GORM implementation of VoucherRepository.
type GORMVoucherRepository struct {
	db *gorm.DB
}

// NewGORMVoucherRepository creates a new instance of GORMVoucherRepository.
func NewGORMVoucherRepository(db *gorm.DB) *GORMVoucherRepository {
	return &GORMVoucherRepository{
		db: db,
	}
}

// GetAll retrieves all vouchers, newest first.
func (r *GORMVoucherRepository) GetAll(ctx context.Context) ([]models.Voucher, error) {
	vouchers := make([]models.Voucher, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&vouchers).Error; err != nil {
		return nil, fmt.Errorf("failed to get vouchers: %w", err)
	}
	return vouchers, nil
}

// GetByCode retrieves a voucher by its code.
func (r *GORMVoucherRepository) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).First(&voucher, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("voucher %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get voucher %s: %w", code, err)
	}
	return &voucher, nil
}

// Create inserts a voucher. The unique index on code backs the duplicate check.
func (r *GORMVoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	if voucher.ID == "" {
		voucher.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Voucher{}).Where("code = ?", voucher.Code).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check voucher code: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("voucher %s: %w", voucher.Code, ErrDuplicate)
		}
		if err := tx.Create(voucher).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("voucher %s: %w", voucher.Code, ErrDuplicate)
			}
			return fmt.Errorf("failed to create voucher: %w", err)
		}
		return nil
	})
	return err
}
