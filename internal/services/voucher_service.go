package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"biterush/internal/models"
	"biterush/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// VoucherResult is a voucher that the requester may redeem.
type VoucherResult struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discountAmount"`
	Description     string  `json:"description"`
}

// CreateVoucherInput is the admin request to add a voucher.
type CreateVoucherInput struct {
	Code           string   `json:"code" validate:"required,max=64"`
	Description    string   `json:"description" validate:"required,max=255"`
	DiscountAmount float64  `json:"discountAmount" validate:"gt=0,lte=100"`
	IsSpecial      bool     `json:"isSpecial"`
	AllowedEmails  []string `json:"allowedEmails" validate:"omitempty,dive,email"`
}

// VoucherService validates and manages discount vouchers.
type VoucherService struct {
	repo     repositories.VoucherRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewVoucherService creates a new VoucherService.
func NewVoucherService(repo repositories.VoucherRepository, logger *zap.Logger) *VoucherService {
	return &VoucherService{
		repo:     repo,
		validate: NewValidator(),
		logger:   logger,
	}
}

// Validate looks up code and checks that the principal may use it. The
// principal's email is only consulted for special vouchers.
func (s *VoucherService) Validate(ctx context.Context, principal models.Principal, code string) (*VoucherResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, newValidationError("code", "is required")
	}

	voucher, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("failed to look up voucher %s: %w", code, err)
	}

	if !voucher.Allows(normalizeEmail(principal.Email)) {
		return nil, ErrVoucherUnauthorized
	}

	return &VoucherResult{
		Code:            voucher.Code,
		DiscountPercent: voucher.DiscountAmount,
		Description:     voucher.Description,
	}, nil
}

// Create adds a voucher. Admin only.
func (s *VoucherService) Create(ctx context.Context, principal models.Principal, input CreateVoucherInput) (*models.Voucher, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	input.Code = strings.TrimSpace(input.Code)
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	voucher := &models.Voucher{
		Code:           input.Code,
		Description:    input.Description,
		DiscountAmount: input.DiscountAmount,
		IsSpecial:      input.IsSpecial,
	}
	voucher.AllowedEmails = []string{}
	if input.IsSpecial {
		for _, email := range input.AllowedEmails {
			voucher.AllowedEmails = append(voucher.AllowedEmails, normalizeEmail(email))
		}
	}

	if err := s.repo.Create(ctx, voucher); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrVoucherExists
		}
		return nil, fmt.Errorf("failed to create voucher: %w", err)
	}

	s.logger.Info("voucher created", zap.String("code", voucher.Code), zap.Bool("special", voucher.IsSpecial))
	return voucher, nil
}

// List returns all vouchers, newest first. Admin only.
func (s *VoucherService) List(ctx context.Context, principal models.Principal) ([]models.Voucher, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	vouchers, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	return vouchers, nil
}
