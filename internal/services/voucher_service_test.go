package services_test

import (
	"context"
	"testing"

	"biterush/internal/models"
	"biterush/internal/repositories"
	"biterush/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin    = models.Principal{UserID: "admin-1", Role: models.RoleAdmin, Email: "admin@biterush.test"}
	customer = models.Principal{UserID: "user-1", Role: models.RoleUser, Email: "jane@example.com"}
	stranger = models.Principal{UserID: "user-2", Role: models.RoleUser, Email: "bob@example.com"}
)

func seededVouchers(t *testing.T) *services.VoucherService {
	t.Helper()
	repo := repositories.NewMockVoucherRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Voucher{Code: "HALF", Description: "Half off", DiscountAmount: 50}))
	require.NoError(t, repo.Create(ctx, &models.Voucher{
		Code:           "VIP20",
		Description:    "Friends of the house",
		DiscountAmount: 20,
		IsSpecial:      true,
		AllowedEmails:  []string{"jane@example.com"},
	}))
	return services.NewVoucherService(repo, zap.NewNop())
}

func TestVoucherService_Validate(t *testing.T) {
	svc := seededVouchers(t)
	ctx := context.Background()

	res, err := svc.Validate(ctx, customer, "HALF")
	require.NoError(t, err)
	assert.Equal(t, &services.VoucherResult{Code: "HALF", DiscountPercent: 50, Description: "Half off"}, res)

	// Non-special vouchers ignore the email entirely.
	res, err = svc.Validate(ctx, models.Principal{UserID: "anon"}, "HALF")
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.DiscountPercent)

	res, err = svc.Validate(ctx, customer, "VIP20")
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.DiscountPercent)
}

func TestVoucherService_Validate_Errors(t *testing.T) {
	svc := seededVouchers(t)
	ctx := context.Background()

	_, err := svc.Validate(ctx, customer, "NOPE")
	assert.ErrorIs(t, err, services.ErrVoucherNotFound)

	res, err := svc.Validate(ctx, stranger, "VIP20")
	assert.ErrorIs(t, err, services.ErrVoucherUnauthorized)
	assert.Nil(t, res)

	_, err = svc.Validate(ctx, customer, "   ")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestVoucherService_Create(t *testing.T) {
	svc := seededVouchers(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, admin, services.CreateVoucherInput{
		Code:           "PLAIN10",
		Description:    "Ten percent",
		DiscountAmount: 10,
		AllowedEmails:  []string{"ignored@example.com"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Empty(t, v.AllowedEmails)

	v, err = svc.Create(ctx, admin, services.CreateVoucherInput{
		Code:           "STAFF",
		Description:    "Staff meal",
		DiscountAmount: 100,
		IsSpecial:      true,
		AllowedEmails:  []string{"Chef@Example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chef@example.com"}, v.AllowedEmails)

	_, err = svc.Create(ctx, admin, services.CreateVoucherInput{Code: "HALF", Description: "dup", DiscountAmount: 5})
	assert.ErrorIs(t, err, services.ErrVoucherExists)

	_, err = svc.Create(ctx, admin, services.CreateVoucherInput{Code: "ZERO", Description: "zero", DiscountAmount: 0})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Create(ctx, customer, services.CreateVoucherInput{Code: "MINE", Description: "mine", DiscountAmount: 5})
	assert.ErrorIs(t, err, services.ErrForbidden)

	list, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	_, err = svc.List(ctx, customer)
	assert.ErrorIs(t, err, services.ErrForbidden)
}
