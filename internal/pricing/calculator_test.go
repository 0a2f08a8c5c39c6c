package pricing_test

import (
	"testing"

	"biterush/internal/models"
	"biterush/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculator_Compute(t *testing.T) {
	calc := pricing.NewCalculator(nil, decimal.Zero)

	b, err := calc.Compute(pricing.Input{
		Lines:          []pricing.Line{{UnitPrice: dec("100"), Quantity: 2}},
		DeliveryMethod: models.DeliveryStandard,
		Tip:            dec("10"),
	})
	require.NoError(t, err)

	assert.True(t, b.ItemsPrice.Equal(dec("200")), "items: %s", b.ItemsPrice)
	assert.True(t, b.ShippingPrice.Equal(dec("45")), "shipping: %s", b.ShippingPrice)
	assert.True(t, b.TipAmount.Equal(dec("10")))
	assert.True(t, b.TaxPrice.IsZero())
	assert.True(t, b.DiscountAmount.IsZero())
	assert.True(t, b.TotalPrice.Equal(dec("255")), "total: %s", b.TotalPrice)
}

func TestCalculator_ComputeWithVoucher(t *testing.T) {
	calc := pricing.NewCalculator(nil, decimal.Zero)
	pct := dec("50")

	b, err := calc.Compute(pricing.Input{
		Lines:           []pricing.Line{{UnitPrice: dec("100"), Quantity: 2}},
		DeliveryMethod:  models.DeliveryStandard,
		Tip:             dec("10"),
		DiscountPercent: &pct,
	})
	require.NoError(t, err)

	assert.True(t, b.DiscountAmount.Equal(dec("100")), "discount: %s", b.DiscountAmount)
	assert.True(t, b.TotalPrice.Equal(dec("155")), "total: %s", b.TotalPrice)
}

func TestCalculator_DeliveryFees(t *testing.T) {
	calc := pricing.NewCalculator(nil, decimal.Zero)

	tests := []struct {
		method models.DeliveryMethod
		want   string
	}{
		{models.DeliverySaver, "45"},
		{models.DeliveryStandard, "45"},
		{models.DeliveryPriority, "60"},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			fee, err := calc.ShippingFee(tt.method)
			require.NoError(t, err)
			assert.True(t, fee.Equal(dec(tt.want)))
		})
	}

	_, err := calc.ShippingFee("Drone")
	assert.ErrorIs(t, err, pricing.ErrUnknownDeliveryMethod)
}

func TestCalculator_CustomFeesAndTax(t *testing.T) {
	calc := pricing.NewCalculator(pricing.FeeTable{
		models.DeliveryPriority: dec("75.5"),
	}, dec("5"))

	b, err := calc.Compute(pricing.Input{
		Lines: []pricing.Line{
			{UnitPrice: dec("12.99"), Quantity: 3},
			{UnitPrice: dec("4.50"), Quantity: 1},
		},
		DeliveryMethod: models.DeliveryPriority,
	})
	require.NoError(t, err)

	assert.Equal(t, "43.47", b.ItemsPrice.StringFixed(2))
	assert.Equal(t, "2.17", b.TaxPrice.StringFixed(2))
	assert.Equal(t, "75.50", b.ShippingPrice.StringFixed(2))
	sum := b.ItemsPrice.Add(b.TaxPrice).Add(b.ShippingPrice).Add(b.TipAmount).Sub(b.DiscountAmount)
	assert.True(t, b.TotalPrice.Equal(sum))

	_, err = calc.Compute(pricing.Input{DeliveryMethod: models.DeliveryStandard})
	assert.ErrorIs(t, err, pricing.ErrUnknownDeliveryMethod)
}

func TestCalculator_RoundsDiscount(t *testing.T) {
	calc := pricing.NewCalculator(nil, decimal.Zero)
	pct := dec("15")

	b, err := calc.Compute(pricing.Input{
		Lines:           []pricing.Line{{UnitPrice: dec("33.33"), Quantity: 1}},
		DeliveryMethod:  models.DeliverySaver,
		DiscountPercent: &pct,
	})
	require.NoError(t, err)

	assert.Equal(t, "5.00", b.DiscountAmount.StringFixed(2))
	assert.Equal(t, "73.33", b.TotalPrice.StringFixed(2))
}

func TestCalculator_TotalClampedAtZero(t *testing.T) {
	full := dec("100")
	free := pricing.FeeTable{models.DeliveryStandard: decimal.Zero}
	rebate := pricing.FeeTable{models.DeliveryStandard: dec("-50")}

	tests := []struct {
		name     string
		fees     pricing.FeeTable
		discount *decimal.Decimal
	}{
		{"full voucher, free delivery", free, &full},
		{"fee rebate exceeds items", rebate, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := pricing.NewCalculator(tt.fees, decimal.Zero)

			b, err := calc.Compute(pricing.Input{
				Lines:           []pricing.Line{{UnitPrice: dec("20"), Quantity: 1}},
				DeliveryMethod:  models.DeliveryStandard,
				DiscountPercent: tt.discount,
			})
			require.NoError(t, err)
			assert.True(t, b.TotalPrice.IsZero(), "total: %s", b.TotalPrice)
			assert.False(t, b.TotalPrice.IsNegative())
		})
	}
}

func TestCalculator_Errors(t *testing.T) {
	calc := pricing.NewCalculator(nil, decimal.Zero)
	lines := []pricing.Line{{UnitPrice: dec("10"), Quantity: 1}}

	_, err := calc.Compute(pricing.Input{Lines: lines, DeliveryMethod: models.DeliverySaver, Tip: dec("-1")})
	assert.ErrorIs(t, err, pricing.ErrNegativeTip)

	_, err = calc.Compute(pricing.Input{Lines: lines, DeliveryMethod: "Teleport"})
	assert.ErrorIs(t, err, pricing.ErrUnknownDeliveryMethod)

	_, err = calc.Compute(pricing.Input{
		Lines:          []pricing.Line{{UnitPrice: dec("10"), Quantity: 0}},
		DeliveryMethod: models.DeliverySaver,
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidLine)

	tooMuch := dec("150")
	_, err = calc.Compute(pricing.Input{Lines: lines, DeliveryMethod: models.DeliverySaver, DiscountPercent: &tooMuch})
	assert.ErrorIs(t, err, pricing.ErrInvalidDiscount)
}

func TestBreakdown_Apply(t *testing.T) {
	calc := pricing.NewCalculator(nil, decimal.Zero)
	b, err := calc.Compute(pricing.Input{
		Lines:          []pricing.Line{{UnitPrice: dec("100"), Quantity: 2}},
		DeliveryMethod: models.DeliveryPriority,
		Tip:            dec("5.25"),
	})
	require.NoError(t, err)

	var o models.Order
	b.Apply(&o)
	assert.Equal(t, 200.0, o.ItemsPrice)
	assert.Equal(t, 60.0, o.ShippingPrice)
	assert.Equal(t, 5.25, o.TipAmount)
	assert.Equal(t, 0.0, o.TaxPrice)
	assert.Equal(t, 265.25, o.TotalPrice)
}
