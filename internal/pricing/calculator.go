// Package pricing derives the monetary fields of an order.
package pricing

import (
	"errors"
	"fmt"

	"biterush/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownDeliveryMethod is returned when the fee table has no entry for the method.
	ErrUnknownDeliveryMethod = errors.New("unknown delivery method")
	// ErrNegativeTip is returned for tips below zero.
	ErrNegativeTip = errors.New("tip amount must not be negative")
	// ErrInvalidDiscount is returned for voucher percentages outside (0, 100].
	ErrInvalidDiscount = errors.New("discount percent must be within (0, 100]")
	// ErrInvalidLine is returned for a line with a negative price or a quantity below one.
	ErrInvalidLine = errors.New("invalid line item")
)

var hundred = decimal.NewFromInt(100)

// FeeTable maps each delivery method to its shipping fee.
type FeeTable map[models.DeliveryMethod]decimal.Decimal

// DefaultFeeTable returns the stock fees: Saver and Standard 45, Priority 60.
func DefaultFeeTable() FeeTable {
	return FeeTable{
		models.DeliverySaver:    decimal.NewFromInt(45),
		models.DeliveryStandard: decimal.NewFromInt(45),
		models.DeliveryPriority: decimal.NewFromInt(60),
	}
}

// Line is one priced cart entry.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Input is everything the calculator needs to price an order.
type Input struct {
	Lines          []Line
	DeliveryMethod models.DeliveryMethod
	Tip            decimal.Decimal
	// DiscountPercent is set only when a voucher was validated.
	DiscountPercent *decimal.Decimal
}

// Breakdown holds the computed order amounts, each rounded to 2 places.
type Breakdown struct {
	ItemsPrice     decimal.Decimal
	TaxPrice       decimal.Decimal
	ShippingPrice  decimal.Decimal
	TipAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalPrice     decimal.Decimal
}

// Calculator prices orders from a fee table and a tax rate given in percent.
type Calculator struct {
	fees    FeeTable
	taxRate decimal.Decimal
}

// NewCalculator creates a Calculator. A nil fee table falls back to DefaultFeeTable.
func NewCalculator(fees FeeTable, taxRate decimal.Decimal) *Calculator {
	if fees == nil {
		fees = DefaultFeeTable()
	}
	return &Calculator{fees: fees, taxRate: taxRate}
}

// ShippingFee returns the fee for method.
func (c *Calculator) ShippingFee(method models.DeliveryMethod) (decimal.Decimal, error) {
	fee, ok := c.fees[method]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownDeliveryMethod, method)
	}
	return fee, nil
}

// Compute prices the order. The total is derived from the rounded components
// so that total == items + tax + shipping + tip - discount holds exactly,
// unless the result would be negative, in which case it is zero.
func (c *Calculator) Compute(in Input) (Breakdown, error) {
	if in.Tip.IsNegative() {
		return Breakdown{}, ErrNegativeTip
	}
	shipping, err := c.ShippingFee(in.DeliveryMethod)
	if err != nil {
		return Breakdown{}, err
	}

	items := decimal.Zero
	for i, l := range in.Lines {
		if l.Quantity < 1 || l.UnitPrice.IsNegative() {
			return Breakdown{}, fmt.Errorf("%w at index %d", ErrInvalidLine, i)
		}
		items = items.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	items = items.Round(2)

	discount := decimal.Zero
	if in.DiscountPercent != nil {
		pct := *in.DiscountPercent
		if !pct.IsPositive() || pct.GreaterThan(hundred) {
			return Breakdown{}, ErrInvalidDiscount
		}
		discount = items.Mul(pct).Div(hundred).Round(2)
	}

	b := Breakdown{
		ItemsPrice:     items,
		TaxPrice:       items.Mul(c.taxRate).Div(hundred).Round(2),
		ShippingPrice:  shipping.Round(2),
		TipAmount:      in.Tip.Round(2),
		DiscountAmount: discount,
	}
	total := b.ItemsPrice.Add(b.TaxPrice).Add(b.ShippingPrice).Add(b.TipAmount).Sub(b.DiscountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	b.TotalPrice = total
	return b, nil
}

// Apply copies the breakdown onto the order's price fields.
func (b Breakdown) Apply(o *models.Order) {
	o.ItemsPrice = b.ItemsPrice.InexactFloat64()
	o.TaxPrice = b.TaxPrice.InexactFloat64()
	o.ShippingPrice = b.ShippingPrice.InexactFloat64()
	o.TipAmount = b.TipAmount.InexactFloat64()
	o.DiscountAmount = b.DiscountAmount.InexactFloat64()
	o.TotalPrice = b.TotalPrice.InexactFloat64()
}
