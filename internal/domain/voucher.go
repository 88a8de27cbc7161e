package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

type Voucher struct {
	Code          string
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MaxDiscount   decimal.Decimal
	MinOrderValue decimal.Decimal
	UsageLimit    int
	UsedCount     int
	ValidFrom     time.Time
	ValidTo       time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks whether the voucher can be applied to an order of the given
// total at the given instant. UsedCount is checked here for early rejection,
// but the authoritative guard is the conditional increment at settlement.
func (v *Voucher) Validate(now time.Time, orderTotal decimal.Decimal) error {
	switch {
	case !v.IsActive:
		return VoucherInvalidError{Code: v.Code, Reason: "voucher is inactive"}
	case now.Before(v.ValidFrom):
		return VoucherInvalidError{Code: v.Code, Reason: "voucher is not valid yet"}
	case now.After(v.ValidTo):
		return VoucherInvalidError{Code: v.Code, Reason: "voucher has expired"}
	case v.UsedCount >= v.UsageLimit:
		return VoucherInvalidError{Code: v.Code, Reason: "voucher usage limit reached"}
	case orderTotal.LessThan(v.MinOrderValue):
		return VoucherInvalidError{Code: v.Code, Reason: "order total is below the voucher minimum"}
	}

	return nil
}

// Discount computes the discount for an order total. Percent discounts are
// capped by MaxDiscount when set; no discount ever exceeds the order total.
// The result is floored to a whole currency unit.
func (v *Voucher) Discount(orderTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch v.DiscountType {
	case DiscountAmount:
		discount = v.DiscountValue
	case DiscountPercent:
		discount = orderTotal.Mul(v.DiscountValue).Div(decimal.NewFromInt(100))
		if v.MaxDiscount.IsPositive() && discount.GreaterThan(v.MaxDiscount) {
			discount = v.MaxDiscount
		}
	}

	if discount.GreaterThan(orderTotal) {
		discount = orderTotal
	}

	return discount.Floor()
}

type VoucherRepository interface {
	GetByCode(ctx context.Context, code string) (*Voucher, error)
}
