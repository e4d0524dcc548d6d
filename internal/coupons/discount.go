package coupons

import (
	"github.com/shopspring/decimal"

	"github.com/chronovashop/chronova-backend/pkg/enums"
)

// DiscountRule is the subset of a coupon the pure pricing math needs. The
// same computation runs at cart-display time and at checkout time.
type DiscountRule struct {
	Type             enums.DiscountType
	AmountCents      int
	MaxDiscountCents *int
}

// Discount computes the discount in cents for the given subtotal.
// Percent discounts round half-up on the taka value and are capped at
// MaxDiscountCents when set. The result never exceeds the subtotal, so a
// coupon can never push an order negative.
func Discount(rule DiscountRule, subtotalCents int) int {
	if subtotalCents <= 0 {
		return 0
	}

	var discount int
	switch rule.Type {
	case enums.DiscountTypeFixed:
		discount = rule.AmountCents
	case enums.DiscountTypePercent:
		pct := decimal.NewFromInt(int64(rule.AmountCents))
		discount = int(decimal.NewFromInt(int64(subtotalCents)).
			Mul(pct).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart())
		if rule.MaxDiscountCents != nil && discount > *rule.MaxDiscountCents {
			discount = *rule.MaxDiscountCents
		}
	default:
		return 0
	}

	if discount < 0 {
		discount = 0
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	return discount
}
