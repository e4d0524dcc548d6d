package coupons

import (
	"testing"

	"github.com/chronovashop/chronova-backend/pkg/enums"
)

func intPtr(v int) *int { return &v }

func TestDiscountFixed(t *testing.T) {
	t.Parallel()

	rule := DiscountRule{Type: enums.DiscountTypeFixed, AmountCents: 50000}

	if got := Discount(rule, 200000); got != 50000 {
		t.Fatalf("fixed discount = %d, want 50000", got)
	}
	// A fixed coupon larger than the subtotal clamps instead of going negative.
	if got := Discount(rule, 30000); got != 30000 {
		t.Fatalf("clamped fixed discount = %d, want 30000", got)
	}
	if got := Discount(rule, 0); got != 0 {
		t.Fatalf("discount on empty subtotal = %d, want 0", got)
	}
}

func TestDiscountPercent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		rule     DiscountRule
		subtotal int
		want     int
	}{
		{
			name:     "plain percentage",
			rule:     DiscountRule{Type: enums.DiscountTypePercent, AmountCents: 10},
			subtotal: 200000,
			want:     20000,
		},
		{
			name:     "rounds half up",
			rule:     DiscountRule{Type: enums.DiscountTypePercent, AmountCents: 15},
			subtotal: 1110,
			want:     167, // 166.5 rounds up
		},
		{
			name:     "cap applies",
			rule:     DiscountRule{Type: enums.DiscountTypePercent, AmountCents: 50, MaxDiscountCents: intPtr(50000)},
			subtotal: 200000,
			want:     50000,
		},
		{
			name:     "cap not reached",
			rule:     DiscountRule{Type: enums.DiscountTypePercent, AmountCents: 50, MaxDiscountCents: intPtr(50000)},
			subtotal: 80000,
			want:     40000,
		},
		{
			name:     "hundred percent",
			rule:     DiscountRule{Type: enums.DiscountTypePercent, AmountCents: 100},
			subtotal: 75000,
			want:     75000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Discount(tc.rule, tc.subtotal); got != tc.want {
				t.Fatalf("Discount = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDiscountUnknownType(t *testing.T) {
	t.Parallel()

	if got := Discount(DiscountRule{Type: "bogo", AmountCents: 10}, 100000); got != 0 {
		t.Fatalf("unknown discount type = %d, want 0", got)
	}
}
