package enums

// DiscountType distinguishes how a coupon amount is interpreted.
type DiscountType string

const (
	DiscountTypeFixed   DiscountType = "fixed"
	DiscountTypePercent DiscountType = "percent"
)

// Valid reports whether the value is a known discount type.
func (d DiscountType) Valid() bool {
	switch d {
	case DiscountTypeFixed, DiscountTypePercent:
		return true
	}
	return false
}
