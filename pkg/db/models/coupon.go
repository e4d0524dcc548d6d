package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/enums"
)

// Coupon holds the operator-managed discount rules. AmountCents carries the
// poisha value for fixed coupons and the whole-number percentage for percent
// coupons.
type Coupon struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Code             string              `gorm:"column:code;uniqueIndex;not null"`
	DiscountType     enums.DiscountType  `gorm:"column:discount_type;type:text;not null"`
	AmountCents      int                 `gorm:"column:amount_cents;not null"`
	MinSubtotalCents int                 `gorm:"column:min_subtotal_cents;not null;default:0"`
	MaxDiscountCents *int                `gorm:"column:max_discount_cents"`
	StartsAt         *time.Time          `gorm:"column:starts_at"`
	EndsAt           *time.Time          `gorm:"column:ends_at"`
	IsActive         bool                `gorm:"column:is_active;not null;default:true"`
	Entitlements     []CouponEntitlement `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CouponEntitlement restricts a coupon to a specific account email. A coupon
// with no entitlement rows is public.
type CouponEntitlement struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CouponID uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;index"`
	Email    string    `gorm:"column:email;not null"`
}

func (e *CouponEntitlement) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
