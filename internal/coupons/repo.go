package coupons

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
)

// Repository loads coupon rows by code. Codes are matched exactly after
// uppercasing; there is no fuzzy matching.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupon repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Preload("Entitlements").
		Where("code = ?", normalized).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
