package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductVariant is the sellable unit of a watch listing. Price and stock
// here are the source of truth; cart snapshots are caches of these values.
type ProductVariant struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SKU          string    `gorm:"column:sku;not null"`
	Title        string    `gorm:"column:title;not null"`
	VariantLabel string    `gorm:"column:variant_label;not null;default:''"`
	BrandName    string    `gorm:"column:brand_name;not null;default:''"`
	PriceCents   int       `gorm:"column:price_cents;not null"`
	StockQty     int       `gorm:"column:stock_qty;not null;default:0"`
	ImageURL     *string   `gorm:"column:image_url"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
