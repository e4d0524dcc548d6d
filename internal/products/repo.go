package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
)

// VariantInfo is the fixed shape the pricing core consumes. Whatever quirks
// the storage layer grows stay behind this repository.
type VariantInfo struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	SKU          string
	Title        string
	VariantLabel string
	BrandName    string
	PriceCents   int
	StockQty     int
	ImageURL     string
	Active       bool
}

// Repository loads authoritative variant data for the cart and checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]VariantInfo, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a variant repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByIDs returns normalized info for every matching active variant.
// Missing or inactive ids are simply absent from the result; callers decide
// whether absence is an error.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]VariantInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	infos := make([]VariantInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, normalize(row))
	}
	return infos, nil
}

func normalize(row models.ProductVariant) VariantInfo {
	info := VariantInfo{
		ID:           row.ID,
		ProductID:    row.ProductID,
		SKU:          row.SKU,
		Title:        row.Title,
		VariantLabel: row.VariantLabel,
		BrandName:    row.BrandName,
		PriceCents:   row.PriceCents,
		StockQty:     row.StockQty,
		Active:       row.IsActive,
	}
	if row.ImageURL != nil {
		info.ImageURL = *row.ImageURL
	}
	if !row.IsActive {
		info.StockQty = 0
	}
	return info
}
