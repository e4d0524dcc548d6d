package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

// StockDecrementer applies the post-order stock writes.
type StockDecrementer interface {
	Decrement(ctx context.Context, variantID uuid.UUID, qty int) error
}

type stockDecrementer struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewStockDecrementer builds the decrementer bound to the provided DB.
func NewStockDecrementer(db *gorm.DB, logg *logger.Logger) StockDecrementer {
	return &stockDecrementer{db: db, logg: logg}
}

// Decrement subtracts qty from the variant's stock. The primary path is an
// atomic conditional update; when it matches no row (stock raced below the
// requested quantity between verification and this write) it falls back to
// a clamped read-then-write. The fallback is a known race window between
// concurrent checkouts and is logged, never silent.
func (d *stockDecrementer) Decrement(ctx context.Context, variantID uuid.UUID, qty int) error {
	if qty < 1 {
		return fmt.Errorf("decrement qty must be positive, got %d", qty)
	}

	res := d.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND stock_qty >= ?", variantID, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	return d.decrementClamped(ctx, variantID, qty)
}

func (d *stockDecrementer) decrementClamped(ctx context.Context, variantID uuid.UUID, qty int) error {
	if d.logg != nil {
		ctx = d.logg.WithField(ctx, "variant_id", variantID.String())
		d.logg.Warn(ctx, "conditional stock decrement matched no row, using clamped fallback")
	}

	var variant models.ProductVariant
	if err := d.db.WithContext(ctx).First(&variant, "id = ?", variantID).Error; err != nil {
		return err
	}

	newStock := variant.StockQty - qty
	if newStock < 0 {
		newStock = 0
	}
	return d.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock_qty", newStock).Error
}
