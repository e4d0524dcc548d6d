package migrate

import (
	"context"
	"fmt"

	"github.com/chronovashop/chronova-backend/pkg/config"
	"github.com/chronovashop/chronova-backend/pkg/db"
	"github.com/chronovashop/chronova-backend/pkg/db/models"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

// MaybeRunDev applies the schema via AutoMigrate in dev environments when
// CHRONOVA_DB_AUTO_MIGRATE is set. Production schemas are managed out of
// band.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.DB.AutoMigrate {
		return nil
	}
	if cfg.App.IsProd() {
		return fmt.Errorf("auto-migrate is not allowed in prod")
	}

	err := client.DB().WithContext(ctx).AutoMigrate(
		&models.ProductVariant{},
		&models.Coupon{},
		&models.CouponEntitlement{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusEvent{},
		&models.Shipment{},
		&models.CustomerAddress{},
		&models.ShippingSetting{},
	)
	if err != nil {
		return fmt.Errorf("running auto-migrate: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "dev auto-migrate complete")
	}
	return nil
}
