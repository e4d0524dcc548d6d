package shipping

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
)

// SettingsLoader fetches the operator-edited zone list.
type SettingsLoader interface {
	LoadZones(ctx context.Context) ([]models.ShippingZoneConfig, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings loader bound to the provided DB.
func NewRepository(db *gorm.DB) SettingsLoader {
	return &repository{db: db}
}

// LoadZones returns the configured zones, or nil when no settings row exists
// yet so the resolver can fall back to its defaults.
func (r *repository) LoadZones(ctx context.Context) ([]models.ShippingZoneConfig, error) {
	var setting models.ShippingSetting
	err := r.db.WithContext(ctx).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return setting.Zones, nil
}
