package models

import (
	"time"
)

// ShippingZoneConfig is one operator-edited zone entry inside the shipping
// settings record.
type ShippingZoneConfig struct {
	ZoneKey              string   `json:"zone_key"`
	Name                 string   `json:"name"`
	FeeCents             int      `json:"fee_cents"`
	FreeShippingMinCents int      `json:"free_shipping_min_cents"`
	EtaText              string   `json:"eta_text"`
	MatchCities          []string `json:"match_cities"`
}

// ShippingSetting is the single settings row the storefront reads zone fees
// from. Zones is operator-edited and may not cover every division.
type ShippingSetting struct {
	ID        int                  `gorm:"column:id;primaryKey"`
	Zones     []ShippingZoneConfig `gorm:"column:zones;type:jsonb;serializer:json"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
