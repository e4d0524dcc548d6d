package shipping

import (
	"context"
	"fmt"
	"strings"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

const (
	zoneKeyDhaka   = "dhaka"
	zoneKeyOutside = "outside"
)

// defaultZones covers the case where the settings record is missing or
// unreadable. Fees in poisha.
var defaultZones = []models.ShippingZoneConfig{
	{
		ZoneKey:              zoneKeyDhaka,
		Name:                 "Inside Dhaka",
		FeeCents:             6000,
		FreeShippingMinCents: 500000,
		EtaText:              "1-2 days",
		MatchCities:          []string{"Dhaka"},
	},
	{
		ZoneKey:              zoneKeyOutside,
		Name:                 "Outside Dhaka",
		FeeCents:             12000,
		FreeShippingMinCents: 500000,
		EtaText:              "3-5 days",
		MatchCities:          []string{},
	},
}

// Quote is the resolved shipping cost for a destination and subtotal.
type Quote struct {
	ZoneKey             string
	ZoneName            string
	FeeCents            int
	EtaText             string
	FreeShippingApplied bool
}

// Resolver maps a destination division to a shipping fee, free-shipping
// threshold and ETA.
type Resolver interface {
	Resolve(ctx context.Context, division string, subtotalCents int) (Quote, error)
}

type resolver struct {
	settings SettingsLoader
	logg     *logger.Logger
}

// NewResolver builds a zone resolver over the provided settings loader.
func NewResolver(settings SettingsLoader, logg *logger.Logger) (Resolver, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	return &resolver{settings: settings, logg: logg}, nil
}

// Resolve picks the zone matching the division and computes the effective
// fee. A failed or empty settings fetch degrades to the default zones.
func (r *resolver) Resolve(ctx context.Context, division string, subtotalCents int) (Quote, error) {
	zones, err := r.settings.LoadZones(ctx)
	if err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "shipping settings fetch failed, using defaults", err)
		}
		zones = nil
	}
	if len(zones) == 0 {
		zones = defaultZones
	}

	zone := matchZone(zones, division)
	fee := zone.FeeCents
	free := zone.FreeShippingMinCents > 0 && subtotalCents >= zone.FreeShippingMinCents
	if free {
		fee = 0
	}

	return Quote{
		ZoneKey:             zone.ZoneKey,
		ZoneName:            zone.Name,
		FeeCents:            fee,
		EtaText:             zone.EtaText,
		FreeShippingApplied: free,
	}, nil
}

// matchZone finds the zone whose MatchCities contains the division. The
// fallback chain exists because the zone list is operator-edited and may not
// be exhaustive: dhaka key for "Dhaka", then the outside key, then the
// second zone, then the first.
func matchZone(zones []models.ShippingZoneConfig, division string) models.ShippingZoneConfig {
	target := strings.ToLower(strings.TrimSpace(division))

	for _, zone := range zones {
		for _, city := range zone.MatchCities {
			if strings.ToLower(strings.TrimSpace(city)) == target {
				return zone
			}
		}
	}

	if target == zoneKeyDhaka {
		for _, zone := range zones {
			if zone.ZoneKey == zoneKeyDhaka {
				return zone
			}
		}
	}
	for _, zone := range zones {
		if zone.ZoneKey == zoneKeyOutside {
			return zone
		}
	}
	if len(zones) > 1 {
		return zones[1]
	}
	return zones[0]
}
