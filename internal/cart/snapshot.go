package cart

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/chronovashop/chronova-backend/internal/coupons"
)

// SnapshotVersion is the current cart snapshot schema. Version 1 snapshots
// predate the coupon field rename and are migrated on read.
const SnapshotVersion = 2

// Line is one cached cart entry, unique by VariantID. UnitPriceCents and
// KnownStock are snapshots of store data and go stale until Refresh.
type Line struct {
	VariantID      uuid.UUID `json:"variant_id"`
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	Title          string    `json:"title"`
	VariantLabel   string    `json:"variant_label,omitempty"`
	BrandName      string    `json:"brand_name,omitempty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Qty            int       `json:"qty"`
	ImageURL       string    `json:"image_url,omitempty"`
	KnownStock     int       `json:"known_stock"`
}

// Snapshot is the durable form of a cart session.
type Snapshot struct {
	SchemaVersion int              `json:"schema_version"`
	Lines         []Line           `json:"lines"`
	Coupon        *coupons.Applied `json:"coupon,omitempty"`
}

// EncodeSnapshot serializes a snapshot at the current schema version.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	snap.SchemaVersion = SnapshotVersion
	return json.Marshal(snap)
}

// DecodeSnapshot parses a stored snapshot, migrating legacy versions keyed
// by the stored schema_version rather than inferring shape from field
// absence.
func DecodeSnapshot(raw []byte) (*Snapshot, error) {
	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decoding snapshot header: %w", err)
	}

	switch {
	case probe.SchemaVersion >= SnapshotVersion:
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		return &snap, nil
	default:
		// version 0 (pre-versioning) and 1 share the legacy coupon shape
		return migrateV1(raw)
	}
}

// v1 stored the coupon value under "discount" and lacked the active flag.
type v1Coupon struct {
	ID               string   `json:"id"`
	Code             string   `json:"code"`
	DiscountType     string   `json:"discount_type"`
	Discount         int      `json:"discount"`
	MinSubtotalCents int      `json:"min_subtotal_cents"`
	MaxDiscountCents *int     `json:"max_discount_cents,omitempty"`
	Entitlements     []string `json:"entitlements,omitempty"`
}

type v1Snapshot struct {
	SchemaVersion int       `json:"schema_version"`
	Lines         []Line    `json:"lines"`
	Coupon        *v1Coupon `json:"coupon,omitempty"`
}

func migrateV1(raw []byte) (*Snapshot, error) {
	var legacy v1Snapshot
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("decoding v1 snapshot: %w", err)
	}

	snap := &Snapshot{
		SchemaVersion: SnapshotVersion,
		Lines:         legacy.Lines,
	}
	if legacy.Coupon != nil {
		snap.Coupon = &coupons.Applied{
			ID:               legacy.Coupon.ID,
			Code:             legacy.Coupon.Code,
			DiscountType:     legacy.Coupon.DiscountType,
			AmountCents:      legacy.Coupon.Discount,
			MinSubtotalCents: legacy.Coupon.MinSubtotalCents,
			MaxDiscountCents: legacy.Coupon.MaxDiscountCents,
			IsActive:         true,
			Entitlements:     legacy.Coupon.Entitlements,
		}
	}
	return snap, nil
}
