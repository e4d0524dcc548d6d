package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chronovashop/chronova-backend/internal/coupons"
	"github.com/chronovashop/chronova-backend/internal/products"
	"github.com/chronovashop/chronova-backend/pkg/auth"
	pkgerrors "github.com/chronovashop/chronova-backend/pkg/errors"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

// View is a cart with its derived totals, recomputed on every read.
type View struct {
	SessionID       string           `json:"session_id"`
	Lines           []Line           `json:"lines"`
	Coupon          *coupons.Applied `json:"coupon,omitempty"`
	SubtotalCents   int              `json:"subtotal_cents"`
	DiscountCents   int              `json:"discount_cents"`
	GrandTotalCents int              `json:"grand_total_cents"`
}

// LineInput is the optimistic client payload for adding a line. Price and
// stock are cached snapshots; checkout re-verifies against the store.
type LineInput struct {
	VariantID      uuid.UUID
	ProductID      uuid.UUID
	SKU            string
	Title          string
	VariantLabel   string
	BrandName      string
	UnitPriceCents int
	Qty            int
	ImageURL       string
	KnownStock     int
}

// Service owns per-session cart state: the line list and the applied
// coupon. Every mutation persists the full snapshot and re-validates the
// coupon against the new subtotal, dropping it silently when it no longer
// qualifies.
type Service interface {
	Get(ctx context.Context, sessionID string, identity *auth.Identity) (*View, error)
	AddLine(ctx context.Context, sessionID string, input LineInput, identity *auth.Identity) (*View, error)
	RemoveLine(ctx context.Context, sessionID string, variantID uuid.UUID, identity *auth.Identity) (*View, error)
	SetQuantity(ctx context.Context, sessionID string, variantID uuid.UUID, qty int, identity *auth.Identity) (*View, error)
	Clear(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, sessionID string, identity *auth.Identity) (*View, error)
	ApplyCoupon(ctx context.Context, sessionID, code string, identity *auth.Identity) (*View, error)
	RemoveCoupon(ctx context.Context, sessionID string, identity *auth.Identity) (*View, error)
}

type service struct {
	store    SnapshotStore
	variants products.Repository
	coupons  coupons.Service
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(store SnapshotStore, variants products.Repository, couponSvc coupons.Service, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	return &service{
		store:    store,
		variants: variants,
		coupons:  couponSvc,
		logg:     logg,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string, identity *auth.Identity) (*View, error) {
	snap, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.revalidateCoupon(snap, identity) {
		if err := s.store.Save(ctx, sessionID, snap); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
		}
	}
	return s.view(sessionID, snap), nil
}

// AddLine merges by variant: an existing line has its quantity incremented,
// otherwise the line is appended. No stock check happens here.
func (s *service) AddLine(ctx context.Context, sessionID string, input LineInput, identity *auth.Identity) (*View, error) {
	if input.VariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if input.UnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	qty := input.Qty
	if qty < 1 {
		qty = 1
	}

	return s.mutate(ctx, sessionID, identity, func(snap *Snapshot) {
		for i := range snap.Lines {
			if snap.Lines[i].VariantID == input.VariantID {
				snap.Lines[i].Qty += qty
				return
			}
		}
		snap.Lines = append(snap.Lines, Line{
			VariantID:      input.VariantID,
			ProductID:      input.ProductID,
			SKU:            input.SKU,
			Title:          input.Title,
			VariantLabel:   input.VariantLabel,
			BrandName:      input.BrandName,
			UnitPriceCents: input.UnitPriceCents,
			Qty:            qty,
			ImageURL:       input.ImageURL,
			KnownStock:     input.KnownStock,
		})
	})
}

// RemoveLine drops the matching line; removing an absent variant is a no-op.
func (s *service) RemoveLine(ctx context.Context, sessionID string, variantID uuid.UUID, identity *auth.Identity) (*View, error) {
	return s.mutate(ctx, sessionID, identity, func(snap *Snapshot) {
		kept := snap.Lines[:0]
		for _, line := range snap.Lines {
			if line.VariantID != variantID {
				kept = append(kept, line)
			}
		}
		snap.Lines = kept
	})
}

// SetQuantity clamps to a floor of one; zero or negative input keeps a
// single unit rather than deleting the line.
func (s *service) SetQuantity(ctx context.Context, sessionID string, variantID uuid.UUID, qty int, identity *auth.Identity) (*View, error) {
	if qty < 1 {
		qty = 1
	}
	return s.mutate(ctx, sessionID, identity, func(snap *Snapshot) {
		for i := range snap.Lines {
			if snap.Lines[i].VariantID == variantID {
				snap.Lines[i].Qty = qty
				return
			}
		}
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Refresh overlays authoritative price/stock/title data onto matching
// lines. Lines whose variant disappeared from the store keep their cached
// values; callers detect staleness through KnownStock at checkout. Fetch
// failures degrade to the cached snapshot and are never surfaced.
func (s *service) Refresh(ctx context.Context, sessionID string, identity *auth.Identity) (*View, error) {
	snap, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		ids = append(ids, line.VariantID)
	}

	infos, err := s.variants.FindByIDs(ctx, ids)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart refresh fetch failed, serving stale snapshot", err)
		}
		return s.view(sessionID, snap), nil
	}

	byID := make(map[uuid.UUID]products.VariantInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	for i := range snap.Lines {
		info, ok := byID[snap.Lines[i].VariantID]
		if !ok {
			continue
		}
		snap.Lines[i].UnitPriceCents = info.PriceCents
		snap.Lines[i].KnownStock = info.StockQty
		snap.Lines[i].SKU = info.SKU
		snap.Lines[i].Title = info.Title
		snap.Lines[i].VariantLabel = info.VariantLabel
		snap.Lines[i].BrandName = info.BrandName
		if info.ImageURL != "" {
			snap.Lines[i].ImageURL = info.ImageURL
		}
	}

	s.revalidateCoupon(snap, identity)

	if err := s.store.Save(ctx, sessionID, snap); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return s.view(sessionID, snap), nil
}

// ApplyCoupon validates the code against the current subtotal and attaches
// it to the cart.
func (s *service) ApplyCoupon(ctx context.Context, sessionID, code string, identity *auth.Identity) (*View, error) {
	snap, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	applied, err := s.coupons.Apply(ctx, strings.ToUpper(strings.TrimSpace(code)), subtotal(snap), identity)
	if err != nil {
		return nil, err
	}

	snap.Coupon = applied
	if err := s.store.Save(ctx, sessionID, snap); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return s.view(sessionID, snap), nil
}

func (s *service) RemoveCoupon(ctx context.Context, sessionID string, identity *auth.Identity) (*View, error) {
	return s.mutate(ctx, sessionID, identity, func(snap *Snapshot) {
		snap.Coupon = nil
	})
}

func (s *service) mutate(ctx context.Context, sessionID string, identity *auth.Identity, apply func(*Snapshot)) (*View, error) {
	snap, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	apply(snap)
	s.revalidateCoupon(snap, identity)

	if err := s.store.Save(ctx, sessionID, snap); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return s.view(sessionID, snap), nil
}

func (s *service) load(ctx context.Context, sessionID string) (*Snapshot, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	snap, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if snap == nil {
		snap = &Snapshot{SchemaVersion: SnapshotVersion}
	}
	return snap, nil
}

// revalidateCoupon drops a coupon the current subtotal or identity no
// longer qualifies for. Returns true when the snapshot changed.
func (s *service) revalidateCoupon(snap *Snapshot, identity *auth.Identity) bool {
	if snap.Coupon == nil {
		return false
	}
	if s.coupons.Revalidate(snap.Coupon, subtotal(snap), identity) {
		return false
	}
	snap.Coupon = nil
	return true
}

func (s *service) view(sessionID string, snap *Snapshot) *View {
	sub := subtotal(snap)
	discount := 0
	if snap.Coupon != nil {
		discount = coupons.Discount(snap.Coupon.Rule(), sub)
	}
	return &View{
		SessionID:       sessionID,
		Lines:           snap.Lines,
		Coupon:          snap.Coupon,
		SubtotalCents:   sub,
		DiscountCents:   discount,
		GrandTotalCents: sub - discount,
	}
}

func subtotal(snap *Snapshot) int {
	total := 0
	for _, line := range snap.Lines {
		total += line.UnitPriceCents * line.Qty
	}
	return total
}
