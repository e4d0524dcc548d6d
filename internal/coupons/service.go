package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/auth"
	"github.com/chronovashop/chronova-backend/pkg/db/models"
	"github.com/chronovashop/chronova-backend/pkg/enums"
	pkgerrors "github.com/chronovashop/chronova-backend/pkg/errors"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

// Applied is the coupon snapshot a cart carries once a code is accepted.
// Entitlements ride along so later re-validation can run without a re-fetch.
type Applied struct {
	ID               string     `json:"id"`
	Code             string     `json:"code"`
	DiscountType     string     `json:"discount_type"`
	AmountCents      int        `json:"amount_cents"`
	MinSubtotalCents int        `json:"min_subtotal_cents"`
	MaxDiscountCents *int       `json:"max_discount_cents,omitempty"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	IsActive         bool       `json:"is_active"`
	Entitlements     []string   `json:"entitlements,omitempty"`
}

// Rule converts the snapshot into the pure discount computation input.
func (a *Applied) Rule() DiscountRule {
	return DiscountRule{
		Type:             enums.DiscountType(a.DiscountType),
		AmountCents:      a.AmountCents,
		MaxDiscountCents: a.MaxDiscountCents,
	}
}

// Service validates coupon codes against subtotal, time window and account
// entitlement rules.
type Service interface {
	Apply(ctx context.Context, code string, subtotalCents int, identity *auth.Identity) (*Applied, error)
	Revalidate(applied *Applied, subtotalCents int, identity *auth.Identity) bool
	VerifyForCheckout(ctx context.Context, code string, subtotalCents int, identity *auth.Identity) (int, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a coupon service backed by the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Apply fetches the coupon by code and runs the full admissibility rule set.
// Failures carry a distinct reason so the storefront can message each case.
func (s *service) Apply(ctx context.Context, code string, subtotalCents int, identity *auth.Identity) (*Applied, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
				WithReason(pkgerrors.ReasonCouponNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	applied := toApplied(coupon)
	if err := s.admissible(applied, subtotalCents, identity); err != nil {
		return nil, err
	}
	return applied, nil
}

// Revalidate re-runs the minimum-subtotal and entitlement checks against the
// current state. A false result means the caller should drop the coupon
// silently; the user just loses the discount.
func (s *service) Revalidate(applied *Applied, subtotalCents int, identity *auth.Identity) bool {
	if applied == nil {
		return false
	}
	if subtotalCents < applied.MinSubtotalCents {
		return false
	}
	return entitled(applied.Entitlements, identity)
}

// VerifyForCheckout re-fetches the coupon row by code so that deactivation
// between apply-time and checkout-time is honored, then returns the discount
// computed from the authoritative row. Any rule failure returns a typed
// error; the checkout degrades by dropping the coupon.
func (s *service) VerifyForCheckout(ctx context.Context, code string, subtotalCents int, identity *auth.Identity) (int, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
				WithReason(pkgerrors.ReasonCouponNotFound)
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	applied := toApplied(coupon)
	if err := s.admissible(applied, subtotalCents, identity); err != nil {
		return 0, err
	}

	return Discount(DiscountRule{
		Type:             coupon.DiscountType,
		AmountCents:      coupon.AmountCents,
		MaxDiscountCents: coupon.MaxDiscountCents,
	}, subtotalCents), nil
}

func (s *service) admissible(applied *Applied, subtotalCents int, identity *auth.Identity) error {
	now := s.now()

	if !applied.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon is inactive").
			WithReason(pkgerrors.ReasonCouponInactive)
	}
	if applied.StartsAt != nil && now.Before(*applied.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active yet").
			WithReason(pkgerrors.ReasonCouponNotStarted)
	}
	if applied.EndsAt != nil && now.After(*applied.EndsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired").
			WithReason(pkgerrors.ReasonCouponExpired)
	}
	if subtotalCents < applied.MinSubtotalCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "order subtotal is below the coupon minimum").
			WithReason(pkgerrors.ReasonCouponBelowMinimum).
			WithDetails(map[string]any{"min_subtotal_cents": applied.MinSubtotalCents})
	}
	if len(applied.Entitlements) > 0 {
		if identity == nil || identity.Email == "" {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "coupon requires a signed-in account").
				WithReason(pkgerrors.ReasonCouponNeedsLogin)
		}
		if !entitled(applied.Entitlements, identity) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "coupon is not available for this account").
				WithReason(pkgerrors.ReasonCouponNotEntitled)
		}
	}
	return nil
}

func entitled(entitlements []string, identity *auth.Identity) bool {
	if len(entitlements) == 0 {
		return true
	}
	if identity == nil || identity.Email == "" {
		return false
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	for _, allowed := range entitlements {
		if strings.ToLower(strings.TrimSpace(allowed)) == email {
			return true
		}
	}
	return false
}

func toApplied(coupon *models.Coupon) *Applied {
	applied := &Applied{
		ID:               coupon.ID.String(),
		Code:             coupon.Code,
		DiscountType:     string(coupon.DiscountType),
		AmountCents:      coupon.AmountCents,
		MinSubtotalCents: coupon.MinSubtotalCents,
		MaxDiscountCents: coupon.MaxDiscountCents,
		StartsAt:         coupon.StartsAt,
		EndsAt:           coupon.EndsAt,
		IsActive:         coupon.IsActive,
	}
	for _, ent := range coupon.Entitlements {
		applied.Entitlements = append(applied.Entitlements, strings.ToLower(strings.TrimSpace(ent.Email)))
	}
	return applied
}
