package controllers

import (
	"net/http"

	"github.com/chronovashop/chronova-backend/api/middleware"
	"github.com/chronovashop/chronova-backend/api/responses"
	"github.com/chronovashop/chronova-backend/api/validators"
	cartsvc "github.com/chronovashop/chronova-backend/internal/cart"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

type applyCouponRequest struct {
	Code string `json:"code" validate:"required,min=2,max=64"`
}

// CouponApply validates the code against the cart's subtotal and attaches
// it. Rejections come back as typed reasons the storefront can message.
func CouponApply(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		view, err := svc.ApplyCoupon(r.Context(), sessionID, payload.Code, middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CouponRemove detaches the applied coupon, if any.
func CouponRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		view, err := svc.RemoveCoupon(r.Context(), sessionID, middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
