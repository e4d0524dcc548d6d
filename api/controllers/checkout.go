package controllers

import (
	"net/http"

	"github.com/chronovashop/chronova-backend/api/middleware"
	"github.com/chronovashop/chronova-backend/api/responses"
	"github.com/chronovashop/chronova-backend/api/validators"
	checkoutsvc "github.com/chronovashop/chronova-backend/internal/checkout"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

// CheckoutPlaceOrder runs the COD checkout sequence for the caller's cart.
func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutsvc.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		confirmation, err := svc.PlaceOrder(r.Context(), sessionID, middleware.IdentityFromContext(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}
