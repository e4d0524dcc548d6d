package controllers

import (
	"net/http"
	"strings"

	"github.com/chronovashop/chronova-backend/api/responses"
	"github.com/chronovashop/chronova-backend/api/validators"
	shippingsvc "github.com/chronovashop/chronova-backend/internal/shipping"
	pkgerrors "github.com/chronovashop/chronova-backend/pkg/errors"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

const maxQuoteSubtotalCents = 1_000_000_000

// ShippingQuote prices delivery for a division and subtotal without
// touching the cart.
func ShippingQuote(resolver shippingsvc.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		division := strings.TrimSpace(r.URL.Query().Get("division"))
		if division == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "division is required").
					WithDetails(map[string]any{"field": "division"}))
			return
		}

		subtotal, err := validators.ParseQueryInt(r, "subtotal", 0, 0, maxQuoteSubtotalCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := resolver.Resolve(r.Context(), division, subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
