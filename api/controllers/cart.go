package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chronovashop/chronova-backend/api/middleware"
	"github.com/chronovashop/chronova-backend/api/responses"
	"github.com/chronovashop/chronova-backend/api/validators"
	cartsvc "github.com/chronovashop/chronova-backend/internal/cart"
	pkgerrors "github.com/chronovashop/chronova-backend/pkg/errors"
	"github.com/chronovashop/chronova-backend/pkg/logger"
)

type addLineRequest struct {
	VariantID      uuid.UUID `json:"variant_id" validate:"required"`
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	SKU            string    `json:"sku" validate:"required"`
	Title          string    `json:"title" validate:"required"`
	VariantLabel   string    `json:"variant_label,omitempty"`
	BrandName      string    `json:"brand_name,omitempty"`
	UnitPriceCents int       `json:"unit_price_cents" validate:"required,min=1"`
	Qty            int       `json:"qty" validate:"min=0"`
	ImageURL       string    `json:"image_url,omitempty"`
	KnownStock     int       `json:"known_stock,omitempty" validate:"min=0"`
}

type setQuantityRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

// CartGet returns the cart view for the caller's session.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		view, err := svc.Get(r.Context(), sessionID, middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddLine adds a variant to the cart, merging quantity when the
// variant is already present.
func CartAddLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		view, err := svc.AddLine(r.Context(), sessionID, cartsvc.LineInput{
			VariantID:      payload.VariantID,
			ProductID:      payload.ProductID,
			SKU:            payload.SKU,
			Title:          payload.Title,
			VariantLabel:   payload.VariantLabel,
			BrandName:      payload.BrandName,
			UnitPriceCents: payload.UnitPriceCents,
			Qty:            payload.Qty,
			ImageURL:       payload.ImageURL,
			KnownStock:     payload.KnownStock,
		}, middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartSetQuantity replaces the quantity of one line.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := parseVariantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		view, err := svc.SetQuantity(r.Context(), sessionID, variantID, payload.Qty, middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveLine drops one variant from the cart.
func CartRemoveLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := parseVariantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		view, err := svc.RemoveLine(r.Context(), sessionID, variantID, middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// CartRefresh overlays authoritative price and stock onto the cached lines.
func CartRefresh(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		view, err := svc.Refresh(r.Context(), sessionID, middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func parseVariantID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "variantID")
	variantID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id")
	}
	return variantID, nil
}
