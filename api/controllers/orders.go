package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chronovashop/chronova-backend/api/responses"
	orderssvc "github.com/chronovashop/chronova-backend/internal/orders"
	"github.com/chronovashop/chronova-backend/pkg/db/models"
	pkgerrors "github.com/chronovashop/chronova-backend/pkg/errors"
	"github.com/chronovashop/chronova-backend/pkg/logger"
	"github.com/chronovashop/chronova-backend/pkg/money"
)

type orderItemView struct {
	VariantID      uuid.UUID `json:"variant_id"`
	SKU            string    `json:"sku"`
	Title          string    `json:"title"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Qty            int       `json:"qty"`
	LineTotalCents int       `json:"line_total_cents"`
}

type orderView struct {
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	PaymentMethod  string          `json:"payment_method"`
	CustomerName   string          `json:"customer_name"`
	Division       string          `json:"division"`
	City           string          `json:"city"`
	Area           string          `json:"area,omitempty"`
	AddressLine    string          `json:"address_line"`
	Items          []orderItemView `json:"items"`
	SubtotalCents  int             `json:"subtotal_cents"`
	ShippingCents  int             `json:"shipping_cents"`
	DiscountCents  int             `json:"discount_cents"`
	TotalCents     int             `json:"total_cents"`
	TotalFormatted string          `json:"total_formatted"`
	PlacedAt       time.Time       `json:"placed_at"`
}

// OrderByNumber returns the public confirmation view of a placed order.
func OrderByNumber(repo orderssvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderNumber := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		order, err := repo.FindByNumber(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderView(order))
	}
}

func newOrderView(order *models.Order) orderView {
	items := make([]orderItemView, len(order.Items))
	for i, item := range order.Items {
		items[i] = orderItemView{
			VariantID:      item.VariantID,
			SKU:            item.SKU,
			Title:          item.Title,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			LineTotalCents: item.LineTotalCents,
		}
	}
	return orderView{
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		PaymentMethod:  string(order.PaymentMethod),
		CustomerName:   order.CustomerName,
		Division:       order.Division,
		City:           order.City,
		Area:           order.Area,
		AddressLine:    order.AddressLine,
		Items:          items,
		SubtotalCents:  order.SubtotalCents,
		ShippingCents:  order.ShippingCents,
		DiscountCents:  order.DiscountCents,
		TotalCents:     order.TotalCents,
		TotalFormatted: money.FormatBDT(order.TotalCents),
		PlacedAt:       order.CreatedAt,
	}
}
