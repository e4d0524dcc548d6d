package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/chronovashop/chronova-backend/internal/addresses"
	"github.com/chronovashop/chronova-backend/internal/cart"
	"github.com/chronovashop/chronova-backend/internal/coupons"
	"github.com/chronovashop/chronova-backend/internal/orders"
	"github.com/chronovashop/chronova-backend/internal/products"
	"github.com/chronovashop/chronova-backend/internal/shipping"
	"github.com/chronovashop/chronova-backend/pkg/auth"
	"github.com/chronovashop/chronova-backend/pkg/db/models"
	"github.com/chronovashop/chronova-backend/pkg/enums"
	pkgerrors "github.com/chronovashop/chronova-backend/pkg/errors"
	"github.com/chronovashop/chronova-backend/pkg/logger"
	"github.com/chronovashop/chronova-backend/pkg/metrics"
	"github.com/chronovashop/chronova-backend/pkg/money"
)

const statusNoteCOD = "Order placed via COD"

// PlaceOrderInput is the checkout form payload.
type PlaceOrderInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Division    string `json:"division" validate:"required"`
	City        string `json:"city" validate:"required"`
	Area        string `json:"area,omitempty"`
	AddressLine string `json:"address_line" validate:"required,min=4"`
	Notes       string `json:"notes,omitempty"`
	SaveAddress bool   `json:"save_address,omitempty"`
}

// Confirmation is returned once the full sequence succeeds.
type Confirmation struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	SubtotalCents int       `json:"subtotal_cents"`
	ShippingCents int       `json:"shipping_cents"`
	DiscountCents int       `json:"discount_cents"`
	TotalCents    int       `json:"total_cents"`
	EtaText       string    `json:"eta_text,omitempty"`
}

// Service executes the place-order sequence: validate, re-verify stock and
// price against the store, re-verify the coupon, price, persist the order
// graph, decrement stock, record history, then clear the cart.
type Service interface {
	PlaceOrder(ctx context.Context, sessionID string, identity *auth.Identity, input PlaceOrderInput) (*Confirmation, error)
}

type service struct {
	carts        cart.Service
	variants     products.Repository
	coupons      coupons.Service
	shipping     shipping.Resolver
	orders       orders.Repository
	addresses    addresses.Repository
	stock        StockDecrementer
	guard        SubmitGuard
	orderNumbers OrderNumberSource
	metrics      *metrics.CheckoutMetrics
	logg         *logger.Logger
	timeout      time.Duration
	now          func() time.Time
}

// ServiceParams wires the checkout orchestrator.
type ServiceParams struct {
	Carts        cart.Service
	Variants     products.Repository
	Coupons      coupons.Service
	Shipping     shipping.Resolver
	Orders       orders.Repository
	Addresses    addresses.Repository
	Stock        StockDecrementer
	Guard        SubmitGuard
	OrderNumbers OrderNumberSource
	Metrics      *metrics.CheckoutMetrics
	Logger       *logger.Logger
	Timeout      time.Duration
}

// NewService builds the checkout service.
func NewService(p ServiceParams) (Service, error) {
	if p.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if p.Variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if p.Coupons == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if p.Shipping == nil {
		return nil, fmt.Errorf("shipping resolver required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Stock == nil {
		return nil, fmt.Errorf("stock decrementer required")
	}
	if p.Guard == nil {
		return nil, fmt.Errorf("submit guard required")
	}
	if p.OrderNumbers == nil {
		return nil, fmt.Errorf("order number source required")
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &service{
		carts:        p.Carts,
		variants:     p.Variants,
		coupons:      p.Coupons,
		shipping:     p.Shipping,
		orders:       p.Orders,
		addresses:    p.Addresses,
		stock:        p.Stock,
		guard:        p.Guard,
		orderNumbers: p.OrderNumbers,
		metrics:      p.Metrics,
		logg:         p.Logger,
		timeout:      timeout,
		now:          time.Now,
	}, nil
}

// PlaceOrder runs the checkout sequence once. Failures before the order row
// is written leave no trace and preserve the cart for retry. Writes after
// the order row are best-effort: there is no wrapping transaction, and a
// partial failure is logged for back-office reconciliation rather than
// rolled back.
func (s *service) PlaceOrder(ctx context.Context, sessionID string, identity *auth.Identity, input PlaceOrderInput) (*Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	phone, err := s.validateForm(&input)
	if err != nil {
		s.metrics.IncFailure("form_validation")
		return nil, err
	}
	input.Phone = phone

	acquired, err := s.guard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !acquired {
		s.metrics.IncFailure("single_flight")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress for this cart").
			WithReason(pkgerrors.ReasonCheckoutInFlight)
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), sessionID); err != nil && s.logg != nil {
			s.logg.Error(ctx, "releasing checkout lock", err)
		}
	}()

	view, err := s.carts.Get(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}
	if len(view.Lines) == 0 {
		s.metrics.IncFailure("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	verified, verifiedSubtotal, err := s.verifyStock(ctx, view.Lines)
	if err != nil {
		s.metrics.IncFailure("stock_verification")
		return nil, err
	}

	discount := s.verifyCoupon(ctx, view, verifiedSubtotal, identity)

	quote, err := s.shipping.Resolve(ctx, input.Division, verifiedSubtotal)
	if err != nil {
		s.metrics.IncFailure("shipping")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve shipping fee")
	}

	total := verifiedSubtotal + quote.FeeCents - discount

	confirmation, err := s.persistOrder(ctx, identity, input, view, verified, verifiedSubtotal, quote, discount, total)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "clearing cart after order placement", err)
	}

	s.metrics.IncPlaced()
	s.metrics.ObserveOrderValue(total)

	if s.logg != nil {
		lctx := s.logg.WithOrderNumber(ctx, confirmation.OrderNumber)
		lctx = s.logg.WithField(lctx, "total_cents", total)
		s.logg.Info(lctx, "order placed")
	}

	return confirmation, nil
}

// validateForm runs the local, synchronous checks. No store call happens
// before these pass.
func (s *service) validateForm(input *PlaceOrderInput) (string, error) {
	fields := map[string]string{}

	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "is required"
	}
	if strings.TrimSpace(input.Division) == "" {
		fields["division"] = "is required"
	}
	if strings.TrimSpace(input.City) == "" {
		fields["city"] = "is required"
	}
	if strings.TrimSpace(input.AddressLine) == "" {
		fields["address_line"] = "is required"
	}

	phone, err := money.NormalizePhone(input.Phone)
	if err != nil {
		fields["phone"] = err.Error()
	}

	if len(fields) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "checkout form is invalid").WithDetails(fields)
	}
	return phone, nil
}

type verifiedLine struct {
	info products.VariantInfo
	qty  int
}

// verifyStock fetches authoritative price and stock for every cart line.
// The returned subtotal comes from this fetch, never from the cart's cached
// prices; the cart cannot be trusted across the client boundary.
func (s *service) verifyStock(ctx context.Context, lines []cart.Line) ([]verifiedLine, int, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}

	infos, err := s.variants.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify stock")
	}
	byID := make(map[uuid.UUID]products.VariantInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	verified := make([]verifiedLine, 0, len(lines))
	subtotal := 0
	for _, line := range lines {
		info, ok := byID[line.VariantID]
		if !ok || !info.Active {
			return nil, 0, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%q is no longer available", line.Title)).
				WithReason(pkgerrors.ReasonProductUnavailable).
				WithDetails(map[string]any{"variant_id": line.VariantID, "title": line.Title})
		}
		if info.StockQty < line.Qty {
			return nil, 0, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("only %d of %q left in stock", info.StockQty, info.Title)).
				WithReason(pkgerrors.ReasonInsufficientStock).
				WithDetails(map[string]any{
					"variant_id": line.VariantID,
					"title":      info.Title,
					"requested":  line.Qty,
					"available":  info.StockQty,
				})
		}
		verified = append(verified, verifiedLine{info: info, qty: line.Qty})
		subtotal += info.PriceCents * line.Qty
	}
	return verified, subtotal, nil
}

// verifyCoupon recomputes the discount from the authoritative coupon row.
// Any failure drops the coupon and the order proceeds at full price.
func (s *service) verifyCoupon(ctx context.Context, view *cart.View, verifiedSubtotal int, identity *auth.Identity) int {
	if view.Coupon == nil {
		return 0
	}
	discount, err := s.coupons.VerifyForCheckout(ctx, view.Coupon.Code, verifiedSubtotal, identity)
	if err != nil {
		if s.logg != nil {
			lctx := s.logg.WithField(ctx, "coupon_code", view.Coupon.Code)
			s.logg.Warn(lctx, "coupon no longer valid at checkout, proceeding without discount")
		}
		return 0
	}
	return discount
}

func (s *service) persistOrder(
	ctx context.Context,
	identity *auth.Identity,
	input PlaceOrderInput,
	view *cart.View,
	verified []verifiedLine,
	subtotal int,
	quote shipping.Quote,
	discount, total int,
) (*Confirmation, error) {
	orderNumber, err := s.orderNumbers.Next(ctx, s.now())
	if err != nil {
		s.metrics.IncFailure("order_number")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint order number")
	}

	order := &models.Order{
		OrderNumber:   orderNumber,
		CustomerName:  strings.TrimSpace(input.Name),
		CustomerPhone: input.Phone,
		Division:      strings.TrimSpace(input.Division),
		City:          strings.TrimSpace(input.City),
		Area:          strings.TrimSpace(input.Area),
		AddressLine:   strings.TrimSpace(input.AddressLine),
		Status:        enums.OrderStatusConfirmed,
		PaymentMethod: enums.PaymentMethodCOD,
		SubtotalCents: subtotal,
		ShippingCents: quote.FeeCents,
		DiscountCents: discount,
		TotalCents:    total,
	}
	if identity != nil {
		order.CustomerID = &identity.CustomerID
		if identity.Email != "" {
			email := identity.Email
			order.CustomerEmail = &email
		}
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		order.CustomerEmail = &email
	}
	if notes := buildNotes(input.Notes, view); notes != "" {
		order.Notes = &notes
	}

	// From here on there is no wrapping transaction: the backing store
	// offers no cross-table atomicity for this sequence.
	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.metrics.IncFailure("order_insert")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	items := make([]models.OrderItem, 0, len(verified))
	for _, v := range verified {
		items = append(items, models.OrderItem{
			OrderID:        created.ID,
			VariantID:      v.info.ID,
			SKU:            v.info.SKU,
			Title:          v.info.Title,
			UnitPriceCents: v.info.PriceCents,
			Qty:            v.qty,
			LineTotalCents: v.info.PriceCents * v.qty,
		})
	}
	if err := s.orders.CreateItems(ctx, items); err != nil {
		s.metrics.IncFailure("items_insert")
		s.logPartialFailure(ctx, created, "order items insert failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order could not be completed")
	}

	for _, v := range verified {
		if err := s.stock.Decrement(ctx, v.info.ID, v.qty); err != nil {
			s.metrics.IncFailure("stock_decrement")
			s.logPartialFailure(ctx, created, "stock decrement failed", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order could not be completed")
		}
	}

	s.writeSideRecords(ctx, created, identity, input)

	return &Confirmation{
		OrderID:       created.ID,
		OrderNumber:   created.OrderNumber,
		SubtotalCents: subtotal,
		ShippingCents: quote.FeeCents,
		DiscountCents: discount,
		TotalCents:    total,
		EtaText:       quote.EtaText,
	}, nil
}

// writeSideRecords appends the initial status history entry, the shipment
// placeholder and the optional saved address. These are auxiliary rows: a
// failure is logged for reconciliation but does not fail the placed order.
func (s *service) writeSideRecords(ctx context.Context, order *models.Order, identity *auth.Identity, input PlaceOrderInput) {
	var errs error

	if err := s.orders.CreateStatusEvent(ctx, order.ID, enums.OrderStatusConfirmed, statusNoteCOD); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("status event: %w", err))
	}
	if err := s.orders.CreateShipmentPlaceholder(ctx, order.ID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("shipment placeholder: %w", err))
	}
	if input.SaveAddress && identity != nil && s.addresses != nil {
		err := s.addresses.Upsert(ctx, identity.CustomerID, addresses.UpsertInput{
			Name:        strings.TrimSpace(input.Name),
			Phone:       input.Phone,
			Division:    strings.TrimSpace(input.Division),
			City:        strings.TrimSpace(input.City),
			Area:        strings.TrimSpace(input.Area),
			AddressLine: strings.TrimSpace(input.AddressLine),
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("saved address: %w", err))
		}
	}

	if errs != nil {
		s.logPartialFailure(ctx, order, "order side records incomplete", errs)
	}
}

func (s *service) logPartialFailure(ctx context.Context, order *models.Order, msg string, err error) {
	if s.logg == nil {
		return
	}
	lctx := s.logg.WithOrderNumber(ctx, order.OrderNumber)
	lctx = s.logg.WithField(lctx, "order_id", order.ID.String())
	s.logg.Error(lctx, "checkout.partial_failure: "+msg, err)
}

// buildNotes captures customer notes plus the applied coupon code for
// audit, since the order row has no structured coupon column.
func buildNotes(notes string, view *cart.View) string {
	parts := []string{}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		parts = append(parts, trimmed)
	}
	if view.Coupon != nil {
		parts = append(parts, "coupon: "+view.Coupon.Code)
	}
	return strings.Join(parts, " | ")
}
