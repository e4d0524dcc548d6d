package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
)

type stubCartService struct {
	view    *cart.View
	getErr  error
	cleared int
}

func (s *stubCartService) Get(ctx context.Context, sessionID string, identity *auth.Identity) (*cart.View, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.view, nil
}

func (s *stubCartService) AddLine(ctx context.Context, sessionID string, input cart.LineInput, identity *auth.Identity) (*cart.View, error) {
	return s.view, nil
}

func (s *stubCartService) RemoveLine(ctx context.Context, sessionID string, variantID uuid.UUID, identity *auth.Identity) (*cart.View, error) {
	return s.view, nil
}

func (s *stubCartService) SetQuantity(ctx context.Context, sessionID string, variantID uuid.UUID, qty int, identity *auth.Identity) (*cart.View, error) {
	return s.view, nil
}

func (s *stubCartService) Clear(ctx context.Context, sessionID string) error {
	s.cleared++
	return nil
}

func (s *stubCartService) Refresh(ctx context.Context, sessionID string, identity *auth.Identity) (*cart.View, error) {
	return s.view, nil
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, sessionID, code string, identity *auth.Identity) (*cart.View, error) {
	return s.view, nil
}

func (s *stubCartService) RemoveCoupon(ctx context.Context, sessionID string, identity *auth.Identity) (*cart.View, error) {
	return s.view, nil
}

type stubVariants struct {
	infos []products.VariantInfo
	err   error
}

func (s *stubVariants) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubVariants) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]products.VariantInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.infos, nil
}

type stubCoupons struct {
	discount  int
	verifyErr error
}

func (s *stubCoupons) Apply(ctx context.Context, code string, subtotalCents int, identity *auth.Identity) (*coupons.Applied, error) {
	return nil, errors.New("not used")
}

func (s *stubCoupons) Revalidate(applied *coupons.Applied, subtotalCents int, identity *auth.Identity) bool {
	return true
}

func (s *stubCoupons) VerifyForCheckout(ctx context.Context, code string, subtotalCents int, identity *auth.Identity) (int, error) {
	if s.verifyErr != nil {
		return 0, s.verifyErr
	}
	return s.discount, nil
}

type stubShipping struct {
	quote shipping.Quote
	err   error
}

func (s *stubShipping) Resolve(ctx context.Context, division string, subtotalCents int) (shipping.Quote, error) {
	return s.quote, s.err
}

type stubOrders struct {
	createdOrder *models.Order
	createdItems []models.OrderItem
	statusEvents []enums.OrderStatus
	shipments    int

	orderErr    error
	itemsErr    error
	eventErr    error
	shipmentErr error
}

func (s *stubOrders) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrders) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.orderErr != nil {
		return nil, s.orderErr
	}
	order.ID = uuid.New()
	s.createdOrder = order
	return order, nil
}

func (s *stubOrders) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if s.itemsErr != nil {
		return s.itemsErr
	}
	s.createdItems = items
	return nil
}

func (s *stubOrders) CreateStatusEvent(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, note string) error {
	if s.eventErr != nil {
		return s.eventErr
	}
	s.statusEvents = append(s.statusEvents, status)
	return nil
}

func (s *stubOrders) CreateShipmentPlaceholder(ctx context.Context, orderID uuid.UUID) error {
	if s.shipmentErr != nil {
		return s.shipmentErr
	}
	s.shipments++
	return nil
}

func (s *stubOrders) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.createdOrder, nil
}

type stubAddresses struct {
	upserts []addresses.UpsertInput
	err     error
}

func (s *stubAddresses) WithTx(tx *gorm.DB) addresses.Repository { return s }

func (s *stubAddresses) Upsert(ctx context.Context, customerID uuid.UUID, input addresses.UpsertInput) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, input)
	return nil
}

type stubStock struct {
	decrements map[uuid.UUID]int
	err        error
}

func (s *stubStock) Decrement(ctx context.Context, variantID uuid.UUID, qty int) error {
	if s.err != nil {
		return s.err
	}
	if s.decrements == nil {
		s.decrements = map[uuid.UUID]int{}
	}
	s.decrements[variantID] += qty
	return nil
}

type stubGuard struct {
	acquired bool
	busy     bool
	err      error
	releases int
}

func (s *stubGuard) Acquire(ctx context.Context, sessionID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.busy {
		return false, nil
	}
	s.acquired = true
	return true, nil
}

func (s *stubGuard) Release(ctx context.Context, sessionID string) error {
	s.releases++
	return nil
}

type stubOrderNumbers struct {
	number string
	err    error
}

func (s *stubOrderNumbers) Next(ctx context.Context, now time.Time) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.number, nil
}

type checkoutFixture struct {
	carts     *stubCartService
	variants  *stubVariants
	coupons   *stubCoupons
	shipping  *stubShipping
	orders    *stubOrders
	addresses *stubAddresses
	stock     *stubStock
	guard     *stubGuard
	svc       Service
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	variantA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	variantB := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	f := &checkoutFixture{
		carts: &stubCartService{
			view: &cart.View{
				SessionID: "s",
				Lines: []cart.Line{
					// cached prices are deliberately stale; the order must
					// use the verified store prices below
					{VariantID: variantA, SKU: "CV-ORION-42", Title: "Orion Diver 42mm", UnitPriceCents: 1000000, Qty: 2},
					{VariantID: variantB, SKU: "CV-MERID-38", Title: "Meridian Field 38mm", UnitPriceCents: 800000, Qty: 1},
				},
			},
		},
		variants: &stubVariants{
			infos: []products.VariantInfo{
				{ID: variantA, SKU: "CV-ORION-42", Title: "Orion Diver 42mm", PriceCents: 1250000, StockQty: 5, Active: true},
				{ID: variantB, SKU: "CV-MERID-38", Title: "Meridian Field 38mm", PriceCents: 800000, StockQty: 2, Active: true},
			},
		},
		coupons:   &stubCoupons{},
		shipping:  &stubShipping{quote: shipping.Quote{ZoneKey: "dhaka", ZoneName: "Inside Dhaka", FeeCents: 6000, EtaText: "1-2 days"}},
		orders:    &stubOrders{},
		addresses: &stubAddresses{},
		stock:     &stubStock{},
		guard:     &stubGuard{},
	}

	svc, err := NewService(ServiceParams{
		Carts:        f.carts,
		Variants:     f.variants,
		Coupons:      f.coupons,
		Shipping:     f.shipping,
		Orders:       f.orders,
		Addresses:    f.addresses,
		Stock:        f.stock,
		Guard:        f.guard,
		OrderNumbers: &stubOrderNumbers{number: "CH-260830-0001"},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		Name:        "Rahim Uddin",
		Phone:       "+880 17-1234-5678",
		Division:    "Dhaka",
		City:        "Dhaka",
		AddressLine: "House 12, Road 5, Dhanmondi",
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)

	confirmation, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if confirmation.OrderNumber != "CH-260830-0001" {
		t.Fatalf("order number = %q", confirmation.OrderNumber)
	}
	// verified prices: 2*1250000 + 1*800000, not the stale cart prices
	if confirmation.SubtotalCents != 3300000 {
		t.Fatalf("subtotal = %d, want 3300000", confirmation.SubtotalCents)
	}
	if confirmation.ShippingCents != 6000 {
		t.Fatalf("shipping = %d, want 6000", confirmation.ShippingCents)
	}
	if confirmation.TotalCents != 3306000 {
		t.Fatalf("total = %d, want 3306000", confirmation.TotalCents)
	}
	if confirmation.EtaText != "1-2 days" {
		t.Fatalf("eta = %q", confirmation.EtaText)
	}

	order := f.orders.createdOrder
	if order == nil {
		t.Fatal("order not persisted")
	}
	if order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %q, want confirmed", order.Status)
	}
	if order.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("payment method = %q, want cod", order.PaymentMethod)
	}
	if order.CustomerPhone != "01712345678" {
		t.Fatalf("phone = %q, want normalized local form", order.CustomerPhone)
	}

	if len(f.orders.createdItems) != 2 {
		t.Fatalf("items = %d, want 2", len(f.orders.createdItems))
	}
	for _, item := range f.orders.createdItems {
		if item.SKU == "CV-ORION-42" && item.UnitPriceCents != 1250000 {
			t.Fatalf("item priced from cart cache: %+v", item)
		}
	}

	if len(f.stock.decrements) != 2 {
		t.Fatalf("stock decrements = %v", f.stock.decrements)
	}
	if len(f.orders.statusEvents) != 1 || f.orders.statusEvents[0] != enums.OrderStatusConfirmed {
		t.Fatalf("status events = %v", f.orders.statusEvents)
	}
	if f.orders.shipments != 1 {
		t.Fatalf("shipments = %d, want 1", f.orders.shipments)
	}
	if f.carts.cleared != 1 {
		t.Fatalf("cart cleared %d times, want 1", f.carts.cleared)
	}
	if f.guard.releases != 1 {
		t.Fatalf("guard released %d times, want 1", f.guard.releases)
	}
}

func TestPlaceOrderFormValidationBeforeAnyStoreCall(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	input := validInput()
	input.Phone = "12345"
	input.Name = " "

	_, err := f.svc.PlaceOrder(context.Background(), "s", nil, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details = %#v", typed.Details())
	}
	if _, ok := details["phone"]; !ok {
		t.Fatalf("missing phone detail: %v", details)
	}
	if _, ok := details["name"]; !ok {
		t.Fatalf("missing name detail: %v", details)
	}

	if f.guard.acquired {
		t.Fatal("guard should not be touched before the form passes")
	}
	if f.orders.createdOrder != nil {
		t.Fatal("order written on invalid form")
	}
}

func TestPlaceOrderSingleFlight(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.guard.busy = true

	_, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if !pkgerrors.HasReason(err, pkgerrors.ReasonCheckoutInFlight) {
		t.Fatalf("expected checkout_in_progress, got %v", err)
	}
	if f.orders.createdOrder != nil {
		t.Fatal("order written while another checkout held the lock")
	}
	if f.guard.releases != 0 {
		t.Fatal("must not release a lock it never held")
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.carts.view = &cart.View{SessionID: "s"}

	_, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.guard.releases != 1 {
		t.Fatal("lock must be released on failure")
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.variants.infos[0].StockQty = 1 // cart wants 2

	_, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if !pkgerrors.HasReason(err, pkgerrors.ReasonInsufficientStock) {
		t.Fatalf("expected insufficient_stock, got %v", err)
	}
	typed := pkgerrors.As(err)
	if !strings.Contains(typed.Message(), "Orion Diver 42mm") {
		t.Fatalf("message should name the product: %q", typed.Message())
	}
	if f.orders.createdOrder != nil {
		t.Fatal("order written despite stock shortfall")
	}
	if f.carts.cleared != 0 {
		t.Fatal("cart must survive a failed checkout")
	}
}

func TestPlaceOrderInactiveProduct(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.variants.infos[1].Active = false

	_, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if !pkgerrors.HasReason(err, pkgerrors.ReasonProductUnavailable) {
		t.Fatalf("expected product_unavailable, got %v", err)
	}
}

func TestPlaceOrderVariantVanished(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.variants.infos = f.variants.infos[:1] // second line's variant is gone

	_, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if !pkgerrors.HasReason(err, pkgerrors.ReasonProductUnavailable) {
		t.Fatalf("expected product_unavailable, got %v", err)
	}
}

func TestPlaceOrderCouponApplied(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.carts.view.Coupon = &coupons.Applied{Code: "FLAT500", IsActive: true}
	f.coupons.discount = 50000

	confirmation, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if confirmation.DiscountCents != 50000 {
		t.Fatalf("discount = %d, want 50000", confirmation.DiscountCents)
	}
	if confirmation.TotalCents != 3300000+6000-50000 {
		t.Fatalf("total = %d", confirmation.TotalCents)
	}
	if f.orders.createdOrder.Notes == nil || !strings.Contains(*f.orders.createdOrder.Notes, "FLAT500") {
		t.Fatalf("coupon code missing from order notes: %v", f.orders.createdOrder.Notes)
	}
}

func TestPlaceOrderDropsCouponThatFailsReverification(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.carts.view.Coupon = &coupons.Applied{Code: "FLAT500", IsActive: true}
	f.coupons.verifyErr = pkgerrors.New(pkgerrors.CodeValidation, "coupon is inactive").
		WithReason(pkgerrors.ReasonCouponInactive)

	confirmation, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if err != nil {
		t.Fatalf("coupon failure must not abort checkout: %v", err)
	}
	if confirmation.DiscountCents != 0 {
		t.Fatalf("discount = %d, want coupon dropped", confirmation.DiscountCents)
	}
	if confirmation.TotalCents != 3306000 {
		t.Fatalf("total = %d, want full price", confirmation.TotalCents)
	}
}

func TestPlaceOrderSavesAddressForSignedInCustomer(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	identity := &auth.Identity{CustomerID: uuid.New(), Email: "rahim@example.com"}
	input := validInput()
	input.SaveAddress = true

	_, err := f.svc.PlaceOrder(context.Background(), "s", identity, input)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if len(f.addresses.upserts) != 1 {
		t.Fatalf("address upserts = %d, want 1", len(f.addresses.upserts))
	}
	if f.addresses.upserts[0].Phone != "01712345678" {
		t.Fatalf("saved phone = %q, want normalized", f.addresses.upserts[0].Phone)
	}

	order := f.orders.createdOrder
	if order.CustomerID == nil || *order.CustomerID != identity.CustomerID {
		t.Fatalf("order customer id = %v", order.CustomerID)
	}
}

func TestPlaceOrderGuestDoesNotSaveAddress(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	input := validInput()
	input.SaveAddress = true

	if _, err := f.svc.PlaceOrder(context.Background(), "s", nil, input); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if len(f.addresses.upserts) != 0 {
		t.Fatal("guest checkout must not write an address")
	}
}

func TestPlaceOrderSideRecordFailureDoesNotFailOrder(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.orders.eventErr = errors.New("events table locked")
	f.orders.shipmentErr = errors.New("shipments table locked")

	confirmation, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	if err != nil {
		t.Fatalf("side record failures must not fail the order: %v", err)
	}
	if confirmation.OrderNumber == "" {
		t.Fatal("confirmation missing")
	}
	if f.carts.cleared != 1 {
		t.Fatal("cart should still clear")
	}
}

func TestPlaceOrderItemsInsertFailure(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	f.orders.itemsErr = errors.New("insert failed")

	_, err := f.svc.PlaceOrder(context.Background(), "s", nil, validInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if f.carts.cleared != 0 {
		t.Fatal("cart must survive a partial failure")
	}
	if len(f.stock.decrements) != 0 {
		t.Fatal("stock must not decrement after items failed")
	}
}

func TestPlaceOrderOrderNumberFailure(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	svc, err := NewService(ServiceParams{
		Carts:        f.carts,
		Variants:     f.variants,
		Coupons:      f.coupons,
		Shipping:     f.shipping,
		Orders:       f.orders,
		Addresses:    f.addresses,
		Stock:        f.stock,
		Guard:        f.guard,
		OrderNumbers: &stubOrderNumbers{err: errors.New("redis down")},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), "s", nil, validInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if f.orders.createdOrder != nil {
		t.Fatal("order written without a number")
	}
}
