package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chronovashop/chronova-backend/api/controllers"
	"github.com/chronovashop/chronova-backend/api/middleware"
	cartsvc "github.com/chronovashop/chronova-backend/internal/cart"
	checkoutsvc "github.com/chronovashop/chronova-backend/internal/checkout"
	"github.com/chronovashop/chronova-backend/internal/orders"
	shippingsvc "github.com/chronovashop/chronova-backend/internal/shipping"
	"github.com/chronovashop/chronova-backend/pkg/config"
	"github.com/chronovashop/chronova-backend/pkg/db"
	"github.com/chronovashop/chronova-backend/pkg/logger"
	"github.com/chronovashop/chronova-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: health probes, metrics, and the
// storefront cart/checkout API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	shippingResolver shippingsvc.Resolver,
	ordersRepo orders.Repository,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.OptionalIdentity(cfg.JWT, logg),
			middleware.CartSession(logg),
		)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddLine(cartService, logg))
			r.Patch("/items/{variantID}", controllers.CartSetQuantity(cartService, logg))
			r.Delete("/items/{variantID}", controllers.CartRemoveLine(cartService, logg))
			r.Post("/refresh", controllers.CartRefresh(cartService, logg))
			r.Post("/coupon", controllers.CouponApply(cartService, logg))
			r.Delete("/coupon", controllers.CouponRemove(cartService, logg))
		})

		r.Get("/shipping/quote", controllers.ShippingQuote(shippingResolver, logg))
		r.Post("/checkout", controllers.CheckoutPlaceOrder(checkoutService, logg))
		r.Get("/orders/{orderNumber}", controllers.OrderByNumber(ordersRepo, logg))
	})

	return r
}
