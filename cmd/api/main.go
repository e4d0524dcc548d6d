package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chronovashop/chronova-backend/api/routes"
	"github.com/chronovashop/chronova-backend/internal/addresses"
	cartsvc "github.com/chronovashop/chronova-backend/internal/cart"
	checkoutsvc "github.com/chronovashop/chronova-backend/internal/checkout"
	couponsvc "github.com/chronovashop/chronova-backend/internal/coupons"
	"github.com/chronovashop/chronova-backend/internal/orders"
	"github.com/chronovashop/chronova-backend/internal/products"
	shippingsvc "github.com/chronovashop/chronova-backend/internal/shipping"
	"github.com/chronovashop/chronova-backend/pkg/config"
	"github.com/chronovashop/chronova-backend/pkg/db"
	"github.com/chronovashop/chronova-backend/pkg/logger"
	"github.com/chronovashop/chronova-backend/pkg/metrics"
	"github.com/chronovashop/chronova-backend/pkg/migrate"
	"github.com/chronovashop/chronova-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	variantsRepo := products.NewRepository(dbClient.DB())
	couponsRepo := couponsvc.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	addressesRepo := addresses.NewRepository(dbClient.DB())

	couponService, err := couponsvc.NewService(couponsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	shippingResolver, err := shippingsvc.NewResolver(shippingsvc.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping resolver", err)
		os.Exit(1)
	}

	cartStore, err := cartsvc.NewRedisStore(redisClient, cfg.Cart.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartStore, variantsRepo, couponService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	submitGuard, err := checkoutsvc.NewSubmitGuard(redisClient, cfg.Checkout.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create submit guard", err)
		os.Exit(1)
	}
	orderNumbers, err := checkoutsvc.NewOrderNumberSource(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order number source", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:        cartService,
		Variants:     variantsRepo,
		Coupons:      couponService,
		Shipping:     shippingResolver,
		Orders:       ordersRepo,
		Addresses:    addressesRepo,
		Stock:        checkoutsvc.NewStockDecrementer(dbClient.DB(), logg),
		Guard:        submitGuard,
		OrderNumbers: orderNumbers,
		Metrics:      checkoutMetrics,
		Logger:       logg,
		Timeout:      cfg.Checkout.Timeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			cartService,
			checkoutService,
			shippingResolver,
			ordersRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
