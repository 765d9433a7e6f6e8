package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/gebeyalink/storefront/api/controllers"
	"github.com/gebeyalink/storefront/api/routes"
	"github.com/gebeyalink/storefront/internal/cart"
	"github.com/gebeyalink/storefront/internal/checkout"
	"github.com/gebeyalink/storefront/internal/marketplace"
	"github.com/gebeyalink/storefront/internal/payments"
	"github.com/gebeyalink/storefront/internal/preferences"
	"github.com/gebeyalink/storefront/pkg/analytics"
	"github.com/gebeyalink/storefront/pkg/config"
	"github.com/gebeyalink/storefront/pkg/db"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/metrics"
	"github.com/gebeyalink/storefront/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	publisher := analytics.NewPublisher(cfg.Kafka, logg)

	marketClient, err := marketplace.NewClient(cfg.Upstream, logg)
	requireResource(ctx, logg, "marketplace client", err)

	var (
		cartStore cart.Store
		prefStore preferences.Store
		pinger    controllers.Pinger
		closers   []func() error
	)
	switch cfg.Store.Backend {
	case config.StoreBackendSQL:
		dbClient, err := db.New(ctx, cfg.Store, logg)
		requireResource(ctx, logg, "session database", err)
		closers = append(closers, dbClient.Close)

		sqlCarts, err := cart.NewSQLStore(dbClient, logg)
		requireResource(ctx, logg, "cart store", err)
		sqlPrefs, err := preferences.NewSQLStore(dbClient)
		requireResource(ctx, logg, "preference store", err)
		if cfg.Store.AutoMigrate {
			requireResource(ctx, logg, "cart store migration", sqlCarts.Migrate())
			requireResource(ctx, logg, "preference store migration", sqlPrefs.Migrate())
		}
		cartStore, prefStore, pinger = sqlCarts, sqlPrefs, dbClient
	default:
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		closers = append(closers, redisClient.Close)

		redisCarts, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL, logg)
		requireResource(ctx, logg, "cart store", err)
		redisPrefs, err := preferences.NewRedisStore(redisClient, cfg.Cart.TTL)
		requireResource(ctx, logg, "preference store", err)
		cartStore, prefStore, pinger = redisCarts, redisPrefs, redisClient
	}
	closers = append(closers, publisher.Close)

	cartService, err := cart.NewService(cartStore, marketClient, cfg.Cart.PlaceholderImageURL, logg, storeMetrics)
	requireResource(ctx, logg, "cart service", err)

	sessions := checkout.NewManager()
	checkoutService, err := checkout.NewService(sessions, cartService, marketClient, logg, storeMetrics, publisher)
	requireResource(ctx, logg, "checkout service", err)

	paymentDispatcher, err := payments.NewDispatcher(sessions, cartService, marketClient, logg, storeMetrics, publisher)
	requireResource(ctx, logg, "payment dispatcher", err)

	preferenceService, err := preferences.NewService(prefStore, logg)
	requireResource(ctx, logg, "preference service", err)

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Cart:        cartService,
		Checkout:    checkoutService,
		Payments:    paymentDispatcher,
		Preferences: preferenceService,
		Health: map[string]controllers.Pinger{
			"store":       pinger,
			"marketplace": marketClient,
		},
		Metrics:    storeMetrics,
		MetricsReg: registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.HTTP.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Store.Backend,
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(runCtx, "starting storefront api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "storefront api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(runCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(runCtx, "graceful shutdown failed", err)
	}

	var closeErr error
	for _, closeFn := range closers {
		closeErr = multierr.Append(closeErr, closeFn())
	}
	if closeErr != nil {
		logg.Error(runCtx, "error closing resources", closeErr)
		os.Exit(1)
	}
	logg.Info(runCtx, "storefront api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
