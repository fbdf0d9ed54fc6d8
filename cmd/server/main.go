package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/address"
	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/clock"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/event"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/offer"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/store"
	"storefront-be/internal/transport"
	"storefront-be/internal/user"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()

	sqlDB := initDBFunc(cfg)
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter()
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, sqlDB, limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- startServerFunc(srv) }()
	logger.L().Info("server listening", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServer(cfg *config.Config, sqlDB *sql.DB, limiter *middleware.RateLimiter) http.Handler {
	clk := clock.NewSystem()
	txm := db.NewTxManager(sqlDB, cfg.DBLockTimeout)
	events := event.NewEmitter(event.NewRecorder(sqlDB), 0)
	registry := metrics.NewRegistry()
	tokens := auth.NewTokens(cfg.JWTSecret, 0)

	ledger := inventory.NewLedger(sqlDB, txm)

	userSvc := user.NewService(user.NewRepository(sqlDB), tokens)
	productSvc := product.NewService(product.NewRepository(sqlDB), txm)

	cartSvc := cart.NewService(cart.NewRepository(sqlDB), txm, events)
	addressSvc := address.NewService(address.NewRepository(sqlDB), txm)

	storeRepo := store.NewRepository(sqlDB)
	storeSvc := store.NewService(storeRepo, txm)
	locator := store.NewLocator(storeRepo, clk, cfg.Location())

	offerSvc := offer.NewService(offer.NewRepository(sqlDB), clk)

	orderRepo := order.NewRepository(sqlDB)
	orderSvc := order.NewService(orderRepo, ledger, txm, events, clk)

	checkoutSvc := checkout.NewService(checkout.Deps{
		Carts:     cartSvc,
		Addresses: addressSvc,
		Stores:    locator,
		Offers:    offerSvc,
		Ledger:    ledger,
		Orders:    orderRepo,
		Tx:        txm,
		Events:    events,
		Metrics:   registry,
	}, checkout.Options{PickupAutoResolve: cfg.PickupAutoResolve})

	return transport.NewRouter(transport.Services{
		Carts:          cartSvc,
		Addresses:      addressSvc,
		Checkout:       checkoutSvc,
		Orders:         orderSvc,
		Offers:         offerSvc,
		Stores:         storeSvc,
		Ledger:         ledger,
		Users:          userSvc,
		Products:       productSvc,
		DB:             sqlDB,
		Tokens:         tokens,
		Limiter:        limiter,
		Metrics:        registry,
		InternalSecret: cfg.InternalSecretKey,
	})
}
