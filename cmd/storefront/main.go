package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer store.Close()
	log.Info("cart storage ready", zap.String("driver", cfg.Storage.Driver))

	products, err := catalog.Open(cfg.Catalog.Path, log)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer products.Close()

	feed := notify.NewFeed(0, cfg.Cart.NotificationRetention)
	notifier := notify.Fanout{notify.NewLogSink(log), feed}

	carts := cart.NewRegistry(cart.Deps{
		Storage:      store,
		Rules:        cfg.PricingRules(),
		Notifier:     notifier,
		Logger:       log,
		PromoLatency: cfg.Cart.PromoLatency,
	}, cart.RegistryConfig{
		IdleTTL:         cfg.Cart.IdleTTL,
		CleanupInterval: cfg.Cart.CleanupInterval,
	})
	defer carts.Close()

	book := orders.NewBook()
	publisher := orders.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Checkout.Currency, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close kafka writer", zap.Error(err))
		}
	}()
	if publisher.Enabled() {
		log.Info("publishing order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	manager, err := checkout.NewManager(
		func(ctx context.Context, owner string) (checkout.Cart, error) {
			s, err := carts.Get(ctx, owner)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		identity.ContextProvider{},
		checkout.ManagerConfig{
			SessionTTL:      cfg.Checkout.SessionTTL,
			CleanupInterval: cfg.Checkout.CleanupInterval,
		},
		checkout.Deps{
			Gateway:        newGateway(cfg, log),
			Orders:         orders.NewRecorder(book, publisher, log),
			Notifier:       notifier,
			Logger:         log,
			PaymentTimeout: cfg.Checkout.PaymentTimeout,
			Currency:       cfg.Checkout.Currency,
		},
	)
	if err != nil {
		return err
	}
	defer manager.Close()

	router := h.NewRouter(h.RouterDeps{
		Carts:              carts,
		Catalog:            products,
		Checkout:           manager,
		Orders:             book,
		Feed:               feed,
		Users:              identity.DefaultDirectory(),
		RequestTimeout:     cfg.Server.RequestTimeout,
		MaxRequestBodySize: cfg.Server.MaxRequestBodySize,
		AccessLog:          true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", zap.String("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down server", zap.Stringer("signal", sig))
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func newGateway(cfg *config.Config, log *zap.Logger) payment.Gateway {
	var gw payment.Gateway
	switch cfg.Payment.Gateway {
	case config.GatewayApprove:
		gw = payment.NewStaticGateway(true)
	case config.GatewayDecline:
		gw = payment.NewStaticGateway(false)
	default:
		gw = payment.NewSimulatedGateway(cfg.Payment.Latency, cfg.Payment.SuccessRate, payment.WithLogger(log))
	}
	return payment.NewBreakerGateway(gw, cfg.Payment.Breaker, log)
}
