package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenmarket/internal/config"
	"greenmarket/internal/events"
	"greenmarket/internal/gateway"
	"greenmarket/internal/handler"
	"greenmarket/internal/redisx"
	"greenmarket/internal/repository"
	"greenmarket/internal/router"
	"greenmarket/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best-effort .env load for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting greenmarket checkout API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := repository.NewPool(ctx, cfg.Database.ConnectionString(), cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Optional collaborators: the Redis cache/dedup and the Kafka
	// publisher degrade to no-ops when disabled.
	var statusCache service.StatusCache = service.NewNopStatusCache()
	var deduper service.CallbackDeduper = service.NewNopDeduper()
	if cfg.Redis.Enabled {
		rdb := redisx.New(cfg.Redis.Addr)
		defer rdb.Close()
		statusCache = redisx.NewOrderStatusCache(rdb, logger)
		deduper = redisx.NewGatewayDeduper(rdb, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache enabled")
	}

	publisher := events.NewNopPublisher()
	if cfg.Kafka.Enabled {
		publisher = events.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Buffer, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publisher enabled")
	}
	defer publisher.Close()

	inventoryRepo := repository.NewInventoryRepository(pool, logger)
	voucherRepo := repository.NewVoucherRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	walletRepo := repository.NewWalletRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)

	gatewayClient := gateway.NewMockClient(cfg.Gateway.BaseURL, logger)

	inventorySvc := service.NewInventoryService(inventoryRepo, logger)
	voucherSvc := service.NewVoucherService(voucherRepo, logger)
	walletSvc := service.NewWalletService(walletRepo, logger)
	orderSvc := service.NewOrderService(orderRepo, inventorySvc, voucherSvc, walletSvc, publisher, statusCache, logger)
	checkoutSvc := service.NewCheckoutService(
		cartRepo, inventorySvc, voucherSvc, walletSvc,
		orderRepo, paymentRepo, orderSvc,
		gatewayClient, deduper, statusCache, publisher, logger,
	)

	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, logger)
	orderHandler := handler.NewOrderHandler(orderSvc, statusCache, logger)
	inventoryHandler := handler.NewInventoryHandler(inventorySvc, logger)
	voucherHandler := handler.NewVoucherHandler(voucherSvc, cartRepo, logger)
	walletHandler := handler.NewWalletHandler(walletSvc, logger)

	httpHandler := router.New(
		checkoutHandler, orderHandler, inventoryHandler, voucherHandler, walletHandler,
		cfg.Auth.APIKey, logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
