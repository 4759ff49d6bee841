package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"jewelry-store/internal/acquiring"
	"jewelry-store/internal/app"
	"jewelry-store/internal/auth"
	"jewelry-store/internal/config"
	"jewelry-store/internal/handler"
	"jewelry-store/internal/i18n"
	"jewelry-store/internal/metrics"
	"jewelry-store/internal/middleware"
	"jewelry-store/internal/paymentwatch"
	"jewelry-store/internal/pricing"
	"jewelry-store/internal/promocode"
	"jewelry-store/internal/repository"
	"jewelry-store/internal/router"
	"jewelry-store/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// staleSweepInterval is how often unpaid orders whose expiry event was
// missed are canceled.
const staleSweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, "api")
	logger.Info().Msg("starting jewelry-store API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := app.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := paymentwatch.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()

	notifier, closeNotifier, err := app.NewNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Error().Err(err).Msg("failed to flush notifications")
		}
	}()

	m := metrics.New(prometheus.NewRegistry())

	catalog, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("failed to load message catalog: %w", err)
	}

	// Initialize repositories
	itemRepo := repository.NewItemRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	txnRepo := repository.NewTransactionRepository(pool, logger)
	promoRepo := repository.NewPromoCodeRepository(pool, logger)

	tracker := paymentwatch.NewTracker(redisClient, logger)
	validator := promocode.NewValidator(promoRepo, logger)
	importer := promocode.NewImporter(app.NewPromoLoader(ctx, cfg.S3, logger), promoRepo, logger)

	// Initialize services
	acquiringService := service.NewAcquiringService(service.AcquiringDeps{
		Orders:       orderRepo,
		Transactions: txnRepo,
		Gateway:      acquiring.NewClient(cfg.Gateway, logger),
		Tracker:      tracker,
		Notifier:     notifier,
		Metrics:      m,
	}, cfg.Shop, cfg.Gateway.ReturnURL, logger)

	orderService := service.NewOrderService(service.OrderDeps{
		Orders:    orderRepo,
		Items:     itemRepo,
		Carts:     cartRepo,
		Validator: validator,
		Acquiring: acquiringService,
		Tracker:   tracker,
		Notifier:  notifier,
		Metrics:   m,
	}, cfg.Shop, logger)

	itemService := service.NewItemService(itemRepo, logger)
	cartService := service.NewCartService(cartRepo, itemRepo, logger)
	promoService := service.NewPromoCodeService(promoRepo, cartRepo, validator, importer,
		pricing.Options{FreeDeliveryThreshold: cfg.Shop.FreeDeliveryThreshold}, logger)

	// Initialize HTTP handlers
	errs := handler.NewErrorWriter(catalog, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, errs)
	defer limiter.Stop()

	mux := router.New(router.Handlers{
		Items:      handler.NewItemHandler(itemService, errs, logger),
		Cart:       handler.NewCartHandler(cartService, errs, logger),
		PromoCodes: handler.NewPromoCodeHandler(promoService, errs, logger),
		Orders:     handler.NewOrderHandler(orderService, acquiringService, errs, logger),
		Webhook:    handler.NewWebhookHandler(acquiringService, errs, logger),
	}, router.Deps{
		Tokens:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Errors:  errs,
		Limiter: limiter,
		Metrics: m,
		DB:      pool,
	}, logger)

	// Background payment timeout handling
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		listener := paymentwatch.NewListener(redisClient, logger)
		if err := listener.Run(ctx, orderService.AutoCancel); err != nil {
			logger.Error().Err(err).Msg("payment listener failed")
		}
	}()
	go func() {
		defer wg.Done()
		sweepStaleOrders(ctx, orderService, cfg.Shop.PaymentTimeout, logger)
	}()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		cancel()
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			cancel()
			wg.Wait()
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		cancel()
		wg.Wait()
		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// sweepStaleOrders periodically cancels unpaid orders older than the
// payment timeout.
func sweepStaleOrders(ctx context.Context, orders service.OrderService, timeout time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(staleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := orders.CancelStaleUnpaid(ctx, timeout)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error().Err(err).Msg("stale order sweep failed")
				}
				continue
			}
			if n > 0 {
				logger.Info().Int("canceled", n).Msg("stale unpaid orders canceled")
			}
		}
	}
}
