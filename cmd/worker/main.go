// Command worker delivers queued SMS and Telegram notifications.
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

	"jewelry-store/internal/config"
	"jewelry-store/internal/handler"
	"jewelry-store/internal/metrics"
	"jewelry-store/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "worker")
	if !cfg.Kafka.Enabled() {
		return errors.New("KAFKA_BROKERS must be set for the notification worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.NewRegistry())

	workers := []*notify.Worker{
		notify.NewWorker(
			notify.ChannelSMS,
			notify.NewReader(cfg.Kafka.Brokers, cfg.Kafka.SMSTopic, cfg.Kafka.GroupID),
			notify.NewSMSSender(cfg.SMS, logger),
			m, logger,
		),
		notify.NewWorker(
			notify.ChannelTelegram,
			notify.NewReader(cfg.Kafka.Brokers, cfg.Kafka.TelegramTopic, cfg.Kafka.GroupID),
			notify.NewTelegramSender(cfg.Telegram, logger),
			m, logger,
		),
	}

	r := chi.NewRouter()
	r.Get("/health", handler.Health(nil))
	r.Method(http.MethodGet, "/metrics", m.Handler())
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("group", cfg.Kafka.GroupID).
		Msg("starting notification workers")

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *notify.Worker) {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("notification worker failed")
			}
		}(w)
	}

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received, stopping workers")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to stop metrics server")
	}

	return nil
}
