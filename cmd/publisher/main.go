// Command publisher makes scheduled catalogue items visible and announces
// them. It runs once by default or in a loop with -interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jewelry-store/internal/app"
	"jewelry-store/internal/config"
	"jewelry-store/internal/repository"
	"jewelry-store/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	interval := flag.Duration("interval", 0, "repeat with this period; 0 runs once")
	flag.Parse()

	if err := run(*interval); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(interval time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "publisher")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := app.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	notifier, closeNotifier, err := app.NewNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Error().Err(err).Msg("failed to flush notifications")
		}
	}()

	publications := service.NewPublicationService(repository.NewItemRepository(pool, logger), notifier, logger)

	if interval <= 0 {
		return publishOnce(ctx, publications, logger)
	}

	logger.Info().Dur("interval", interval).Msg("publisher loop started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := publishOnce(ctx, publications, logger); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("publication run failed")
		}
		select {
		case <-ctx.Done():
			logger.Info().Msg("publisher loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func publishOnce(ctx context.Context, publications service.PublicationService, logger zerolog.Logger) error {
	n, err := publications.PublishDue(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("published", n).Msg("publication run finished")
	return nil
}
