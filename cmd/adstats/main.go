// Command adstats loads ad campaigns and daily statistics for a date range.
// Both dates default to yesterday.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jewelry-store/internal/adstats"
	"jewelry-store/internal/app"
	"jewelry-store/internal/config"
	"jewelry-store/internal/repository"
	"jewelry-store/internal/service"
)

func main() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	from := flag.String("from", yesterday, "first day, YYYY-MM-DD")
	to := flag.String("to", "", "last day, YYYY-MM-DD (defaults to -from)")
	flag.Parse()

	if err := run(*from, *to); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
	}
	if toStr == "" {
		return from, from, nil
	}
	to, err := time.Parse(time.DateOnly, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
	}
	return from, to, nil
}

func run(fromStr, toStr string) error {
	from, to, err := parseRange(fromStr, toStr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "adstats")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := app.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	ingest := service.NewAdStatsService(
		adstats.NewClient(cfg.AdPlatform, logger),
		repository.NewAdStatsRepository(pool, logger),
		logger,
	)

	result, err := ingest.Ingest(ctx, from, to)
	if err != nil {
		return err
	}

	logger.Info().
		Str("from", from.Format(time.DateOnly)).
		Str("to", to.Format(time.DateOnly)).
		Int("campaigns", result.Campaigns).
		Int("statistics", result.Statistics).
		Msg("ad statistics ingested")
	return nil
}
