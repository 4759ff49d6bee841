// Command promoimport upserts promo code definitions from gzipped JSON-lines
// files. Paths are S3 keys under S3_PREFIX when S3 is enabled and local
// paths otherwise; later files win on name clashes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jewelry-store/internal/app"
	"jewelry-store/internal/config"
	"jewelry-store/internal/pricing"
	"jewelry-store/internal/promocode"
	"jewelry-store/internal/repository"
	"jewelry-store/internal/service"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s file [file...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(paths []string) error {
	if len(paths) == 0 {
		flag.Usage()
		return errors.New("no promo files given")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "promoimport")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := app.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	promoRepo := repository.NewPromoCodeRepository(pool, logger)
	promos := service.NewPromoCodeService(
		promoRepo,
		repository.NewCartRepository(pool, logger),
		promocode.NewValidator(promoRepo, logger),
		promocode.NewImporter(app.NewPromoLoader(ctx, cfg.S3, logger), promoRepo, logger),
		pricing.Options{FreeDeliveryThreshold: cfg.Shop.FreeDeliveryThreshold},
		logger,
	)

	result, err := promos.Import(ctx, paths...)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d promo codes from %d files\n", result.Imported, result.Files)
	return nil
}
