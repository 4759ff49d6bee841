// Package app wires infrastructure shared by the shop's binaries.
package app

import (
	"context"
	"fmt"

	"jewelry-store/internal/config"
	"jewelry-store/internal/database"
	"jewelry-store/internal/notify"
	"jewelry-store/internal/promocode"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// OpenDatabase connects to PostgreSQL and applies the schema when
// auto-migration is enabled.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := database.ApplySchema(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return pool, nil
}

// NewNotifier builds the notification dispatcher. Messages go to Kafka when
// brokers are configured and to the log otherwise. The returned close
// function flushes the publisher.
func NewNotifier(cfg *config.Config, logger zerolog.Logger) (notify.Notifier, func() error, error) {
	templates, err := notify.LoadTemplates()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notification templates: %w", err)
	}

	recipients := notify.Recipients{
		AdminChatID:   cfg.Telegram.AdminChatID,
		ChannelChatID: cfg.Telegram.ChannelChatID,
		AdminPhone:    cfg.Shop.AdminPhone,
	}

	if !cfg.Kafka.Enabled() {
		logger.Warn().Msg("kafka brokers not configured, notifications are only logged")
		return notify.NewDispatcher(templates, notify.NewLogPublisher(logger), recipients, logger),
			func() error { return nil }, nil
	}

	publisher := notify.NewKafkaPublisher(cfg.Kafka, logger)
	return notify.NewDispatcher(templates, publisher, recipients, logger), publisher.Close, nil
}

// NewPromoLoader reads promo files from S3 when enabled, falling back to the
// local file system.
func NewPromoLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) promocode.Loader {
	fileLoader := promocode.NewFileLoader(logger)
	if !cfg.Enabled {
		logger.Info().Msg("using local file system for promo files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := promocode.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return promocode.NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, true, logger)
}
