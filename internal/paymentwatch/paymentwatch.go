// Package paymentwatch tracks orders awaiting payment with expiring Redis
// keys and reacts when a key expires without being cleared.
package paymentwatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jewelry-store/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyPrefix prefixes the per-order payment timeout key.
const KeyPrefix = "checkOrderPayment_"

// Key returns the timeout key of an order.
func Key(orderID uuid.UUID) string {
	return KeyPrefix + orderID.String()
}

// ParseKey extracts the order ID from a timeout key.
func ParseKey(key string) (uuid.UUID, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(key, KeyPrefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Tracker sets and clears payment timeouts.
type Tracker interface {
	// Watch starts the payment timeout of an order.
	Watch(ctx context.Context, orderID uuid.UUID, ttl time.Duration) error

	// Clear removes the timeout once the order is paid or canceled.
	Clear(ctx context.Context, orderID uuid.UUID) error
}

// NewClient creates a Redis client from configuration and checks the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("redis client connected")

	return client, nil
}

// redisTracker implements Tracker with SET EX / DEL.
type redisTracker struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a Redis-backed tracker.
func NewTracker(client *redis.Client, logger zerolog.Logger) Tracker {
	return &redisTracker{
		client: client,
		logger: logger.With().Str("component", "payment-tracker").Logger(),
	}
}

// Watch starts the payment timeout of an order.
func (t *redisTracker) Watch(ctx context.Context, orderID uuid.UUID, ttl time.Duration) error {
	if err := t.client.Set(ctx, Key(orderID), orderID.String(), ttl).Err(); err != nil {
		t.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to set payment timeout")
		return fmt.Errorf("failed to set payment timeout: %w", err)
	}

	t.logger.Debug().
		Str("order_id", orderID.String()).
		Dur("ttl", ttl).
		Msg("payment timeout set")

	return nil
}

// Clear removes the timeout of an order.
func (t *redisTracker) Clear(ctx context.Context, orderID uuid.UUID) error {
	if err := t.client.Del(ctx, Key(orderID)).Err(); err != nil {
		t.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to clear payment timeout")
		return fmt.Errorf("failed to clear payment timeout: %w", err)
	}
	return nil
}
