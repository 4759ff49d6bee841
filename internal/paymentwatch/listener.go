package paymentwatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ExpiredFunc is called with the order whose payment timeout elapsed.
type ExpiredFunc func(ctx context.Context, orderID uuid.UUID) error

// Listener subscribes to key expiry events of one Redis database.
type Listener struct {
	client *redis.Client
	db     int
	logger zerolog.Logger
}

// NewListener creates a listener for the client's database.
func NewListener(client *redis.Client, logger zerolog.Logger) *Listener {
	return &Listener{
		client: client,
		db:     client.Options().DB,
		logger: logger.With().Str("component", "payment-listener").Logger(),
	}
}

// Channel returns the keyevent channel for expirations.
func (l *Listener) Channel() string {
	return fmt.Sprintf("__keyevent@%d__:expired", l.db)
}

// EnableNotifications turns on expired-key events. Managed Redis services
// may forbid CONFIG SET; in that case they must be enabled by the operator.
func (l *Listener) EnableNotifications(ctx context.Context) error {
	return l.client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}

// Run blocks until ctx is done, calling onExpired for every expired timeout
// key. Handler errors are logged and do not stop the loop.
func (l *Listener) Run(ctx context.Context, onExpired ExpiredFunc) error {
	if err := l.EnableNotifications(ctx); err != nil {
		l.logger.Warn().Err(err).Msg("could not enable keyspace notifications")
	}

	pubsub := l.client.Subscribe(ctx, l.Channel())
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", l.Channel(), err)
	}

	l.logger.Info().Str("channel", l.Channel()).Msg("listening for payment timeouts")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("payment listener stopped")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			orderID, ok := ParseKey(msg.Payload)
			if !ok {
				continue
			}

			l.logger.Info().Str("order_id", orderID.String()).Msg("payment timeout elapsed")
			if err := onExpired(ctx, orderID); err != nil {
				l.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to handle payment timeout")
			}
		}
	}
}
