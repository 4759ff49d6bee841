package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jewelry-store/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Worker consumes one channel's topic and delivers messages one at a time.
type Worker struct {
	channel  Channel
	reader   MessageReader
	sender   Sender
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	attempts uint64
	delay    time.Duration
}

// NewWorker creates a worker. A message is attempted up to attempts times
// before it is dropped.
func NewWorker(channel Channel, reader MessageReader, sender Sender, m *metrics.Metrics, logger zerolog.Logger) *Worker {
	return &Worker{
		channel:  channel,
		reader:   reader,
		sender:   sender,
		metrics:  m,
		logger:   logger.With().Str("worker", string(channel)).Logger(),
		attempts: 3,
		delay:    2 * time.Second,
	}
}

// Run processes messages until ctx is done, then closes the reader.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("notification worker started")
	defer w.logger.Info().Msg("notification worker stopped")
	defer func() {
		if err := w.reader.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("failed to close kafka reader")
		}
	}()

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error().Err(err).Msg("kafka read error")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.delay):
			}
			continue
		}

		var m Message
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("dropping undecodable notification")
			w.metrics.NotificationResult(string(w.channel), "invalid")
		} else {
			w.deliver(ctx, m)
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("failed to commit offset")
		}
	}
}

func (w *Worker) deliver(ctx context.Context, m Message) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(w.delay), w.attempts-1),
		ctx,
	)

	err := backoff.Retry(func() error {
		err := w.sender.Send(ctx, m)
		var perm *PermanentError
		if errors.As(err, &perm) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)

	if err != nil {
		w.logger.Error().
			Err(err).
			Str("message_id", m.ID.String()).
			Str("event", m.Event).
			Msg("notification dropped")
		w.metrics.NotificationResult(string(w.channel), "failed")
		return
	}

	w.logger.Debug().Str("message_id", m.ID.String()).Msg("notification delivered")
	w.metrics.NotificationResult(string(w.channel), "sent")
}
