package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jewelry-store/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader is the subset of *kafka.Reader the worker uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter creates a writer for one topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewReader creates a consumer-group reader for one topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// QueuePublisher is a Publisher backed by queue writers that must be closed
// to flush pending messages.
type QueuePublisher interface {
	Publisher
	Close() error
}

// kafkaPublisher implements QueuePublisher with one writer per channel.
type kafkaPublisher struct {
	writers map[Channel]MessageWriter
	logger  zerolog.Logger
}

// NewKafkaPublisher creates a publisher from configuration.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) QueuePublisher {
	return NewPublisherWithWriters(map[Channel]MessageWriter{
		ChannelSMS:      NewWriter(cfg.Brokers, cfg.SMSTopic),
		ChannelTelegram: NewWriter(cfg.Brokers, cfg.TelegramTopic),
	}, logger)
}

// NewPublisherWithWriters creates a publisher around existing writers.
func NewPublisherWithWriters(writers map[Channel]MessageWriter, logger zerolog.Logger) QueuePublisher {
	return &kafkaPublisher{
		writers: writers,
		logger:  logger.With().Str("component", "notify-publisher").Logger(),
	}
}

// Publish writes each message to its channel's topic, keyed by recipient so
// one recipient's messages stay ordered.
func (p *kafkaPublisher) Publish(ctx context.Context, msgs ...Message) error {
	grouped := make(map[Channel][]kafka.Message)
	for _, m := range msgs {
		if _, ok := p.writers[m.Channel]; !ok {
			return fmt.Errorf("no queue for channel %q", m.Channel)
		}
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode notification: %w", err)
		}
		grouped[m.Channel] = append(grouped[m.Channel], kafka.Message{
			Key:   []byte(m.Recipient),
			Value: data,
			Time:  m.CreatedAt,
		})
	}

	for channel, batch := range grouped {
		if err := p.writers[channel].WriteMessages(ctx, batch...); err != nil {
			p.logger.Error().Err(err).Str("channel", string(channel)).Msg("failed to write notifications")
			return fmt.Errorf("failed to publish %s notifications: %w", channel, err)
		}
	}

	return nil
}

// Close closes every writer.
func (p *kafkaPublisher) Close() error {
	var first error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// logPublisher implements Publisher by logging; used when Kafka is not configured.
type logPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a publisher that only logs messages.
func NewLogPublisher(logger zerolog.Logger) Publisher {
	return &logPublisher{logger: logger.With().Str("component", "notify-publisher").Logger()}
}

// Publish logs each message.
func (p *logPublisher) Publish(_ context.Context, msgs ...Message) error {
	for _, m := range msgs {
		p.logger.Info().
			Str("channel", string(m.Channel)).
			Str("recipient", m.Recipient).
			Str("event", m.Event).
			Msg("notification not queued, kafka disabled")
	}
	return nil
}
