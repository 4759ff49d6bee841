package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recipients are the fixed staff destinations.
type Recipients struct {
	AdminChatID   string
	ChannelChatID string
	// AdminPhone also receives the admin text by SMS when set.
	AdminPhone string
}

// dispatcher implements Notifier by rendering templates and publishing.
type dispatcher struct {
	templates  *Templates
	publisher  Publisher
	recipients Recipients
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDispatcher creates a Notifier.
func NewDispatcher(templates *Templates, publisher Publisher, recipients Recipients, logger zerolog.Logger) Notifier {
	return &dispatcher{
		templates:  templates,
		publisher:  publisher,
		recipients: recipients,
		logger:     logger.With().Str("component", "notify-dispatcher").Logger(),
		now:        time.Now,
	}
}

// Notify renders every audience the event has a template for and queues
// the messages whose recipient is known.
func (d *dispatcher) Notify(ctx context.Context, event Event) error {
	targets := []struct {
		audience  Audience
		channel   Channel
		recipient string
	}{
		{CustomerSMS, ChannelSMS, event.Phone},
		{AdminTelegram, ChannelTelegram, d.recipients.AdminChatID},
		{AdminTelegram, ChannelSMS, d.recipients.AdminPhone},
		{TelegramChannel, ChannelTelegram, d.recipients.ChannelChatID},
	}

	var msgs []Message
	for _, target := range targets {
		if target.recipient == "" {
			continue
		}
		text, err := d.templates.Render(event, target.audience)
		if err != nil {
			return err
		}
		if text == "" {
			continue
		}
		msgs = append(msgs, Message{
			ID:        uuid.New(),
			Channel:   target.channel,
			Recipient: target.recipient,
			Text:      text,
			Event:     event.Type,
			CreatedAt: d.now().UTC(),
		})
	}

	if len(msgs) == 0 {
		return nil
	}

	if err := d.publisher.Publish(ctx, msgs...); err != nil {
		d.logger.Error().Err(err).Str("event", event.Type).Msg("failed to queue notifications")
		return err
	}

	d.logger.Debug().Str("event", event.Type).Int("messages", len(msgs)).Msg("notifications queued")
	return nil
}
