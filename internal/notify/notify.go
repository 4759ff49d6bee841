// Package notify queues customer and staff notifications on Kafka and
// delivers them through SMS and Telegram.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel is a delivery channel; each has its own topic and worker.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelTelegram Channel = "telegram"
)

// Event types rendered into notifications.
const (
	EventOrderCreated  = "order_created"
	EventOrderPaid     = "order_paid"
	EventOrderCanceled = "order_canceled"
	EventPaymentFailed = "payment_failed"
	EventStatusChanged = "status_changed"
	EventItemPublished = "item_published"
)

// Message is one queued notification.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Channel   Channel   `json:"channel"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"text"`
	Event     string    `json:"event"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event carries the data templates can reference.
type Event struct {
	Type        string
	OrderID     uuid.UUID
	Status      string
	Total       decimal.Decimal
	Phone       string
	Reason      string
	ItemName    string
	ItemArticle string
	ItemPrice   decimal.Decimal
}

// ShortOrderID is the first block of the order ID, used in message texts.
func (e Event) ShortOrderID() string {
	return e.OrderID.String()[:8]
}

// Notifier turns domain events into queued notifications.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Publisher puts rendered messages on their channel queues.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
}

// Sender delivers a message through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
