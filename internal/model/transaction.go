package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the state of a payment attempt.
type TransactionStatus string

const (
	TransactionCreate   TransactionStatus = "create"
	TransactionPaid     TransactionStatus = "paid"
	TransactionRejected TransactionStatus = "rejected"
)

// Final reports whether the gateway has already settled the transaction.
func (s TransactionStatus) Final() bool {
	return s == TransactionPaid || s == TransactionRejected
}

// AcquiringTransaction is a single payment attempt for an order.
// Amount is in kopecks.
type AcquiringTransaction struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	OrderID         uuid.UUID         `json:"orderId" db:"order_id"`
	ExternalID      *string           `json:"externalId,omitempty" db:"external_id"`
	IdempotencyKey  string            `json:"-" db:"idempotency_key"`
	Amount          int64             `json:"amount" db:"amount"`
	Status          TransactionStatus `json:"status" db:"status"`
	Reason          *string           `json:"reason,omitempty" db:"reason"`
	ConfirmationURL *string           `json:"confirmationUrl,omitempty" db:"confirmation_url"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`
}

// PaymentResponse is returned when a payment attempt is started.
type PaymentResponse struct {
	TransactionID   uuid.UUID `json:"transactionId"`
	ConfirmationURL string    `json:"confirmationUrl"`
	Amount          int64     `json:"amount"`
}
