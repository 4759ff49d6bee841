// Package acquiring talks to the payment gateway: payment creation and
// webhook notification payloads.
package acquiring

import (
	"fmt"
	"strconv"
)

// Gateway payment statuses.
const (
	StatusPending           = "pending"
	StatusWaitingForCapture = "waiting_for_capture"
	StatusSucceeded         = "succeeded"
	StatusCanceled          = "canceled"
)

// Webhook events.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
)

// Currency is the only currency the shop accepts.
const Currency = "RUB"

// Amount is a money value as the gateway encodes it: a decimal string.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Rubles formats kopecks as a gateway amount.
func Rubles(kopecks int64) Amount {
	sign := ""
	if kopecks < 0 {
		sign = "-"
		kopecks = -kopecks
	}
	return Amount{
		Value:    fmt.Sprintf("%s%d.%02d", sign, kopecks/100, kopecks%100),
		Currency: Currency,
	}
}

// Confirmation describes how the customer confirms the payment.
type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// Customer identifies the receipt recipient.
type Customer struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// ReceiptItem is a fiscal receipt line. Amount is the unit price.
type ReceiptItem struct {
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Amount         Amount `json:"amount"`
	VatCode        int    `json:"vat_code"`
	PaymentMode    string `json:"payment_mode"`
	PaymentSubject string `json:"payment_subject"`
}

// Receipt is the fiscal receipt attached to a payment.
type Receipt struct {
	Customer Customer      `json:"customer"`
	Items    []ReceiptItem `json:"items"`
}

// PaymentRequest is the body of POST /payments.
type PaymentRequest struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Receipt      *Receipt          `json:"receipt,omitempty"`
}

// CancellationDetails explains why a payment was canceled.
type CancellationDetails struct {
	Party  string `json:"party"`
	Reason string `json:"reason"`
}

// Payment is the gateway's payment object.
type Payment struct {
	ID                  string               `json:"id"`
	Status              string               `json:"status"`
	Paid                bool                 `json:"paid"`
	Amount              Amount               `json:"amount"`
	Confirmation        *Confirmation        `json:"confirmation,omitempty"`
	CancellationDetails *CancellationDetails `json:"cancellation_details,omitempty"`
	Metadata            map[string]string    `json:"metadata,omitempty"`
}

// ConfirmationURL returns the redirect URL, if any.
func (p *Payment) ConfirmationURL() string {
	if p.Confirmation == nil {
		return ""
	}
	return p.Confirmation.ConfirmationURL
}

// Notification is the webhook body.
type Notification struct {
	Type   string  `json:"type"`
	Event  string  `json:"event"`
	Object Payment `json:"object"`
}

// APIError is the gateway's error body.
type APIError struct {
	StatusCode  int    `json:"-"`
	Type        string `json:"type"`
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Parameter   string `json:"parameter"`
}

func (e *APIError) Error() string {
	return "gateway error " + strconv.Itoa(e.StatusCode) + ": " + e.Code + ": " + e.Description
}
