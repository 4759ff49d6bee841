package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusNotPaid    OrderStatus = "not_paid"
	StatusNew        OrderStatus = "new"
	StatusProcessing OrderStatus = "processing"
	StatusSent       OrderStatus = "sent"
	StatusCompleted  OrderStatus = "completed"
	StatusCanceled   OrderStatus = "canceled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNotPaid, StatusNew, StatusProcessing, StatusSent, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Order represents a customer order.
type Order struct {
	ID            uuid.UUID              `json:"id" db:"id"`
	UserID        uuid.UUID              `json:"userId" db:"user_id"`
	Status        OrderStatus            `json:"status" db:"status"`
	DeliveryPrice decimal.Decimal        `json:"deliveryPrice" db:"delivery_price"`
	IsPayment     bool                   `json:"isPayment" db:"is_payment"`
	Comment       *string                `json:"comment,omitempty" db:"comment"`
	PromoCodeID   *uuid.UUID             `json:"-" db:"promo_code_id"`
	CreatedAt     time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time              `json:"updatedAt" db:"updated_at"`
	DeletedAt     *time.Time             `json:"-" db:"deleted_at"`
	Positions     []OrderPosition        `json:"positions"`
	PromoCode     *PromoCode             `json:"promoCode,omitempty"`
	Transactions  []AcquiringTransaction `json:"transactions,omitempty"`
	Delivery      *Delivery              `json:"delivery,omitempty"`
}

// OrderPosition is a point-in-time snapshot of a catalogue item inside an order.
// Price fields are written once and never updated.
type OrderPosition struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderID       uuid.UUID       `json:"-" db:"order_id"`
	ItemID        uuid.UUID       `json:"itemId" db:"item_id"`
	Name          string          `json:"name" db:"name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Discount      int             `json:"discount" db:"discount"`
	DiscountPrice decimal.Decimal `json:"discountPrice" db:"discount_price"`
	Count         int             `json:"count" db:"count"`
	Grade         *int            `json:"grade,omitempty" db:"grade"`
	Review        *string         `json:"review,omitempty" db:"review"`
}

// DeliveryType is how an order reaches the customer.
type DeliveryType string

const (
	DeliveryCourier DeliveryType = "courier"
	DeliveryPickup  DeliveryType = "pickup"
	DeliveryPost    DeliveryType = "post"
)

// Delivery is the shipping record of an order.
type Delivery struct {
	ID      uuid.UUID       `json:"id" db:"id"`
	OrderID uuid.UUID       `json:"-" db:"order_id"`
	Type    DeliveryType    `json:"type" db:"type"`
	Address string          `json:"address" db:"address"`
	Phone   string          `json:"phone" db:"phone"`
	Price   decimal.Decimal `json:"price" db:"price"`
}

// OrderRequest represents the request payload for creating an order from the cart.
type OrderRequest struct {
	CartItemIDs  []uuid.UUID  `json:"cartItemIds,omitempty"`
	PromoCode    *string      `json:"promoCode,omitempty"`
	Comment      *string      `json:"comment,omitempty"`
	DeliveryType DeliveryType `json:"deliveryType"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	Summary         OrderSummary `json:"summary"`
	ConfirmationURL string       `json:"confirmationUrl,omitempty"`
}

// OrderSummary is the priced view of an order.
type OrderSummary struct {
	FullPrice       decimal.Decimal `json:"fullPrice"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryPrice   decimal.Decimal `json:"deliveryPrice"`
	PromoDiscount   decimal.Decimal `json:"promoDiscount"`
	Total           decimal.Decimal `json:"total"`
	DiscountPercent int             `json:"discountPercent"`
	FreeDelivery    bool            `json:"freeDelivery"`
}

// StatusRequest moves an order to an adjacent status.
type StatusRequest struct {
	Status OrderStatus `json:"status"`
}

// Transitions lists the statuses an order may move to manually.
type Transitions struct {
	Current OrderStatus  `json:"current"`
	Back    *OrderStatus `json:"back"`
	Next    *OrderStatus `json:"next"`
}

// ReviewRequest grades a position of a completed order.
type ReviewRequest struct {
	Grade  int     `json:"grade"`
	Review *string `json:"review,omitempty"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID        *uuid.UUID
	Status        *OrderStatus
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// SystemActor is used by background jobs acting with admin rights.
var SystemActor = Actor{IsAdmin: true}
