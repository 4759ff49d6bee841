package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a line of a shopping cart. UserID is nil for anonymous carts.
type CartItem struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ItemID    uuid.UUID  `json:"itemId" db:"item_id"`
	Count     int        `json:"count" db:"count"`
	UserID    *uuid.UUID `json:"userId,omitempty" db:"user_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	Item      *Item      `json:"item,omitempty"`
}

// CartItemRequest adds an item to the cart or changes its count.
type CartItemRequest struct {
	ItemID uuid.UUID `json:"itemId"`
	Count  int       `json:"count"`
}

// CartMergeRequest carries the pre-login local cart.
type CartMergeRequest struct {
	Items []CartItemRequest `json:"items"`
}
