package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item represents a piece of jewelry in the catalogue.
type Item struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Article     string          `json:"article" db:"article"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Material    string          `json:"material" db:"material"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Discount    int             `json:"discount" db:"discount"`
	Count       int             `json:"count" db:"count"`
	IsPublished bool            `json:"isPublished" db:"is_published"`
	PublishAt   *time.Time      `json:"publishAt,omitempty" db:"publish_at"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time      `json:"-" db:"deleted_at"`
}

// DiscountAmount returns the per-unit discount in currency, rounded to kopecks.
func (i *Item) DiscountAmount() decimal.Decimal {
	return UnitDiscount(i.Price, i.Discount)
}

// DiscountPrice returns the per-unit price after the item discount.
func (i *Item) DiscountPrice() decimal.Decimal {
	return i.Price.Sub(i.DiscountAmount())
}

// UnitDiscount computes price * percent / 100 rounded to two places.
func UnitDiscount(price decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2)
}

// ItemRequest is the payload for creating or updating a catalogue item.
type ItemRequest struct {
	Article     string          `json:"article"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Material    string          `json:"material"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount"`
	Count       int             `json:"count"`
	IsPublished bool            `json:"isPublished"`
}

// PublicationRequest schedules an item to become visible at PublishAt.
type PublicationRequest struct {
	PublishAt time.Time `json:"publishAt"`
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	PublishedOnly bool
	Limit         int
	Offset        int
}
