package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromoCode is a named discount rule applied at checkout.
// Exactly one of Discount, DiscountPercent and FreeDelivery is set.
type PromoCode struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     string           `json:"description" db:"description"`
	Discount        *decimal.Decimal `json:"discount,omitempty" db:"discount"`
	DiscountPercent *int             `json:"discountPercent,omitempty" db:"discount_percent"`
	FreeDelivery    bool             `json:"freeDelivery" db:"free_delivery"`
	DateStart       time.Time        `json:"dateStart" db:"date_start"`
	DateEnd         time.Time        `json:"dateEnd" db:"date_end"`
	IsActive        bool             `json:"isActive" db:"is_active"`
	ItemIDs         []uuid.UUID      `json:"itemIds,omitempty" db:"item_ids"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	DeletedAt       *time.Time       `json:"-" db:"deleted_at"`
}

// Validate checks the promo code's own invariants.
func (p *PromoCode) Validate() error {
	if p.Name == "" {
		return NewDomainError(ErrCodeMissingField, "Promo code name is required")
	}

	set := 0
	if p.Discount != nil {
		if !p.Discount.IsPositive() {
			return ErrPromoInvalid
		}
		set++
	}
	if p.DiscountPercent != nil {
		if *p.DiscountPercent <= 0 || *p.DiscountPercent > 100 {
			return ErrPromoInvalid
		}
		set++
	}
	if p.FreeDelivery {
		set++
	}
	if set != 1 {
		return ErrPromoInvalid
	}

	if !p.DateEnd.IsZero() && p.DateEnd.Before(p.DateStart) {
		return NewDomainError(ErrCodeValidation, "Promo code end date is before start date")
	}

	return nil
}

// AppliesTo reports whether the promo covers the given catalogue item.
func (p *PromoCode) AppliesTo(itemID uuid.UUID) bool {
	if len(p.ItemIDs) == 0 {
		return true
	}
	for _, id := range p.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// PromoCodeRequest is the admin payload for promo codes.
type PromoCodeRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	DiscountPercent *int             `json:"discountPercent,omitempty"`
	FreeDelivery    bool             `json:"freeDelivery"`
	DateStart       time.Time        `json:"dateStart"`
	DateEnd         time.Time        `json:"dateEnd"`
	IsActive        bool             `json:"isActive"`
	ItemIDs         []uuid.UUID      `json:"itemIds,omitempty"`
}

// PromoCheckResponse reports whether a promo can be used with the caller's cart.
type PromoCheckResponse struct {
	PromoCode PromoCode    `json:"promoCode"`
	Summary   OrderSummary `json:"summary"`
}
