package promocode

import (
	"context"
	"fmt"
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// validator implements Validator on top of promo code storage.
type validator struct {
	lookup Lookup
	logger zerolog.Logger
}

// NewValidator creates a promo code validator.
func NewValidator(lookup Lookup, logger zerolog.Logger) Validator {
	return &validator{
		lookup: lookup,
		logger: logger.With().Str("component", "promo-validator").Logger(),
	}
}

// Validate looks the code up by exact name and checks its state at now.
func (v *validator) Validate(ctx context.Context, name string, now time.Time) (*model.PromoCode, error) {
	if name == "" {
		return nil, model.ErrPromoNotFound
	}

	promo, err := v.lookup.GetByName(ctx, name)
	if err != nil {
		v.logger.Error().Err(err).Str("promo_code", name).Msg("failed to look up promo code")
		return nil, fmt.Errorf("failed to look up promo code: %w", err)
	}
	if promo == nil {
		v.logger.Debug().Str("promo_code", name).Msg("promo code not found")
		return nil, model.ErrPromoNotFound
	}

	if err := CheckWindow(promo, now); err != nil {
		v.logger.Debug().
			Str("promo_code", name).
			Err(err).
			Msg("promo code rejected")
		return nil, err
	}

	return promo, nil
}

// CheckWindow rejects deleted, inactive, not yet started and expired codes.
func CheckWindow(promo *model.PromoCode, now time.Time) error {
	switch {
	case promo.DeletedAt != nil:
		return model.ErrPromoNotFound
	case !promo.IsActive:
		return model.ErrPromoInactive
	case now.Before(promo.DateStart):
		return model.ErrPromoNotStarted.With(map[string]string{"dateStart": promo.DateStart.Format(time.DateOnly)})
	case !promo.DateEnd.IsZero() && now.After(promo.DateEnd):
		return model.ErrPromoExpired.With(map[string]string{"dateEnd": promo.DateEnd.Format(time.DateOnly)})
	}
	return nil
}

// CheckApplicable fails when the promo is restricted to items none of
// which are present.
func CheckApplicable(promo *model.PromoCode, itemIDs []uuid.UUID) error {
	if len(promo.ItemIDs) == 0 {
		return nil
	}
	for _, id := range itemIDs {
		if promo.AppliesTo(id) {
			return nil
		}
	}
	return model.ErrPromoNotApplicable
}
