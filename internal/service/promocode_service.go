package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jewelry-store/internal/model"
	"jewelry-store/internal/pricing"
	"jewelry-store/internal/promocode"
	"jewelry-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// promoCodeService implements PromoCodeService.
type promoCodeService struct {
	repo      repository.PromoCodeRepository
	cartRepo  repository.CartRepository
	validator promocode.Validator
	importer  *promocode.Importer
	pricing   pricing.Options
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPromoCodeService creates a new promo code service. importer may be nil
// when bulk import is not configured.
func NewPromoCodeService(
	repo repository.PromoCodeRepository,
	cartRepo repository.CartRepository,
	validator promocode.Validator,
	importer *promocode.Importer,
	opts pricing.Options,
	logger zerolog.Logger,
) PromoCodeService {
	return &promoCodeService{
		repo:      repo,
		cartRepo:  cartRepo,
		validator: validator,
		importer:  importer,
		pricing:   opts,
		logger:    logger.With().Str("service", "promocode").Logger(),
		now:       time.Now,
	}
}

// List retrieves promo codes with pagination.
func (s *promoCodeService) List(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	promos, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	return promos, nil
}

// GetByID retrieves a promo code.
func (s *promoCodeService) GetByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	if promo == nil {
		return nil, model.ErrPromoNotFound
	}
	return promo, nil
}

// Create adds a promo code.
func (s *promoCodeService) Create(ctx context.Context, req *model.PromoCodeRequest) (*model.PromoCode, error) {
	promo, err := promoFromRequest(req)
	if err != nil {
		return nil, err
	}
	promo.ID = uuid.New()
	promo.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, promo); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.ErrPromoExists
		}
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	s.logger.Info().Str("promo_code", promo.Name).Msg("promo code created")
	return promo, nil
}

// Update overwrites a promo code.
func (s *promoCodeService) Update(ctx context.Context, id uuid.UUID, req *model.PromoCodeRequest) (*model.PromoCode, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	promo, err := promoFromRequest(req)
	if err != nil {
		return nil, err
	}
	promo.ID = id
	promo.CreatedAt = existing.CreatedAt

	ok, err := s.repo.Update(ctx, promo)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.ErrPromoExists
		}
		return nil, fmt.Errorf("failed to update promo code: %w", err)
	}
	if !ok {
		return nil, model.ErrPromoNotFound
	}

	s.logger.Info().Str("promo_code", promo.Name).Msg("promo code updated")
	return promo, nil
}

// Delete soft-deletes a promo code. Orders keep referencing it.
func (s *promoCodeService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}
	if !ok {
		return model.ErrPromoNotFound
	}
	return nil
}

// Check validates a code and prices the user's cart with it. Delivery is
// not known yet, so the summary covers items only.
func (s *promoCodeService) Check(ctx context.Context, name string, userID *uuid.UUID) (*model.PromoCheckResponse, error) {
	promo, err := s.validator.Validate(ctx, name, s.now())
	if err != nil {
		return nil, err
	}

	resp := &model.PromoCheckResponse{PromoCode: *promo}
	if userID == nil {
		return resp, nil
	}

	rows, err := s.cartRepo.ListByUser(ctx, *userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(rows) == 0 {
		return resp, nil
	}

	positions := make([]model.OrderPosition, 0, len(rows))
	itemIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.Item == nil {
			continue
		}
		positions = append(positions, snapshotPosition(uuid.Nil, row.Item, row.Count))
		itemIDs = append(itemIDs, row.ItemID)
	}

	if err := promocode.CheckApplicable(promo, itemIDs); err != nil {
		return nil, err
	}

	resp.Summary = pricing.Calculate(positions, decimal.Zero, promo, s.pricing).Summary
	return resp, nil
}

// Import loads promo definitions from files and upserts them.
func (s *promoCodeService) Import(ctx context.Context, paths ...string) (promocode.ImportResult, error) {
	if s.importer == nil {
		return promocode.ImportResult{}, fmt.Errorf("promo import is not configured")
	}
	if len(paths) == 0 {
		return promocode.ImportResult{}, model.NewDomainError(model.ErrCodeMissingField, "At least one file is required")
	}
	return s.importer.Import(ctx, paths...)
}

func promoFromRequest(req *model.PromoCodeRequest) (*model.PromoCode, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeInvalidJSON, "Request body is required")
	}

	promo := &model.PromoCode{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Discount:        req.Discount,
		DiscountPercent: req.DiscountPercent,
		FreeDelivery:    req.FreeDelivery,
		DateStart:       req.DateStart,
		DateEnd:         req.DateEnd,
		IsActive:        req.IsActive,
		ItemIDs:         req.ItemIDs,
	}
	if promo.ItemIDs == nil {
		promo.ItemIDs = []uuid.UUID{}
	}
	if promo.DateStart.IsZero() || promo.DateEnd.IsZero() {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Promo code dates are required")
	}
	if err := promo.Validate(); err != nil {
		return nil, err
	}
	return promo, nil
}

// snapshotPosition copies the item's current price into an order position.
func snapshotPosition(orderID uuid.UUID, item *model.Item, count int) model.OrderPosition {
	return model.OrderPosition{
		ID:            uuid.New(),
		OrderID:       orderID,
		ItemID:        item.ID,
		Name:          item.Name,
		Price:         item.Price,
		Discount:      item.Discount,
		DiscountPrice: item.DiscountPrice(),
		Count:         count,
	}
}
