package service

import (
	"context"
	"fmt"
	"time"

	"jewelry-store/internal/cart"
	"jewelry-store/internal/model"
	"jewelry-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo repository.CartRepository
	itemRepo repository.ItemRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, itemRepo repository.ItemRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		itemRepo: itemRepo,
		logger:   logger.With().Str("service", "cart").Logger(),
		now:      time.Now,
	}
}

// List returns the user's cart with item details.
func (s *cartService) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// Add puts an item in the cart.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, req *model.CartItemRequest) (*model.CartItem, error) {
	if req == nil || req.ItemID == uuid.Nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Item is required")
	}
	if req.Count <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	item, err := s.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil || !item.IsPublished {
		return nil, model.ErrItemNotFound
	}

	owner := userID
	row, err := s.cartRepo.Add(ctx, &model.CartItem{
		ID:        uuid.New(),
		ItemID:    req.ItemID,
		Count:     req.Count,
		UserID:    &owner,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	row.Item = item

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("item_id", req.ItemID.String()).
		Int("count", row.Count).
		Msg("item added to cart")

	return row, nil
}

// UpdateCount sets the count of a cart row.
func (s *cartService) UpdateCount(ctx context.Context, userID, id uuid.UUID, count int) error {
	if count <= 0 {
		return model.ErrInvalidQuantity
	}

	ok, err := s.cartRepo.UpdateCount(ctx, id, userID, count)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if !ok {
		return model.ErrNotFound
	}
	return nil
}

// Remove deletes a cart row.
func (s *cartService) Remove(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.cartRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	if !ok {
		return model.ErrNotFound
	}
	return nil
}

// Merge folds the pre-login local cart into the stored cart. Local lines for
// unknown or hidden items are dropped.
func (s *cartService) Merge(ctx context.Context, userID uuid.UUID, req *model.CartMergeRequest) (items []model.CartItem, err error) {
	if req == nil || len(req.Items) == 0 {
		return s.List(ctx, userID)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, l := range req.Items {
		ids = append(ids, l.ItemID)
	}
	known, err := s.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	published := make(map[uuid.UUID]struct{}, len(known))
	for _, it := range known {
		if it.IsPublished {
			published[it.ID] = struct{}{}
		}
	}
	local := make([]model.CartItemRequest, 0, len(req.Items))
	for _, l := range req.Items {
		if _, ok := published[l.ItemID]; ok {
			local = append(local, l)
		}
	}

	tx, err := s.itemRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	server, err := s.cartRepo.ListByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}

	plan := cart.MergeOnLogin(userID, local, server, s.now().UTC())
	if err = s.cartRepo.CreateItems(ctx, tx, plan.Create); err != nil {
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}
	if err = s.cartRepo.UpdateCounts(ctx, tx, plan.Update); err != nil {
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Int("local", len(req.Items)).
		Int("created", len(plan.Create)).
		Msg("cart merged")

	return s.List(ctx, userID)
}
