package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jewelry-store/internal/model"
	"jewelry-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// itemService implements ItemService.
type itemService struct {
	repo   repository.ItemRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewItemService creates a new item service.
func NewItemService(repo repository.ItemRepository, logger zerolog.Logger) ItemService {
	return &itemService{
		repo:   repo,
		logger: logger.With().Str("service", "item").Logger(),
		now:    time.Now,
	}
}

// List retrieves items with pagination.
func (s *itemService) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetByID retrieves an item.
func (s *itemService) GetByID(ctx context.Context, id uuid.UUID, publishedOnly bool) (*model.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil || (publishedOnly && !item.IsPublished) {
		return nil, model.ErrItemNotFound
	}
	return item, nil
}

// Create adds an item to the catalogue.
func (s *itemService) Create(ctx context.Context, req *model.ItemRequest) (*model.Item, error) {
	if err := validateItemRequest(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item := &model.Item{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyItemRequest(item, req)

	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, articleTaken(req.Article)
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info().Str("item_id", item.ID.String()).Str("article", item.Article).Msg("item created")

	return item, nil
}

// Update overwrites an item's editable fields.
func (s *itemService) Update(ctx context.Context, id uuid.UUID, req *model.ItemRequest) (*model.Item, error) {
	if err := validateItemRequest(req); err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, model.ErrItemNotFound
	}

	applyItemRequest(item, req)
	item.UpdatedAt = s.now().UTC()

	ok, err := s.repo.Update(ctx, item)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, articleTaken(req.Article)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	if !ok {
		return nil, model.ErrItemNotFound
	}

	s.logger.Info().Str("item_id", id.String()).Msg("item updated")

	return item, nil
}

// Delete soft-deletes an item.
func (s *itemService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if !ok {
		return model.ErrItemNotFound
	}

	s.logger.Info().Str("item_id", id.String()).Msg("item deleted")
	return nil
}

// SchedulePublication hides an item until the given time.
func (s *itemService) SchedulePublication(ctx context.Context, id uuid.UUID, req *model.PublicationRequest) (*model.Item, error) {
	if req == nil || req.PublishAt.IsZero() {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Publication time is required")
	}

	ok, err := s.repo.SchedulePublication(ctx, id, req.PublishAt)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule publication: %w", err)
	}
	if !ok {
		return nil, model.ErrItemNotFound
	}

	s.logger.Info().
		Str("item_id", id.String()).
		Time("publish_at", req.PublishAt).
		Msg("publication scheduled")

	return s.GetByID(ctx, id, false)
}

func validateItemRequest(req *model.ItemRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Request body is required")
	}
	if strings.TrimSpace(req.Article) == "" || strings.TrimSpace(req.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Article and name are required")
	}
	if req.Price.IsNegative() {
		return model.NewDomainError(model.ErrCodeValidation, "Price cannot be negative")
	}
	if req.Discount < 0 || req.Discount > 99 {
		return model.NewDomainError(model.ErrCodeValidation, "Discount must be between 0 and 99")
	}
	if req.Count < 0 {
		return model.ErrInvalidQuantity
	}
	return nil
}

func applyItemRequest(item *model.Item, req *model.ItemRequest) {
	item.Article = strings.TrimSpace(req.Article)
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.Material = req.Material
	item.Price = req.Price
	item.Discount = req.Discount
	item.Count = req.Count
	item.IsPublished = req.IsPublished
}

func articleTaken(article string) error {
	return model.NewDomainError(model.ErrCodeValidation, "Item with this article already exists").
		With(map[string]string{"article": article})
}
