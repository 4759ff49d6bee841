package service

import (
	"context"
	"fmt"
	"time"

	"jewelry-store/internal/model"
	"jewelry-store/internal/notify"
	"jewelry-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const publicationBatch = 100

// publicationService implements PublicationService.
type publicationService struct {
	repo     repository.ItemRepository
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPublicationService creates a new publication service.
func NewPublicationService(repo repository.ItemRepository, notifier notify.Notifier, logger zerolog.Logger) PublicationService {
	return &publicationService{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With().Str("service", "publication").Logger(),
		now:      time.Now,
	}
}

// PublishDue publishes items whose publication time has passed, in batches,
// and announces each one to the shop channel.
func (s *publicationService) PublishDue(ctx context.Context) (int, error) {
	total := 0
	for {
		items, err := s.repo.ListDueForPublication(ctx, s.now().UTC(), publicationBatch)
		if err != nil {
			return total, fmt.Errorf("failed to list items due for publication: %w", err)
		}
		if len(items) == 0 {
			break
		}

		if err := s.publish(ctx, items); err != nil {
			return total, err
		}
		total += len(items)

		for _, item := range items {
			s.announce(ctx, item)
		}

		if len(items) < publicationBatch {
			break
		}
	}

	if total > 0 {
		s.logger.Info().Int("count", total).Msg("items published")
	}
	return total, nil
}

func (s *publicationService) publish(ctx context.Context, items []model.Item) (err error) {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish items: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.repo.MarkPublished(ctx, tx, ids); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to publish items: %w", err)
	}
	return nil
}

func (s *publicationService) announce(ctx context.Context, item model.Item) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, notify.Event{
		Type:        notify.EventItemPublished,
		ItemName:    item.Name,
		ItemArticle: item.Article,
		ItemPrice:   item.DiscountPrice(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("failed to announce item")
	}
}
