package service

import (
	"context"
	"fmt"
	"time"

	"jewelry-store/internal/adstats"
	"jewelry-store/internal/model"
	"jewelry-store/internal/repository"

	"github.com/rs/zerolog"
)

// adStatsService implements AdStatsService.
type adStatsService struct {
	source adstats.Source
	repo   repository.AdStatsRepository
	logger zerolog.Logger
}

// NewAdStatsService creates a new ad statistics service.
func NewAdStatsService(source adstats.Source, repo repository.AdStatsRepository, logger zerolog.Logger) AdStatsService {
	return &adStatsService{
		source: source,
		repo:   repo,
		logger: logger.With().Str("service", "adstats").Logger(),
	}
}

// Ingest stores campaigns and daily statistics for [from, to]. Rows for
// campaigns the platform no longer lists are dropped.
func (s *adStatsService) Ingest(ctx context.Context, from, to time.Time) (AdStatsResult, error) {
	if to.Before(from) {
		return AdStatsResult{}, model.NewDomainError(model.ErrCodeValidation, "End date is before start date")
	}

	campaigns, err := s.source.Campaigns(ctx)
	if err != nil {
		return AdStatsResult{}, fmt.Errorf("failed to fetch campaigns: %w", err)
	}

	stats, err := s.source.Report(ctx, from, to)
	if err != nil {
		return AdStatsResult{}, fmt.Errorf("failed to fetch report: %w", err)
	}

	known := make(map[int64]struct{}, len(campaigns))
	for _, c := range campaigns {
		known[c.ID] = struct{}{}
	}
	kept := stats[:0]
	for _, st := range stats {
		if _, ok := known[st.CampaignID]; ok {
			kept = append(kept, st)
			continue
		}
		s.logger.Warn().Int64("campaign_id", st.CampaignID).Msg("statistics for unknown campaign skipped")
	}

	if err := s.repo.SaveReport(ctx, campaigns, kept); err != nil {
		return AdStatsResult{}, fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info().
		Str("from", from.Format(time.DateOnly)).
		Str("to", to.Format(time.DateOnly)).
		Int("campaigns", len(campaigns)).
		Int("statistics", len(kept)).
		Msg("ad statistics ingested")

	return AdStatsResult{Campaigns: len(campaigns), Statistics: len(kept)}, nil
}
