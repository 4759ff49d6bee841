package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jewelry-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdStatsService_Ingest(t *testing.T) {
	ctx := context.Background()
	source := new(MockAdSource)
	repo := new(MockAdStatsRepository)
	svc := NewAdStatsService(source, repo, zerolog.Nop())

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC)
	campaigns := []model.AdCampaign{{ID: 11, Name: "Rings"}, {ID: 12, Name: "Earrings"}}
	stats := []model.AdStatistic{
		{CampaignID: 11, Date: from, Clicks: 10, Cost: dec("120.50")},
		{CampaignID: 99, Date: from, Clicks: 3, Cost: dec("5")},
		{CampaignID: 12, Date: to, Clicks: 1, Cost: dec("7.10")},
	}

	source.On("Campaigns", ctx).Return(campaigns, nil)
	source.On("Report", ctx, from, to).Return(stats, nil)
	repo.On("SaveReport", ctx, campaigns, mock.MatchedBy(func(kept []model.AdStatistic) bool {
		return len(kept) == 2 && kept[0].CampaignID == 11 && kept[1].CampaignID == 12
	})).Return(nil)

	res, err := svc.Ingest(ctx, from, to)

	require.NoError(t, err)
	assert.Equal(t, AdStatsResult{Campaigns: 2, Statistics: 2}, res)
	source.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestAdStatsService_Ingest_Errors(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC)

	t.Run("inverted range", func(t *testing.T) {
		source := new(MockAdSource)
		svc := NewAdStatsService(source, new(MockAdStatsRepository), zerolog.Nop())

		_, err := svc.Ingest(ctx, from, from.AddDate(0, 0, -1))

		de, ok := model.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, model.ErrCodeValidation, de.Code)
		source.AssertNotCalled(t, "Campaigns", mock.Anything)
	})

	t.Run("report failure saves nothing", func(t *testing.T) {
		source := new(MockAdSource)
		repo := new(MockAdStatsRepository)
		svc := NewAdStatsService(source, repo, zerolog.Nop())
		source.On("Campaigns", ctx).Return([]model.AdCampaign{{ID: 1}}, nil)
		source.On("Report", ctx, from, from).Return(nil, errors.New("report not ready"))

		_, err := svc.Ingest(ctx, from, from)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch report")
		repo.AssertNotCalled(t, "SaveReport", mock.Anything, mock.Anything, mock.Anything)
	})
}
