package repository

import (
	"context"
	"fmt"

	"jewelry-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// adStatsRepository implements the AdStatsRepository interface using PostgreSQL.
type adStatsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAdStatsRepository creates a new PostgreSQL-backed ad statistics repository.
func NewAdStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) AdStatsRepository {
	return &adStatsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "adstats").Logger(),
	}
}

// SaveReport upserts campaigns and their daily statistics atomically.
func (r *adStatsRepository) SaveReport(ctx context.Context, campaigns []model.AdCampaign, stats []model.AdStatistic) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for _, c := range campaigns {
		batch.Queue(`
			INSERT INTO ad_campaigns (id, name, status, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
			c.ID, c.Name, c.Status, c.UpdatedAt)
	}
	for _, s := range stats {
		batch.Queue(`
			INSERT INTO ad_statistics (campaign_id, date, impressions, clicks, cost)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (campaign_id, date) DO UPDATE
			SET impressions = EXCLUDED.impressions, clicks = EXCLUDED.clicks, cost = EXCLUDED.cost`,
			s.CampaignID, s.Date, s.Impressions, s.Clicks, s.Cost)
	}

	if err = execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Msg("failed to save ad report")
		return fmt.Errorf("failed to save ad report: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ad report: %w", err)
	}

	r.logger.Info().
		Int("campaigns", len(campaigns)).
		Int("statistics", len(stats)).
		Msg("ad report saved")

	return nil
}
