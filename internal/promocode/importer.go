package promocode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Store is the write side of promo code storage used by the importer.
type Store interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Upsert(ctx context.Context, tx pgx.Tx, promos []model.PromoCode) error
}

// ImportResult summarises an import run.
type ImportResult struct {
	Files    int `json:"files"`
	Imported int `json:"imported"`
}

// Importer loads promo files and upserts their definitions by name.
type Importer struct {
	loader Loader
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewImporter creates an importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "promo-importer").Logger(),
		now:    time.Now,
	}
}

// Import loads every path concurrently, merges them so that later paths win
// on name clashes, and writes the result in one transaction.
func (im *Importer) Import(ctx context.Context, paths ...string) (ImportResult, error) {
	type loadResult struct {
		set Set
		err error
	}

	results := make([]loadResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			set, err := im.loader.Load(ctx, path)
			results[i] = loadResult{set: set, err: err}
		}(i, path)
	}
	wg.Wait()

	merged := NewSet(1024)
	for i, r := range results {
		if r.err != nil {
			im.logger.Error().Err(r.err).Str("file", paths[i]).Msg("failed to load promo file")
			return ImportResult{}, fmt.Errorf("failed to load promo file %s: %w", paths[i], r.err)
		}
		merged.Merge(r.set)
	}

	promos := merged.All()
	now := im.now()
	for i := range promos {
		promos[i].ID = uuid.New()
		promos[i].CreatedAt = now
	}

	tx, err := im.store.BeginTx(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	if err := im.store.Upsert(ctx, tx, promos); err != nil {
		_ = tx.Rollback(ctx)
		return ImportResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ImportResult{}, fmt.Errorf("failed to commit promo import: %w", err)
	}

	im.logger.Info().
		Int("files", len(paths)).
		Int("imported", len(promos)).
		Msg("promo import finished")

	return ImportResult{Files: len(paths), Imported: len(promos)}, nil
}
