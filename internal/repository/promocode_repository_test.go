package repository

import (
	"context"
	"testing"
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentPromo(name string, percent int) *model.PromoCode {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.PromoCode{
		ID:              uuid.New(),
		Name:            name,
		DiscountPercent: &percent,
		DateStart:       now.Add(-time.Hour),
		DateEnd:         now.Add(time.Hour),
		IsActive:        true,
		CreatedAt:       now,
	}
}

func TestPromoCodeRepository_CreateAndGetByName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPromoCodeRepository(pool, zerolog.Nop())
	ctx := context.Background()

	promo := percentPromo("SPRING", 10)
	require.NoError(t, repo.Create(ctx, promo))

	got, err := repo.GetByName(ctx, "SPRING")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, promo.ID, got.ID)
	require.NotNil(t, got.DiscountPercent)
	assert.Equal(t, 10, *got.DiscountPercent)
	assert.Nil(t, got.Discount)
	assert.Empty(t, got.ItemIDs)

	lower, err := repo.GetByName(ctx, "spring")
	require.NoError(t, err)
	assert.Nil(t, lower)

	err = repo.Create(ctx, percentPromo("SPRING", 20))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPromoCodeRepository_SoftDeleteFreesName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPromoCodeRepository(pool, zerolog.Nop())
	ctx := context.Background()

	promo := percentPromo("ONCE", 5)
	require.NoError(t, repo.Create(ctx, promo))

	ok, err := repo.SoftDelete(ctx, promo.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, promo.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, repo.Create(ctx, percentPromo("ONCE", 5)))
}

func TestPromoCodeRepository_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPromoCodeRepository(pool, zerolog.Nop())
	ctx := context.Background()
	items := seedItems(t, pool, testItem("U-1", "10.00", 1))

	fixed := decimal.NewFromInt(300)
	first := percentPromo("IMPORT", 10)
	replacement := percentPromo("IMPORT", 0)
	replacement.DiscountPercent = nil
	replacement.Discount = &fixed
	replacement.ItemIDs = []uuid.UUID{items[0].ID}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, tx, []model.PromoCode{*first}))
	require.NoError(t, repo.Upsert(ctx, tx, []model.PromoCode{*replacement}))
	require.NoError(t, tx.Commit(ctx))

	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	require.NotNil(t, list[0].Discount)
	assert.True(t, fixed.Equal(*list[0].Discount))
	assert.Nil(t, list[0].DiscountPercent)
	assert.Equal(t, []uuid.UUID{items[0].ID}, list[0].ItemIDs)
}
