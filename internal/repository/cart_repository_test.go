package repository

import (
	"context"
	"testing"
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_AddIncrementsExistingRow(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(pool, zerolog.Nop())
	ctx := context.Background()
	items := seedItems(t, pool, testItem("C-1", "100.00", 10))
	userID := uuid.New()

	first, err := repo.Add(ctx, &model.CartItem{ID: uuid.New(), ItemID: items[0].ID, Count: 1, UserID: &userID, CreatedAt: time.Now()})
	require.NoError(t, err)

	second, err := repo.Add(ctx, &model.CartItem{ID: uuid.New(), ItemID: items[0].ID, Count: 2, UserID: &userID, CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Count)

	cart, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	require.NotNil(t, cart[0].Item)
	assert.Equal(t, "C-1", cart[0].Item.Article)
}

func TestCartRepository_UpdateAndDeleteScopedToUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(pool, zerolog.Nop())
	ctx := context.Background()
	items := seedItems(t, pool, testItem("C-2", "100.00", 10))
	owner := uuid.New()
	stranger := uuid.New()

	row, err := repo.Add(ctx, &model.CartItem{ID: uuid.New(), ItemID: items[0].ID, Count: 1, UserID: &owner, CreatedAt: time.Now()})
	require.NoError(t, err)

	ok, err := repo.UpdateCount(ctx, row.ID, stranger, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateCount(ctx, row.ID, owner, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, row.ID, stranger)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, row.ID, owner)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCartRepository_BatchOperations(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(pool, zerolog.Nop())
	ctx := context.Background()
	items := seedItems(t, pool, testItem("B-1", "100.00", 10), testItem("B-2", "50.00", 10))
	userID := uuid.New()
	now := time.Now()

	rows := []model.CartItem{
		{ID: uuid.New(), ItemID: items[0].ID, Count: 1, UserID: &userID, CreatedAt: now},
		{ID: uuid.New(), ItemID: items[1].ID, Count: 2, UserID: &userID, CreatedAt: now.Add(time.Second)},
	}

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateItems(ctx, tx, rows))
	locked, err := repo.ListByUserTx(ctx, tx, userID)
	require.NoError(t, err)
	assert.Len(t, locked, 2)

	rows[0].Count = 4
	require.NoError(t, repo.UpdateCounts(ctx, tx, rows[:1]))
	require.NoError(t, repo.DeleteItems(ctx, tx, []uuid.UUID{rows[1].ID}))
	require.NoError(t, tx.Commit(ctx))

	cart, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 4, cart[0].Count)
}
