package service

import (
	"context"
	"testing"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService_Add(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	item := publishedItem("C-1", "100", 0, 5)

	t.Run("published item", func(t *testing.T) {
		carts := new(MockCartRepository)
		items := new(MockItemRepository)
		svc := NewCartService(carts, items, zerolog.Nop())

		items.On("GetByID", ctx, item.ID).Return(&item, nil)
		carts.On("Add", ctx, mock.MatchedBy(func(row *model.CartItem) bool {
			return row.ItemID == item.ID && row.Count == 2 && row.UserID != nil && *row.UserID == userID
		})).Return(&model.CartItem{ID: uuid.New(), ItemID: item.ID, Count: 3, UserID: &userID}, nil)

		row, err := svc.Add(ctx, userID, &model.CartItemRequest{ItemID: item.ID, Count: 2})

		require.NoError(t, err)
		assert.Equal(t, 3, row.Count)
		require.NotNil(t, row.Item)
		assert.Equal(t, "C-1", row.Item.Article)
		carts.AssertExpectations(t)
	})

	t.Run("hidden item", func(t *testing.T) {
		carts := new(MockCartRepository)
		items := new(MockItemRepository)
		svc := NewCartService(carts, items, zerolog.Nop())
		hidden := item
		hidden.IsPublished = false

		items.On("GetByID", ctx, item.ID).Return(&hidden, nil)

		_, err := svc.Add(ctx, userID, &model.CartItemRequest{ItemID: item.ID, Count: 1})

		assert.ErrorIs(t, err, model.ErrItemNotFound)
		carts.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("zero count", func(t *testing.T) {
		svc := NewCartService(new(MockCartRepository), new(MockItemRepository), zerolog.Nop())
		_, err := svc.Add(ctx, userID, &model.CartItemRequest{ItemID: item.ID})
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})
}

func TestCartService_UpdateCountAndRemove(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	rowID := uuid.New()
	carts := new(MockCartRepository)
	svc := NewCartService(carts, new(MockItemRepository), zerolog.Nop())

	assert.ErrorIs(t, svc.UpdateCount(ctx, userID, rowID, 0), model.ErrInvalidQuantity)

	carts.On("UpdateCount", ctx, rowID, userID, 4).Return(true, nil)
	require.NoError(t, svc.UpdateCount(ctx, userID, rowID, 4))

	carts.On("Delete", ctx, rowID, userID).Return(false, nil)
	assert.ErrorIs(t, svc.Remove(ctx, userID, rowID), model.ErrNotFound)

	carts.AssertExpectations(t)
}

func TestCartService_Merge(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	stored := publishedItem("M-1", "100", 0, 5)
	fresh := publishedItem("M-2", "200", 0, 5)
	hidden := publishedItem("M-3", "300", 0, 5)
	hidden.IsPublished = false
	unknown := uuid.New()

	carts := new(MockCartRepository)
	items := new(MockItemRepository)
	tx := new(MockTx)
	svc := NewCartService(carts, items, zerolog.Nop())

	storedRow := model.CartItem{ID: uuid.New(), ItemID: stored.ID, Count: 1, UserID: &userID}
	req := &model.CartMergeRequest{Items: []model.CartItemRequest{
		{ItemID: stored.ID, Count: 4},
		{ItemID: fresh.ID, Count: 2},
		{ItemID: hidden.ID, Count: 1},
		{ItemID: unknown, Count: 1},
	}}

	items.On("GetByIDs", ctx, []uuid.UUID{stored.ID, fresh.ID, hidden.ID, unknown}).
		Return([]model.Item{stored, fresh, hidden}, nil)
	items.On("BeginTx", ctx).Return(tx, nil)
	carts.On("ListByUserTx", ctx, tx, userID).Return([]model.CartItem{storedRow}, nil)
	carts.On("CreateItems", ctx, tx, mock.MatchedBy(func(rows []model.CartItem) bool {
		return len(rows) == 1 && rows[0].ItemID == fresh.ID && rows[0].Count == 2
	})).Return(nil)
	carts.On("UpdateCounts", ctx, tx, mock.Anything).Return(nil)
	tx.On("Commit", ctx).Return(nil)
	merged := []model.CartItem{storedRow, {ID: uuid.New(), ItemID: fresh.ID, Count: 2, UserID: &userID}}
	carts.On("ListByUser", ctx, userID).Return(merged, nil)

	out, err := svc.Merge(ctx, userID, req)

	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Count, "stored count wins over local count")
	assert.True(t, tx.committed)
	carts.AssertExpectations(t)
	items.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestCartService_Merge_EmptyLocalCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	carts := new(MockCartRepository)
	items := new(MockItemRepository)
	svc := NewCartService(carts, items, zerolog.Nop())

	carts.On("ListByUser", ctx, userID).Return([]model.CartItem{}, nil)

	out, err := svc.Merge(ctx, userID, &model.CartMergeRequest{})

	require.NoError(t, err)
	assert.Empty(t, out)
	items.AssertNotCalled(t, "BeginTx", mock.Anything)
}
