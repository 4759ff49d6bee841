// Package cart contains the rules for combining carts.
package cart

import (
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
)

// Plan lists the row changes needed to apply a merge.
type Plan struct {
	Create []model.CartItem
	Update []model.CartItem
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0
}

// MergeOnLogin folds a pre-login local cart into the user's stored cart.
// Stored rows win: an item already present keeps its stored count and the
// local count is dropped. Local items missing from the stored cart become
// new rows. Duplicate local lines for the same item are summed first.
func MergeOnLogin(userID uuid.UUID, local []model.CartItemRequest, server []model.CartItem, now time.Time) Plan {
	stored := make(map[uuid.UUID]struct{}, len(server))
	for _, row := range server {
		stored[row.ItemID] = struct{}{}
	}

	var plan Plan
	index := make(map[uuid.UUID]int)
	for _, l := range local {
		if l.Count <= 0 {
			continue
		}
		if _, ok := stored[l.ItemID]; ok {
			continue
		}
		if i, ok := index[l.ItemID]; ok {
			plan.Create[i].Count += l.Count
			continue
		}
		index[l.ItemID] = len(plan.Create)
		plan.Create = append(plan.Create, newRow(userID, l.ItemID, l.Count, now))
	}

	return plan
}

// RestoreFromPositions returns an order's positions to the owner's cart.
// Positions whose item is already in the cart increase that row's count.
func RestoreFromPositions(userID uuid.UUID, positions []model.OrderPosition, current []model.CartItem, now time.Time) Plan {
	existing := make(map[uuid.UUID]int, len(current))
	for i, row := range current {
		existing[row.ItemID] = i
	}

	var plan Plan
	updated := make(map[uuid.UUID]int)
	created := make(map[uuid.UUID]int)

	for _, p := range positions {
		if p.Count <= 0 {
			continue
		}
		if i, ok := updated[p.ItemID]; ok {
			plan.Update[i].Count += p.Count
			continue
		}
		if i, ok := existing[p.ItemID]; ok {
			row := current[i]
			row.Count += p.Count
			updated[p.ItemID] = len(plan.Update)
			plan.Update = append(plan.Update, row)
			continue
		}
		if i, ok := created[p.ItemID]; ok {
			plan.Create[i].Count += p.Count
			continue
		}
		created[p.ItemID] = len(plan.Create)
		plan.Create = append(plan.Create, newRow(userID, p.ItemID, p.Count, now))
	}

	return plan
}

func newRow(userID, itemID uuid.UUID, count int, now time.Time) model.CartItem {
	owner := userID
	return model.CartItem{
		ID:        uuid.New(),
		ItemID:    itemID,
		Count:     count,
		UserID:    &owner,
		CreatedAt: now,
	}
}
