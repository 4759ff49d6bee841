// Package lifecycle holds the order status state machine.
package lifecycle

import (
	"jewelry-store/internal/model"
)

// sequence is the linear progression of an order. Canceled is outside it.
var sequence = []model.OrderStatus{
	model.StatusNotPaid,
	model.StatusNew,
	model.StatusProcessing,
	model.StatusSent,
	model.StatusCompleted,
}

type neighbours struct {
	back *model.OrderStatus
	next *model.OrderStatus
}

var table = buildTable()

func buildTable() map[model.OrderStatus]neighbours {
	t := make(map[model.OrderStatus]neighbours, len(sequence)+1)
	for i, s := range sequence {
		var n neighbours
		if i > 0 {
			back := sequence[i-1]
			n.back = &back
		}
		if i < len(sequence)-1 {
			next := sequence[i+1]
			n.next = &next
		}
		t[s] = n
	}
	t[model.StatusCanceled] = neighbours{}
	return t
}

// Back returns the status preceding s, or nil if there is none.
func Back(s model.OrderStatus) *model.OrderStatus {
	return table[s].back
}

// Next returns the status following s, or nil if there is none.
func Next(s model.OrderStatus) *model.OrderStatus {
	return table[s].next
}

// TransitionsOf describes the manual moves available from s.
func TransitionsOf(s model.OrderStatus) model.Transitions {
	return model.Transitions{
		Current: s,
		Back:    Back(s),
		Next:    Next(s),
	}
}

// ValidateTransition allows only the immediate back or next neighbour of from.
func ValidateTransition(from, to model.OrderStatus) error {
	back, next := Back(from), Next(from)
	if (back != nil && *back == to) || (next != nil && *next == to) {
		return nil
	}

	return model.ErrStatusTransition.With(map[string]string{
		"from": string(from),
		"to":   string(to),
		"back": label(back),
		"next": label(next),
	})
}

// Terminal reports whether no further changes are possible.
func Terminal(s model.OrderStatus) bool {
	return s == model.StatusCompleted || s == model.StatusCanceled
}

// CanCancel checks whether actor may cancel the order.
func CanCancel(order *model.Order, actor model.Actor) error {
	if Terminal(order.Status) {
		return model.ErrCancelForbidden.With(map[string]string{
			"status": string(order.Status),
		})
	}

	if actor.IsAdmin {
		return nil
	}

	if order.UserID != actor.UserID {
		return model.ErrForbidden
	}

	if order.IsPayment {
		return model.ErrCancelForbidden.With(map[string]string{
			"status": string(order.Status),
			"reason": "paid",
		})
	}

	return nil
}

func label(s *model.OrderStatus) string {
	if s == nil {
		return "-"
	}
	return string(*s)
}
