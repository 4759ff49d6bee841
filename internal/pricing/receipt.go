package pricing

import (
	"strings"

	"jewelry-store/internal/model"

	"github.com/shopspring/decimal"
)

// MaxReceiptItems is the gateway's limit of lines per payment, delivery included.
const MaxReceiptItems = 6

// DeliveryDescription names the synthetic delivery line.
const DeliveryDescription = "Доставка"

// ReceiptLine is one fiscal receipt line. Amount is the line total in kopecks.
type ReceiptLine struct {
	Description string
	Quantity    int
	Amount      int64
}

// Receipt is the gateway view of an order in kopecks.
type Receipt struct {
	Total int64
	Lines []ReceiptLine
}

// Kopecks converts a currency amount to integer kopecks, rounding half away from zero.
func Kopecks(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// BuildReceipt splits the order total into receipt lines that sum exactly to
// the integer-kopeck total. Every goods line with a positive price keeps at
// least one kopeck. When the discounted goods amount is too small for that,
// the goods are folded into a single line.
func BuildReceipt(b Breakdown) (*Receipt, error) {
	count := len(b.Lines)
	if b.Summary.DeliveryPrice.IsPositive() {
		count++
	}
	if count > MaxReceiptItems {
		return nil, model.ErrTooManyReceiptItems.With(map[string]string{
			"max": decimal.NewFromInt(MaxReceiptItems).String(),
		})
	}

	total := Kopecks(b.Summary.Total)
	var delivery int64
	if b.Summary.DeliveryPrice.IsPositive() {
		delivery = min(Kopecks(b.Summary.DeliveryPrice), total)
	}

	r := &Receipt{
		Total: total,
		Lines: goodsLines(b, total-delivery),
	}

	if b.Summary.DeliveryPrice.IsPositive() && delivery > 0 {
		r.Lines = append(r.Lines, ReceiptLine{
			Description: DeliveryDescription,
			Quantity:    1,
			Amount:      delivery,
		})
	}

	return r, nil
}

// goodsLines distributes goods kopecks over the order positions.
func goodsLines(b Breakdown, goods int64) []ReceiptLine {
	if goods <= 0 || len(b.Lines) == 0 {
		return nil
	}

	amounts := lineAmounts(b)

	priced := 0
	for i, line := range b.Lines {
		if Kopecks(line.LineTotal) > 0 {
			priced++
			amounts[i] = max(amounts[i], 1)
		}
	}

	if goods < int64(priced) || priced == 0 {
		names := make([]string, 0, len(b.Lines))
		for _, line := range b.Lines {
			names = append(names, line.Position.Name)
		}
		return []ReceiptLine{{
			Description: strings.Join(names, ", "),
			Quantity:    1,
			Amount:      goods,
		}}
	}

	var sum int64
	for _, a := range amounts {
		sum += a
	}
	settle(amounts, goods-sum)

	lines := make([]ReceiptLine, 0, len(b.Lines))
	for i, line := range b.Lines {
		lines = append(lines, ReceiptLine{
			Description: line.Position.Name,
			Quantity:    line.Position.Count,
			Amount:      amounts[i],
		})
	}
	return lines
}

// settle applies a rounding remainder. A surplus goes to the first priced
// line; a deficit is taken from lines in order, none dropping below one kopeck.
func settle(amounts []int64, remainder int64) {
	if remainder > 0 {
		for i, a := range amounts {
			if a > 0 {
				amounts[i] += remainder
				return
			}
		}
		amounts[0] += remainder
		return
	}

	for i := range amounts {
		if remainder == 0 {
			return
		}
		if amounts[i] <= 1 {
			continue
		}
		take := min(amounts[i]-1, -remainder)
		amounts[i] -= take
		remainder += take
	}
}

// lineAmounts returns each position's discounted total in kopecks.
func lineAmounts(b Breakdown) []int64 {
	amounts := make([]int64, len(b.Lines))
	for i, line := range b.Lines {
		amounts[i] = Kopecks(line.LineTotal)
	}

	promo := b.Promo
	if promo == nil || !b.Summary.PromoDiscount.IsPositive() {
		return amounts
	}

	switch {
	case promo.DiscountPercent != nil:
		keep := hundred.Sub(decimal.NewFromInt(int64(*promo.DiscountPercent)))
		for i, line := range b.Lines {
			if line.Eligible {
				amounts[i] = Kopecks(line.LineTotal.Mul(keep).Div(hundred))
			}
		}
	case promo.Discount != nil:
		spreadDiscount(amounts, Kopecks(b.Summary.PromoDiscount))
	}

	return amounts
}

// spreadDiscount subtracts a fixed discount from the lines in proportion to
// their totals, in whole kopecks. The last priced line takes the leftover.
func spreadDiscount(amounts []int64, discount int64) {
	var base int64
	last := -1
	for i, a := range amounts {
		if a > 0 {
			base += a
			last = i
		}
	}
	if base <= 0 {
		return
	}

	remaining := discount
	for i, a := range amounts {
		if a <= 0 {
			continue
		}
		share := remaining
		if i != last {
			share = (discount*a + base/2) / base
		}
		share = min(share, a, remaining)
		amounts[i] -= share
		remaining -= share
	}
}
