// Package pricing computes order totals, promo discounts and gateway receipts.
package pricing

import (
	"jewelry-store/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Options carries shop-wide pricing settings.
type Options struct {
	// FreeDeliveryThreshold makes delivery free once the subtotal reaches it.
	// Zero disables the rule.
	FreeDeliveryThreshold decimal.Decimal
}

// Line is a priced order position.
type Line struct {
	Position  model.OrderPosition
	LineTotal decimal.Decimal
	Eligible  bool
}

// Breakdown is the full result of pricing an order.
type Breakdown struct {
	Lines   []Line
	Summary model.OrderSummary
	Promo   *model.PromoCode
}

// LineTotal is (unit price - unit discount) * count.
func LineTotal(p model.OrderPosition) decimal.Decimal {
	unit := p.Price.Sub(model.UnitDiscount(p.Price, p.Discount))
	return unit.Mul(decimal.NewFromInt(int64(p.Count)))
}

// Calculate prices positions with the given delivery price and optional promo.
func Calculate(positions []model.OrderPosition, delivery decimal.Decimal, promo *model.PromoCode, opts Options) Breakdown {
	b := Breakdown{
		Lines: make([]Line, 0, len(positions)),
		Promo: promo,
	}

	fullPrice := decimal.Zero
	subtotal := decimal.Zero
	eligible := decimal.Zero

	for _, p := range positions {
		line := Line{
			Position:  p,
			LineTotal: LineTotal(p),
			Eligible:  promo != nil && promo.AppliesTo(p.ItemID),
		}
		b.Lines = append(b.Lines, line)

		fullPrice = fullPrice.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Count))))
		subtotal = subtotal.Add(line.LineTotal)
		if line.Eligible {
			eligible = eligible.Add(line.LineTotal)
		}
	}

	if delivery.IsNegative() {
		delivery = decimal.Zero
	}

	freeDelivery := false
	if opts.FreeDeliveryThreshold.IsPositive() && subtotal.GreaterThanOrEqual(opts.FreeDeliveryThreshold) {
		freeDelivery = true
	}

	promoDiscount := decimal.Zero
	if promo != nil {
		switch {
		case promo.FreeDelivery:
			freeDelivery = true
		case promo.Discount != nil:
			promoDiscount = decimal.Min(*promo.Discount, subtotal)
		case promo.DiscountPercent != nil:
			pct := decimal.NewFromInt(int64(*promo.DiscountPercent))
			promoDiscount = eligible.Mul(pct).Div(hundred).Round(2)
		}
	}

	if freeDelivery {
		delivery = decimal.Zero
	}

	total := subtotal.Add(delivery).Sub(promoDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	b.Summary = model.OrderSummary{
		FullPrice:       fullPrice,
		Subtotal:        subtotal,
		DeliveryPrice:   delivery,
		PromoDiscount:   promoDiscount,
		Total:           total,
		DiscountPercent: discountPercent(fullPrice.Add(delivery), total),
		FreeDelivery:    freeDelivery,
	}

	return b
}

// discountPercent is the whole-percent saving of total against gross.
func discountPercent(gross, total decimal.Decimal) int {
	if !gross.IsPositive() || total.GreaterThanOrEqual(gross) {
		return 0
	}
	return int(gross.Sub(total).Mul(hundred).Div(gross).Floor().IntPart())
}

// Summarize prices a stored order using its recorded delivery price.
func Summarize(order *model.Order, opts Options) model.OrderSummary {
	return Calculate(order.Positions, order.DeliveryPrice, order.PromoCode, opts).Summary
}
