package acquiring

import (
	"fmt"
	"strconv"

	"jewelry-store/internal/pricing"

	"github.com/google/uuid"
)

const (
	vatNone              = 1
	paymentModeFull      = "full_payment"
	subjectCommodity     = "commodity"
	subjectService       = "service"
	confirmationRedirect = "redirect"
)

// NewPaymentRequest builds a redirect payment for an order receipt.
// Lines whose total does not divide evenly by the quantity are sent as a
// single unit so that the receipt still sums to the payment amount.
func NewPaymentRequest(orderID uuid.UUID, r *pricing.Receipt, phone, returnURL string) PaymentRequest {
	items := make([]ReceiptItem, 0, len(r.Lines))
	for _, line := range r.Lines {
		qty := int64(line.Quantity)
		if qty < 1 {
			qty = 1
		}

		description := line.Description
		unit := line.Amount
		if line.Amount%qty == 0 {
			unit = line.Amount / qty
		} else {
			description = fmt.Sprintf("%s x%d", line.Description, qty)
			qty = 1
		}

		subject := subjectCommodity
		if line.Description == pricing.DeliveryDescription {
			subject = subjectService
		}

		items = append(items, ReceiptItem{
			Description:    truncate(description, 128),
			Quantity:       strconv.FormatInt(qty, 10),
			Amount:         Rubles(unit),
			VatCode:        vatNone,
			PaymentMode:    paymentModeFull,
			PaymentSubject: subject,
		})
	}

	return PaymentRequest{
		Amount:  Rubles(r.Total),
		Capture: true,
		Confirmation: Confirmation{
			Type:      confirmationRedirect,
			ReturnURL: returnURL,
		},
		Description: "Order " + orderID.String(),
		Metadata:    map[string]string{"orderId": orderID.String()},
		Receipt: &Receipt{
			Customer: Customer{Phone: phone},
			Items:    items,
		},
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
