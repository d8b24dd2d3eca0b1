package workflow

import (
	"context"

	"github.com/shopspring/decimal"

	"garageflow/internal/booking"
)

// GenerateInvoice produces the final bill: the frozen quotation subtotal
// plus every additional expense recorded so far, taxed at the same GST rate
// as the quotation. Expenses added after generation never change it.
func (e *Engine) GenerateInvoice(_ context.Context, b *booking.Booking) (*booking.Booking, *Event, error) {
	if b.Status != booking.StatusWorkCompleted {
		return nil, nil, errInvalidTransition(string(b.Status), string(booking.StatusInvoiced))
	}
	if b.Quotation == nil {
		return nil, nil, errMissingPrecondition("no quotation on record")
	}

	now := e.Now()
	expensesTotal := decimal.Zero
	for _, ex := range b.AdditionalExpenses {
		expensesTotal = expensesTotal.Add(ex.Contribution())
	}
	subtotal := b.Quotation.Subtotal.Add(expensesTotal)
	tax := subtotal.Mul(GSTRate)

	inv := booking.Invoice{
		ID:                      e.NewID(),
		BookingID:               b.ID,
		Date:                    now,
		QuotationAmount:         b.Quotation.Subtotal,
		AdditionalExpensesTotal: expensesTotal,
		Subtotal:                subtotal,
		Tax:                     tax,
		Total:                   subtotal.Add(tax),
	}
	for _, it := range b.Quotation.Items {
		inv.Items = append(inv.Items, booking.InvoiceItem{
			Kind:        "quotation",
			Description: it.Category + ": " + it.Description,
			Amount:      it.Subtotal,
		})
	}
	for _, ex := range b.AdditionalExpenses {
		inv.Items = append(inv.Items, booking.InvoiceItem{
			Kind:        string(ex.Type),
			Description: ex.Description,
			Amount:      ex.Contribution(),
		})
	}

	out := b.Clone()
	out.Invoice = &inv
	if err := transition(out, booking.StatusInvoiced); err != nil {
		return nil, nil, err
	}
	out.UpdatedAt = now

	ev := &Event{
		Type:       EventInvoiceGenerated,
		BookingID:  out.ID,
		OccurredAt: now,
		Data: map[string]string{
			"customerName": out.CustomerName,
			"vehicleModel": out.VehicleModel,
			"total":        inv.Total.StringFixed(2),
		},
	}
	return out, ev, nil
}
