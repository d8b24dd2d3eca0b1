package workflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"garageflow/internal/booking"
)

// GSTRate is the fixed goods-and-services tax applied at quotation and
// invoice time. Amounts stay exact decimals throughout; rounding to two
// places happens only where values are rendered for display.
var GSTRate = decimal.RequireFromString("0.18")

const quotationValidity = 7 * 24 * time.Hour

// GenerateQuotation derives the customer-facing estimate from the recorded
// inspection: one line item per issue, subtotal equal to the inspection's
// total estimated cost, tax on top.
func (e *Engine) GenerateQuotation(_ context.Context, b *booking.Booking) (*booking.Booking, *Event, error) {
	if b.Status != booking.StatusInspectionCompleted {
		return nil, nil, errInvalidTransition(string(b.Status), string(booking.StatusQuotationSent))
	}
	if b.Inspection == nil {
		return nil, nil, errMissingPrecondition("no inspection recorded")
	}

	now := e.Now()
	subtotal := b.Inspection.TotalEstimatedCost
	tax := subtotal.Mul(GSTRate)

	q := booking.Quotation{
		ID:            e.NewID(),
		BookingID:     b.ID,
		Date:          now,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		EstimatedDays: b.Inspection.EstimatedDays,
		ValidUntil:    now.Add(quotationValidity),
	}
	for _, iss := range b.Inspection.Issues {
		q.Items = append(q.Items, booking.QuotationItem{
			Category:    iss.Category,
			Description: iss.Description,
			Subtotal:    iss.Subtotal,
		})
	}

	out := b.Clone()
	out.Quotation = &q
	if err := transition(out, booking.StatusQuotationSent); err != nil {
		return nil, nil, err
	}
	out.UpdatedAt = now

	ev := &Event{
		Type:       EventQuotationSent,
		BookingID:  out.ID,
		OccurredAt: now,
		Data: map[string]string{
			"customerName":  out.CustomerName,
			"vehicleModel":  out.VehicleModel,
			"total":         q.Total.StringFixed(2),
			"estimatedDays": strconv.Itoa(q.EstimatedDays),
			"validUntil":    q.ValidUntil.Format("02 Jan 2006"),
		},
	}
	return out, ev, nil
}

// RecordCustomerApproval stores the customer's decision on the quotation.
// A rejection must carry a reason; an approval must not. Rejection is
// terminal: no revised-quotation loop exists in the status table.
func (e *Engine) RecordCustomerApproval(_ context.Context, b *booking.Booking, decision booking.ApprovalDecision, reason string) (*booking.Booking, *Event, error) {
	if b.Status != booking.StatusQuotationSent {
		return nil, nil, errInvalidTransition(string(b.Status), string(decision))
	}
	if b.Quotation == nil {
		return nil, nil, errMissingPrecondition("no quotation sent")
	}

	reason = strings.TrimSpace(reason)
	now := e.Now()
	out := b.Clone()

	switch decision {
	case booking.DecisionApproved:
		if reason != "" {
			return nil, nil, errValidation("a reason is only accepted on rejection")
		}
		if err := transition(out, booking.StatusApproved); err != nil {
			return nil, nil, err
		}
		out.CustomerApproval = &booking.CustomerApproval{
			Status:        booking.DecisionApproved,
			Date:          now,
			ApprovedItems: append([]booking.QuotationItem(nil), b.Quotation.Items...),
		}
	case booking.DecisionRejected:
		if reason == "" {
			return nil, nil, errValidation("a rejection reason is required")
		}
		if err := transition(out, booking.StatusRejected); err != nil {
			return nil, nil, err
		}
		out.CustomerApproval = &booking.CustomerApproval{
			Status: booking.DecisionRejected,
			Date:   now,
			Reason: reason,
		}
	default:
		return nil, nil, errValidation("decision must be approved or rejected")
	}
	out.UpdatedAt = now

	// No notification is defined for rejection.
	if decision == booking.DecisionRejected {
		return out, nil, nil
	}
	ev := &Event{
		Type:       EventWorkApproved,
		BookingID:  out.ID,
		OccurredAt: now,
		Data: map[string]string{
			"customerName": out.CustomerName,
			"vehicleModel": out.VehicleModel,
			"total":        b.Quotation.Total.StringFixed(2),
		},
	}
	return out, ev, nil
}
