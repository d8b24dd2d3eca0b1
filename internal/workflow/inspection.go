package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"garageflow/internal/booking"
	"garageflow/internal/parts"
)

// IssueInput is the boundary payload for one inspection finding. Part costs
// are not accepted from the caller; they are resolved from the catalog so
// the snapshot in the booking is the catalog's price at submission time.
type IssueInput struct {
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Severity    booking.Severity `json:"severity"`
	Parts       []PartUsageInput `json:"parts,omitempty"`
	LaborHours  decimal.Decimal  `json:"laborHours"`
	LaborRate   decimal.Decimal  `json:"laborRate"`
}

type PartUsageInput struct {
	PartID   string `json:"partId"`
	Quantity int    `json:"quantity"`
}

// SubmitInspection records the mechanic's findings and prices them.
// Per issue: subtotal = sum(part cost x quantity) + laborHours x laborRate.
// The booking moves through inspection_in_progress if the mechanic never
// explicitly started one, ending at inspection_completed.
func (e *Engine) SubmitInspection(ctx context.Context, b *booking.Booking, issues []IssueInput, notes string, estimatedDays int) (*booking.Booking, *Event, error) {
	if b.Status != booking.StatusAssigned && b.Status != booking.StatusInspectionInProgress {
		return nil, nil, errInvalidTransition(string(b.Status), string(booking.StatusInspectionCompleted))
	}
	if b.AssignedMechanicID == "" {
		return nil, nil, errMissingPrecondition("no mechanic assigned")
	}
	if len(issues) == 0 {
		return nil, nil, errValidation("at least one issue is required")
	}
	if estimatedDays < 0 {
		return nil, nil, errValidation("estimatedDays must be >= 0")
	}

	now := e.Now()
	insp := booking.Inspection{
		ID:            e.NewID(),
		MechanicID:    b.AssignedMechanicID,
		Date:          now,
		Notes:         notes,
		EstimatedDays: estimatedDays,
	}

	total := decimal.Zero
	for i, in := range issues {
		issue, err := e.priceIssue(ctx, in)
		if err != nil {
			var werr Error
			if errors.As(err, &werr) {
				werr.Message = fmt.Sprintf("issue %d: %s", i+1, werr.Message)
				return nil, nil, werr
			}
			return nil, nil, err
		}
		insp.Issues = append(insp.Issues, issue)
		total = total.Add(issue.Subtotal)
	}
	insp.TotalEstimatedCost = total

	out := b.Clone()
	// Re-inspection is an overwrite, never a merge.
	out.Inspection = &insp
	if out.Status == booking.StatusAssigned {
		if err := transition(out, booking.StatusInspectionInProgress); err != nil {
			return nil, nil, err
		}
	}
	if err := transition(out, booking.StatusInspectionCompleted); err != nil {
		return nil, nil, err
	}
	out.UpdatedAt = now

	ev := &Event{
		Type:       EventInspectionCompleted,
		BookingID:  out.ID,
		OccurredAt: now,
		Data: map[string]string{
			"customerName": out.CustomerName,
			"vehicleModel": out.VehicleModel,
			"issueCount":   fmt.Sprintf("%d", len(insp.Issues)),
		},
	}
	return out, ev, nil
}

func (e *Engine) priceIssue(ctx context.Context, in IssueInput) (booking.InspectionIssue, error) {
	var zero booking.InspectionIssue
	if !booking.ValidIssueCategory(in.Category) {
		return zero, errValidation(fmt.Sprintf("unknown category: %q", in.Category))
	}
	if !booking.ValidSeverity(in.Severity) {
		return zero, errValidation(fmt.Sprintf("unknown severity: %q", in.Severity))
	}
	if in.LaborHours.IsNegative() || in.LaborRate.IsNegative() {
		return zero, errValidation("labor hours and rate must be >= 0")
	}

	issue := booking.InspectionIssue{
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Severity:    in.Severity,
		LaborHours:  in.LaborHours,
		LaborRate:   in.LaborRate,
	}

	partsTotal := decimal.Zero
	for _, pu := range in.Parts {
		if pu.Quantity < 0 {
			return zero, errValidation("part quantity must be >= 1")
		}
		qty := pu.Quantity
		if qty == 0 {
			qty = 1
		}
		p, err := e.Parts.Lookup(ctx, pu.PartID)
		if err != nil {
			if errors.Is(err, parts.ErrNotFound) {
				return zero, errNotFound(fmt.Sprintf("part %s not found", pu.PartID))
			}
			return zero, err
		}
		issue.Parts = append(issue.Parts, booking.PartUsage{
			PartID:   p.ID,
			Name:     p.Name,
			Cost:     p.Cost,
			Quantity: qty,
		})
		partsTotal = partsTotal.Add(p.Cost.Mul(decimal.NewFromInt(int64(qty))))
	}

	issue.Subtotal = partsTotal.Add(in.LaborHours.Mul(in.LaborRate))
	return issue, nil
}
