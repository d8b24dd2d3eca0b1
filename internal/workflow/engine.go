package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"garageflow/internal/booking"
	"garageflow/internal/mechanic"
	"garageflow/internal/parts"
)

type MechanicDirectory interface {
	Lookup(ctx context.Context, id string) (*mechanic.Mechanic, error)
}

type PartsCatalog interface {
	Lookup(ctx context.Context, id string) (*parts.Part, error)
}

// Engine holds the workflow business rules. Every operation takes a booking
// plus a payload and returns a new booking value (the input is cloned, never
// mutated) together with an optional semantic event for the dispatcher.
// Operations fail all-or-nothing with a typed Error.
type Engine struct {
	Mechanics MechanicDirectory
	Parts     PartsCatalog

	// Now and NewID are injectable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

func NewEngine(mechanics MechanicDirectory, catalog PartsCatalog) *Engine {
	return &Engine{
		Mechanics: mechanics,
		Parts:     catalog,
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// transition moves b to the target status, enforcing the registry table.
func transition(b *booking.Booking, to booking.Status) error {
	if !booking.CanTransition(b.Status, to) {
		return errInvalidTransition(string(b.Status), string(to))
	}
	b.Status = to
	return nil
}

// AssignMechanic attaches an available mechanic and moves the booking to
// assigned. Calling it again while assigned reassigns without a status
// change.
func (e *Engine) AssignMechanic(ctx context.Context, b *booking.Booking, mechanicID string) (*booking.Booking, *Event, error) {
	if b.Status != booking.StatusPendingAssignment && b.Status != booking.StatusAssigned {
		return nil, nil, errInvalidTransition(string(b.Status), string(booking.StatusAssigned))
	}
	if strings.TrimSpace(mechanicID) == "" {
		return nil, nil, errValidation("mechanicId is required")
	}

	m, err := e.Mechanics.Lookup(ctx, mechanicID)
	if err != nil {
		if errors.Is(err, mechanic.ErrNotFound) {
			return nil, nil, errNotFound(fmt.Sprintf("mechanic %s not found", mechanicID))
		}
		return nil, nil, err
	}
	if !m.Available {
		return nil, nil, Error{Code: CodeMechanicUnavailable, Message: fmt.Sprintf("mechanic %s is not available", m.Name)}
	}

	out := b.Clone()
	out.AssignedMechanicID = m.ID
	if out.Status == booking.StatusPendingAssignment {
		if err := transition(out, booking.StatusAssigned); err != nil {
			return nil, nil, err
		}
	}
	out.UpdatedAt = e.Now()

	ev := &Event{
		Type:       EventMechanicAssigned,
		BookingID:  out.ID,
		OccurredAt: out.UpdatedAt,
		Data: map[string]string{
			"customerName":  out.CustomerName,
			"mechanicName":  m.Name,
			"mechanicPhone": m.Phone,
			"vehicleModel":  out.VehicleModel,
		},
	}
	return out, ev, nil
}

// StartInspection marks the assigned mechanic as having begun work on the
// inspection. It is recorded in the progress log like other status moves.
func (e *Engine) StartInspection(_ context.Context, b *booking.Booking, actor string) (*booking.Booking, *Event, error) {
	if b.AssignedMechanicID == "" {
		return nil, nil, errMissingPrecondition("no mechanic assigned")
	}
	out := b.Clone()
	if err := transition(out, booking.StatusInspectionInProgress); err != nil {
		return nil, nil, err
	}
	now := e.Now()
	out.WorkProgressLog = append(out.WorkProgressLog, booking.WorkProgressEntry{
		Date:   now,
		Status: booking.StatusInspectionInProgress,
		Actor:  actor,
	})
	out.UpdatedAt = now
	return out, nil, nil
}

// UpdateWorkProgress appends a progress entry and moves the booking to
// newStatus. Only the work statuses are reachable through it; the registry
// table still decides legality, and per-status flags decide whether a note
// is mandatory and whether the customer is notified.
func (e *Engine) UpdateWorkProgress(_ context.Context, b *booking.Booking, newStatus booking.Status, note, actor string) (*booking.Booking, *Event, error) {
	switch newStatus {
	case booking.StatusWorkInProgress, booking.StatusWaitingForParts, booking.StatusWorkCompleted:
	default:
		return nil, nil, errValidation(fmt.Sprintf("%s is not a work progress status", newStatus))
	}
	if strings.TrimSpace(actor) == "" {
		return nil, nil, errValidation("actor is required")
	}
	meta := booking.MetaFor(newStatus)
	if meta.RequiresDescription && strings.TrimSpace(note) == "" {
		return nil, nil, errValidation(fmt.Sprintf("a note is required when moving to %s", newStatus))
	}

	out := b.Clone()
	if err := transition(out, newStatus); err != nil {
		return nil, nil, err
	}
	now := e.Now()
	out.WorkProgressLog = append(out.WorkProgressLog, booking.WorkProgressEntry{
		Date:   now,
		Status: newStatus,
		Note:   note,
		Actor:  actor,
	})
	out.UpdatedAt = now

	if !meta.AutoNotify {
		return out, nil, nil
	}
	evType := EventWorkInProgress
	if newStatus == booking.StatusWorkCompleted {
		evType = EventWorkCompleted
	}
	ev := &Event{
		Type:       evType,
		BookingID:  out.ID,
		OccurredAt: now,
		Data: map[string]string{
			"customerName": out.CustomerName,
			"vehicleModel": out.VehicleModel,
			"note":         note,
		},
	}
	return out, ev, nil
}

// AddAdditionalExpense records an ad-hoc charge incurred during work. It
// never changes the status and is rejected once the booking is terminal.
func (e *Engine) AddAdditionalExpense(_ context.Context, b *booking.Booking, typ booking.ExpenseType, description string, amount decimal.Decimal, quantity int, actor string) (*booking.Booking, *Event, error) {
	if booking.IsTerminal(b.Status) {
		return nil, nil, Error{Code: CodeInvalidTransition, Message: fmt.Sprintf("booking is %s, no further charges can be added", b.Status)}
	}
	if !booking.ValidExpenseType(typ) {
		return nil, nil, errValidation(fmt.Sprintf("unknown expense type: %s", typ))
	}
	if strings.TrimSpace(description) == "" {
		return nil, nil, errValidation("description is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, errValidation("amount must be > 0")
	}
	if quantity < 0 {
		return nil, nil, errValidation("quantity must be >= 1")
	}
	if quantity == 0 {
		quantity = 1
	}
	if strings.TrimSpace(actor) == "" {
		return nil, nil, errValidation("actor is required")
	}

	out := b.Clone()
	now := e.Now()
	out.AdditionalExpenses = append(out.AdditionalExpenses, booking.AdditionalExpense{
		ID:          e.NewID(),
		Type:        typ,
		Description: description,
		Amount:      amount,
		Quantity:    quantity,
		Date:        now,
		Actor:       actor,
	})
	out.UpdatedAt = now
	return out, nil, nil
}

// RecordPayment closes the loop after the invoice has been settled.
func (e *Engine) RecordPayment(_ context.Context, b *booking.Booking) (*booking.Booking, *Event, error) {
	if b.Invoice == nil {
		return nil, nil, errMissingPrecondition("no invoice generated")
	}
	out := b.Clone()
	if err := transition(out, booking.StatusPaymentCompleted); err != nil {
		return nil, nil, err
	}
	now := e.Now()
	out.UpdatedAt = now
	ev := &Event{
		Type:       EventPaymentReceived,
		BookingID:  out.ID,
		OccurredAt: now,
		Data: map[string]string{
			"customerName": out.CustomerName,
			"total":        out.Invoice.Total.StringFixed(2),
		},
	}
	return out, ev, nil
}

// CancelBooking cancels an intake that has not entered the inspection
// pipeline. The reason is kept in the progress log.
func (e *Engine) CancelBooking(_ context.Context, b *booking.Booking, reason, actor string) (*booking.Booking, *Event, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, nil, errValidation("a cancellation reason is required")
	}
	out := b.Clone()
	if err := transition(out, booking.StatusCancelled); err != nil {
		return nil, nil, err
	}
	now := e.Now()
	out.WorkProgressLog = append(out.WorkProgressLog, booking.WorkProgressEntry{
		Date:   now,
		Status: booking.StatusCancelled,
		Note:   reason,
		Actor:  actor,
	})
	out.UpdatedAt = now
	return out, nil, nil
}

// ComposeCustomNotification validates a free-form message and yields the
// event for the dispatcher. The booking itself is untouched; the dispatcher
// appends the delivery record to the notification log.
func (e *Engine) ComposeCustomNotification(_ context.Context, b *booking.Booking, channel booking.NotificationChannel, message string) (*Event, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errValidation("message is required")
	}
	if !booking.ValidNotificationChannel(channel) {
		return nil, errValidation(fmt.Sprintf("unknown channel: %s", channel))
	}
	return &Event{
		Type:       EventCustomMessage,
		BookingID:  b.ID,
		OccurredAt: e.Now(),
		Channel:    channel,
		Data:       map[string]string{"message": message, "customerName": b.CustomerName},
	}, nil
}
