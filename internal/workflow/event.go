package workflow

import (
	"time"

	"garageflow/internal/booking"
)

type EventType string

// Semantic events emitted by successful transitions. They connect the pure
// transition step to the best-effort notification dispatch step.
const (
	EventMechanicAssigned    EventType = "mechanic_assigned"
	EventInspectionCompleted EventType = "inspection_completed"
	EventQuotationSent       EventType = "quotation_sent"
	EventWorkApproved        EventType = "work_approved"
	EventWorkInProgress      EventType = "work_in_progress"
	EventWorkCompleted       EventType = "work_completed"
	EventInvoiceGenerated    EventType = "invoice_generated"
	EventPaymentReceived     EventType = "payment_received"
	EventCustomMessage       EventType = "custom_message"
)

type Event struct {
	Type       EventType
	BookingID  string
	OccurredAt time.Time

	// Channel restricts dispatch to one channel; empty means all channels
	// the booking has contact details for. Only custom messages set it.
	Channel booking.NotificationChannel

	// Data carries template parameters for message composition.
	Data map[string]string
}
