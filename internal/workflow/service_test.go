package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"garageflow/internal/booking"
	"garageflow/pkg/logger"
	"garageflow/pkg/metrics"
)

type captureNotifier struct {
	events chan Event
}

func (n *captureNotifier) Dispatch(_ context.Context, _ *booking.Booking, ev Event) {
	n.events <- ev
}

func (n *captureNotifier) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-n.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for dispatched event")
		return Event{}
	}
}

func testService(t *testing.T) (*Service, *captureNotifier) {
	t.Helper()
	notifier := &captureNotifier{events: make(chan Event, 16)}
	svc := NewService(booking.NewMemoryStore(), testEngine(), notifier, logger.Nop(), metrics.NewForTest())
	return svc, notifier
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing name", CreateInput{CustomerPhone: "+91-99", VehicleModel: "Swift", VehiclePlate: "KA01"}},
		{"no contact details", CreateInput{CustomerName: "Asha", VehicleModel: "Swift", VehiclePlate: "KA01"}},
		{"missing vehicle", CreateInput{CustomerName: "Asha", CustomerPhone: "+91-99"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateBooking(ctx, tc.in); CodeOf(err) != CodeValidationFailed {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}

	b, err := svc.CreateBooking(ctx, CreateInput{
		CustomerName: "  Asha Verma  ", CustomerEmail: "asha@example.com",
		VehicleModel: "Honda City", VehiclePlate: "MH12AB1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != booking.StatusPendingAssignment {
		t.Fatalf("expected pending_assignment, got %s", b.Status)
	}
	if b.CustomerName != "Asha Verma" {
		t.Fatalf("name not trimmed: %q", b.CustomerName)
	}
}

func TestServicePersistsAndDispatches(t *testing.T) {
	svc, notifier := testService(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateInput{
		CustomerName: "Asha Verma", CustomerPhone: "+91-99",
		VehicleModel: "Honda City", VehiclePlate: "MH12AB1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AssignMechanic(ctx, b.ID, "mech-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if ev := notifier.next(t); ev.Type != EventMechanicAssigned {
		t.Fatalf("expected mechanic_assigned event, got %s", ev.Type)
	}

	stored, err := svc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != booking.StatusAssigned || stored.AssignedMechanicID != "mech-1" {
		t.Fatalf("assignment not persisted: %+v", stored)
	}

	// A failed transition must leave the store untouched and stay silent.
	if _, err := svc.GenerateInvoice(ctx, b.ID); CodeOf(err) != CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
	after, _ := svc.Get(ctx, b.ID)
	if after.Status != booking.StatusAssigned {
		t.Fatalf("failed transition mutated the store: %s", after.Status)
	}
	select {
	case ev := <-notifier.events:
		t.Fatalf("unexpected event after failed transition: %s", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServiceFullFlow(t *testing.T) {
	svc, notifier := testService(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateInput{
		CustomerName: "Asha Verma", CustomerPhone: "+91-99", CustomerEmail: "asha@example.com",
		VehicleModel: "Honda City", VehiclePlate: "MH12AB1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := b.ID

	steps := []struct {
		name string
		call func() (*booking.Booking, error)
		want booking.Status
		ev   EventType // "" when the step is silent
	}{
		{"assign", func() (*booking.Booking, error) { return svc.AssignMechanic(ctx, id, "mech-1") }, booking.StatusAssigned, EventMechanicAssigned},
		{"inspect", func() (*booking.Booking, error) {
			return svc.SubmitInspection(ctx, id, []IssueInput{acIssue()}, "compressor replacement", 2)
		}, booking.StatusInspectionCompleted, EventInspectionCompleted},
		{"quote", func() (*booking.Booking, error) { return svc.GenerateQuotation(ctx, id) }, booking.StatusQuotationSent, EventQuotationSent},
		{"approve", func() (*booking.Booking, error) {
			return svc.RecordCustomerApproval(ctx, id, booking.DecisionApproved, "")
		}, booking.StatusApproved, EventWorkApproved},
		{"start work", func() (*booking.Booking, error) {
			return svc.UpdateWorkProgress(ctx, id, booking.StatusWorkInProgress, "teardown", "mech-1")
		}, booking.StatusWorkInProgress, EventWorkInProgress},
		{"finish work", func() (*booking.Booking, error) {
			return svc.UpdateWorkProgress(ctx, id, booking.StatusWorkCompleted, "", "mech-1")
		}, booking.StatusWorkCompleted, EventWorkCompleted},
		{"expense", func() (*booking.Booking, error) {
			return svc.AddAdditionalExpense(ctx, id, booking.ExpensePart, "Extra refrigerant", decimal.NewFromInt(500), 2, "mech-1")
		}, booking.StatusWorkCompleted, ""},
		{"invoice", func() (*booking.Booking, error) { return svc.GenerateInvoice(ctx, id) }, booking.StatusInvoiced, EventInvoiceGenerated},
		{"payment", func() (*booking.Booking, error) { return svc.RecordPayment(ctx, id) }, booking.StatusPaymentCompleted, EventPaymentReceived},
	}

	for _, st := range steps {
		got, err := st.call()
		if err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if got.Status != st.want {
			t.Fatalf("%s: expected %s, got %s", st.name, st.want, got.Status)
		}
		if st.ev != "" {
			if ev := notifier.next(t); ev.Type != st.ev {
				t.Fatalf("%s: expected event %s, got %s", st.name, st.ev, ev.Type)
			}
		}
	}

	final, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !final.Invoice.Total.Equal(decimal.NewFromInt(21240)) {
		t.Fatalf("expected invoice total 21240, got %s", final.Invoice.Total)
	}
}

func TestSendCustomNotification(t *testing.T) {
	svc, notifier := testService(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateInput{
		CustomerName: "Asha Verma", CustomerPhone: "+91-99",
		VehicleModel: "Honda City", VehiclePlate: "MH12AB1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SendCustomNotification(ctx, b.ID, booking.ChannelMessaging, "your car is ready early"); err != nil {
		t.Fatalf("send: %v", err)
	}
	ev := notifier.next(t)
	if ev.Type != EventCustomMessage || ev.Channel != booking.ChannelMessaging {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if _, err := svc.SendCustomNotification(ctx, "bk-missing", booking.ChannelEmail, "hello"); err == nil {
		t.Fatalf("expected error for unknown booking")
	}
}
