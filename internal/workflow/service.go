package workflow

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"garageflow/internal/booking"
	"garageflow/pkg/logger"
	"garageflow/pkg/metrics"
)

// Notifier is the outbound side of a successful transition. Dispatch is
// best-effort: it composes and sends the customer message and records the
// delivery outcome, but its failure never affects the transition.
type Notifier interface {
	Dispatch(ctx context.Context, b *booking.Booking, ev Event)
}

// Service wires the pure engine to a store and the notification dispatcher.
// Every mutation runs under the store's per-booking exclusion; the event
// produced by the engine is dispatched asynchronously after the new state
// is persisted.
type Service struct {
	store    booking.Store
	engine   *Engine
	notifier Notifier
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewService(store booking.Store, engine *Engine, notifier Notifier, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, engine: engine, notifier: notifier, log: log, metrics: m}
}

func (s *Service) Store() booking.Store { return s.store }

type CreateInput struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`
	VehicleModel  string `json:"vehicleModel"`
	VehiclePlate  string `json:"vehiclePlate"`
}

// CreateBooking is the intake step: a fresh aggregate in pending_assignment
// with customer and vehicle details snapshotted.
func (s *Service) CreateBooking(ctx context.Context, in CreateInput) (*booking.Booking, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, errValidation("customerName is required")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" && strings.TrimSpace(in.CustomerEmail) == "" {
		return nil, errValidation("a phone number or email is required")
	}
	if strings.TrimSpace(in.VehicleModel) == "" || strings.TrimSpace(in.VehiclePlate) == "" {
		return nil, errValidation("vehicleModel and vehiclePlate are required")
	}

	now := s.engine.Now()
	b := &booking.Booking{
		ID:            s.engine.NewID(),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		VehicleModel:  strings.TrimSpace(in.VehicleModel),
		VehiclePlate:  strings.TrimSpace(in.VehiclePlate),
		Status:        booking.StatusPendingAssignment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("booking created", "bookingId", b.ID, "plate", b.VehiclePlate)
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*booking.Booking, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*booking.Booking, error) {
	return s.store.List(ctx)
}

func (s *Service) AssignMechanic(ctx context.Context, id, mechanicID string) (*booking.Booking, error) {
	return s.apply(ctx, id, "assign_mechanic", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.AssignMechanic(ctx, b, mechanicID)
	})
}

func (s *Service) StartInspection(ctx context.Context, id, actor string) (*booking.Booking, error) {
	return s.apply(ctx, id, "start_inspection", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.StartInspection(ctx, b, actor)
	})
}

func (s *Service) SubmitInspection(ctx context.Context, id string, issues []IssueInput, notes string, estimatedDays int) (*booking.Booking, error) {
	return s.apply(ctx, id, "submit_inspection", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.SubmitInspection(ctx, b, issues, notes, estimatedDays)
	})
}

func (s *Service) GenerateQuotation(ctx context.Context, id string) (*booking.Booking, error) {
	return s.apply(ctx, id, "generate_quotation", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.GenerateQuotation(ctx, b)
	})
}

func (s *Service) RecordCustomerApproval(ctx context.Context, id string, decision booking.ApprovalDecision, reason string) (*booking.Booking, error) {
	return s.apply(ctx, id, "record_approval", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.RecordCustomerApproval(ctx, b, decision, reason)
	})
}

func (s *Service) UpdateWorkProgress(ctx context.Context, id string, newStatus booking.Status, note, actor string) (*booking.Booking, error) {
	return s.apply(ctx, id, "update_progress", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.UpdateWorkProgress(ctx, b, newStatus, note, actor)
	})
}

func (s *Service) AddAdditionalExpense(ctx context.Context, id string, typ booking.ExpenseType, description string, amount decimal.Decimal, quantity int, actor string) (*booking.Booking, error) {
	return s.apply(ctx, id, "add_expense", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.AddAdditionalExpense(ctx, b, typ, description, amount, quantity, actor)
	})
}

func (s *Service) GenerateInvoice(ctx context.Context, id string) (*booking.Booking, error) {
	return s.apply(ctx, id, "generate_invoice", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.GenerateInvoice(ctx, b)
	})
}

func (s *Service) RecordPayment(ctx context.Context, id string) (*booking.Booking, error) {
	return s.apply(ctx, id, "record_payment", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.RecordPayment(ctx, b)
	})
}

func (s *Service) CancelBooking(ctx context.Context, id, reason, actor string) (*booking.Booking, error) {
	return s.apply(ctx, id, "cancel", func(b *booking.Booking) (*booking.Booking, *Event, error) {
		return s.engine.CancelBooking(ctx, b, reason, actor)
	})
}

// SendCustomNotification dispatches an ad-hoc message on one channel. The
// status is untouched; the dispatcher appends the delivery record to the
// booking's notification log.
func (s *Service) SendCustomNotification(ctx context.Context, id string, channel booking.NotificationChannel, message string) (*booking.Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ev, err := s.engine.ComposeCustomNotification(ctx, b, channel, message)
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, b, *ev)
	return b, nil
}

func (s *Service) apply(ctx context.Context, id, op string, fn func(b *booking.Booking) (*booking.Booking, *Event, error)) (*booking.Booking, error) {
	var ev *Event
	updated, err := s.store.Update(ctx, id, func(b *booking.Booking) (*booking.Booking, error) {
		next, e, err := fn(b)
		if err != nil {
			return nil, err
		}
		ev = e
		return next, nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.TransitionFailures.WithLabelValues(op).Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(op).Inc()
	}
	s.log.Info("transition applied", "bookingId", id, "operation", op, "status", string(updated.Status))
	if ev != nil {
		s.dispatch(ctx, updated, *ev)
	}
	return updated, nil
}

func (s *Service) dispatch(ctx context.Context, b *booking.Booking, ev Event) {
	if s.notifier == nil {
		return
	}
	// Fire-and-forget: a later transition must never wait on delivery.
	go s.notifier.Dispatch(context.WithoutCancel(ctx), b.Clone(), ev)
}
