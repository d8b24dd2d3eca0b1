package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"garageflow/internal/booking"
	"garageflow/internal/workflow"
	"garageflow/pkg/logger"
	"garageflow/pkg/metrics"
)

// Dispatcher composes the message for a workflow event and delivers it over
// every channel the booking has contact details for. Delivery failures are
// recorded in the booking's notification log and counted, never propagated:
// the transition that produced the event has already been persisted.
type Dispatcher struct {
	store    booking.Store
	channels []Channel
	log      logger.Logger
	metrics  *metrics.Metrics

	// NewID and Now are injectable for deterministic tests.
	NewID func() string
	Now   func() time.Time
}

func NewDispatcher(store booking.Store, log logger.Logger, m *metrics.Metrics, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		store:    store,
		channels: channels,
		log:      log,
		metrics:  m,
		NewID:    uuid.NewString,
		Now:      time.Now,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, b *booking.Booking, ev workflow.Event) {
	message := Compose(ev)
	if message == "" {
		return
	}

	for _, ch := range d.channels {
		if ev.Channel != "" && ev.Channel != ch.Name() {
			continue
		}
		recipient := recipientFor(b, ch.Name())
		if recipient == "" {
			// Broadcast events just skip channels without contact details.
			// An explicitly targeted send is still audited as failed.
			if ev.Channel == "" {
				continue
			}
			d.log.Warn("no recipient for requested channel",
				"bookingId", b.ID, "channel", string(ch.Name()), "event", string(ev.Type))
			if d.metrics != nil {
				d.metrics.Notifications.WithLabelValues(string(ch.Name()), string(booking.DeliveryFailed)).Inc()
			}
			d.record(ctx, b.ID, booking.Notification{
				ID:             d.NewID(),
				Channel:        ch.Name(),
				Message:        message,
				SentAt:         d.Now(),
				DeliveryStatus: booking.DeliveryFailed,
			})
			continue
		}

		status := booking.DeliverySent
		if err := ch.Deliver(ctx, recipient, message); err != nil {
			status = booking.DeliveryFailed
			d.log.Warn("notification delivery failed",
				"bookingId", b.ID, "channel", string(ch.Name()), "event", string(ev.Type), "error", err)
		}
		if d.metrics != nil {
			d.metrics.Notifications.WithLabelValues(string(ch.Name()), string(status)).Inc()
		}
		d.record(ctx, b.ID, booking.Notification{
			ID:             d.NewID(),
			Channel:        ch.Name(),
			Message:        message,
			SentAt:         d.Now(),
			DeliveryStatus: status,
		})
	}
}

// record appends the delivery outcome to the audit trail. Losing the record
// is tolerated (warn only): the log is an audit aid, not workflow state.
func (d *Dispatcher) record(ctx context.Context, bookingID string, n booking.Notification) {
	_, err := d.store.Update(ctx, bookingID, func(b *booking.Booking) (*booking.Booking, error) {
		b.NotificationLog = append(b.NotificationLog, n)
		return b, nil
	})
	if err != nil {
		d.log.Warn("failed to record notification", "bookingId", bookingID, "error", err)
	}
}

func recipientFor(b *booking.Booking, ch booking.NotificationChannel) string {
	switch ch {
	case booking.ChannelEmail:
		return b.CustomerEmail
	case booking.ChannelMessaging:
		return b.CustomerPhone
	}
	return ""
}
