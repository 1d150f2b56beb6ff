package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agama-events/internal/logger"
	"agama-events/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// AttendeeStore is the slice of the attendee layer the reconciler needs.
// Both mark operations are conditional on the attendee not already being
// paid, which is what makes notification replay safe.
type AttendeeStore interface {
	MarkPaidByOrderID(ctx context.Context, orderID, paymentID string) (*models.Attendee, bool, error)
	MarkFailedByOrderID(ctx context.Context, orderID string) (*models.Attendee, bool, error)
}

type Inventory interface {
	TryIncrementQuantitySold(ctx context.Context, ticketTypeID string) (bool, error)
}

// EventSource resolves the event an attendee belongs to, for the payload of
// downstream notifications.
type EventSource interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type Publisher interface {
	PublishReservationConfirmed(ev models.ReservationEvent) error
	PublishReservationFailed(ev models.ReservationEvent) error
}

// WebhookError distinguishes what the provider should see from what lands in
// the logs. Signature problems must never surface as 5xx, otherwise the
// provider keeps retrying a request that can never succeed.
type WebhookError struct {
	StatusCode    int
	PublicError   string
	InternalError error
}

func (e *WebhookError) Error() string {
	if e.InternalError != nil {
		return e.InternalError.Error()
	}
	return e.PublicError
}

// Reconciler applies payment notifications to attendee rows. It is the only
// writer of the paid status for paid reservations.
type Reconciler struct {
	DB        AttendeeStore
	Inventory Inventory
	Events    EventSource
	Publisher Publisher
	Logger    *logger.Logger

	signingSecret string
	verify        bool
}

func NewReconciler(db AttendeeStore, inv Inventory, events EventSource, pub Publisher, log *logger.Logger, signingSecret string, verify bool) *Reconciler {
	if !verify {
		log.Warn("WEBHOOK", "signature verification is DISABLED, accepting unsigned payloads")
	}
	return &Reconciler{
		DB:            db,
		Inventory:     inv,
		Events:        events,
		Publisher:     pub,
		Logger:        log,
		signingSecret: signingSecret,
		verify:        verify,
	}
}

// HandleNotification verifies and applies one raw webhook delivery.
// Every outcome that isn't a processing fault acks so the provider stops
// redelivering: replays, unknown event types and unmatched orders are all
// logged and acknowledged.
func (r *Reconciler) HandleNotification(ctx context.Context, payload []byte, signature string) *WebhookError {
	event, werr := r.parseEvent(payload, signature)
	if werr != nil {
		return werr
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return r.applyPaid(ctx, event)
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		return r.applyFailed(ctx, event)
	default:
		r.Logger.LogWebhook(string(event.Type), "ignored")
		return nil
	}
}

func (r *Reconciler) parseEvent(payload []byte, signature string) (*stripe.Event, *WebhookError) {
	if r.verify {
		event, err := webhook.ConstructEventWithOptions(payload, signature, r.signingSecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			return nil, &WebhookError{
				StatusCode:    401,
				PublicError:   "signature verification failed",
				InternalError: fmt.Errorf("webhook signature verification failed: %w", err),
			}
		}
		return &event, nil
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, &WebhookError{
			StatusCode:    400,
			PublicError:   "malformed payload",
			InternalError: fmt.Errorf("failed to parse unsigned webhook payload: %w", err),
		}
	}
	return &event, nil
}

func (r *Reconciler) applyPaid(ctx context.Context, event *stripe.Event) *WebhookError {
	session, werr := r.checkoutSession(event)
	if werr != nil {
		return werr
	}

	// A completed session can still be unpaid when an async method is in
	// flight. The async_payment_succeeded delivery settles it later.
	if event.Type == "checkout.session.completed" && session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		r.Logger.LogWebhook(string(event.Type), fmt.Sprintf("order %s awaiting async payment", session.ID))
		return nil
	}

	paymentID := ""
	if session.PaymentIntent != nil {
		paymentID = session.PaymentIntent.ID
	}

	attendee, applied, err := r.DB.MarkPaidByOrderID(ctx, session.ID, paymentID)
	if err != nil {
		return &WebhookError{
			StatusCode:    500,
			PublicError:   "failed to apply notification",
			InternalError: fmt.Errorf("failed to mark order %s paid: %w", session.ID, err),
		}
	}
	if attendee == nil {
		r.Logger.Warn("WEBHOOK", fmt.Sprintf("no attendee matches order %s, acknowledging", session.ID))
		return nil
	}
	if !applied {
		r.Logger.LogWebhook(string(event.Type), fmt.Sprintf("order %s already paid, replay ignored", session.ID))
		return nil
	}

	r.Logger.LogWebhook(string(event.Type), fmt.Sprintf("attendee %s confirmed for order %s", attendee.ID, session.ID))

	if attendee.TicketTypeID != nil {
		ok, err := r.Inventory.TryIncrementQuantitySold(ctx, *attendee.TicketTypeID)
		if err != nil {
			r.Logger.Error("WEBHOOK", fmt.Sprintf("inventory update failed for ticket type %s: %v", *attendee.TicketTypeID, err))
		} else if !ok {
			// The window between checkout creation and confirmation lets
			// concurrent buyers race past the cap. The counter itself never
			// exceeds the cap; the surplus confirmation is flagged here for
			// manual follow-up.
			r.Logger.Error("WEBHOOK", fmt.Sprintf("OVERSOLD: attendee %s paid for sold-out ticket type %s", attendee.ID, *attendee.TicketTypeID))
		}
	}

	r.publish(ctx, models.ReservationConfirmed, attendee)
	return nil
}

func (r *Reconciler) applyFailed(ctx context.Context, event *stripe.Event) *WebhookError {
	session, werr := r.checkoutSession(event)
	if werr != nil {
		return werr
	}

	attendee, applied, err := r.DB.MarkFailedByOrderID(ctx, session.ID)
	if err != nil {
		return &WebhookError{
			StatusCode:    500,
			PublicError:   "failed to apply notification",
			InternalError: fmt.Errorf("failed to mark order %s failed: %w", session.ID, err),
		}
	}
	if attendee == nil {
		r.Logger.Warn("WEBHOOK", fmt.Sprintf("no attendee matches order %s, acknowledging", session.ID))
		return nil
	}
	if !applied {
		r.Logger.LogWebhook(string(event.Type), fmt.Sprintf("order %s already settled, ignored", session.ID))
		return nil
	}

	r.Logger.LogWebhook(string(event.Type), fmt.Sprintf("attendee %s marked failed for order %s", attendee.ID, session.ID))
	r.publish(ctx, models.ReservationFailed, attendee)
	return nil
}

func (r *Reconciler) checkoutSession(event *stripe.Event) (*stripe.CheckoutSession, *WebhookError) {
	if event.Data == nil {
		return nil, &WebhookError{
			StatusCode:    400,
			PublicError:   "malformed event payload",
			InternalError: fmt.Errorf("event %s carries no data object", event.Type),
		}
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, &WebhookError{
			StatusCode:    400,
			PublicError:   "malformed event payload",
			InternalError: fmt.Errorf("failed to parse checkout session from %s: %w", event.Type, err),
		}
	}
	return &session, nil
}

// publish enriches the notification with event details and hands it to the
// stream. Best-effort: the attendee row is already settled.
func (r *Reconciler) publish(ctx context.Context, eventType string, attendee *models.Attendee) {
	if r.Publisher == nil {
		return
	}

	ev := models.ReservationEvent{
		Attendee:  *attendee,
		Timestamp: time.Now(),
	}
	if details, err := r.Events.GetEvent(ctx, attendee.EventID); err != nil {
		r.Logger.Warn("WEBHOOK", fmt.Sprintf("failed to load event %s for notification: %v", attendee.EventID, err))
	} else if details != nil {
		ev.EventTitle = details.Title
		ev.EventDate = details.Date
		ev.EventLocation = details.Location
	}

	var err error
	switch eventType {
	case models.ReservationConfirmed:
		err = r.Publisher.PublishReservationConfirmed(ev)
	case models.ReservationFailed:
		err = r.Publisher.PublishReservationFailed(ev)
	}
	if err != nil {
		r.Logger.Error("KAFKA", fmt.Sprintf("failed to publish %s for attendee %s: %v", eventType, attendee.ID, err))
	}
}
