package rsvp

import (
	"context"
	"fmt"
	"time"

	"agama-events/internal/catalog"
	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/notify"
	"agama-events/internal/payments"

	"github.com/google/uuid"
)

type AttendeeStore interface {
	CreateAttendee(ctx context.Context, attendee models.Attendee) error
	GetAttendeeByID(ctx context.Context, id string) (*models.Attendee, error)
	UpdatePaymentStatus(ctx context.Context, attendeeID, status string) error
	SetExternalOrderID(ctx context.Context, attendeeID, orderID string) error
}

type CatalogLayer interface {
	EventForReservation(ctx context.Context, eventID string) (*models.Event, error)
	TicketTypeForReservation(ctx context.Context, eventID, ticketTypeID string) (*models.TicketType, error)
}

type InventoryLayer interface {
	TryIncrementQuantitySold(ctx context.Context, ticketTypeID string) (bool, error)
}

type EventPublisher interface {
	PublishReservationConfirmed(ev models.ReservationEvent) error
	PublishReservationFailed(ev models.ReservationEvent) error
}

// Service runs the reservation workflow. Per attendee the state machine is
// pending -> paid | failed; paid and failed are terminal for the attempt.
type Service struct {
	DB        AttendeeStore
	Catalog   CatalogLayer
	Inventory InventoryLayer
	Gateway   payments.Gateway
	Mailer    notify.Mailer
	Events    EventPublisher
	Logger    *logger.Logger
	AppURL    string
}

func NewService(db AttendeeStore, cat CatalogLayer, inv InventoryLayer, gw payments.Gateway, mailer notify.Mailer, events EventPublisher, log *logger.Logger, appURL string) *Service {
	return &Service{
		DB:        db,
		Catalog:   cat,
		Inventory: inv,
		Gateway:   gw,
		Mailer:    mailer,
		Events:    events,
		Logger:    log,
		AppURL:    appURL,
	}
}

// Reserve validates the request, snapshots price and ticket name onto a new
// pending attendee and branches on price: free reservations confirm
// immediately, paid ones are handed off to hosted checkout.
func (s *Service) Reserve(ctx context.Context, req models.ReservationRequest) (*models.ReservationResponse, error) {
	if verr := ValidateReservation(req); verr != nil {
		return nil, verr
	}

	event, err := s.Catalog.EventForReservation(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	price := event.Price
	ticketName := "General Admission"
	var ticketTypeID *string

	if req.TicketTypeID != "" {
		tt, err := s.Catalog.TicketTypeForReservation(ctx, req.EventID, req.TicketTypeID)
		if err != nil {
			return nil, err
		}
		price = tt.Price
		ticketName = tt.Name
		ticketTypeID = &tt.ID
	}

	attendee := models.Attendee{
		ID:             uuid.NewString(),
		EventID:        event.ID,
		TicketTypeID:   ticketTypeID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		PricePaid:      price,
		TicketTypeName: ticketName,
		PaymentStatus:  models.PaymentPending,
		CreatedAt:      time.Now(),
	}

	if err := s.DB.CreateAttendee(ctx, attendee); err != nil {
		return nil, fmt.Errorf("failed to create attendee: %w", err)
	}
	s.Logger.LogReservation("CREATE", attendee.ID, fmt.Sprintf("ticket=%s price=%s", ticketName, price.StringFixed(2)))

	if price.IsZero() {
		return s.confirmFree(ctx, event, &attendee)
	}
	return s.beginCheckout(ctx, event, &attendee)
}

// confirmFree completes a zero-price reservation in the request. The
// conditional inventory increment is the gate: when the cap is hit the
// attendee is marked failed and the caller sees SoldOut, so two concurrent
// grabs of the last ticket can never both succeed.
func (s *Service) confirmFree(ctx context.Context, event *models.Event, attendee *models.Attendee) (*models.ReservationResponse, error) {
	if attendee.TicketTypeID != nil {
		ok, err := s.Inventory.TryIncrementQuantitySold(ctx, *attendee.TicketTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to update inventory: %w", err)
		}
		if !ok {
			if err := s.DB.UpdatePaymentStatus(ctx, attendee.ID, models.PaymentFailed); err != nil {
				s.Logger.Error("RSVP", fmt.Sprintf("failed to mark attendee %s failed after sold out: %v", attendee.ID, err))
			}
			return nil, catalog.ErrSoldOut
		}
	}

	if err := s.DB.UpdatePaymentStatus(ctx, attendee.ID, models.PaymentPaid); err != nil {
		return nil, fmt.Errorf("failed to confirm attendee: %w", err)
	}
	attendee.PaymentStatus = models.PaymentPaid
	s.Logger.LogReservation("CONFIRM", attendee.ID, "free ticket confirmed")

	// Confirmation email is best-effort: a send failure never fails the
	// reservation.
	if s.Mailer != nil {
		err := s.Mailer.SendReservationConfirmation(ctx, notify.ConfirmationParams{
			To:            attendee.Email,
			Name:          attendee.Name,
			EventTitle:    event.Title,
			EventDate:     event.Date,
			EventLocation: event.Location,
			TicketType:    attendee.TicketTypeName,
			Price:         attendee.PricePaid,
			IsFree:        true,
		})
		if err != nil {
			s.Logger.Error("EMAIL", fmt.Sprintf("confirmation email for %s failed: %v", attendee.ID, err))
		}
	}

	if s.Events != nil {
		if err := s.Events.PublishReservationConfirmed(models.ReservationEvent{
			Attendee:      *attendee,
			EventTitle:    event.Title,
			EventDate:     event.Date,
			EventLocation: event.Location,
			Timestamp:     time.Now(),
		}); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish confirmation for %s: %v", attendee.ID, err))
		}
	}

	return &models.ReservationResponse{
		AttendeeID:  attendee.ID,
		IsFree:      true,
		RedirectURL: s.thankYouURL(event.ID, attendee.ID),
	}, nil
}

// beginCheckout hands a paid reservation off to the gateway. Inventory is
// NOT incremented here; that happens when the payment notification confirms
// (see payments.Reconciler), which leaves a deliberate oversell window
// between checkout creation and confirmation.
func (s *Service) beginCheckout(ctx context.Context, event *models.Event, attendee *models.Attendee) (*models.ReservationResponse, error) {
	sess, err := s.Gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		AttendeeID:  attendee.ID,
		EventID:     event.ID,
		Description: fmt.Sprintf("%s - %s", event.Title, attendee.TicketTypeName),
		Amount:      attendee.PricePaid,
		RedirectURL: s.thankYouURL(event.ID, attendee.ID),
	})
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	if err := s.DB.SetExternalOrderID(ctx, attendee.ID, sess.OrderID); err != nil {
		return nil, fmt.Errorf("failed to record order id for attendee %s: %w", attendee.ID, err)
	}
	s.Logger.LogReservation("CHECKOUT", attendee.ID, "checkout session "+sess.OrderID)

	return &models.ReservationResponse{
		AttendeeID:  attendee.ID,
		CheckoutURL: sess.URL,
	}, nil
}

func (s *Service) GetReservation(ctx context.Context, attendeeID string) (*models.Attendee, error) {
	return s.DB.GetAttendeeByID(ctx, attendeeID)
}

func (s *Service) thankYouURL(eventID, attendeeID string) string {
	return fmt.Sprintf("%s/event/%s/thank-you?attendee=%s", s.AppURL, eventID, attendeeID)
}
