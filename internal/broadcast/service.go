package broadcast

import (
	"context"
	"fmt"
	"time"

	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/notify"

	"github.com/google/uuid"
)

type EventResolver interface {
	GetOwnedEvent(ctx context.Context, eventID, organizerID string) (*models.Event, error)
}

type AttendeeSource interface {
	ListPaidAttendees(ctx context.Context, eventID string) ([]models.Attendee, error)
}

type BroadcastStore interface {
	CreateBroadcast(ctx context.Context, b models.Broadcast) error
	ListBroadcastsForEvent(ctx context.Context, eventID string) ([]models.Broadcast, error)
}

type Publisher interface {
	PublishBroadcastSent(ev models.BroadcastEvent) error
}

// Service fans an organizer message out over SMS to an event's confirmed
// attendees.
type Service struct {
	Events    EventResolver
	Attendees AttendeeSource
	DB        BroadcastStore
	Sender    notify.SMSSender
	Publisher Publisher
	Logger    *logger.Logger
}

func NewService(events EventResolver, attendees AttendeeSource, db BroadcastStore, sender notify.SMSSender, pub Publisher, log *logger.Logger) *Service {
	return &Service{
		Events:    events,
		Attendees: attendees,
		DB:        db,
		Sender:    sender,
		Publisher: pub,
		Logger:    log,
	}
}

// Send delivers the message to every paid attendee of the organizer's event.
// Sends are sequential and independent: one bad phone number costs one
// recipient, not the batch. The audit row records how many actually went out.
func (s *Service) Send(ctx context.Context, organizerID string, req models.BroadcastRequest) (*models.BroadcastResult, error) {
	event, err := s.Events.GetOwnedEvent(ctx, req.EventID, organizerID)
	if err != nil {
		return nil, err
	}

	attendees, err := s.Attendees.ListPaidAttendees(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendees: %w", err)
	}

	broadcastID := uuid.NewString()
	success := 0
	for _, a := range attendees {
		if err := s.Sender.SendSMS(ctx, a.Phone, event.Title, req.Message); err != nil {
			s.Logger.Warn("BROADCAST", fmt.Sprintf("[%s] send to attendee %s failed: %v", broadcastID, a.ID, err))
			continue
		}
		success++
	}

	record := models.Broadcast{
		ID:             broadcastID,
		EventID:        req.EventID,
		Message:        req.Message,
		Channel:        "sms",
		RecipientCount: success,
		SentAt:         time.Now(),
		SentBy:         organizerID,
	}
	if err := s.DB.CreateBroadcast(ctx, record); err != nil {
		// The messages are already out; losing the audit row is logged, not
		// surfaced as a delivery failure.
		s.Logger.Error("BROADCAST", fmt.Sprintf("[%s] failed to record broadcast: %v", broadcastID, err))
	}

	if s.Publisher != nil {
		if err := s.Publisher.PublishBroadcastSent(models.BroadcastEvent{Broadcast: record, Timestamp: time.Now()}); err != nil {
			s.Logger.Warn("BROADCAST", fmt.Sprintf("[%s] failed to publish audit event: %v", broadcastID, err))
		}
	}

	s.Logger.LogBroadcast(broadcastID, fmt.Sprintf("sent to %d/%d attendees of event %s", success, len(attendees), req.EventID))

	return &models.BroadcastResult{
		BroadcastID:     broadcastID,
		TotalRecipients: len(attendees),
		SuccessCount:    success,
		FailedCount:     len(attendees) - success,
	}, nil
}

// History lists past broadcasts for an owned event, newest first.
func (s *Service) History(ctx context.Context, organizerID, eventID string) ([]models.Broadcast, error) {
	if _, err := s.Events.GetOwnedEvent(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	return s.DB.ListBroadcastsForEvent(ctx, eventID)
}
