package catalog

import (
	"context"
	"fmt"
	"time"

	"agama-events/internal/logger"
	"agama-events/internal/models"

	"github.com/google/uuid"
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	GetEventForOrganizer(ctx context.Context, id, organizerID string) (*models.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error)
	ListUpcomingEvents(ctx context.Context) ([]models.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	GetTicketType(ctx context.Context, id string) (*models.TicketType, error)
	ActiveTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error)
	ReplaceTicketTypes(ctx context.Context, eventID string, set []models.TicketType) error
}

// TicketTypeCache is the redis-backed read cache for public event pages.
type TicketTypeCache interface {
	Get(ctx context.Context, eventID string) ([]models.TicketType, bool)
	Set(ctx context.Context, eventID string, set []models.TicketType)
	Invalidate(ctx context.Context, eventID string)
}

type Service struct {
	DB     DBLayer
	Cache  TicketTypeCache
	Logger *logger.Logger
}

func NewService(db DBLayer, cache TicketTypeCache, log *logger.Logger) *Service {
	return &Service{DB: db, Cache: cache, Logger: log}
}

// ---------------- Public reads ----------------

// EventForReservation resolves an event for the public reservation flow.
// Events whose date has passed cannot be reserved.
func (s *Service) EventForReservation(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Date.Before(time.Now()) {
		return nil, ErrEventPassed
	}
	return event, nil
}

// TicketTypeForReservation resolves a ticket type scoped to an event and
// applies the availability guards in order: existence, active flag, cap.
func (s *Service) TicketTypeForReservation(ctx context.Context, eventID, ticketTypeID string) (*models.TicketType, error) {
	tt, err := s.DB.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if tt == nil || tt.EventID != eventID {
		return nil, ErrTicketTypeNotFound
	}
	if !tt.IsActive {
		return nil, ErrTicketTypeInactive
	}
	if tt.SoldOut() {
		return nil, ErrSoldOut
	}
	return tt, nil
}

// PublicEvent resolves an event for its public page. Past events are still
// viewable; the flag tells the page to disable the reservation form.
func (s *Service) PublicEvent(ctx context.Context, eventID string) (*models.Event, bool, error) {
	event, err := s.DB.GetEvent(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	if event == nil {
		return nil, false, ErrEventNotFound
	}
	return event, event.Date.Before(time.Now()), nil
}

// ActiveTicketTypes returns the orderable set for an event, display order
// ascending. Served from the redis cache when warm.
func (s *Service) ActiveTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	if s.Cache != nil {
		if set, ok := s.Cache.Get(ctx, eventID); ok {
			return set, nil
		}
	}

	set, err := s.DB.ActiveTicketTypes(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, eventID, set)
	}
	return set, nil
}

func (s *Service) ListUpcomingEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListUpcomingEvents(ctx)
}

// ---------------- Organizer operations ----------------

func (s *Service) CreateEvent(ctx context.Context, organizerID string, req models.CreateEventRequest) (*models.Event, error) {
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	event := models.Event{
		ID:               uuid.NewString(),
		OrganizerID:      organizerID,
		Title:            req.Title,
		Description:      req.Description,
		Date:             req.Date,
		Price:            req.Price,
		Location:         req.Location,
		MaxAttendees:     req.MaxAttendees,
		CoverImageURL:    req.CoverImageURL,
		OrganizerName:    req.OrganizerName,
		OrganizerLogoURL: req.OrganizerLogoURL,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "events", fmt.Sprintf("event %s created by %s", event.ID, organizerID))
	return &event, nil
}

func (s *Service) GetOwnedEvent(ctx context.Context, eventID, organizerID string) (*models.Event, error) {
	event, err := s.DB.GetEventForOrganizer(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *Service) ListEvents(ctx context.Context, organizerID string) ([]models.Event, error) {
	return s.DB.ListEventsByOrganizer(ctx, organizerID)
}

// DeleteEvent removes an event and everything hanging off it: ticket types,
// attendees, media assets and broadcasts.
func (s *Service) DeleteEvent(ctx context.Context, eventID, organizerID string) error {
	if _, err := s.GetOwnedEvent(ctx, eventID, organizerID); err != nil {
		return err
	}
	if err := s.DB.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, eventID)
	}
	s.Logger.LogDatabase("DELETE", "events", fmt.Sprintf("event %s deleted with all dependents", eventID))
	return nil
}

// ReplaceTicketTypes swaps the whole ticket-type set for an event. The new
// set gets zero-based display order matching array position and a fresh
// sold counter. Attendees pointing at removed rows keep their snapshots;
// the live reference is nulled by the schema's ON DELETE SET NULL.
func (s *Service) ReplaceTicketTypes(ctx context.Context, eventID, organizerID string, inputs []models.TicketTypeInput) ([]models.TicketType, error) {
	if _, err := s.GetOwnedEvent(ctx, eventID, organizerID); err != nil {
		return nil, err
	}

	set := make([]models.TicketType, len(inputs))
	for i, in := range inputs {
		if in.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		set[i] = models.TicketType{
			ID:           uuid.NewString(),
			EventID:      eventID,
			Name:         in.Name,
			Description:  in.Description,
			Price:        in.Price,
			Quantity:     in.Quantity,
			QuantitySold: 0,
			DisplayOrder: i,
			IsActive:     in.IsActive,
			CreatedAt:    time.Now(),
		}
	}

	if err := s.DB.ReplaceTicketTypes(ctx, eventID, set); err != nil {
		return nil, fmt.Errorf("failed to replace ticket types: %w", err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, eventID)
	}
	s.Logger.LogDatabase("REPLACE", "ticket_types", fmt.Sprintf("%d ticket types saved for event %s", len(set), eventID))
	return set, nil
}
