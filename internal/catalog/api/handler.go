package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"agama-events/internal/auth"
	"agama-events/internal/catalog"
	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AttendeeLister feeds the organizer dashboard's attendee view.
type AttendeeLister interface {
	ListAttendeesForEvent(ctx context.Context, eventID string) ([]models.Attendee, error)
}

type Handler struct {
	Service   *catalog.Service
	Attendees AttendeeLister
	Logger    *logger.Logger
}

func NewHandler(service *catalog.Service, attendees AttendeeLister, log *logger.Logger) *Handler {
	return &Handler{Service: service, Attendees: attendees, Logger: log}
}

// ---------------- Organizer endpoints ----------------

// CreateEvent handles POST /api/v1/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	event, err := h.Service.CreateEvent(r.Context(), organizerID, req)
	if err != nil {
		h.Logger.Error("CATALOG", "failed to create event: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to create event", ""))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created", event))
}

// ListEvents handles GET /api/v1/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	events, err := h.Service.ListEvents(r.Context(), organizerID)
	if err != nil {
		h.Logger.Error("CATALOG", "failed to list events: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list events", ""))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events", events))
}

// GetEvent handles GET /api/v1/events/{eventID}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	event, err := h.Service.GetOwnedEvent(r.Context(), chi.URLParam(r, "eventID"), organizerID)
	if err != nil {
		h.writeError(w, err, "failed to load event")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event", event))
}

// DeleteEvent handles DELETE /api/v1/events/{eventID}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	if err := h.Service.DeleteEvent(r.Context(), chi.URLParam(r, "eventID"), organizerID); err != nil {
		h.writeError(w, err, "failed to delete event")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted", nil))
}

// ReplaceTicketTypes handles PUT /api/v1/events/{eventID}/ticket-types.
func (h *Handler) ReplaceTicketTypes(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	var req models.ReplaceTicketTypesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	set, err := h.Service.ReplaceTicketTypes(r.Context(), chi.URLParam(r, "eventID"), organizerID, req.TicketTypes)
	if err != nil {
		h.writeError(w, err, "failed to replace ticket types")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket types saved", set))
}

// ListAttendees handles GET /api/v1/events/{eventID}/attendees.
func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if _, err := h.Service.GetOwnedEvent(r.Context(), eventID, organizerID); err != nil {
		h.writeError(w, err, "failed to load event")
		return
	}

	attendees, err := h.Attendees.ListAttendeesForEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("CATALOG", "failed to list attendees: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list attendees", ""))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Attendees", attendees))
}

// ---------------- Public endpoints ----------------

// ListPublicEvents handles GET /api/v1/public/events.
func (h *Handler) ListPublicEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.ListUpcomingEvents(r.Context())
	if err != nil {
		h.Logger.Error("CATALOG", "failed to list upcoming events: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list events", ""))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Upcoming events", events))
}

// GetPublicEvent handles GET /api/v1/public/events/{eventID}. Returns the
// event with its orderable ticket types for the reservation page.
func (h *Handler) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, passed, err := h.Service.PublicEvent(r.Context(), eventID)
	if err != nil {
		h.writeError(w, err, "failed to load event")
		return
	}

	ticketTypes, err := h.Service.ActiveTicketTypes(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("CATALOG", "failed to load ticket types: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load event", ""))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event", map[string]interface{}{
		"event":       event,
		"ticketTypes": ticketTypes,
		"hasPassed":   passed,
	}))
}

func (h *Handler) writeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, catalog.ErrEventNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", ""))
	case errors.Is(err, catalog.ErrNegativePrice):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Price cannot be negative", ""))
	default:
		h.Logger.Error("CATALOG", logMsg+": "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Operation failed", ""))
	}
}
