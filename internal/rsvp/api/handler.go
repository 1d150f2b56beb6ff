package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"agama-events/internal/catalog"
	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/rsvp"
	"agama-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *rsvp.Service
	Logger  *logger.Logger
}

func NewHandler(service *rsvp.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// CreateReservation handles POST /api/v1/events/{eventID}/reservations.
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req models.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	req.EventID = chi.URLParam(r, "eventID")

	resp, err := h.Service.Reserve(r.Context(), req)
	if err != nil {
		h.writeReserveError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Reservation created", resp))
}

// GetReservation handles GET /api/v1/reservations/{attendeeID}, used by the
// thank-you page to show the reservation state.
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	attendee, err := h.Service.GetReservation(r.Context(), chi.URLParam(r, "attendeeID"))
	if err != nil {
		h.Logger.Error("RSVP", "failed to load reservation: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load reservation", ""))
		return
	}
	if attendee == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Reservation not found", ""))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reservation", attendee))
}

// writeReserveError maps workflow errors onto HTTP statuses. Internal detail
// stays in the logs; the client gets a stable message per failure class.
func (h *Handler) writeReserveError(w http.ResponseWriter, err error) {
	var verr *rsvp.ValidationError
	if errors.As(err, &verr) {
		resp := utils.ErrorResponse("Validation failed", "")
		resp.Fields = verr.Fields
		utils.WriteJSON(w, http.StatusBadRequest, resp)
		return
	}

	var gerr *rsvp.GatewayError
	if errors.As(err, &gerr) {
		h.Logger.Error("RSVP", "checkout creation failed: "+gerr.Error())
		utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse("Payment provider unavailable", ""))
		return
	}

	switch {
	case errors.Is(err, catalog.ErrEventNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", ""))
	case errors.Is(err, catalog.ErrTicketTypeNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Ticket type not found", ""))
	case errors.Is(err, catalog.ErrEventPassed):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("This event has already taken place", ""))
	case errors.Is(err, catalog.ErrTicketTypeInactive):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("This ticket type is no longer available", ""))
	case errors.Is(err, catalog.ErrSoldOut):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("This ticket type is sold out", ""))
	default:
		h.Logger.Error("RSVP", "reservation failed: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to create reservation", ""))
	}
}
