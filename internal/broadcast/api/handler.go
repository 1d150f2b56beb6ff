package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"agama-events/internal/auth"
	"agama-events/internal/broadcast"
	"agama-events/internal/catalog"
	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Handler struct {
	Service *broadcast.Service
	Logger  *logger.Logger
}

func NewHandler(service *broadcast.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// SendBroadcast handles POST /api/v1/events/{eventID}/broadcasts.
func (h *Handler) SendBroadcast(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	var req models.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	req.EventID = chi.URLParam(r, "eventID")
	if req.Channel == "" {
		req.Channel = "sms"
	}

	if err := validate.Struct(req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	result, err := h.Service.Send(r.Context(), organizerID, req)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", ""))
			return
		}
		h.Logger.Error("BROADCAST", "broadcast failed: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to send broadcast", ""))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Broadcast sent", result))
}

// ListBroadcasts handles GET /api/v1/events/{eventID}/broadcasts.
func (h *Handler) ListBroadcasts(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := auth.OrganizerID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ""))
		return
	}

	history, err := h.Service.History(r.Context(), organizerID, chi.URLParam(r, "eventID"))
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", ""))
			return
		}
		h.Logger.Error("BROADCAST", "failed to list broadcasts: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list broadcasts", ""))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Broadcast history", history))
}
