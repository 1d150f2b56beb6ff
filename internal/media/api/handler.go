package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"agama-events/internal/catalog"
	"agama-events/internal/logger"
	"agama-events/internal/media"
	"agama-events/internal/models"
	"agama-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Handler struct {
	Service *media.Service
	Logger  *logger.Logger
}

func NewHandler(service *media.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// SignUpload handles POST /api/v1/events/{eventID}/media/sign. Anyone with
// the event page can upload photos, so there is no identity check.
func (h *Handler) SignUpload(w http.ResponseWriter, r *http.Request) {
	var req models.SignUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	req.EventID = chi.URLParam(r, "eventID")

	if err := validate.Struct(req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	resp, err := h.Service.SignUpload(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Upload signed", resp))
}

// CompleteUpload handles POST /api/v1/events/{eventID}/media/complete.
func (h *Handler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	req.EventID = chi.URLParam(r, "eventID")

	if err := validate.Struct(req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	asset, err := h.Service.CompleteUpload(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Upload recorded", asset))
}

// ListMedia handles GET /api/v1/events/{eventID}/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	assets, err := h.Service.ListForEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Media assets", assets))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrEventNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", ""))
	case errors.Is(err, media.ErrUnsupportedType):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Only image uploads are supported", ""))
	default:
		h.Logger.Error("MEDIA", "media operation failed: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Media operation failed", ""))
	}
}
