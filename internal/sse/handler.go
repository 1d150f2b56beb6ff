package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"agama-events/internal/models"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the emitter over HTTP as server-sent events.
type Handler struct {
	Emitter *ReservationEmitter
}

func NewHandler(emitter *ReservationEmitter) *Handler {
	return &Handler{Emitter: emitter}
}

// StreamAttendee handles GET /api/v1/reservations/{attendeeID}/stream. The
// thank-you page uses it to flip from "processing" to "confirmed" without
// polling.
func (h *Handler) StreamAttendee(w http.ResponseWriter, r *http.Request) {
	ch := h.Emitter.SubscribeToAttendee(r.Context(), chi.URLParam(r, "attendeeID"))
	h.stream(w, r, ch)
}

// StreamEvent handles GET /api/v1/events/{eventID}/stream for the organizer
// dashboard.
func (h *Handler) StreamEvent(w http.ResponseWriter, r *http.Request) {
	ch := h.Emitter.SubscribeToEvent(r.Context(), chi.URLParam(r, "eventID"))
	h.stream(w, r, ch)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, ch chan models.ReservationEvent) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
