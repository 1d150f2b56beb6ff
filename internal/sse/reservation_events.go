package sse

import (
	"context"
	"sync"

	"agama-events/internal/models"
)

// ReservationEmitter fans reservation lifecycle events out to SSE clients.
// Two audiences subscribe: a thank-you page waiting on one attendee, and an
// organizer dashboard watching a whole event.
type ReservationEmitter struct {
	attendeeClients map[string][]chan models.ReservationEvent
	attendeeMutex   sync.RWMutex

	eventClients map[string][]chan models.ReservationEvent
	eventMutex   sync.RWMutex
}

func NewReservationEmitter() *ReservationEmitter {
	return &ReservationEmitter{
		attendeeClients: make(map[string][]chan models.ReservationEvent),
		eventClients:    make(map[string][]chan models.ReservationEvent),
	}
}

// SubscribeToAttendee registers a client for one attendee's updates. The
// channel closes when the context is cancelled.
func (e *ReservationEmitter) SubscribeToAttendee(ctx context.Context, attendeeID string) chan models.ReservationEvent {
	clientChan := make(chan models.ReservationEvent, 10)

	e.attendeeMutex.Lock()
	e.attendeeClients[attendeeID] = append(e.attendeeClients[attendeeID], clientChan)
	e.attendeeMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeAttendeeClient(attendeeID, clientChan)
	}()

	return clientChan
}

// SubscribeToEvent registers a client for every reservation update on an
// event.
func (e *ReservationEmitter) SubscribeToEvent(ctx context.Context, eventID string) chan models.ReservationEvent {
	clientChan := make(chan models.ReservationEvent, 10)

	e.eventMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeEventClient(eventID, clientChan)
	}()

	return clientChan
}

// Emit broadcasts one reservation event to both audiences. Sends are
// non-blocking; a client with a full buffer misses the update rather than
// stalling the emitter. Sending happens under the read lock so removal,
// which closes channels under the write lock, can never close one
// mid-send.
func (e *ReservationEmitter) Emit(ev models.ReservationEvent) {
	e.attendeeMutex.RLock()
	for _, ch := range e.attendeeClients[ev.Attendee.ID] {
		select {
		case ch <- ev:
		default:
		}
	}
	e.attendeeMutex.RUnlock()

	e.eventMutex.RLock()
	for _, ch := range e.eventClients[ev.Attendee.EventID] {
		select {
		case ch <- ev:
		default:
		}
	}
	e.eventMutex.RUnlock()
}

func (e *ReservationEmitter) removeAttendeeClient(attendeeID string, clientChan chan models.ReservationEvent) {
	e.attendeeMutex.Lock()
	defer e.attendeeMutex.Unlock()

	clients := e.attendeeClients[attendeeID]
	for i, ch := range clients {
		if ch == clientChan {
			e.attendeeClients[attendeeID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}
	if len(e.attendeeClients[attendeeID]) == 0 {
		delete(e.attendeeClients, attendeeID)
	}
}

func (e *ReservationEmitter) removeEventClient(eventID string, clientChan chan models.ReservationEvent) {
	e.eventMutex.Lock()
	defer e.eventMutex.Unlock()

	clients := e.eventClients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}
	if len(e.eventClients[eventID]) == 0 {
		delete(e.eventClients, eventID)
	}
}

func (e *ReservationEmitter) AttendeeClientCount(attendeeID string) int {
	e.attendeeMutex.RLock()
	defer e.attendeeMutex.RUnlock()
	return len(e.attendeeClients[attendeeID])
}

func (e *ReservationEmitter) EventClientCount(eventID string) int {
	e.eventMutex.RLock()
	defer e.eventMutex.RUnlock()
	return len(e.eventClients[eventID])
}
