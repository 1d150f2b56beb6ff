package models

import "time"

// Reservation lifecycle event types published to kafka.
const (
	ReservationConfirmed = "reservation.confirmed"
	ReservationFailed    = "reservation.failed"
)

// ReservationEvent is the kafka payload emitted when an attendee reaches a
// terminal payment state. Event details ride along so consumers can compose
// notifications without a catalog lookup.
type ReservationEvent struct {
	Type          string    `json:"type"`
	Attendee      Attendee  `json:"attendee"`
	EventTitle    string    `json:"eventTitle"`
	EventDate     time.Time `json:"eventDate"`
	EventLocation string    `json:"eventLocation"`
	Timestamp     time.Time `json:"timestamp"`
}

// BroadcastEvent records a completed SMS fan-out on the audit stream.
type BroadcastEvent struct {
	Broadcast Broadcast `json:"broadcast"`
	Timestamp time.Time `json:"timestamp"`
}
