package sse_test

import (
	"context"
	"testing"
	"time"

	"agama-events/internal/models"
	"agama-events/internal/sse"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reservationEvent(attendeeID, eventID string) models.ReservationEvent {
	return models.ReservationEvent{
		Type: models.ReservationConfirmed,
		Attendee: models.Attendee{
			ID:      attendeeID,
			EventID: eventID,
		},
		Timestamp: time.Now(),
	}
}

func TestEmitReachesBothAudiences(t *testing.T) {
	emitter := sse.NewReservationEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attendeeID := uuid.NewString()
	eventID := uuid.NewString()

	attendeeCh := emitter.SubscribeToAttendee(ctx, attendeeID)
	eventCh := emitter.SubscribeToEvent(ctx, eventID)

	emitter.Emit(reservationEvent(attendeeID, eventID))

	select {
	case ev := <-attendeeCh:
		assert.Equal(t, attendeeID, ev.Attendee.ID)
	case <-time.After(time.Second):
		t.Fatal("attendee subscriber did not receive event")
	}

	select {
	case ev := <-eventCh:
		assert.Equal(t, eventID, ev.Attendee.EventID)
	case <-time.After(time.Second):
		t.Fatal("event subscriber did not receive event")
	}
}

func TestEmitSkipsUnrelatedSubscribers(t *testing.T) {
	emitter := sse.NewReservationEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otherCh := emitter.SubscribeToAttendee(ctx, uuid.NewString())

	emitter.Emit(reservationEvent(uuid.NewString(), uuid.NewString()))

	select {
	case <-otherCh:
		t.Fatal("unrelated subscriber received event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelledSubscriberIsRemoved(t *testing.T) {
	emitter := sse.NewReservationEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	attendeeID := uuid.NewString()
	ch := emitter.SubscribeToAttendee(ctx, attendeeID)
	require.Equal(t, 1, emitter.AttendeeClientCount(attendeeID))

	cancel()

	// The cleanup goroutine closes the channel and drops the registration
	assert.Eventually(t, func() bool {
		return emitter.AttendeeClientCount(attendeeID) == 0
	}, time.Second, 10*time.Millisecond)

	_, open := <-ch
	assert.False(t, open)
}

func TestEmitDuringSubscriberCancellation(t *testing.T) {
	emitter := sse.NewReservationEmitter()

	attendeeID := uuid.NewString()
	eventID := uuid.NewString()

	// Channels are closed on cancellation while emits are in flight; the
	// emitter must never send on a closed channel.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			emitter.Emit(reservationEvent(attendeeID, eventID))
		}
		close(done)
	}()

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		emitter.SubscribeToAttendee(ctx, attendeeID)
		emitter.SubscribeToEvent(ctx, eventID)
		cancel()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("emitter stalled during subscriber churn")
	}

	assert.Eventually(t, func() bool {
		return emitter.AttendeeClientCount(attendeeID) == 0 && emitter.EventClientCount(eventID) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSlowSubscriberDoesNotBlockEmit(t *testing.T) {
	emitter := sse.NewReservationEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attendeeID := uuid.NewString()
	eventID := uuid.NewString()
	emitter.SubscribeToAttendee(ctx, attendeeID)

	done := make(chan struct{})
	go func() {
		// Overflow the buffered channel; Emit must never block
		for i := 0; i < 100; i++ {
			emitter.Emit(reservationEvent(attendeeID, eventID))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a slow subscriber")
	}
}
