package payments_test

import (
	"context"
	"fmt"
	"testing"

	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/payments"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type MockAttendeeStore struct {
	mock.Mock
}

func (m *MockAttendeeStore) MarkPaidByOrderID(ctx context.Context, orderID, paymentID string) (*models.Attendee, bool, error) {
	args := m.Called(ctx, orderID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Attendee), args.Bool(1), args.Error(2)
}

func (m *MockAttendeeStore) MarkFailedByOrderID(ctx context.Context, orderID string) (*models.Attendee, bool, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Attendee), args.Bool(1), args.Error(2)
}

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) TryIncrementQuantitySold(ctx context.Context, ticketTypeID string) (bool, error) {
	args := m.Called(ctx, ticketTypeID)
	return args.Bool(0), args.Error(1)
}

type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishReservationConfirmed(ev models.ReservationEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

func (m *MockPublisher) PublishReservationFailed(ev models.ReservationEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

// Fixtures

func paidAttendee(orderID string) *models.Attendee {
	ttID := uuid.NewString()
	return &models.Attendee{
		ID:              uuid.NewString(),
		EventID:         uuid.NewString(),
		TicketTypeID:    &ttID,
		Name:            "Casey Fox",
		Email:           "casey@example.com",
		Phone:           "+1 555 987 6543",
		PricePaid:       decimal.NewFromInt(50),
		TicketTypeName:  "Standard",
		PaymentStatus:   models.PaymentPaid,
		ExternalOrderID: orderID,
	}
}

func sessionPayload(eventType, orderID, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":%q,"data":{"object":{"id":%q,"payment_status":%q,"payment_intent":"pi_test_1"}}}`,
		eventType, orderID, paymentStatus))
}

// newReconciler builds a reconciler with verification off so tests can hand
// it raw JSON. Signature handling is tested separately.
func newReconciler(db *MockAttendeeStore, inv *MockInventory, events *MockEventSource, pub *MockPublisher) *payments.Reconciler {
	return payments.NewReconciler(db, inv, events, pub, logger.NewTestLogger(), "", false)
}

// Tests

func TestWebhookPaidConfirmsAndIncrementsInventory(t *testing.T) {
	db := new(MockAttendeeStore)
	inv := new(MockInventory)
	events := new(MockEventSource)
	pub := new(MockPublisher)
	rec := newReconciler(db, inv, events, pub)

	attendee := paidAttendee("cs_1")
	db.On("MarkPaidByOrderID", mock.Anything, "cs_1", "pi_test_1").Return(attendee, true, nil)
	inv.On("TryIncrementQuantitySold", mock.Anything, *attendee.TicketTypeID).Return(true, nil)
	events.On("GetEvent", mock.Anything, attendee.EventID).Return(&models.Event{ID: attendee.EventID, Title: "Launch Party"}, nil)
	pub.On("PublishReservationConfirmed", mock.MatchedBy(func(ev models.ReservationEvent) bool {
		return ev.Attendee.ID == attendee.ID && ev.EventTitle == "Launch Party"
	})).Return(nil)

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.completed", "cs_1", "paid"), "")
	assert.Nil(t, werr)

	db.AssertExpectations(t)
	inv.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	db := new(MockAttendeeStore)
	inv := new(MockInventory)
	events := new(MockEventSource)
	pub := new(MockPublisher)
	rec := newReconciler(db, inv, events, pub)

	attendee := paidAttendee("cs_1")
	// Second delivery: the conditional update matches nothing
	db.On("MarkPaidByOrderID", mock.Anything, "cs_1", "pi_test_1").Return(attendee, false, nil)

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.completed", "cs_1", "paid"), "")
	assert.Nil(t, werr)

	inv.AssertNotCalled(t, "TryIncrementQuantitySold", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishReservationConfirmed", mock.Anything)
}

func TestWebhookUnmatchedOrderIsAcked(t *testing.T) {
	db := new(MockAttendeeStore)
	inv := new(MockInventory)
	events := new(MockEventSource)
	pub := new(MockPublisher)
	rec := newReconciler(db, inv, events, pub)

	db.On("MarkPaidByOrderID", mock.Anything, "cs_unknown", "pi_test_1").Return(nil, false, nil)

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.completed", "cs_unknown", "paid"), "")
	assert.Nil(t, werr)

	inv.AssertNotCalled(t, "TryIncrementQuantitySold", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishReservationConfirmed", mock.Anything)
}

func TestWebhookCompletedUnpaidAwaitsAsyncResult(t *testing.T) {
	db := new(MockAttendeeStore)
	rec := newReconciler(db, new(MockInventory), new(MockEventSource), new(MockPublisher))

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.completed", "cs_1", "unpaid"), "")
	assert.Nil(t, werr)

	db.AssertNotCalled(t, "MarkPaidByOrderID", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookExpiredMarksFailed(t *testing.T) {
	db := new(MockAttendeeStore)
	inv := new(MockInventory)
	events := new(MockEventSource)
	pub := new(MockPublisher)
	rec := newReconciler(db, inv, events, pub)

	attendee := paidAttendee("cs_2")
	attendee.PaymentStatus = models.PaymentFailed
	db.On("MarkFailedByOrderID", mock.Anything, "cs_2").Return(attendee, true, nil)
	events.On("GetEvent", mock.Anything, attendee.EventID).Return(&models.Event{ID: attendee.EventID}, nil)
	pub.On("PublishReservationFailed", mock.AnythingOfType("models.ReservationEvent")).Return(nil)

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.expired", "cs_2", "unpaid"), "")
	assert.Nil(t, werr)

	inv.AssertNotCalled(t, "TryIncrementQuantitySold", mock.Anything, mock.Anything)
	pub.AssertExpectations(t)
}

func TestWebhookFailedNeverDemotesPaidAttendee(t *testing.T) {
	db := new(MockAttendeeStore)
	pub := new(MockPublisher)
	rec := newReconciler(db, new(MockInventory), new(MockEventSource), pub)

	attendee := paidAttendee("cs_3")
	// The conditional update refused the demotion
	db.On("MarkFailedByOrderID", mock.Anything, "cs_3").Return(attendee, false, nil)

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.async_payment_failed", "cs_3", "unpaid"), "")
	assert.Nil(t, werr)

	pub.AssertNotCalled(t, "PublishReservationFailed", mock.Anything)
}

func TestWebhookUnknownEventTypeIgnored(t *testing.T) {
	db := new(MockAttendeeStore)
	rec := newReconciler(db, new(MockInventory), new(MockEventSource), new(MockPublisher))

	werr := rec.HandleNotification(context.Background(), []byte(`{"type":"customer.created","data":{"object":{}}}`), "")
	assert.Nil(t, werr)

	db.AssertNotCalled(t, "MarkPaidByOrderID", mock.Anything, mock.Anything, mock.Anything)
	db.AssertNotCalled(t, "MarkFailedByOrderID", mock.Anything, mock.Anything)
}

func TestWebhookOversellIsAckedNotErrored(t *testing.T) {
	db := new(MockAttendeeStore)
	inv := new(MockInventory)
	events := new(MockEventSource)
	pub := new(MockPublisher)
	rec := newReconciler(db, inv, events, pub)

	attendee := paidAttendee("cs_4")
	db.On("MarkPaidByOrderID", mock.Anything, "cs_4", "pi_test_1").Return(attendee, true, nil)
	// Cap was hit between checkout and confirmation
	inv.On("TryIncrementQuantitySold", mock.Anything, *attendee.TicketTypeID).Return(false, nil)
	events.On("GetEvent", mock.Anything, attendee.EventID).Return(&models.Event{ID: attendee.EventID}, nil)
	pub.On("PublishReservationConfirmed", mock.AnythingOfType("models.ReservationEvent")).Return(nil)

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.completed", "cs_4", "paid"), "")
	assert.Nil(t, werr)
	pub.AssertExpectations(t)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := new(MockAttendeeStore)
	rec := payments.NewReconciler(db, new(MockInventory), new(MockEventSource), new(MockPublisher), logger.NewTestLogger(), "whsec_test", true)

	werr := rec.HandleNotification(context.Background(), sessionPayload("checkout.session.completed", "cs_1", "paid"), "t=1,v1=deadbeef")
	require.NotNil(t, werr)
	assert.Equal(t, 401, werr.StatusCode)

	db.AssertNotCalled(t, "MarkPaidByOrderID", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookMalformedPayload(t *testing.T) {
	rec := newReconciler(new(MockAttendeeStore), new(MockInventory), new(MockEventSource), new(MockPublisher))

	werr := rec.HandleNotification(context.Background(), []byte("not json"), "")
	require.NotNil(t, werr)
	assert.Equal(t, 400, werr.StatusCode)
}
