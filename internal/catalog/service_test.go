package catalog_test

import (
	"context"
	"testing"
	"time"

	"agama-events/internal/catalog"
	"agama-events/internal/logger"
	"agama-events/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateEvent(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDBLayer) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) GetEventForOrganizer(ctx context.Context, id, organizerID string) (*models.Event, error) {
	args := m.Called(ctx, id, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error) {
	args := m.Called(ctx, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) ListUpcomingEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketType), args.Error(1)
}

func (m *MockDBLayer) ActiveTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketType), args.Error(1)
}

func (m *MockDBLayer) ReplaceTicketTypes(ctx context.Context, eventID string, set []models.TicketType) error {
	args := m.Called(ctx, eventID, set)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, eventID string) ([]models.TicketType, bool) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]models.TicketType), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, eventID string, set []models.TicketType) {
	m.Called(ctx, eventID, set)
}

func (m *MockCache) Invalidate(ctx context.Context, eventID string) {
	m.Called(ctx, eventID)
}

// Tests

func TestEventForReservationNotFound(t *testing.T) {
	db := new(MockDBLayer)
	svc := catalog.NewService(db, nil, logger.NewTestLogger())

	eventID := uuid.NewString()
	db.On("GetEvent", mock.Anything, eventID).Return(nil, nil)

	event, err := svc.EventForReservation(context.Background(), eventID)
	assert.Nil(t, event)
	assert.ErrorIs(t, err, catalog.ErrEventNotFound)
}

func TestEventForReservationRejectsPastEvent(t *testing.T) {
	db := new(MockDBLayer)
	svc := catalog.NewService(db, nil, logger.NewTestLogger())

	past := &models.Event{
		ID:   uuid.NewString(),
		Date: time.Now().Add(-time.Hour),
	}
	db.On("GetEvent", mock.Anything, past.ID).Return(past, nil)

	event, err := svc.EventForReservation(context.Background(), past.ID)
	assert.Nil(t, event)
	assert.ErrorIs(t, err, catalog.ErrEventPassed)
}

func TestTicketTypeForReservationGuards(t *testing.T) {
	eventID := uuid.NewString()

	t.Run("wrong event looks like not found", func(t *testing.T) {
		db := new(MockDBLayer)
		svc := catalog.NewService(db, nil, logger.NewTestLogger())

		tt := &models.TicketType{ID: uuid.NewString(), EventID: uuid.NewString(), IsActive: true}
		db.On("GetTicketType", mock.Anything, tt.ID).Return(tt, nil)

		_, err := svc.TicketTypeForReservation(context.Background(), eventID, tt.ID)
		assert.ErrorIs(t, err, catalog.ErrTicketTypeNotFound)
	})

	t.Run("inactive", func(t *testing.T) {
		db := new(MockDBLayer)
		svc := catalog.NewService(db, nil, logger.NewTestLogger())

		tt := &models.TicketType{ID: uuid.NewString(), EventID: eventID, IsActive: false}
		db.On("GetTicketType", mock.Anything, tt.ID).Return(tt, nil)

		_, err := svc.TicketTypeForReservation(context.Background(), eventID, tt.ID)
		assert.ErrorIs(t, err, catalog.ErrTicketTypeInactive)
	})

	t.Run("sold out", func(t *testing.T) {
		db := new(MockDBLayer)
		svc := catalog.NewService(db, nil, logger.NewTestLogger())

		quantity := 5
		tt := &models.TicketType{ID: uuid.NewString(), EventID: eventID, IsActive: true, Quantity: &quantity, QuantitySold: 5}
		db.On("GetTicketType", mock.Anything, tt.ID).Return(tt, nil)

		_, err := svc.TicketTypeForReservation(context.Background(), eventID, tt.ID)
		assert.ErrorIs(t, err, catalog.ErrSoldOut)
	})

	t.Run("available", func(t *testing.T) {
		db := new(MockDBLayer)
		svc := catalog.NewService(db, nil, logger.NewTestLogger())

		quantity := 5
		tt := &models.TicketType{ID: uuid.NewString(), EventID: eventID, IsActive: true, Quantity: &quantity, QuantitySold: 4}
		db.On("GetTicketType", mock.Anything, tt.ID).Return(tt, nil)

		got, err := svc.TicketTypeForReservation(context.Background(), eventID, tt.ID)
		assert.NoError(t, err)
		assert.Equal(t, tt.ID, got.ID)
	})
}

func TestActiveTicketTypesServedFromCache(t *testing.T) {
	db := new(MockDBLayer)
	cache := new(MockCache)
	svc := catalog.NewService(db, cache, logger.NewTestLogger())

	eventID := uuid.NewString()
	cached := []models.TicketType{{ID: uuid.NewString(), EventID: eventID, Name: "GA"}}
	cache.On("Get", mock.Anything, eventID).Return(cached, true)

	set, err := svc.ActiveTicketTypes(context.Background(), eventID)
	assert.NoError(t, err)
	assert.Equal(t, cached, set)
	db.AssertNotCalled(t, "ActiveTicketTypes", mock.Anything, mock.Anything)
}

func TestActiveTicketTypesCacheMissFillsCache(t *testing.T) {
	db := new(MockDBLayer)
	cache := new(MockCache)
	svc := catalog.NewService(db, cache, logger.NewTestLogger())

	eventID := uuid.NewString()
	fromDB := []models.TicketType{{ID: uuid.NewString(), EventID: eventID, Name: "GA"}}
	cache.On("Get", mock.Anything, eventID).Return(nil, false)
	db.On("ActiveTicketTypes", mock.Anything, eventID).Return(fromDB, nil)
	cache.On("Set", mock.Anything, eventID, fromDB).Return()

	set, err := svc.ActiveTicketTypes(context.Background(), eventID)
	assert.NoError(t, err)
	assert.Equal(t, fromDB, set)
	cache.AssertExpectations(t)
}

func TestReplaceTicketTypesAssignsOrderAndResetsCounters(t *testing.T) {
	db := new(MockDBLayer)
	cache := new(MockCache)
	svc := catalog.NewService(db, cache, logger.NewTestLogger())

	eventID := uuid.NewString()
	event := &models.Event{ID: eventID, OrganizerID: "org-1"}
	db.On("GetEventForOrganizer", mock.Anything, eventID, "org-1").Return(event, nil)

	var saved []models.TicketType
	db.On("ReplaceTicketTypes", mock.Anything, eventID, mock.AnythingOfType("[]models.TicketType")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]models.TicketType) }).
		Return(nil)
	cache.On("Invalidate", mock.Anything, eventID).Return()

	quantity := 100
	inputs := []models.TicketTypeInput{
		{Name: "VIP", Price: decimal.NewFromInt(120), IsActive: true},
		{Name: "GA", Price: decimal.NewFromInt(40), Quantity: &quantity, IsActive: true},
	}

	set, err := svc.ReplaceTicketTypes(context.Background(), eventID, "org-1", inputs)
	require.NoError(t, err)
	require.Len(t, set, 2)

	assert.Equal(t, 0, saved[0].DisplayOrder)
	assert.Equal(t, 1, saved[1].DisplayOrder)
	assert.Zero(t, saved[0].QuantitySold)
	assert.Zero(t, saved[1].QuantitySold)
	assert.NotEmpty(t, saved[0].ID)
	cache.AssertExpectations(t)
}

func TestCreateEventRejectsNegativePrice(t *testing.T) {
	db := new(MockDBLayer)
	svc := catalog.NewService(db, nil, logger.NewTestLogger())

	_, err := svc.CreateEvent(context.Background(), "org-1", models.CreateEventRequest{
		Title: "Launch Party",
		Date:  time.Now().Add(24 * time.Hour),
		Price: decimal.NewFromInt(-10),
	})
	assert.ErrorIs(t, err, catalog.ErrNegativePrice)
	db.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestReplaceTicketTypesRejectsNegativePrice(t *testing.T) {
	db := new(MockDBLayer)
	svc := catalog.NewService(db, nil, logger.NewTestLogger())

	eventID := uuid.NewString()
	event := &models.Event{ID: eventID, OrganizerID: "org-1"}
	db.On("GetEventForOrganizer", mock.Anything, eventID, "org-1").Return(event, nil)

	inputs := []models.TicketTypeInput{
		{Name: "GA", Price: decimal.NewFromInt(40), IsActive: true},
		{Name: "Broken", Price: decimal.NewFromFloat(-0.01), IsActive: true},
	}

	_, err := svc.ReplaceTicketTypes(context.Background(), eventID, "org-1", inputs)
	assert.ErrorIs(t, err, catalog.ErrNegativePrice)
	db.AssertNotCalled(t, "ReplaceTicketTypes", mock.Anything, mock.Anything, mock.Anything)
}

func TestReplaceTicketTypesForeignEventLooksMissing(t *testing.T) {
	db := new(MockDBLayer)
	svc := catalog.NewService(db, nil, logger.NewTestLogger())

	eventID := uuid.NewString()
	db.On("GetEventForOrganizer", mock.Anything, eventID, "org-2").Return(nil, nil)

	_, err := svc.ReplaceTicketTypes(context.Background(), eventID, "org-2", nil)
	assert.ErrorIs(t, err, catalog.ErrEventNotFound)
	db.AssertNotCalled(t, "ReplaceTicketTypes", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteEventChecksOwnership(t *testing.T) {
	db := new(MockDBLayer)
	cache := new(MockCache)
	svc := catalog.NewService(db, cache, logger.NewTestLogger())

	eventID := uuid.NewString()
	db.On("GetEventForOrganizer", mock.Anything, eventID, "intruder").Return(nil, nil)

	err := svc.DeleteEvent(context.Background(), eventID, "intruder")
	assert.ErrorIs(t, err, catalog.ErrEventNotFound)
	db.AssertNotCalled(t, "DeleteEvent", mock.Anything, mock.Anything)
}
