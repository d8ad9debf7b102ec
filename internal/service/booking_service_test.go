package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newBookingService(store *mockStore) (*BookingService, *mockPublisher) {
	bus := &mockPublisher{}
	svc := NewBookingService(store, bus, testLogger())
	svc.now = fixedNow
	return svc, bus
}

func TestBookingService_Create(t *testing.T) {
	store := &mockStore{}
	svc, bus := newBookingService(store)

	item := &models.Item{ID: 10, Name: "drill", Available: true, OwnerID: 1}
	store.On("UserExists", mock.Anything, int64(2)).Return(nil)
	store.On("GetItem", mock.Anything, int64(10)).Return(item, nil)
	store.On("CreateBooking", mock.Anything, mock.AnythingOfType("*models.Booking")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 77
		}).Return(nil)

	start := fixedNow().Add(time.Hour)
	booking, err := svc.Create(context.Background(), 2, 10, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(77), booking.ID)
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, "drill", booking.ItemName)
	assert.Equal(t, []string{"booking_created"}, bus.events)
	store.AssertExpectations(t)
}

func TestBookingService_Create_SelfBooking(t *testing.T) {
	store := &mockStore{}
	svc, bus := newBookingService(store)

	item := &models.Item{ID: 10, Available: true, OwnerID: 2}
	store.On("UserExists", mock.Anything, int64(2)).Return(nil)
	store.On("GetItem", mock.Anything, int64(10)).Return(item, nil)

	start := fixedNow().Add(time.Hour)
	_, err := svc.Create(context.Background(), 2, 10, start, start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSelfBooking)
	assert.Empty(t, bus.events)
}

func TestBookingService_Create_NotAvailable(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	item := &models.Item{ID: 10, Available: false, OwnerID: 1}
	store.On("UserExists", mock.Anything, int64(2)).Return(nil)
	store.On("GetItem", mock.Anything, int64(10)).Return(item, nil)

	start := fixedNow().Add(time.Hour)
	_, err := svc.Create(context.Background(), 2, 10, start, start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestBookingService_Create_UnknownBooker(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	store.On("UserExists", mock.Anything, int64(2)).Return(database.ErrNotFound)

	start := fixedNow().Add(time.Hour)
	_, err := svc.Create(context.Background(), 2, 10, start, start.Add(time.Hour))
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestBookingService_Decide_Approve(t *testing.T) {
	store := &mockStore{}
	svc, bus := newBookingService(store)

	booking := &models.Booking{ID: 77, BookerID: 2, ItemID: 10, ItemOwnerID: 1, Status: models.StatusWaiting}
	store.On("GetBooking", mock.Anything, int64(77)).Return(booking, nil)
	store.On("DecideBooking", mock.Anything, int64(77), models.StatusApproved).Return(nil)

	decided, err := svc.Decide(context.Background(), 1, 77, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)
	assert.Equal(t, []string{"booking_approved"}, bus.events)
	store.AssertExpectations(t)
}

func TestBookingService_Decide_Reject(t *testing.T) {
	store := &mockStore{}
	svc, bus := newBookingService(store)

	booking := &models.Booking{ID: 77, BookerID: 2, ItemID: 10, ItemOwnerID: 1, Status: models.StatusWaiting}
	store.On("GetBooking", mock.Anything, int64(77)).Return(booking, nil)
	store.On("DecideBooking", mock.Anything, int64(77), models.StatusRejected).Return(nil)

	decided, err := svc.Decide(context.Background(), 1, 77, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, decided.Status)
	assert.Equal(t, []string{"booking_rejected"}, bus.events)
}

func TestBookingService_Decide_NotOwner(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	booking := &models.Booking{ID: 77, BookerID: 2, ItemOwnerID: 1, Status: models.StatusWaiting}
	store.On("GetBooking", mock.Anything, int64(77)).Return(booking, nil)

	_, err := svc.Decide(context.Background(), 3, 77, true)
	assert.ErrorIs(t, err, ErrForbidden)
	store.AssertNotCalled(t, "DecideBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_Decide_AlreadyDecided(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	booking := &models.Booking{ID: 77, ItemOwnerID: 1, Status: models.StatusApproved}
	store.On("GetBooking", mock.Anything, int64(77)).Return(booking, nil)

	_, err := svc.Decide(context.Background(), 1, 77, false)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestBookingService_Decide_LostRace(t *testing.T) {
	store := &mockStore{}
	svc, bus := newBookingService(store)

	booking := &models.Booking{ID: 77, ItemOwnerID: 1, Status: models.StatusWaiting}
	store.On("GetBooking", mock.Anything, int64(77)).Return(booking, nil)
	store.On("DecideBooking", mock.Anything, int64(77), models.StatusApproved).
		Return(database.ErrConcurrentModification)

	_, err := svc.Decide(context.Background(), 1, 77, true)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)
	assert.Empty(t, bus.events)
}

func TestBookingService_Get_PartyCheck(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	booking := &models.Booking{ID: 77, BookerID: 2, ItemOwnerID: 1}
	store.On("GetBooking", mock.Anything, int64(77)).Return(booking, nil)

	for _, userID := range []int64{1, 2} {
		got, err := svc.Get(context.Background(), userID, 77)
		require.NoError(t, err)
		assert.Equal(t, int64(77), got.ID)
	}

	_, err := svc.Get(context.Background(), 3, 77)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_ListByBooker_PassesNow(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	page := models.Page{Limit: 20}
	store.On("UserExists", mock.Anything, int64(2)).Return(nil)
	store.On("ListBookingsByBooker", mock.Anything, int64(2), models.StateCurrent, fixedNow(), page).
		Return([]models.Booking{{ID: 1}}, nil)

	bookings, err := svc.ListByBooker(context.Background(), 2, models.StateCurrent, page)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	store.AssertExpectations(t)
}

func TestBookingService_ListByOwner_NoItems(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	store.On("UserExists", mock.Anything, int64(1)).Return(nil)
	store.On("CountItemsByOwner", mock.Anything, int64(1)).Return(0, nil)

	_, err := svc.ListByOwner(context.Background(), 1, models.StateAll, models.Page{Limit: 20})
	assert.ErrorIs(t, err, database.ErrNotFound)
	store.AssertNotCalled(t, "ListBookingsByOwner",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_ListByOwner(t *testing.T) {
	store := &mockStore{}
	svc, _ := newBookingService(store)

	page := models.Page{Limit: 20}
	store.On("UserExists", mock.Anything, int64(1)).Return(nil)
	store.On("CountItemsByOwner", mock.Anything, int64(1)).Return(2, nil)
	store.On("ListBookingsByOwner", mock.Anything, int64(1), models.StateAll, fixedNow(), page).
		Return([]models.Booking{{ID: 5}, {ID: 4}}, nil)

	bookings, err := svc.ListByOwner(context.Background(), 1, models.StateAll, page)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}
