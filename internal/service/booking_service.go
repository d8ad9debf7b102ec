package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking lifecycle: creation against the item's
// availability, the WAITING -> APPROVED/REJECTED state machine and the
// temporal list queries for both parties.
type BookingService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger

	// now is captured once per operation so every temporal comparison in
	// that operation sees the same instant. Overridable in tests.
	now func() time.Time
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Create books an item for [start, end) on behalf of bookerID. Availability
// is the item's flag alone; overlapping bookings of the same item are
// allowed by design.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if err := s.store.UserExists(ctx, bookerID); err != nil {
		return nil, err
	}
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == bookerID {
		return nil, ErrSelfBooking
	}
	if !item.Available {
		return nil, ErrNotAvailable
	}

	booking := &models.Booking{
		Start:     start,
		End:       end,
		BookerID:  bookerID,
		ItemID:    itemID,
		Status:    models.StatusWaiting,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	booking.ItemName = item.Name
	booking.ItemOwnerID = item.OwnerID

	s.publish(events.EventBookingCreated, booking)
	s.logger.Info().Int64("booking_id", booking.ID).Int64("booker_id", bookerID).
		Int64("item_id", itemID).Msg("booking created")
	return booking, nil
}

// Decide moves a WAITING booking to APPROVED or REJECTED. Only the item's
// owner may decide, and only once: the store-level compare-and-swap makes
// sure a concurrent decision loses the race instead of overwriting.
func (s *BookingService) Decide(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusWaiting {
		return nil, fmt.Errorf("booking %d has status %s: %w", bookingID, booking.Status, ErrAlreadyDecided)
	}
	if booking.ItemOwnerID != ownerID {
		return nil, fmt.Errorf("booking %d item does not belong to user %d: %w", bookingID, ownerID, ErrForbidden)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.store.DecideBooking(ctx, bookingID, status); err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			s.logger.Warn().Int64("booking_id", bookingID).Msg("lost booking decision race")
		}
		return nil, err
	}
	booking.Status = status

	s.publish(eventType, booking)
	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(status)).Msg("booking decided")
	return booking, nil
}

// Get returns the booking to its booker or the item's owner; nobody else
// may view it.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return nil, fmt.Errorf("booking %d is not related to user %d: %w", bookingID, userID, ErrForbidden)
	}
	return booking, nil
}

// ListByBooker returns the user's bookings in the given temporal category,
// newest start first.
func (s *BookingService) ListByBooker(ctx context.Context, bookerID int64, state models.BookingState, page models.Page) ([]models.Booking, error) {
	if err := s.store.UserExists(ctx, bookerID); err != nil {
		return nil, err
	}
	return s.store.ListBookingsByBooker(ctx, bookerID, state, s.now(), page)
}

// ListByOwner returns the bookings of every item the user owns. A user who
// owns no items has no meaningful answer, which surfaces as not found.
func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]models.Booking, error) {
	if err := s.store.UserExists(ctx, ownerID); err != nil {
		return nil, err
	}
	count, err := s.store.CountItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("user %d owns no items: %w", ownerID, database.ErrNotFound)
	}
	return s.store.ListBookingsByOwner(ctx, ownerID, state, s.now(), page)
}

func (s *BookingService) publish(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingPayload{
		BookingID: booking.ID,
		BookerID:  booking.BookerID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
