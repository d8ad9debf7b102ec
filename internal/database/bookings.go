package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `b.id, b.start_time, b.end_time, b.booker_id, b.item_id,
                        b.status, b.created_at, i.name, i.owner_id`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.Start, &b.End, &b.BookerID, &b.ItemID,
		&b.Status, &b.CreatedAt, &b.ItemName, &b.ItemOwnerID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_time, end_time, booker_id, item_id, status, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.BookerID,
		booking.ItemID,
		booking.Status,
		booking.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// DecideBooking moves a WAITING booking to a terminal status. The WHERE
// clause doubles as a compare-and-swap: a concurrent decision that already
// landed leaves zero rows to update and the caller loses the race.
func (db *DB) DecideBooking(ctx context.Context, id int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// stateClause returns the temporal-category predicate for a booking list
// query, with b. as the bookings alias. The same now applies to every
// comparison of one query.
func stateClause(state models.BookingState, now time.Time) (string, []any, error) {
	switch state {
	case models.StateAll:
		return "", nil, nil
	case models.StateCurrent:
		return " AND b.start_time <= ? AND ? < b.end_time", []any{now.UTC(), now.UTC()}, nil
	case models.StatePast:
		return " AND b.end_time < ?", []any{now.UTC()}, nil
	case models.StateFuture:
		return " AND b.start_time > ?", []any{now.UTC()}, nil
	case models.StateWaiting:
		return " AND b.status = ?", []any{models.StatusWaiting}, nil
	case models.StateRejected:
		return " AND b.status = ?", []any{models.StatusRejected}, nil
	}
	return "", nil, fmt.Errorf("unknown booking state %q", state)
}

func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64,
	state models.BookingState, now time.Time, page models.Page) ([]models.Booking, error) {

	clause, extra, err := stateClause(state, now)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.booker_id = ?` + clause + `
              ORDER BY b.start_time DESC, b.id DESC LIMIT ? OFFSET ?`

	args := []any{bookerID}
	args = append(args, extra...)
	args = append(args, page.Limit, page.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by booker: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID int64,
	state models.BookingState, now time.Time, page models.Page) ([]models.Booking, error) {

	clause, extra, err := stateClause(state, now)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?` + clause + `
              ORDER BY b.start_time DESC, b.id DESC LIMIT ? OFFSET ?`

	args := []any{ownerID}
	args = append(args, extra...)
	args = append(args, page.Limit, page.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by owner: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListBookingsByItemIDs fetches every booking of the given items in one
// query for the dashboard aggregator. Ascending (start, id) order lets the
// caller treat the last qualifying entry as the most recent one.
func (db *DB) ListBookingsByItemIDs(ctx context.Context, itemIDs []int64) ([]models.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.item_id IN (` + placeholders(len(itemIDs)) + `)
              ORDER BY b.start_time, b.id`
	rows, err := db.QueryContext(ctx, query, int64Args(itemIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by item ids: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// LastBookingForItem returns the approved booking with the greatest start
// not after now, or nil when there is none.
func (db *DB) LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.item_id = ? AND b.status = ? AND b.start_time <= ?
              ORDER BY b.start_time DESC, b.id DESC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// NextBookingForItem returns the approved booking with the smallest start
// after now, or nil when there is none.
func (db *DB) NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.item_id = ? AND b.status = ? AND b.start_time > ?
              ORDER BY b.start_time ASC, b.id DESC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

// HasFinishedBooking reports whether the booker completed an approved
// booking of the item before now. Gates comment creation.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE booker_id = ? AND item_id = ? AND status = ? AND end_time < ?`
	var count int
	err := db.QueryRowContext(ctx, query, bookerID, itemID, models.StatusApproved, now.UTC()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return count > 0, nil
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}
