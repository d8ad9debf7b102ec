package models

import (
	"fmt"
	"time"
)

// BookingStatus is the closed set of booking states. WAITING is the initial
// state; APPROVED and REJECTED are terminal.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status can no longer change.
func (s BookingStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	BookerID int64         `json:"booker_id"`
	ItemID   int64         `json:"item_id"`
	Status   BookingStatus `json:"status"`
	// ItemName and ItemOwnerID are joined from items on reads and
	// ignored on writes.
	ItemName    string    `json:"item_name,omitempty"`
	ItemOwnerID int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookingState is the temporal category of a booking list query.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

func ParseBookingState(s string) (BookingState, error) {
	state := BookingState(s)
	switch state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	}
	return "", fmt.Errorf("Unknown state: %s", s)
}
