package service

import "errors"

var (
	// ErrForbidden means the caller lacks the required relationship to the
	// entity (not the booking's party, not the item's owner).
	ErrForbidden = errors.New("operation is not allowed for this user")

	// ErrNotAvailable means the item's available flag is off.
	ErrNotAvailable = errors.New("item is not available for booking")

	// ErrSelfBooking means an owner tried to book their own item.
	ErrSelfBooking = errors.New("owner cannot book their own item")

	// ErrAlreadyDecided means the booking already left WAITING; terminal
	// statuses are never overwritten.
	ErrAlreadyDecided = errors.New("booking is already decided")

	// ErrCommentNotAllowed means the author has no completed approved
	// booking of the item.
	ErrCommentNotAllowed = errors.New("commenting requires a completed booking of the item")
)
