package models

import "time"

// BookingSummary is the short booking form attached to an item on the
// owner dashboard.
type BookingSummary struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type CommentSummary struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// ItemSummary is an item enriched with its nearest past and future approved
// bookings and all its comments. Last/next are owner-only.
type ItemSummary struct {
	Item
	LastBooking *BookingSummary  `json:"last_booking,omitempty"`
	NextBooking *BookingSummary  `json:"next_booking,omitempty"`
	Comments    []CommentSummary `json:"comments"`
}

// RequestSummary is a wish-list request together with the items that were
// listed in answer to it.
type RequestSummary struct {
	Request
	Items []Item `json:"items"`
}
