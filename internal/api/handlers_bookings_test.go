package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBooking(t *testing.T, handler http.Handler, bookerID, itemID int64, start, end time.Time) int64 {
	t.Helper()
	rec := doRequest(t, handler, http.MethodPost, "/bookings", bookerID, map[string]any{
		"item_id": itemID, "start": start, "end": end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decodeJSON[map[string]any](t, rec)["id"].(float64))
}

func TestBookingLifecycle(t *testing.T) {
	handler := newTestServer(t).Handler()

	aliceID := createUser(t, handler, "Alice", "alice@example.com")
	bobID := createUser(t, handler, "Bob", "bob@example.com")
	carolID := createUser(t, handler, "Carol", "carol@example.com")
	itemID := createItem(t, handler, aliceID, "drill")

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	bookingID := createBooking(t, handler, bobID, itemID, start, start.Add(24*time.Hour))

	// Both parties can view, a stranger cannot.
	for _, userID := range []int64{aliceID, bobID} {
		rec := doRequest(t, handler, http.MethodGet, fmt.Sprintf("/bookings/%d", bookingID), userID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := doRequest(t, handler, http.MethodGet, fmt.Sprintf("/bookings/%d", bookingID), carolID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Only the item's owner may decide.
	rec = doRequest(t, handler, http.MethodPatch,
		fmt.Sprintf("/bookings/%d?approved=true", bookingID), bobID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, handler, http.MethodPatch,
		fmt.Sprintf("/bookings/%d?approved=true", bookingID), aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPROVED", decodeJSON[map[string]any](t, rec)["status"])

	// A second decision is rejected.
	rec = doRequest(t, handler, http.MethodPatch,
		fmt.Sprintf("/bookings/%d?approved=false", bookingID), aliceID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_Validation(t *testing.T) {
	handler := newTestServer(t).Handler()

	aliceID := createUser(t, handler, "Alice", "alice@example.com")
	bobID := createUser(t, handler, "Bob", "bob@example.com")
	itemID := createItem(t, handler, aliceID, "drill")

	future := time.Now().Add(24 * time.Hour)
	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing item", map[string]any{"start": future, "end": future.Add(time.Hour)}},
		{"missing times", map[string]any{"item_id": itemID}},
		{"end before start", map[string]any{
			"item_id": itemID, "start": future.Add(time.Hour), "end": future}},
		{"start equals end", map[string]any{
			"item_id": itemID, "start": future, "end": future}},
		{"start in the past", map[string]any{
			"item_id": itemID, "start": time.Now().Add(-time.Hour), "end": future}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/bookings", bobID, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBooking_DomainErrors(t *testing.T) {
	handler := newTestServer(t).Handler()

	aliceID := createUser(t, handler, "Alice", "alice@example.com")
	bobID := createUser(t, handler, "Bob", "bob@example.com")
	itemID := createItem(t, handler, aliceID, "drill")

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(time.Hour)

	// Booking your own item.
	rec := doRequest(t, handler, http.MethodPost, "/bookings", aliceID,
		map[string]any{"item_id": itemID, "start": start, "end": end})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown item.
	rec = doRequest(t, handler, http.MethodPost, "/bookings", bobID,
		map[string]any{"item_id": int64(999), "start": start, "end": end})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unavailable item.
	doRequest(t, handler, http.MethodPatch, fmt.Sprintf("/items/%d", itemID), aliceID,
		map[string]any{"available": false})
	rec = doRequest(t, handler, http.MethodPost, "/bookings", bobID,
		map[string]any{"item_id": itemID, "start": start, "end": end})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBookings_UnknownState(t *testing.T) {
	handler := newTestServer(t).Handler()
	aliceID := createUser(t, handler, "Alice", "alice@example.com")

	rec := doRequest(t, handler, http.MethodGet, "/bookings?state=SOMETIMES", aliceID, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown state: SOMETIMES")
}

func TestListOwnerBookings_NoItems(t *testing.T) {
	handler := newTestServer(t).Handler()
	aliceID := createUser(t, handler, "Alice", "alice@example.com")

	rec := doRequest(t, handler, http.MethodGet, "/bookings/owner", aliceID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBookings_EmptyIsList(t *testing.T) {
	handler := newTestServer(t).Handler()
	aliceID := createUser(t, handler, "Alice", "alice@example.com")

	rec := doRequest(t, handler, http.MethodGet, "/bookings", aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestExportOwnerBookings(t *testing.T) {
	handler := newTestServer(t).Handler()

	aliceID := createUser(t, handler, "Alice", "alice@example.com")
	bobID := createUser(t, handler, "Bob", "bob@example.com")
	itemID := createItem(t, handler, aliceID, "drill")

	start := time.Now().Add(24 * time.Hour)
	createBooking(t, handler, bobID, itemID, start, start.Add(time.Hour))

	rec := doRequest(t, handler, http.MethodGet, "/bookings/owner/export", aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=bookings_")
	assert.NotZero(t, rec.Body.Len())
}

func TestRequestEndpoints(t *testing.T) {
	handler := newTestServer(t).Handler()

	aliceID := createUser(t, handler, "Alice", "alice@example.com")
	bobID := createUser(t, handler, "Bob", "bob@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/requests", bobID,
		map[string]string{"description": "need a drill"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID := int64(decodeJSON[map[string]any](t, rec)["id"].(float64))

	// Alice answers the request with an item.
	rec = doRequest(t, handler, http.MethodPost, "/items", aliceID, map[string]any{
		"name": "drill", "description": "cordless", "available": true, "request_id": requestID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/requests", bobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decodeJSON[[]map[string]any](t, rec)
	require.Len(t, own, 1)
	assert.Len(t, own[0]["items"], 1)

	// Bob's own requests never appear in the others listing.
	rec = doRequest(t, handler, http.MethodGet, "/requests/all", bobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]map[string]any](t, rec))

	rec = doRequest(t, handler, http.MethodGet, "/requests/all", aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[[]map[string]any](t, rec), 1)

	rec = doRequest(t, handler, http.MethodGet, fmt.Sprintf("/requests/%d", requestID), aliceID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostComment_Gate(t *testing.T) {
	handler := newTestServer(t).Handler()

	aliceID := createUser(t, handler, "Alice", "alice@example.com")
	bobID := createUser(t, handler, "Bob", "bob@example.com")
	itemID := createItem(t, handler, aliceID, "drill")

	// No finished booking yet.
	rec := doRequest(t, handler, http.MethodPost, fmt.Sprintf("/items/%d/comment", itemID), bobID,
		map[string]string{"text": "nice drill"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Blank text is rejected before the gate.
	rec = doRequest(t, handler, http.MethodPost, fmt.Sprintf("/items/%d/comment", itemID), bobID,
		map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
