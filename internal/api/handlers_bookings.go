package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/export"
	"shareit/internal/metrics"
	"shareit/internal/models"
)

type bookingBody struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := userIDFromHeader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body bookingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ItemID <= 0 {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if body.Start.IsZero() || body.End.IsZero() {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}
	if !body.Start.Before(body.End) {
		writeError(w, http.StatusBadRequest, "start must be before end")
		return
	}
	// Fixed-point-in-time policy, enforced here rather than in the engine.
	if body.Start.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "start must not be in the past")
		return
	}

	booking, err := s.bookings.Create(r.Context(), bookerID, body.ItemID, body.Start, body.End)
	if err != nil {
		respondError(w, err)
		return
	}
	metrics.IncBookingCreated()
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userIDFromHeader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := s.bookings.Decide(r.Context(), ownerID, bookingID, approved)
	if err != nil {
		respondError(w, err)
		return
	}
	metrics.IncBookingDecision(string(booking.Status))
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.Get(r.Context(), userID, bookingID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, false)
}

func (s *Server) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, true)
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, byOwner bool) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := s.parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := parseState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var bookings []models.Booking
	if byOwner {
		bookings, err = s.bookings.ListByOwner(r.Context(), userID, state, page)
	} else {
		bookings, err = s.bookings.ListByBooker(r.Context(), userID, state, page)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userIDFromHeader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := parseState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Export is unpaginated on purpose; the page cap does not apply.
	bookings, err := s.bookings.ListByOwner(r.Context(), ownerID, state,
		models.Page{Offset: 0, Limit: exportLimit})
	if err != nil {
		respondError(w, err)
		return
	}

	workbook, err := export.BookingsWorkbook(bookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build export workbook")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=bookings_%s.xlsx", time.Now().Format("2006-01-02")))
	if err := workbook.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream export workbook")
	}
}

const exportLimit = 10000

func parseState(r *http.Request) (models.BookingState, error) {
	raw := r.URL.Query().Get("state")
	if raw == "" {
		return models.StateAll, nil
	}
	return models.ParseBookingState(raw)
}
