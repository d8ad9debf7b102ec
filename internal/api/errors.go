package api

import (
	"errors"
	"net/http"

	"shareit/internal/database"
	"shareit/internal/service"
)

// respondError maps core failures onto HTTP statuses: missing records and
// ownerless queries are 404, relationship failures 403, business-rule
// rejections 400, races and duplicates 409.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSelfBooking),
		errors.Is(err, service.ErrNotAvailable),
		errors.Is(err, service.ErrAlreadyDecided),
		errors.Is(err, service.ErrCommentNotAllowed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrDuplicateEmail),
		errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
