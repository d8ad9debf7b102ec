package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// HeaderUserID carries the authenticated caller's user id, set by the
// upstream gateway.
const HeaderUserID = "X-Sharer-User-Id"

func userIDFromHeader(r *http.Request) (int64, error) {
	raw := r.Header.Get(HeaderUserID)
	if raw == "" {
		return 0, fmt.Errorf("missing %s header", HeaderUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s header", HeaderUserID)
	}
	return id, nil
}
