package controllers

import (
	"net/http"

	"communityevents/internal/delivery/http/helpers"
	"communityevents/internal/delivery/http/middleware"
)

// requireCaller returns the authenticated user id or writes 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// optionalCaller returns the authenticated user id, or "" for anonymous requests.
func optionalCaller(r *http.Request) string {
	userID, _ := middleware.UserIDFromContext(r.Context())
	return userID
}

func eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	return helpers.PathUUID(w, r, "id", "event")
}
