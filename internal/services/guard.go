package services

import (
	"errors"
	"fmt"

	"communityevents/internal/domain"
)

// requireOwner fails with ErrForbidden unless callerID is the owner of the resource.
// role names the owner in the message, e.g. "organizer" or "author".
func requireOwner(callerID, ownerID, role, action string) error {
	if callerID == "" || callerID != ownerID {
		return domain.NewError(domain.ErrForbidden, "only the %s may %s", role, action)
	}
	return nil
}

func requireOrganizer(callerID string, e *domain.Event, action string) error {
	return requireOwner(callerID, e.OrganizerID, "organizer", action)
}

// lookupErr turns a repository lookup failure into a NotFound naming what was missing,
// or wraps it as an internal error.
func lookupErr(what string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.ErrNotFound, "%s not found", what)
	}
	return fmt.Errorf("get %s: %w", what, err)
}
