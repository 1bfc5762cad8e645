package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"communityevents/internal/domain"
)

// errorKinds maps domain error kinds to their HTTP status and error code.
var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{domain.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{domain.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized, ErrCodeUnauthorized},
	{domain.ErrUnavailable, http.StatusServiceUnavailable, ErrCodeUnavailable},
}

// WriteServiceError writes the error returned by a service. Domain failures keep their
// message; anything else is logged and reported as a 500 without leaking details.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			WriteJSONError(w, k.status, k.code, publicMessage(err))
			return
		}
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// publicMessage strips infrastructure wrapping so only the domain message reaches the client.
func publicMessage(err error) string {
	var checkedIn *domain.AlreadyCheckedInError
	if errors.As(err, &checkedIn) {
		return checkedIn.Error()
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}
