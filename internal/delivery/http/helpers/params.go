package helpers

import (
	"net/http"

	"github.com/google/uuid"
)

// PathUUID reads the named path value and checks it is a UUID. On failure it writes
// a 400 error naming what and returns false.
func PathUUID(w http.ResponseWriter, r *http.Request, name, what string) (string, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+what+" id")
		return "", false
	}
	return id.String(), true
}
