package httpHandler

import (
	"errors"
	"net/http"

	"fleet-server/apierrors"
)

// statusForError maps the failure taxonomy onto distinct response codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apierrors.ErrOutsideIssuanceWindow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apierrors.ErrUnsupportedTransition):
		return http.StatusConflict
	case errors.Is(err, apierrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apierrors.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, apierrors.ErrCorruptedRecord):
		// Unreadable stored data is a store-side fault, not a server bug
		return http.StatusBadGateway
	case errors.Is(err, apierrors.ErrSerialization):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
