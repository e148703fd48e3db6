// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by the domain layer. Domain packages wrap these with
// context; RespondError maps them to status codes in one place.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidToken     = errors.New("invalid token")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAssociation      = errors.New("association rejected")
	ErrUnauthorized     = errors.New("unauthorized")
)

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrAssociation):
		Problem(w, http.StatusBadRequest, "Association Rejected", err.Error())
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrPermissionDenied):
		// Token and permission failures share a response so callers cannot
		// probe which of the two tripped.
		Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
