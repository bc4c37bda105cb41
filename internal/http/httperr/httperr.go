// Package httperr maps domain errors onto HTTP statuses and a uniform JSON
// error body.
package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recyclehub/recyclehub/internal/collection"
	"github.com/recyclehub/recyclehub/internal/points"
	"github.com/recyclehub/recyclehub/internal/user"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

// Status resolves the HTTP status for a domain error.
func Status(err error) int {
	switch {
	case errors.Is(err, collection.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, collection.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrInvalidState),
		errors.Is(err, points.ErrInsufficientPoints),
		errors.Is(err, points.ErrUnknownTier),
		errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, collection.ErrLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}

	return http.StatusInternalServerError
}

// Write sends the error as JSON with the resolved status. Internal errors are
// logged and masked.
func Write(w http.ResponseWriter, err error) {
	status := Status(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)

		msg = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
