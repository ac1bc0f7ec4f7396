package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openbarrio/automod/internal/moderation"
	"github.com/openbarrio/automod/internal/rules"
	"github.com/openbarrio/automod/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body; the real cause goes to the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateReport):
		writeError(w, http.StatusConflict, "you have already reported this content")
	case errors.Is(err, store.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "report has already been resolved")
	case errors.Is(err, moderation.ErrSelfReport):
		writeError(w, http.StatusUnprocessableEntity, "you cannot report your own content")
	case errors.Is(err, moderation.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not have moderator access to this community")
	case errors.Is(err, moderation.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, "invalid review action")
	case errors.Is(err, rules.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
