package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// writeDomainError maps the domain error taxonomy onto HTTP statuses:
// validation 400, not found 404, capacity 409, everything else (identity
// resolution included) 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "conference or profile not found")
	case errors.Is(err, domain.ErrCapacity):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
