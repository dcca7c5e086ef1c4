package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/efactura/efactura/internal/httpx"
	"github.com/efactura/efactura/internal/repository"
)

// wantsJSON applies the Accept-header negotiation used across handlers:
// API clients ask for application/json, browsers get HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// writeRepoError maps repository failures onto the wire: violations are
// reported field-by-field with 400, missing rows with 404, anything else is
// an opaque persistence failure.
func writeRepoError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, repository.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	default:
		log.Error("persistence failure", zap.String("op", op), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_failure", nil)
	}
}
