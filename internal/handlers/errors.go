package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/crm-documents/httpx"
	"github.com/diewo77/crm-documents/i18n"
	"github.com/diewo77/crm-documents/internal/middleware"
	"github.com/diewo77/crm-documents/internal/services"
)

// writeError maps a service error to its status and a localized body.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	lang := middleware.LangFrom(r)
	var (
		status  int
		code    string
		details any
	)
	switch {
	case errors.Is(err, services.ErrValidation):
		status, code = http.StatusBadRequest, "validation_failed"
		if f := services.Fields(err); len(f) > 0 {
			details = f
		}
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrConflict):
		status, code = http.StatusConflict, "number_conflict"
	case errors.Is(err, services.ErrDependency):
		status, code = http.StatusInternalServerError, "dependency_failure"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
	}
	if status >= 500 {
		log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	httpx.JSONErrorMessage(w, status, code, i18n.T(lang, code), details)
}

func badRequest(w http.ResponseWriter, r *http.Request, code string) {
	httpx.JSONErrorMessage(w, http.StatusBadRequest, code, i18n.T(middleware.LangFrom(r), code), nil)
}

// pathID parses a positive numeric path value. It answers 400 invalid_id
// itself and returns false when the value is not usable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		badRequest(w, r, "invalid_id")
		return 0, false
	}
	return uint(n), true
}

// queryID parses an optional numeric query parameter.
func queryID(r *http.Request, name string) (*uint, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	id := uint(n)
	return &id, true
}

func deleted(w http.ResponseWriter) {
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
