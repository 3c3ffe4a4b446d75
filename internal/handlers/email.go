package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/crm-documents/httpx"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/services"
)

type EmailHandler struct {
	Svc *services.EmailService
	Log *slog.Logger
}

func NewEmailHandler(svc *services.EmailService, log *slog.Logger) *EmailHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &EmailHandler{Svc: svc, Log: log}
}

// Send: POST /api/emails/send
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	entry, err := h.Svc.Send(r.Context(), req.input())
	if err != nil {
		if errors.Is(err, services.ErrDependency) && entry != nil {
			h.Log.ErrorContext(r.Context(), "email not delivered", "log_id", entry.ID, "err", err)
			httpx.JSONErrorMessage(w, http.StatusInternalServerError, "dependency_failure", entry.Error, map[string]uint{"logId": entry.ID})
			return
		}
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "log": entry})
}

// Logs: GET /api/emails/logs?contactId=
func (h *EmailHandler) Logs(w http.ResponseWriter, r *http.Request) {
	contactID, ok := queryID(r, "contactId")
	if !ok {
		badRequest(w, r, "invalid_id")
		return
	}
	logs, err := h.Svc.Logs(r.Context(), contactID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, logs)
}

func (h *EmailHandler) Templates(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.Templates(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *EmailHandler) Template(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Svc.Template(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *EmailHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var in services.TemplateInput
	if err := httpx.Decode(r, &in); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	t, err := h.Svc.CreateTemplate(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *EmailHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.TemplateInput
	if err := httpx.Decode(r, &in); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	t, err := h.Svc.UpdateTemplate(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *EmailHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	deleted(w)
}
